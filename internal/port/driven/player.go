package driven

import "context"

// Player hands a stream locator to an external playback collaborator.
type Player interface {
	// Play starts playback of streamURL. It must not block until playback ends.
	Play(ctx context.Context, streamURL string) error
}
