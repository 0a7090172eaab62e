package driven

import "context"

// PlaylistFetcher retrieves raw playlist text from a remote location.
type PlaylistFetcher interface {
	// Fetch returns the body found at url, or an error if it cannot be retrieved.
	Fetch(ctx context.Context, url string) ([]byte, error)
}
