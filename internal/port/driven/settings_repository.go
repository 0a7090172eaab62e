package driven

import (
	"context"

	"github.com/google/uuid"
)

// SettingsRepository stores viewer preferences that outlive a session.
type SettingsRepository interface {
	// LastOpened returns the ID of the last opened playlist.
	// The boolean is false when none was recorded.
	LastOpened(ctx context.Context) (uuid.UUID, bool, error)

	// SetLastOpened records the last opened playlist.
	SetLastOpened(ctx context.Context, id uuid.UUID) error

	// ClearLastOpened forgets the last opened playlist.
	ClearLastOpened(ctx context.Context) error
}
