package driven

import (
	"context"

	"github.com/google/uuid"

	"github.com/alorle/iptv-viewer/internal/playlist"
)

// PlaylistRepository defines the interface for playlist persistence operations.
// This is a driven port implemented by concrete adapters (e.g., BoltDB).
type PlaylistRepository interface {
	// Save persists a new playlist.
	Save(ctx context.Context, p playlist.Playlist) error

	// FindByID retrieves a playlist by its ID. Returns playlist.ErrPlaylistNotFound
	// if the playlist does not exist.
	FindByID(ctx context.Context, id uuid.UUID) (playlist.Playlist, error)

	// FindAll retrieves all playlists in the order they were added.
	FindAll(ctx context.Context) ([]playlist.Playlist, error)

	// Delete removes a playlist by its ID. Returns playlist.ErrPlaylistNotFound
	// if the playlist does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// Count returns the number of stored playlists.
	Count(ctx context.Context) (int, error)

	// Ping checks if the repository (database) is accessible and operational.
	Ping(ctx context.Context) error
}
