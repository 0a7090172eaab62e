package playlist

import "errors"

// Domain errors for playlist operations.
var (
	// Playlist validation errors
	ErrEmptyName  = errors.New("playlist name cannot be empty")
	ErrEmptyURL   = errors.New("playlist url cannot be empty")
	ErrInvalidURL = errors.New("playlist url must be an absolute http or https url")
	ErrInvalidID  = errors.New("invalid playlist id")

	// Playlist operation errors
	ErrPlaylistNotFound = errors.New("playlist not found")
	ErrNoPlaylistOpen   = errors.New("no playlist is open")
)
