package playlist

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Playlist is a user-named reference to a remote M3U resource.
// It is distinct from the channel list the resource yields.
type Playlist struct {
	id        uuid.UUID
	name      string
	url       string
	createdAt time.Time
}

// NewPlaylist creates a Playlist with a fresh ID.
// Name and URL are trimmed; both must be non-empty and the URL must be an
// absolute http or https URL.
func NewPlaylist(name, rawURL string) (Playlist, error) {
	trimmedName := strings.TrimSpace(name)
	if trimmedName == "" {
		return Playlist{}, ErrEmptyName
	}

	trimmedURL := strings.TrimSpace(rawURL)
	if trimmedURL == "" {
		return Playlist{}, ErrEmptyURL
	}

	u, err := url.Parse(trimmedURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return Playlist{}, ErrInvalidURL
	}

	return Playlist{
		id:        uuid.New(),
		name:      trimmedName,
		url:       trimmedURL,
		createdAt: time.Now().UTC(),
	}, nil
}

// ReconstructPlaylist rebuilds a Playlist from persisted state without validation.
func ReconstructPlaylist(id uuid.UUID, name, rawURL string, createdAt time.Time) Playlist {
	return Playlist{
		id:        id,
		name:      name,
		url:       rawURL,
		createdAt: createdAt,
	}
}

// ParseID parses a playlist identifier.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, ErrInvalidID
	}
	return id, nil
}

func (p Playlist) ID() uuid.UUID {
	return p.id
}

func (p Playlist) Name() string {
	return p.name
}

func (p Playlist) URL() string {
	return p.url
}

// CreatedAt orders playlists the way they were added.
func (p Playlist) CreatedAt() time.Time {
	return p.createdAt
}
