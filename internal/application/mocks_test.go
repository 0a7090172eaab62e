package application

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/alorle/iptv-viewer/internal/playlist"
)

// mockPlaylistRepository is a mock implementation of driven.PlaylistRepository for testing.
type mockPlaylistRepository struct {
	saveFunc     func(ctx context.Context, p playlist.Playlist) error
	findByIDFunc func(ctx context.Context, id uuid.UUID) (playlist.Playlist, error)
	findAllFunc  func(ctx context.Context) ([]playlist.Playlist, error)
	deleteFunc   func(ctx context.Context, id uuid.UUID) error
	countFunc    func(ctx context.Context) (int, error)
	pingFunc     func(ctx context.Context) error
}

func (m *mockPlaylistRepository) Save(ctx context.Context, p playlist.Playlist) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, p)
	}
	return nil
}

func (m *mockPlaylistRepository) FindByID(ctx context.Context, id uuid.UUID) (playlist.Playlist, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return playlist.Playlist{}, playlist.ErrPlaylistNotFound
}

func (m *mockPlaylistRepository) FindAll(ctx context.Context) ([]playlist.Playlist, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx)
	}
	return []playlist.Playlist{}, nil
}

func (m *mockPlaylistRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockPlaylistRepository) Count(ctx context.Context) (int, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockPlaylistRepository) Ping(ctx context.Context) error {
	if m.pingFunc != nil {
		return m.pingFunc(ctx)
	}
	return nil
}

// memorySettings is an in-memory driven.SettingsRepository.
type memorySettings struct {
	id    uuid.UUID
	found bool
	err   error
}

func (m *memorySettings) LastOpened(ctx context.Context) (uuid.UUID, bool, error) {
	return m.id, m.found, m.err
}

func (m *memorySettings) SetLastOpened(ctx context.Context, id uuid.UUID) error {
	if m.err != nil {
		return m.err
	}
	m.id, m.found = id, true
	return nil
}

func (m *memorySettings) ClearLastOpened(ctx context.Context) error {
	if m.err != nil {
		return m.err
	}
	m.id, m.found = uuid.Nil, false
	return nil
}

// mockFetcher is a mock implementation of driven.PlaylistFetcher for testing.
type mockFetcher struct {
	fetchFunc func(ctx context.Context, url string) ([]byte, error)
}

func (m *mockFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if m.fetchFunc != nil {
		return m.fetchFunc(ctx, url)
	}
	return []byte("#EXTM3U\n"), nil
}

// mockPlayer is a mock implementation of driven.Player for testing.
type mockPlayer struct {
	playFunc func(ctx context.Context, streamURL string) error
}

func (m *mockPlayer) Play(ctx context.Context, streamURL string) error {
	if m.playFunc != nil {
		return m.playFunc(ctx, streamURL)
	}
	return nil
}

// recordingLoader records the calls PlaylistService makes on the channel list.
type recordingLoader struct {
	mu       sync.Mutex
	reloaded []playlist.Playlist
	cleared  int
}

func (r *recordingLoader) ReloadAsync(ctx context.Context, p playlist.Playlist) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reloaded = append(r.reloaded, p)
}

func (r *recordingLoader) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleared++
}

func (r *recordingLoader) lastReloaded() (playlist.Playlist, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.reloaded) == 0 {
		return playlist.Playlist{}, false
	}
	return r.reloaded[len(r.reloaded)-1], true
}
