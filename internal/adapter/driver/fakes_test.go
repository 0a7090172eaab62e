package driver

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/alorle/iptv-viewer/internal/application"
	"github.com/alorle/iptv-viewer/internal/lineup"
	"github.com/alorle/iptv-viewer/internal/playlist"
)

// memoryPlaylistRepository is an in-memory driven.PlaylistRepository.
type memoryPlaylistRepository struct {
	mu       sync.Mutex
	items    []playlist.Playlist
	pingFunc func(ctx context.Context) error
	findErr  error
}

func (m *memoryPlaylistRepository) Save(ctx context.Context, p playlist.Playlist) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, p)
	return nil
}

func (m *memoryPlaylistRepository) FindByID(ctx context.Context, id uuid.UUID) (playlist.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.items {
		if p.ID() == id {
			return p, nil
		}
	}
	return playlist.Playlist{}, playlist.ErrPlaylistNotFound
}

func (m *memoryPlaylistRepository) FindAll(ctx context.Context) ([]playlist.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	return append([]playlist.Playlist{}, m.items...), nil
}

func (m *memoryPlaylistRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.items {
		if p.ID() == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return playlist.ErrPlaylistNotFound
}

func (m *memoryPlaylistRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items), nil
}

func (m *memoryPlaylistRepository) Ping(ctx context.Context) error {
	if m.pingFunc != nil {
		return m.pingFunc(ctx)
	}
	return nil
}

// memorySettings is an in-memory driven.SettingsRepository.
type memorySettings struct {
	mu    sync.Mutex
	id    uuid.UUID
	found bool
}

func (m *memorySettings) LastOpened(ctx context.Context) (uuid.UUID, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id, m.found, nil
}

func (m *memorySettings) SetLastOpened(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.id, m.found = id, true
	return nil
}

func (m *memorySettings) ClearLastOpened(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.id, m.found = uuid.Nil, false
	return nil
}

// stubFetcher serves fixed playlist bodies by URL.
type stubFetcher struct {
	bodies map[string]string
}

func (s *stubFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	return []byte(s.bodies[url]), nil
}

// recordingPlayer remembers every stream it was asked to play.
type recordingPlayer struct {
	mu     sync.Mutex
	played []string
	err    error
}

func (p *recordingPlayer) Play(ctx context.Context, streamURL string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.played = append(p.played, streamURL)
	return nil
}

const testPlaylistURL = "http://example.com/list.m3u"

const testPlaylistBody = `#EXTM3U
#EXTINF:-1,--- Sports ---
http://example.com/sports-header
#EXTINF:-1 tvg-id="espn",ESPN
http://example.com/espn
#EXTINF:-1,Eurosport
http://example.com/eurosport
#EXTINF:-1,Cartoon
http://example.com/cartoon
`

// testServer bundles the services behind a router for handler tests.
type testServer struct {
	handler   http.Handler
	repo      *memoryPlaylistRepository
	settings  *memorySettings
	channels  *application.ChannelService
	playlists *application.PlaylistService
	player    *recordingPlayer
	fetcher   *stubFetcher
	logs      *bytes.Buffer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	repo := &memoryPlaylistRepository{}
	settings := &memorySettings{}
	player := &recordingPlayer{}
	fetcher := &stubFetcher{bodies: map[string]string{testPlaylistURL: testPlaylistBody}}

	channels := application.NewChannelService(lineup.NewStore(), fetcher, player, nil)
	playlists := application.NewPlaylistService(repo, settings, channels, nil)
	health := application.NewHealthService(repo, channels)
	t.Cleanup(channels.Close)

	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(logs, nil))

	handler := NewRouter(Handlers{
		Playlists: NewPlaylistHTTPHandler(playlists),
		Channels:  NewChannelHTTPHandler(channels, playlists),
		Health:    NewHealthHTTPHandler(health),
	}, logger, 0)

	return &testServer{
		handler:   handler,
		repo:      repo,
		settings:  settings,
		channels:  channels,
		playlists: playlists,
		player:    player,
		fetcher:   fetcher,
		logs:      logs,
	}
}

// withLoadedPlaylist adds the test playlist and waits for its channels.
func (s *testServer) withLoadedPlaylist(t *testing.T) playlist.Playlist {
	t.Helper()

	p, err := s.playlists.Add(context.Background(), "Test", testPlaylistURL)
	if err != nil {
		t.Fatalf("failed to add playlist: %v", err)
	}
	s.channels.Wait()
	return p
}
