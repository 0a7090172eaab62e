package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/alorle/iptv-viewer/internal/playlist"
	"github.com/alorle/iptv-viewer/internal/port/driven"
)

// channelLoader is the part of ChannelService that playlist use cases drive.
type channelLoader interface {
	ReloadAsync(ctx context.Context, p playlist.Playlist)
	Clear()
}

// PlaylistSeed is a playlist configured outside the store.
type PlaylistSeed struct {
	Name string
	URL  string
}

// PlaylistService provides use cases for saved playlists and for choosing
// which one is open.
type PlaylistService struct {
	repo     driven.PlaylistRepository
	settings driven.SettingsRepository
	channels channelLoader
	logger   *slog.Logger
}

// NewPlaylistService creates a new PlaylistService.
func NewPlaylistService(repo driven.PlaylistRepository, settings driven.SettingsRepository, channels channelLoader, logger *slog.Logger) *PlaylistService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlaylistService{
		repo:     repo,
		settings: settings,
		channels: channels,
		logger:   logger,
	}
}

// Add saves a new playlist, opens it and starts loading its channels.
// Returns playlist validation errors for a blank name or an invalid URL.
func (s *PlaylistService) Add(ctx context.Context, name, url string) (playlist.Playlist, error) {
	p, err := playlist.NewPlaylist(name, url)
	if err != nil {
		return playlist.Playlist{}, err
	}

	if err := s.repo.Save(ctx, p); err != nil {
		return playlist.Playlist{}, fmt.Errorf("saving playlist: %w", err)
	}

	s.logger.Info("playlist added", "id", p.ID(), "name", p.Name())

	if err := s.open(ctx, p); err != nil {
		return playlist.Playlist{}, err
	}
	return p, nil
}

// List returns every saved playlist in the order they were added.
func (s *PlaylistService) List(ctx context.Context) ([]playlist.Playlist, error) {
	return s.repo.FindAll(ctx)
}

// Get returns one playlist. Returns playlist.ErrPlaylistNotFound if it does not exist.
func (s *PlaylistService) Get(ctx context.Context, id uuid.UUID) (playlist.Playlist, error) {
	return s.repo.FindByID(ctx, id)
}

// Open marks the playlist as last opened and starts loading its channels.
func (s *PlaylistService) Open(ctx context.Context, id uuid.UUID) (playlist.Playlist, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return playlist.Playlist{}, err
	}

	if err := s.open(ctx, p); err != nil {
		return playlist.Playlist{}, err
	}
	return p, nil
}

func (s *PlaylistService) open(ctx context.Context, p playlist.Playlist) error {
	if err := s.settings.SetLastOpened(ctx, p.ID()); err != nil {
		return fmt.Errorf("recording last opened playlist: %w", err)
	}
	s.channels.ReloadAsync(ctx, p)
	return nil
}

// Current returns the open playlist.
// Returns playlist.ErrNoPlaylistOpen when nothing has been opened.
func (s *PlaylistService) Current(ctx context.Context) (playlist.Playlist, error) {
	id, found, err := s.settings.LastOpened(ctx)
	if err != nil {
		return playlist.Playlist{}, err
	}
	if !found {
		return playlist.Playlist{}, playlist.ErrNoPlaylistOpen
	}

	p, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, playlist.ErrPlaylistNotFound) {
		return playlist.Playlist{}, playlist.ErrNoPlaylistOpen
	}
	return p, err
}

// ReloadCurrent starts loading the channels of the open playlist again.
func (s *PlaylistService) ReloadCurrent(ctx context.Context) (playlist.Playlist, error) {
	p, err := s.Current(ctx)
	if err != nil {
		return playlist.Playlist{}, err
	}

	s.channels.ReloadAsync(ctx, p)
	return p, nil
}

// Delete removes a playlist. Deleting the open playlist opens the first
// remaining one, or clears the channel list when none is left.
func (s *PlaylistService) Delete(ctx context.Context, id uuid.UUID) error {
	openID, open, err := s.settings.LastOpened(ctx)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("playlist deleted", "id", id)

	if !open || openID != id {
		return nil
	}

	_, _, err = s.openFirst(ctx)
	return err
}

// Restore reopens the playlist that was open last time, falling back to the
// first saved playlist. It reports false when there is nothing to open.
func (s *PlaylistService) Restore(ctx context.Context) (playlist.Playlist, bool, error) {
	id, found, err := s.settings.LastOpened(ctx)
	if err != nil {
		return playlist.Playlist{}, false, err
	}

	if found {
		p, err := s.repo.FindByID(ctx, id)
		switch {
		case err == nil:
			s.logger.Info("restoring last opened playlist", "id", p.ID(), "name", p.Name())
			s.channels.ReloadAsync(ctx, p)
			return p, true, nil
		case !errors.Is(err, playlist.ErrPlaylistNotFound):
			return playlist.Playlist{}, false, err
		}
	}

	return s.openFirst(ctx)
}

func (s *PlaylistService) openFirst(ctx context.Context) (playlist.Playlist, bool, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return playlist.Playlist{}, false, err
	}

	if len(all) == 0 {
		if err := s.settings.ClearLastOpened(ctx); err != nil {
			return playlist.Playlist{}, false, err
		}
		s.channels.Clear()
		return playlist.Playlist{}, false, nil
	}

	if err := s.open(ctx, all[0]); err != nil {
		return playlist.Playlist{}, false, err
	}
	return all[0], true, nil
}

// Seed saves seeds when no playlist is stored yet and returns how many were added.
func (s *PlaylistService) Seed(ctx context.Context, seeds []PlaylistSeed) (int, error) {
	if len(seeds) == 0 {
		return 0, nil
	}

	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	for i, seed := range seeds {
		p, err := playlist.NewPlaylist(seed.Name, seed.URL)
		if err != nil {
			return i, fmt.Errorf("seed playlist %d: %w", i, err)
		}
		if err := s.repo.Save(ctx, p); err != nil {
			return i, fmt.Errorf("saving seed playlist %q: %w", p.Name(), err)
		}
	}

	s.logger.Info("seeded playlists", "count", len(seeds))
	return len(seeds), nil
}
