package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alorle/iptv-viewer/internal/channel"
	"github.com/alorle/iptv-viewer/internal/lineup"
	"github.com/alorle/iptv-viewer/internal/m3u"
	"github.com/alorle/iptv-viewer/internal/metrics"
	"github.com/alorle/iptv-viewer/internal/playlist"
	"github.com/alorle/iptv-viewer/internal/port/driven"
)

// ChannelService provides use cases for the channel list of the open playlist.
// It owns the lineup store; every reload goes through a store ticket so only
// the most recent request can install its result.
type ChannelService struct {
	store   *lineup.Store
	fetcher driven.PlaylistFetcher
	player  driven.Player
	logger  *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	pending sync.WaitGroup
}

// NewChannelService creates a new ChannelService backed by store.
func NewChannelService(store *lineup.Store, fetcher driven.PlaylistFetcher, player driven.Player, logger *slog.Logger) *ChannelService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChannelService{
		store:   store,
		fetcher: fetcher,
		player:  player,
		logger:  logger,
	}
}

// Reload fetches and parses p and installs the result as the full list.
// On failure the current list is kept. Returns lineup.ErrReloadSuperseded
// when a newer reload started before this one finished.
func (s *ChannelService) Reload(ctx context.Context, p playlist.Playlist) (lineup.Snapshot, error) {
	return s.reload(ctx, s.store.Begin(), p)
}

func (s *ChannelService) reload(ctx context.Context, ticket lineup.Ticket, p playlist.Playlist) (lineup.Snapshot, error) {
	logger := s.logger.With("playlist", p.Name(), "generation", ticket.Generation())

	body, err := s.fetcher.Fetch(ctx, p.URL())
	if errors.Is(err, context.Canceled) {
		metrics.RecordReload("superseded")
		return lineup.Snapshot{}, err
	}
	if err != nil {
		metrics.RecordReload("failed")
		logger.Error("failed to load channel list", "url", p.URL(), "error", err)
		return lineup.Snapshot{}, fmt.Errorf("loading playlist %q: %w", p.Name(), err)
	}

	channels := m3u.Parse(string(body))

	if !s.store.Commit(ticket, p.ID().String(), channels) {
		metrics.RecordReload("superseded")
		logger.Info("discarding superseded channel list", "channels", len(channels))
		return lineup.Snapshot{}, lineup.ErrReloadSuperseded
	}

	headers := countHeaders(channels)
	metrics.RecordReload("installed")
	metrics.SetChannelsLoaded(len(channels), headers)
	logger.Info("channel list loaded", "channels", len(channels), "headers", headers)

	return s.store.Snapshot(), nil
}

// ReloadAsync reloads p in the background and cancels any background reload
// still in flight. The work is detached from ctx's cancellation so it can
// outlive the request that triggered it.
func (s *ChannelService) ReloadAsync(ctx context.Context, p playlist.Playlist) {
	// Tickets are issued under mu so the newest ticket always belongs to the
	// reload that is not cancelled.
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	ticket := s.store.Begin()
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pending.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.pending.Done()
		defer cancel()

		_, err := s.reload(runCtx, ticket, p)
		if err != nil && !errors.Is(err, lineup.ErrReloadSuperseded) && !errors.Is(err, context.Canceled) {
			s.logger.Warn("background reload failed", "playlist", p.Name(), "error", err)
		}
	}()
}

// Wait blocks until every background reload has finished.
func (s *ChannelService) Wait() {
	s.pending.Wait()
}

// Close cancels the background reload in flight, if any, and waits for it.
func (s *ChannelService) Close() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	s.Wait()
}

// Clear empties the channel list and supersedes pending reloads.
func (s *ChannelService) Clear() {
	s.store.Replace("", nil)
	metrics.SetChannelsLoaded(0, 0)
	s.logger.Info("channel list cleared")
}

// View returns the entries of the full list matching query.
func (s *ChannelService) View(query string) lineup.View {
	return s.store.View(query)
}

// Snapshot returns a copy of the full list.
func (s *ChannelService) Snapshot() lineup.Snapshot {
	return s.store.Snapshot()
}

// Play hands the stream of the entry at index to the player.
// Returns lineup.ErrHeaderNotSelectable for group headers,
// lineup.ErrEntryNotFound for an unknown index and lineup.ErrStaleGeneration
// when generation is no longer the installed list.
func (s *ChannelService) Play(ctx context.Context, generation uint64, index int) (channel.Channel, error) {
	ch, err := s.store.Select(generation, index)
	if err != nil {
		metrics.RecordPlay("rejected")
		return channel.Channel{}, err
	}

	if err := s.player.Play(ctx, ch.StreamURL); err != nil {
		metrics.RecordPlay("failed")
		s.logger.Error("failed to start playback", "channel", ch.Name, "url", ch.StreamURL, "error", err)
		return channel.Channel{}, fmt.Errorf("playing %q: %w", ch.Name, err)
	}

	metrics.RecordPlay("started")
	s.logger.Info("playback started", "channel", ch.Name, "index", index)
	return ch, nil
}

// Resolve returns the selectable channel at index so a client can play it itself.
func (s *ChannelService) Resolve(generation uint64, index int) (channel.Channel, error) {
	ch, err := s.store.Select(generation, index)
	if err != nil {
		metrics.RecordPlay("rejected")
		return channel.Channel{}, err
	}

	metrics.RecordPlay("redirected")
	return ch, nil
}

func countHeaders(channels []channel.Channel) int {
	n := 0
	for _, ch := range channels {
		if ch.Kind() == channel.KindHeader {
			n++
		}
	}
	return n
}
