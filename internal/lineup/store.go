package lineup

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/alorle/iptv-viewer/internal/channel"
)

var (
	ErrEntryNotFound       = errors.New("channel entry not found")
	ErrHeaderNotSelectable = errors.New("group header is not selectable")
	ErrReloadSuperseded    = errors.New("reload superseded by a newer request")
	ErrStaleGeneration     = errors.New("channel list changed since it was viewed")
)

// Latest selects from whichever list is installed, without pinning a generation.
const Latest uint64 = 0

// Ticket identifies one reload attempt. Only the most recently issued ticket
// may install its result.
type Ticket struct {
	generation uint64
}

// Generation returns the reload generation this ticket belongs to.
func (t Ticket) Generation() uint64 {
	return t.generation
}

// Snapshot is an immutable copy of the full list at one point in time.
type Snapshot struct {
	Generation uint64
	Source     string
	LoadedAt   time.Time
	Channels   []channel.Channel
}

// View is a filtered snapshot ready to render.
type View struct {
	Generation uint64
	Source     string
	LoadedAt   time.Time
	Query      string
	Total      int
	Entries    []Entry
}

// Store owns the full channel list. The list is only ever replaced
// wholesale; readers get copies.
type Store struct {
	mu       sync.RWMutex
	issued   uint64
	current  uint64
	source   string
	loadedAt time.Time
	channels []channel.Channel
	now      func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		channels: []channel.Channel{},
		now:      time.Now,
	}
}

// Begin starts a reload and supersedes every ticket issued before it.
func (s *Store) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return Ticket{generation: s.issued}
}

// Commit installs channels as the full list if ticket is still the latest
// one issued. It returns false when a newer reload has started meanwhile.
func (s *Store) Commit(ticket Ticket, source string, channels []channel.Channel) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ticket.generation != s.issued {
		return false
	}

	s.install(ticket.generation, source, channels)
	return true
}

// Replace installs channels unconditionally and supersedes pending reloads.
func (s *Store) Replace(source string, channels []channel.Channel) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.issued++
	s.install(s.issued, source, channels)
	return s.issued
}

// Must be called with the write lock held.
func (s *Store) install(generation uint64, source string, channels []channel.Channel) {
	s.current = generation
	s.source = source
	s.loadedAt = s.now()
	if channels == nil {
		channels = []channel.Channel{}
	}
	s.channels = slices.Clone(channels)
}

// Snapshot returns a copy of the current full list.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Generation: s.current,
		Source:     s.source,
		LoadedAt:   s.loadedAt,
		Channels:   slices.Clone(s.channels),
	}
}

// View filters the current full list by query.
func (s *Store) View(query string) View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return View{
		Generation: s.current,
		Source:     s.source,
		LoadedAt:   s.loadedAt,
		Query:      query,
		Total:      len(s.channels),
		Entries:    Filter(s.channels, query),
	}
}

// Select returns the channel at index in the full list if it is playable.
// Unless generation is Latest, the installed list must be that generation,
// so an index taken from an older view never resolves against a newer list.
func (s *Store) Select(generation uint64, index int) (channel.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if generation != Latest && generation != s.current {
		return channel.Channel{}, ErrStaleGeneration
	}

	if index < 0 || index >= len(s.channels) {
		return channel.Channel{}, ErrEntryNotFound
	}

	ch := s.channels[index]
	if channel.IsHeader(ch.Name) {
		return channel.Channel{}, ErrHeaderNotSelectable
	}
	return ch, nil
}
