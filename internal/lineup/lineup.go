// Package lineup derives the display-ready channel list: filtering by a
// search term, header classification and the single owner of the full list.
package lineup

import (
	"strings"

	"github.com/alorle/iptv-viewer/internal/channel"
)

// Entry is a channel as presented to a renderer.
type Entry struct {
	// Index is the position in the full list. It stays valid while filtering.
	Index   int
	Channel channel.Channel
	Header  bool
}

// Selectable reports whether activating the entry should start playback.
func (e Entry) Selectable() bool {
	return !e.Header
}

// Filter returns the entries whose name contains query, case-insensitively,
// in their original relative order. A blank query matches every entry.
// Headers are matched by the same rule as playable entries.
func Filter(channels []channel.Channel, query string) []Entry {
	entries := make([]Entry, 0, len(channels))

	all := strings.TrimSpace(query) == ""
	needle := strings.ToLower(query)

	for i, ch := range channels {
		if !all && !strings.Contains(strings.ToLower(ch.Name), needle) {
			continue
		}
		entries = append(entries, Entry{
			Index:   i,
			Channel: ch,
			Header:  channel.IsHeader(ch.Name),
		})
	}

	return entries
}
