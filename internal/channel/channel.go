package channel

import (
	"unicode"
	"unicode/utf8"
)

// Kind is the presentation class of a channel entry.
type Kind string

const (
	// KindSelectable is a playable entry.
	KindSelectable Kind = "selectable"
	// KindHeader is a group label that only organizes the list.
	KindHeader Kind = "header"
)

// Channel is one entry extracted from a playlist.
// Channels are rebuilt from the playlist text on every load and never persisted.
type Channel struct {
	Name      string
	LogoURL   string
	StreamURL string
}

// Kind classifies the channel from its name. It is recomputed on every call.
func (c Channel) Kind() Kind {
	if IsHeader(c.Name) {
		return KindHeader
	}
	return KindSelectable
}

// IsHeader reports whether name denotes a group header: a non-empty name
// whose first character is neither a letter nor a digit.
func IsHeader(name string) bool {
	if name == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(name)
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}
