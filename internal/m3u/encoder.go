package m3u

import (
	"fmt"
	"io"

	"github.com/alorle/iptv-viewer/internal/channel"
)

// Encoder writes channels back as an M3U playlist.
type Encoder struct {
	items []channel.Channel
}

func NewEncoder() *Encoder {
	return &Encoder{items: []channel.Channel{}}
}

func (e *Encoder) AddChannel(ch channel.Channel) {
	e.items = append(e.items, ch)
}

func (e *Encoder) Encode(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "#EXTM3U\n"); err != nil {
		return err
	}

	for _, item := range e.items {
		if err := encodeChannel(w, item); err != nil {
			return err
		}
	}

	return nil
}
