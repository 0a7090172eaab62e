package m3u

import (
	"fmt"
	"io"

	"github.com/alorle/iptv-viewer/internal/channel"
)

func encodeChannel(w io.Writer, ch channel.Channel) error {
	if _, err := fmt.Fprint(w, "#EXTINF:-1"); err != nil {
		return err
	}

	if ch.LogoURL != "" {
		if _, err := fmt.Fprintf(w, " tvg-logo=\"%s\"", ch.LogoURL); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, ",%s\n%s\n", ch.Name, ch.StreamURL); err != nil {
		return err
	}

	return nil
}
