package m3u

import (
	"fmt"
	"io"
	"strings"

	"github.com/alorle/iptv-viewer/internal/channel"
)

const (
	extInfPrefix  = "#EXTINF:"
	commentPrefix = "#"
)

// Parse converts playlist text into channels, in source order.
//
// It understands the "#EXTINF:-1,<Name>" dialect: an info line sets the
// pending name, and the next non-blank, non-comment line becomes that
// channel's stream URL. A newer info line silently replaces an unconsumed one.
// Unrecognized lines are skipped; Parse never fails.
func Parse(text string) []channel.Channel {
	channels := []channel.Channel{}

	var pendingName string
	hasPending := false

	for _, line := range splitLines(text) {
		line = strings.TrimSpace(line)

		if strings.HasPrefix(line, extInfPrefix) {
			pendingName = extractName(line)
			hasPending = true
			continue
		}

		if hasPending && line != "" && !strings.HasPrefix(line, commentPrefix) {
			channels = append(channels, channel.Channel{
				Name:      pendingName,
				LogoURL:   "",
				StreamURL: line,
			})
			pendingName = ""
			hasPending = false
		}
	}

	return channels
}

// ParseReader reads r to the end and parses its content.
// The only error it returns comes from reading r.
func ParseReader(r io.Reader) ([]channel.Channel, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading playlist: %w", err)
	}
	return Parse(string(data)), nil
}

// extractName returns the trimmed text after the first comma of an info line.
// A line without a comma yields the whole line.
func extractName(line string) string {
	if _, after, found := strings.Cut(line, ","); found {
		return strings.TrimSpace(after)
	}
	return strings.TrimSpace(line)
}

// splitLines splits on "\r\n", "\n" and a lone "\r".
func splitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			lines = append(lines, text[start:i])
			start = i + 1
		case '\r':
			lines = append(lines, text[start:i])
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			start = i + 1
		}
	}
	return append(lines, text[start:])
}
