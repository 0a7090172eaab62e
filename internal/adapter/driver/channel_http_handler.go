package driver

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/alorle/iptv-viewer/internal/application"
	"github.com/alorle/iptv-viewer/internal/lineup"
	"github.com/alorle/iptv-viewer/internal/m3u"
	"github.com/alorle/iptv-viewer/internal/playlist"
)

// ChannelHTTPHandler handles HTTP requests for the channel list of the open playlist.
type ChannelHTTPHandler struct {
	channels  *application.ChannelService
	playlists *application.PlaylistService
}

// NewChannelHTTPHandler creates a new HTTP handler for channels.
func NewChannelHTTPHandler(channels *application.ChannelService, playlists *application.PlaylistService) *ChannelHTTPHandler {
	return &ChannelHTTPHandler{channels: channels, playlists: playlists}
}

// errorResponse represents a JSON error response.
type errorResponse struct {
	Error string `json:"error"`
}

// entryResponse represents one list entry in JSON format.
type entryResponse struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	LogoURL   string `json:"logo_url"`
	StreamURL string `json:"stream_url"`
	Header    bool   `json:"header"`
}

// channelListResponse represents a filtered view of the channel list.
type channelListResponse struct {
	Generation uint64          `json:"generation"`
	LoadedAt   string          `json:"loaded_at,omitempty"`
	Playlist   string          `json:"playlist,omitempty"`
	Query      string          `json:"query"`
	Total      int             `json:"total"`
	Entries    []entryResponse `json:"entries"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// Routes registers the channel endpoints on r.
func (h *ChannelHTTPHandler) Routes(r chi.Router) {
	r.Get("/api/channels", h.handleList)
	r.Post("/api/channels/reload", h.handleReload)
	r.Post("/api/channels/{index}/play", h.handlePlay)
	r.Get("/watch/{index}", h.handleWatch)
	r.Get("/playlist.m3u", h.handleExport)
}

func toChannelListResponse(v lineup.View) channelListResponse {
	resp := channelListResponse{
		Generation: v.Generation,
		Playlist:   v.Source,
		Query:      v.Query,
		Total:      v.Total,
		Entries:    make([]entryResponse, 0, len(v.Entries)),
	}
	if !v.LoadedAt.IsZero() {
		resp.LoadedAt = v.LoadedAt.Format(time.RFC3339)
	}

	for _, e := range v.Entries {
		resp.Entries = append(resp.Entries, entryResponse{
			Index:     e.Index,
			Name:      e.Channel.Name,
			LogoURL:   e.Channel.LogoURL,
			StreamURL: e.Channel.StreamURL,
			Header:    e.Header,
		})
	}
	return resp
}

// handleList handles GET /api/channels?q=
func (h *ChannelHTTPHandler) handleList(w http.ResponseWriter, r *http.Request) {
	view := h.channels.View(r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, toChannelListResponse(view))
}

// handleReload handles POST /api/channels/reload
func (h *ChannelHTTPHandler) handleReload(w http.ResponseWriter, r *http.Request) {
	p, err := h.playlists.ReloadCurrent(r.Context())
	if err != nil {
		if errors.Is(err, playlist.ErrNoPlaylistOpen) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusAccepted, toPlaylistResponse(p))
}

// handlePlay handles POST /api/channels/{index}/play?generation=
func (h *ChannelHTTPHandler) handlePlay(w http.ResponseWriter, r *http.Request) {
	generation, index, ok := parseSelection(w, r)
	if !ok {
		return
	}

	if _, err := h.channels.Play(r.Context(), generation, index); err != nil {
		writeSelectError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleWatch handles GET /watch/{index}?generation=
func (h *ChannelHTTPHandler) handleWatch(w http.ResponseWriter, r *http.Request) {
	generation, index, ok := parseSelection(w, r)
	if !ok {
		return
	}

	ch, err := h.channels.Resolve(generation, index)
	if err != nil {
		writeSelectError(w, err)
		return
	}

	// http.Redirect would resolve a relative location against this server.
	if u, err := url.Parse(ch.StreamURL); err != nil || !u.IsAbs() {
		writeError(w, http.StatusUnprocessableEntity, "stream url is not absolute")
		return
	}

	http.Redirect(w, r, ch.StreamURL, http.StatusFound)
}

// handleExport handles GET /playlist.m3u?q=
func (h *ChannelHTTPHandler) handleExport(w http.ResponseWriter, r *http.Request) {
	view := h.channels.View(r.URL.Query().Get("q"))

	enc := m3u.NewEncoder()
	for _, e := range view.Entries {
		enc.AddChannel(e.Channel)
	}

	w.Header().Set("Content-Type", "audio/x-mpegurl")
	w.WriteHeader(http.StatusOK)
	_ = enc.Encode(w)
}

// parseSelection reads the entry index and the optional list generation it
// was taken from. Without a generation the installed list is used.
func parseSelection(w http.ResponseWriter, r *http.Request) (uint64, int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid channel index")
		return 0, 0, false
	}

	generation := lineup.Latest
	if raw := r.URL.Query().Get("generation"); raw != "" {
		generation, err = strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid generation")
			return 0, 0, false
		}
	}
	return generation, index, true
}

func writeSelectError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lineup.ErrEntryNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, lineup.ErrHeaderNotSelectable), errors.Is(err, lineup.ErrStaleGeneration):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusBadGateway, err.Error())
	}
}
