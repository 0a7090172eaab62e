package driver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/alorle/iptv-viewer/internal/application"
	"github.com/alorle/iptv-viewer/internal/playlist"
)

// PlaylistHTTPHandler handles HTTP requests for saved playlists.
type PlaylistHTTPHandler struct {
	service *application.PlaylistService
}

// NewPlaylistHTTPHandler creates a new HTTP handler for playlists.
func NewPlaylistHTTPHandler(service *application.PlaylistService) *PlaylistHTTPHandler {
	return &PlaylistHTTPHandler{service: service}
}

// playlistRequest represents the JSON body for adding a playlist.
type playlistRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// playlistResponse represents a playlist in JSON format.
type playlistResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	URL       string `json:"url"`
	CreatedAt string `json:"created_at"`
}

// Routes registers the playlist endpoints on r.
func (h *PlaylistHTTPHandler) Routes(r chi.Router) {
	r.Route("/api/playlists", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{id}", h.handleGet)
		r.Delete("/{id}", h.handleDelete)
		r.Post("/{id}/open", h.handleOpen)
	})
}

func toPlaylistResponse(p playlist.Playlist) playlistResponse {
	return playlistResponse{
		ID:        p.ID().String(),
		Name:      p.Name(),
		URL:       p.URL(),
		CreatedAt: p.CreatedAt().Format(time.RFC3339),
	}
}

// handleCreate handles POST /api/playlists
func (h *PlaylistHTTPHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.service.Add(r.Context(), req.Name, req.URL)
	if err != nil {
		writePlaylistError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toPlaylistResponse(p))
}

// handleList handles GET /api/playlists
func (h *PlaylistHTTPHandler) handleList(w http.ResponseWriter, r *http.Request) {
	playlists, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]playlistResponse, 0, len(playlists))
	for _, p := range playlists {
		resp = append(resp, toPlaylistResponse(p))
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleGet handles GET /api/playlists/{id}
func (h *PlaylistHTTPHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		writePlaylistError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPlaylistResponse(p))
}

// handleDelete handles DELETE /api/playlists/{id}
func (h *PlaylistHTTPHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writePlaylistError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleOpen handles POST /api/playlists/{id}/open
func (h *PlaylistHTTPHandler) handleOpen(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	p, err := h.service.Open(r.Context(), id)
	if err != nil {
		writePlaylistError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, toPlaylistResponse(p))
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := playlist.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return uuid.Nil, false
	}
	return id, true
}

func writePlaylistError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, playlist.ErrEmptyName),
		errors.Is(err, playlist.ErrEmptyURL),
		errors.Is(err, playlist.ErrInvalidURL):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, playlist.ErrPlaylistNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
