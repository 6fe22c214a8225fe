package web

import (
	"errors"
	"net/http"

	"axviral/pkg/catalog"
	"axviral/pkg/resolver"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type fileResponse struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

type mediaResponse struct {
	ID         string               `json:"id"`
	Title      string               `json:"title"`
	Type       catalog.MediaType    `json:"type"`
	SourceType catalog.SourceType   `json:"sourceType"`
	RemoteURL  string               `json:"remoteUrl,omitempty"`
	File       *fileResponse        `json:"file,omitempty"`
	HasThumb   bool                 `json:"hasThumbnail"`
	CreatedAt  int64                `json:"createdAt"`
	Views      int64                `json:"views"`
	Resolution *resolver.Resolution `json:"resolution,omitempty"`
}

// toMediaResponse resolves url-backed records only; file bytes are
// reachable through blob handles issued by the pages
func toMediaResponse(rec *catalog.Record) mediaResponse {
	resp := mediaResponse{
		ID:         rec.ID,
		Title:      rec.Title,
		Type:       rec.Type,
		SourceType: rec.SourceType,
		RemoteURL:  rec.RemoteURL,
		HasThumb:   rec.Thumbnail != "",
		CreatedAt:  rec.CreatedAt,
		Views:      rec.Views,
	}
	if rec.File != nil {
		resp.File = &fileResponse{
			Name:        rec.File.Name,
			ContentType: rec.File.ContentType,
			Size:        rec.File.Size,
		}
	}
	if !resolver.NeedsBlob(rec) {
		res := resolver.Resolve(rec, "")
		resp.Resolution = &res
	}
	return resp
}

// RegisterAPIRoutes registers the read-only JSON routes
func (h *MediaHandler) RegisterAPIRoutes(r chi.Router) {
	r.Get("/media", h.ListMedia)
	r.Get("/media/{id}", h.GetMedia)
}

// ListMedia handles GET /api/media
func (h *MediaHandler) ListMedia(w http.ResponseWriter, r *http.Request) {
	items, err := h.media.List(r.Context())
	if err != nil {
		h.Logger.Error("failed to fetch media", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to fetch media")
		return
	}
	resp := make([]mediaResponse, 0, len(items))
	for _, rec := range items {
		resp = append(resp, toMediaResponse(rec))
	}
	h.RespondJSON(w, http.StatusOK, resp)
}

// GetMedia handles GET /api/media/{id}
func (h *MediaHandler) GetMedia(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := h.media.Get(r.Context(), id)
	if errors.Is(err, catalog.ErrNotFound) {
		h.RespondError(w, http.StatusNotFound, "media not found")
		return
	}
	if err != nil {
		h.Logger.Error("failed to fetch media", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to fetch media")
		return
	}
	h.RespondJSON(w, http.StatusOK, toMediaResponse(rec))
}
