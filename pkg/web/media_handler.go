package web

import (
	"context"
	"errors"
	"io"
	"net/http"

	"axviral/pkg/auth"
	"axviral/pkg/blobref"
	"axviral/pkg/catalog"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MediaService defines the catalog operations the views need
type MediaService interface {
	Upload(ctx context.Context, in catalog.Upload) (*catalog.Record, error)
	List(ctx context.Context) ([]*catalog.Record, error)
	Get(ctx context.Context, id string) (*catalog.Record, error)
	ViewFile(ctx context.Context, id string, fn func(io.ReadSeeker) error) error
	Delete(ctx context.Context, id string) error
}

// multipart parts above this size spill to temp files
const multipartMemory = 32 << 20

// MediaHandler serves the catalog, detail and admin views
type MediaHandler struct {
	BaseHandler
	media MediaService
	blobs *blobref.Registry
	gate  *auth.Gate
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(media MediaService, blobs *blobref.Registry, gate *auth.Gate, logger *zap.Logger) (*MediaHandler, error) {
	p, err := loadPages()
	if err != nil {
		return nil, err
	}
	return &MediaHandler{
		BaseHandler: BaseHandler{Logger: logger, pages: p},
		media:       media,
		blobs:       blobs,
		gate:        gate,
	}, nil
}

// RegisterRoutes registers the page routes. limiter guards the admin
// writes only; page and blob routes are never limited. nil disables it.
func (h *MediaHandler) RegisterRoutes(r chi.Router, limiter func(http.Handler) http.Handler) {
	if limiter == nil {
		limiter = func(next http.Handler) http.Handler { return next }
	}

	r.Get("/health", h.Health)

	r.Group(func(r chi.Router) {
		r.Use(auth.SessionMiddleware(h.gate))

		r.Get("/", h.Catalog)
		r.Get("/watch/{id}", h.Watch)

		r.Get("/admin", h.Admin)
		r.With(limiter).Post("/admin/login", h.Login)
		r.Post("/admin/logout", h.Logout)
		r.With(limiter).Post("/admin/media", h.UploadMedia)
		r.With(limiter).Post("/admin/media/{id}/delete", h.DeleteMedia)

		r.Get("/blob/{token}", h.ServeBlob)
		r.Post("/blob/{token}/release", h.ReleaseBlob)
	})
}

// Health handles GET /health
func (h *MediaHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Catalog handles GET /
func (h *MediaHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	items, err := h.media.List(r.Context())
	if err != nil {
		h.Logger.Error("failed to fetch media", zap.Error(err))
		h.RespondPage(w, http.StatusInternalServerError, "catalog", catalogPage{Alert: "Failed to fetch media"})
		return
	}

	v := &views{blobs: h.blobs}
	page := catalogPage{Cards: make([]cardView, 0, len(items))}
	for _, rec := range items {
		page.Cards = append(page.Cards, v.card(rec))
	}
	page.BlobTokens = v.tokens
	h.RespondPage(w, http.StatusOK, "catalog", page)
}

// Watch handles GET /watch/{id}
func (h *MediaHandler) Watch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := h.media.Get(r.Context(), id)
	if errors.Is(err, catalog.ErrNotFound) {
		h.RespondPage(w, http.StatusNotFound, "notfound", notFoundPage{})
		return
	}
	if err != nil {
		h.Logger.Error("failed to fetch media", zap.Error(err), zap.String("id", id))
		http.Error(w, "failed to fetch media", http.StatusInternalServerError)
		return
	}

	v := &views{blobs: h.blobs}
	h.RespondPage(w, http.StatusOK, "watch", v.watch(rec))
}

// Admin handles GET /admin
func (h *MediaHandler) Admin(w http.ResponseWriter, r *http.Request) {
	if !auth.IsAdmin(r.Context()) {
		h.RespondPage(w, http.StatusOK, "login", loginPage{})
		return
	}

	page := adminPage{}
	switch {
	case r.URL.Query().Get("ok") == "1":
		page.Alert, page.AlertOK = "Upload successful!", true
	case r.URL.Query().Get("deleted") == "1":
		page.Alert, page.AlertOK = "Media deleted.", true
	}
	h.renderAdmin(w, r, http.StatusOK, page)
}

func (h *MediaHandler) renderAdmin(w http.ResponseWriter, r *http.Request, status int, page adminPage) {
	items, err := h.media.List(r.Context())
	if err != nil {
		h.Logger.Error("failed to fetch media", zap.Error(err))
		if page.Alert == "" {
			page.Alert = "Failed to fetch media"
		}
		status = http.StatusInternalServerError
	}
	page.Items = items
	h.RespondPage(w, status, "admin", page)
}

// Login handles POST /admin/login
func (h *MediaHandler) Login(w http.ResponseWriter, r *http.Request) {
	token, err := h.gate.Login(r.PostFormValue("password"))
	if err != nil {
		h.Logger.Info("admin login rejected", zap.String("ip", r.RemoteAddr))
		h.RespondPage(w, http.StatusUnauthorized, "login", loginPage{Error: "Invalid Password"})
		return
	}

	auth.SetSession(w, token, h.gate.TTL())
	h.Logger.Info("admin login")
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// Logout handles POST /admin/logout
func (h *MediaHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// UploadMedia handles POST /admin/media
func (h *MediaHandler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	if !auth.IsAdmin(r.Context()) {
		h.RespondPage(w, http.StatusUnauthorized, "login", loginPage{})
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.renderAdmin(w, r, http.StatusRequestEntityTooLarge, adminPage{Alert: "File is too large."})
			return
		}
		h.Logger.Error("failed to parse multipart form", zap.Error(err))
		h.renderAdmin(w, r, http.StatusBadRequest, adminPage{Alert: "Failed to upload media."})
		return
	}

	form := formValues{
		Title:      r.FormValue("title"),
		UploadType: r.FormValue("uploadType"),
		MediaType:  r.FormValue("mediaType"),
		RemoteURL:  r.FormValue("remoteUrl"),
	}
	if form.UploadType == "" {
		form.UploadType = string(catalog.SourceTypeFile)
	}

	in := catalog.Upload{
		Title:      form.Title,
		SourceType: catalog.SourceType(form.UploadType),
		Type:       catalog.MediaType(form.MediaType),
		RemoteURL:  form.RemoteURL,
	}

	var err error
	if in.SourceType == catalog.SourceTypeFile {
		if in.File, err = formFile(r, "file"); err != nil {
			h.Logger.Error("failed to read uploaded file", zap.Error(err))
			h.renderAdmin(w, r, http.StatusBadRequest, adminPage{Alert: "Failed to upload media.", Form: form})
			return
		}
	}
	if in.Thumbnail, err = formFile(r, "thumbnail"); err != nil {
		h.Logger.Error("failed to read thumbnail", zap.Error(err))
		h.renderAdmin(w, r, http.StatusBadRequest, adminPage{Alert: "Failed to upload media.", Form: form})
		return
	}

	rec, err := h.media.Upload(r.Context(), in)
	if err != nil {
		if catalog.IsValidation(err) {
			h.renderAdmin(w, r, http.StatusBadRequest, adminPage{Alert: err.Error(), Form: form})
			return
		}
		h.Logger.Error("failed to upload media", zap.Error(err))
		h.renderAdmin(w, r, http.StatusInternalServerError, adminPage{Alert: "Failed to upload media.", Form: form})
		return
	}

	h.Logger.Info("media uploaded", zap.String("id", rec.ID), zap.String("title", rec.Title))
	http.Redirect(w, r, "/admin?ok=1", http.StatusSeeOther)
}

// formFile reads an optional multipart file. A missing part yields nil.
func formFile(r *http.Request, field string) (*catalog.UploadFile, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return &catalog.UploadFile{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// DeleteMedia handles POST /admin/media/{id}/delete
func (h *MediaHandler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	if !auth.IsAdmin(r.Context()) {
		h.RespondPage(w, http.StatusUnauthorized, "login", loginPage{})
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.media.Delete(r.Context(), id); err != nil {
		h.Logger.Error("failed to delete media", zap.Error(err), zap.String("id", id))
		h.renderAdmin(w, r, http.StatusInternalServerError, adminPage{Alert: "Failed to delete media."})
		return
	}
	if n := h.blobs.ReleaseRecord(id); n > 0 {
		h.Logger.Debug("released blob handles of deleted media", zap.String("id", id), zap.Int("count", n))
	}
	http.Redirect(w, r, "/admin?deleted=1", http.StatusSeeOther)
}

// ServeBlob handles GET /blob/{token}
func (h *MediaHandler) ServeBlob(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	id, ok := h.blobs.Lookup(token)
	if !ok {
		http.NotFound(w, r)
		return
	}

	rec, err := h.media.Get(r.Context(), id)
	if err != nil || rec.File == nil {
		if err != nil && !errors.Is(err, catalog.ErrNotFound) {
			h.Logger.Error("failed to fetch media", zap.Error(err), zap.String("id", id))
		}
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", rec.File.ContentType)
	w.Header().Set("Cache-Control", "private, no-store")
	err = h.media.ViewFile(r.Context(), id, func(rs io.ReadSeeker) error {
		http.ServeContent(w, r, rec.File.Name, rec.Created(), rs)
		return nil
	})
	if errors.Is(err, catalog.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.Logger.Error("failed to read media file", zap.Error(err), zap.String("id", id))
		http.Error(w, "failed to read media file", http.StatusInternalServerError)
	}
}

// ReleaseBlob handles POST /blob/{token}/release
func (h *MediaHandler) ReleaseBlob(w http.ResponseWriter, r *http.Request) {
	h.blobs.Release(chi.URLParam(r, "token"))
	w.WriteHeader(http.StatusNoContent)
}
