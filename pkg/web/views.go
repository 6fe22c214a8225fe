package web

import (
	"html/template"

	"axviral/pkg/blobref"
	"axviral/pkg/catalog"
	"axviral/pkg/resolver"
)

type cardView struct {
	ID           string
	Title        string
	Badge        string
	IsVideo      bool
	ThumbnailURL template.URL
	PreviewURL   string
	Created      string
	Views        int64
}

type catalogPage struct {
	Cards      []cardView
	BlobTokens []string
	Alert      string
}

type watchPage struct {
	Title      string
	Resolution resolver.Resolution
	Poster     template.URL
	Created    string
	Views      int64
	BlobTokens []string
}

type loginPage struct {
	BlobTokens []string
	Error      string
}

type formValues struct {
	Title      string
	UploadType string
	MediaType  string
	RemoteURL  string
}

type adminPage struct {
	Items      []*catalog.Record
	BlobTokens []string
	Alert      string
	AlertOK    bool
	Form       formValues
}

type notFoundPage struct {
	BlobTokens []string
}

func blobURL(token string) string {
	return "/blob/" + token
}

// views acquires the blob handles a page needs and remembers their tokens
// so the page can release them when it is hidden
type views struct {
	blobs  *blobref.Registry
	tokens []string
}

func (v *views) acquire(recordID string) string {
	h := v.blobs.Acquire(recordID)
	v.tokens = append(v.tokens, h.Token)
	return blobURL(h.Token)
}

func (v *views) card(rec *catalog.Record) cardView {
	c := cardView{
		ID:      rec.ID,
		Title:   rec.Title,
		Badge:   "Photo",
		IsVideo: rec.IsVideo(),
		Created: formatDate(rec.CreatedAt),
		Views:   rec.Views,
	}
	if c.IsVideo {
		c.Badge = "Video"
	}

	if rec.Thumbnail != "" {
		c.ThumbnailURL = trustedImageURL(rec.Thumbnail)
	} else if rec.Type == catalog.MediaTypeImage {
		if resolver.NeedsBlob(rec) {
			c.ThumbnailURL = trustedImageURL(v.acquire(rec.ID))
		} else {
			c.ThumbnailURL = trustedImageURL(rec.RemoteURL)
		}
	}

	if rec.IsVideo() {
		if resolver.NeedsBlob(rec) {
			c.PreviewURL = v.acquire(rec.ID)
		} else if !resolver.IsEmbed(rec.RemoteURL) {
			c.PreviewURL = rec.RemoteURL
		}
	}
	return c
}

func (v *views) watch(rec *catalog.Record) watchPage {
	var url string
	if resolver.NeedsBlob(rec) {
		url = v.acquire(rec.ID)
	}
	return watchPage{
		Title:      rec.Title,
		Resolution: resolver.Resolve(rec, url),
		Poster:     trustedImageURL(rec.Thumbnail),
		Created:    formatDate(rec.CreatedAt),
		Views:      rec.Views,
		BlobTokens: v.tokens,
	}
}
