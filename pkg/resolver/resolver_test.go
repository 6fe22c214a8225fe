package resolver

import (
	"testing"

	"axviral/pkg/catalog"
	"github.com/stretchr/testify/assert"
)

func TestEmbedURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"youtube watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "https://www.youtube.com/embed/dQw4w9WgXcQ"},
		{"youtube short link", "https://youtu.be/XYZ", "https://www.youtube.com/embed/XYZ"},
		{"youtube shorts", "https://www.youtube.com/shorts/dQw4w9WgXcQ", "https://www.youtube.com/embed/dQw4w9WgXcQ"},
		{"vimeo", "https://vimeo.com/12345", "https://player.vimeo.com/video/12345"},
		{"drive", "https://drive.google.com/file/d/1AbC-d_E/view?usp=sharing", "https://drive.google.com/file/d/1AbC-d_E/preview"},
		{"drive without id", "https://drive.google.com/drive/folders", "https://drive.google.com/drive/folders"},
		{"plain file", "https://cdn.example.com/v.mp4", "https://cdn.example.com/v.mp4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EmbedURL(tt.in))
		})
	}
}

func TestClassify(t *testing.T) {
	assert.Equal(t, ProviderYouTube, Classify("https://youtu.be/XYZ"))
	assert.Equal(t, ProviderYouTube, Classify("https://www.youtube.com/watch?v=a"))
	assert.Equal(t, ProviderVimeo, Classify("https://vimeo.com/1"))
	assert.Equal(t, ProviderDrive, Classify("https://drive.google.com/file/d/x/view"))
	assert.Equal(t, ProviderNone, Classify("https://cdn.example.com/v.mp4"))

	assert.True(t, IsEmbed("https://vimeo.com/1"))
	assert.False(t, IsEmbed("https://cdn.example.com/v.mp4"))
}

func TestResolve(t *testing.T) {
	t.Run("file video uses blob url", func(t *testing.T) {
		rec := &catalog.Record{Type: catalog.MediaTypeVideo, SourceType: catalog.SourceTypeFile, File: &catalog.File{}}
		assert.True(t, NeedsBlob(rec))
		assert.Equal(t, Resolution{URL: "/blob/t", Mode: ModeVideo}, Resolve(rec, "/blob/t"))
	})

	t.Run("file image uses blob url", func(t *testing.T) {
		rec := &catalog.Record{Type: catalog.MediaTypeImage, SourceType: catalog.SourceTypeFile, File: &catalog.File{}}
		assert.Equal(t, Resolution{URL: "/blob/t", Mode: ModeImage}, Resolve(rec, "/blob/t"))
	})

	t.Run("known host embeds", func(t *testing.T) {
		rec := &catalog.Record{Type: catalog.MediaTypeVideo, SourceType: catalog.SourceTypeURL, RemoteURL: "https://vimeo.com/12345"}
		res := Resolve(rec, "")
		assert.False(t, NeedsBlob(rec))
		assert.True(t, res.IsEmbed())
		assert.Equal(t, ProviderVimeo, res.Provider)
		assert.Equal(t, "https://player.vimeo.com/video/12345", res.URL)
	})

	t.Run("plain url video plays directly", func(t *testing.T) {
		rec := &catalog.Record{Type: catalog.MediaTypeVideo, SourceType: catalog.SourceTypeURL, RemoteURL: "https://cdn.example.com/v.mp4"}
		res := Resolve(rec, "")
		assert.False(t, res.IsEmbed())
		assert.Equal(t, ModeVideo, res.Mode)
		assert.Equal(t, "https://cdn.example.com/v.mp4", res.URL)
	})

	t.Run("url image is never embedded", func(t *testing.T) {
		rec := &catalog.Record{Type: catalog.MediaTypeImage, SourceType: catalog.SourceTypeURL, RemoteURL: "https://youtu.be/XYZ"}
		assert.Equal(t, Resolution{URL: "https://youtu.be/XYZ", Mode: ModeImage}, Resolve(rec, ""))
	})
}
