// Package resolver turns a stored media record into something a page can
// render: a scoped blob URL for uploaded files, the remote link itself, or an
// embeddable player URL for the video hosts we know about.
package resolver

import (
	"regexp"
	"strings"

	"axviral/pkg/catalog"
	"github.com/kkdai/youtube/v2"
)

// Mode is how a resolved URL is rendered
type Mode string

const (
	ModeImage Mode = "image"
	ModeVideo Mode = "video"
	ModeEmbed Mode = "embed"
)

// Provider is a known third-party video host
type Provider string

const (
	ProviderNone    Provider = ""
	ProviderYouTube Provider = "youtube"
	ProviderVimeo   Provider = "vimeo"
	ProviderDrive   Provider = "drive"
)

// Resolution is the display form of a record
type Resolution struct {
	URL      string   `json:"url"`
	Mode     Mode     `json:"mode"`
	Provider Provider `json:"provider,omitempty"`
}

// IsEmbed reports whether the resolution renders inside an iframe
func (r Resolution) IsEmbed() bool {
	return r.Mode == ModeEmbed
}

var driveIDPattern = regexp.MustCompile(`/d/([a-zA-Z0-9_-]+)`)

// Classify matches a remote URL against the known hosts by substring
func Classify(url string) Provider {
	switch {
	case strings.Contains(url, "youtube.com"), strings.Contains(url, "youtu.be"):
		return ProviderYouTube
	case strings.Contains(url, "vimeo.com"):
		return ProviderVimeo
	case strings.Contains(url, "drive.google.com"):
		return ProviderDrive
	default:
		return ProviderNone
	}
}

// IsEmbed reports whether url belongs to a known embeddable host
func IsEmbed(url string) bool {
	return Classify(url) != ProviderNone
}

// EmbedURL rewrites a known host URL into its player form. URLs that
// cannot be rewritten are returned unchanged.
func EmbedURL(url string) string {
	switch {
	case strings.Contains(url, "youtube.com/watch?v="):
		return strings.Replace(url, "watch?v=", "embed/", 1)
	case strings.Contains(url, "youtu.be/"):
		return strings.Replace(url, "youtu.be/", "www.youtube.com/embed/", 1)
	case strings.Contains(url, "vimeo.com/"):
		id := url[strings.LastIndex(url, "/")+1:]
		return "https://player.vimeo.com/video/" + id
	case strings.Contains(url, "drive.google.com"):
		if m := driveIDPattern.FindStringSubmatch(url); m != nil {
			return "https://drive.google.com/file/d/" + m[1] + "/preview"
		}
		return url
	case strings.Contains(url, "youtube.com"):
		// shorts, share links and other watch shapes
		if id, err := youtube.ExtractVideoID(url); err == nil {
			return "https://www.youtube.com/embed/" + id
		}
		return url
	}
	return url
}

// Resolve produces the display form of rec. blobURL is the scoped URL of
// the record's stored bytes and is only used for file-backed records.
func Resolve(rec *catalog.Record, blobURL string) Resolution {
	if rec.SourceType == catalog.SourceTypeFile {
		if rec.Type == catalog.MediaTypeImage {
			return Resolution{URL: blobURL, Mode: ModeImage}
		}
		return Resolution{URL: blobURL, Mode: ModeVideo}
	}

	if rec.Type == catalog.MediaTypeImage {
		return Resolution{URL: rec.RemoteURL, Mode: ModeImage}
	}
	provider := Classify(rec.RemoteURL)
	if provider == ProviderNone {
		return Resolution{URL: rec.RemoteURL, Mode: ModeVideo}
	}
	return Resolution{URL: EmbedURL(rec.RemoteURL), Mode: ModeEmbed, Provider: provider}
}

// NeedsBlob reports whether rendering rec requires a scoped blob reference
func NeedsBlob(rec *catalog.Record) bool {
	return rec.SourceType == catalog.SourceTypeFile
}
