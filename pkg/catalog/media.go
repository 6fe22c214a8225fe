package catalog

import (
	"fmt"
	"time"
)

// MediaType selects how a record is rendered
type MediaType string

const (
	MediaTypeVideo MediaType = "video"
	MediaTypeImage MediaType = "image"
)

// SourceType tells where the bytes of a record come from
type SourceType string

const (
	SourceTypeFile SourceType = "file"
	SourceTypeURL  SourceType = "url"
)

// File describes the uploaded bytes of a file-backed record.
// Data is only populated on Add; listings return the descriptor alone.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// Record is a single catalogued media entry
type Record struct {
	ID         string
	Title      string
	Type       MediaType
	SourceType SourceType
	File       *File
	RemoteURL  string
	Thumbnail  string
	CreatedAt  int64
	Views      int64
}

// Created returns CreatedAt as a time
func (r *Record) Created() time.Time {
	return time.UnixMilli(r.CreatedAt)
}

// IsVideo reports whether the record renders as a video
func (r *Record) IsVideo() bool {
	return r.Type == MediaTypeVideo
}

// Validate checks the shape invariants of a record: exactly one of
// File and RemoteURL is set, matching SourceType, and CreatedAt is not
// before the epoch (the stores index it unsigned).
func (r *Record) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidRecord)
	}
	if r.CreatedAt < 0 {
		return fmt.Errorf("%w: negative createdAt", ErrInvalidRecord)
	}
	switch r.Type {
	case MediaTypeVideo, MediaTypeImage:
	default:
		return fmt.Errorf("%w: unknown media type %q", ErrInvalidRecord, r.Type)
	}
	switch r.SourceType {
	case SourceTypeFile:
		if r.File == nil || r.RemoteURL != "" {
			return fmt.Errorf("%w: file source needs a file and no remote url", ErrInvalidRecord)
		}
	case SourceTypeURL:
		if r.RemoteURL == "" || r.File != nil {
			return fmt.Errorf("%w: url source needs a remote url and no file", ErrInvalidRecord)
		}
	default:
		return fmt.Errorf("%w: unknown source type %q", ErrInvalidRecord, r.SourceType)
	}
	return nil
}

// WithoutData returns a shallow copy whose file descriptor carries no bytes
func (r *Record) WithoutData() *Record {
	c := *r
	if r.File != nil {
		f := *r.File
		f.Data = nil
		c.File = &f
	}
	return &c
}
