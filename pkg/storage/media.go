package storage

import (
	"bytes"
	"encoding/gob"

	"axviral/pkg/catalog"
)

// DbMedia defines the storage form for media records.
// File bytes live in their own bucket and are not part of it.
type DbMedia struct {
	ID              string
	Title           string
	Type            string
	SourceType      string
	RemoteURL       string
	Thumbnail       string
	CreatedAt       int64
	Views           int64
	HasFile         bool
	FileName        string
	FileContentType string
	FileSize        int64
}

func toDbMedia(rec *catalog.Record) *DbMedia {
	m := &DbMedia{
		ID:         rec.ID,
		Title:      rec.Title,
		Type:       string(rec.Type),
		SourceType: string(rec.SourceType),
		RemoteURL:  rec.RemoteURL,
		Thumbnail:  rec.Thumbnail,
		CreatedAt:  rec.CreatedAt,
		Views:      rec.Views,
	}
	if rec.File != nil {
		m.HasFile = true
		m.FileName = rec.File.Name
		m.FileContentType = rec.File.ContentType
		m.FileSize = rec.File.Size
	}
	return m
}

func (m *DbMedia) toRecord() *catalog.Record {
	rec := &catalog.Record{
		ID:         m.ID,
		Title:      m.Title,
		Type:       catalog.MediaType(m.Type),
		SourceType: catalog.SourceType(m.SourceType),
		RemoteURL:  m.RemoteURL,
		Thumbnail:  m.Thumbnail,
		CreatedAt:  m.CreatedAt,
		Views:      m.Views,
	}
	if m.HasFile {
		rec.File = &catalog.File{
			Name:        m.FileName,
			ContentType: m.FileContentType,
			Size:        m.FileSize,
		}
	}
	return rec
}

func (m *DbMedia) marshalMedia() ([]byte, error) {
	var b bytes.Buffer
	enc := gob.NewEncoder(&b)
	err := enc.Encode(m)
	return b.Bytes(), err
}

func (m *DbMedia) unmarshalMedia(d []byte) error {
	b := bytes.NewBuffer(d)
	dec := gob.NewDecoder(b)
	err := dec.Decode(m)
	return err
}
