package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"axviral/pkg/catalog"
	"github.com/gabriel-vasile/mimetype"
)

// SourceFileStorage is a directory of media files to import
type SourceFileStorage struct {
	sourcePath string
}

// NewSourceFileStorage create new file storage object
func NewSourceFileStorage(sourcePath string) (*SourceFileStorage, error) {
	if _, err := os.Stat(sourcePath); err != nil {
		return nil, err
	}

	s := SourceFileStorage{
		sourcePath: sourcePath,
	}

	return &s, nil
}

func (s *SourceFileStorage) GetSourceFiles(walkFunc func(path string, info fs.DirEntry, err error) error) error {
	return filepath.WalkDir(s.sourcePath, walkFunc)
}

// GetSourceFile returns original file by path
func (s *SourceFileStorage) GetSourceFile(fpath string) (*os.File, error) {
	return os.Open(fpath)
}

// DestinationFileStorage writes stored media bytes out to a directory
type DestinationFileStorage struct {
	destinationPath string
}

// NewDestinationFileStorage create new export target
func NewDestinationFileStorage(destPath string) (*DestinationFileStorage, error) {
	if _, err := os.Stat(destPath); err != nil {
		return nil, err
	}

	s := DestinationFileStorage{
		destinationPath: destPath,
	}
	return &s, nil
}

// getTargetPath returns <dest>/<year>/<month> of the record's creation date
func (d *DestinationFileStorage) getTargetPath(media *catalog.Record) (string, error) {
	created := media.Created()
	datepath := filepath.Join(d.destinationPath, created.Format("2006"), created.Format("01"))
	if _, err := os.Stat(datepath); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(datepath, os.ModePerm); err != nil {
			return "", err
		}
	}
	return datepath, nil
}

// ExportToDirectory writes the bytes of a file-backed record and returns the
// written path
func (d *DestinationFileStorage) ExportToDirectory(media *catalog.Record, data []byte) (string, error) {
	if media.File == nil {
		return "", fmt.Errorf("%s is not a file-backed record", media.ID)
	}
	log.Printf("exporting %s", media.ID)
	targetPath, err := d.getTargetPath(media)
	if err != nil {
		return "", err
	}

	ext := filepath.Ext(media.File.Name)
	if ext == "" {
		if mtype := mimetype.Lookup(media.File.ContentType); mtype != nil {
			ext = mtype.Extension()
		}
		if ext == "" {
			ext = mimetype.Detect(data).Extension()
		}
	}
	basefilename := fmt.Sprintf("%s_%s_%s%s",
		string(media.Type),
		media.Created().Format("20060102"),
		shortID(media.ID),
		strings.ToLower(ext),
	)
	destFilename := filepath.Join(targetPath, basefilename)
	if err := os.WriteFile(destFilename, data, 0644); err != nil {
		return "", err
	}
	return destFilename, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
