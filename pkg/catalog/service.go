package catalog

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Repository is the local store of media records
type Repository interface {
	Add(ctx context.Context, rec *Record) error
	GetAll(ctx context.Context) ([]*Record, error)
	GetByID(ctx context.Context, id string) (*Record, error)
	ReadFile(ctx context.Context, id string) ([]byte, error)
	ViewFile(ctx context.Context, id string, fn func(io.ReadSeeker) error) error
	Delete(ctx context.Context, id string) error
}

// SourceFileRepository walks a directory of media files for bulk import
type SourceFileRepository interface {
	GetSourceFiles(func(path string, info fs.DirEntry, err error) error) error
	GetSourceFile(fpath string) (*os.File, error)
}

// UploadFile is a file submitted through the admin form
type UploadFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Upload is the admin form input for a new record
type Upload struct {
	Title      string
	SourceType SourceType
	Type       MediaType
	RemoteURL  string
	File       *UploadFile
	Thumbnail  *UploadFile
}

// Service validates uploads and reads the catalog
type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewService creates a new catalog service
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Upload validates the form input, builds a record and stores it.
// Validation failures are *ValidationError and nothing is persisted.
func (s *Service) Upload(ctx context.Context, in Upload) (*Record, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalid("Please enter a title")
	}

	rec := &Record{
		ID:         s.newID(),
		Title:      title,
		SourceType: in.SourceType,
		Views:      0,
	}

	switch in.SourceType {
	case SourceTypeFile:
		if in.File == nil || len(in.File.Data) == 0 {
			return nil, invalid("Please select a file")
		}
		contentType := detectContentType(in.File.ContentType, in.File.Data)
		switch {
		case strings.HasPrefix(contentType, "video/"):
			rec.Type = MediaTypeVideo
		case strings.HasPrefix(contentType, "image/"):
			rec.Type = MediaTypeImage
		default:
			return nil, invalid("Only video and image files are allowed.")
		}
		rec.File = &File{
			Name:        in.File.Name,
			ContentType: contentType,
			Size:        int64(len(in.File.Data)),
			Data:        in.File.Data,
		}
	case SourceTypeURL:
		remote := strings.TrimSpace(in.RemoteURL)
		if remote == "" {
			return nil, invalid("Please enter a URL")
		}
		switch in.Type {
		case "":
			rec.Type = MediaTypeVideo
		case MediaTypeVideo, MediaTypeImage:
			rec.Type = in.Type
		default:
			return nil, invalid("Unknown media type")
		}
		rec.RemoteURL = remote
	default:
		return nil, invalid("Unknown upload type")
	}

	if in.Thumbnail != nil && len(in.Thumbnail.Data) > 0 {
		thumb, err := thumbnailDataURL(in.Thumbnail)
		if err != nil {
			return nil, err
		}
		rec.Thumbnail = thumb
	}

	// stamped last so createdAt never precedes validation
	rec.CreatedAt = s.now().UnixMilli()

	if err := s.repo.Add(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to add media: %w", err)
	}
	s.logger.Info("media added",
		zap.String("id", rec.ID),
		zap.String("type", string(rec.Type)),
		zap.String("source", string(rec.SourceType)),
	)
	return rec.WithoutData(), nil
}

// List returns all records, newest first
func (s *Service) List(ctx context.Context) ([]*Record, error) {
	items, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt > items[j].CreatedAt
	})
	return items, nil
}

// Get returns a record by id or ErrNotFound
func (s *Service) Get(ctx context.Context, id string) (*Record, error) {
	return s.repo.GetByID(ctx, id)
}

// ReadFile returns the stored bytes of a file-backed record
func (s *Service) ReadFile(ctx context.Context, id string) ([]byte, error) {
	return s.repo.ReadFile(ctx, id)
}

// ViewFile streams the stored bytes of a file-backed record to fn
func (s *Service) ViewFile(ctx context.Context, id string, fn func(io.ReadSeeker) error) error {
	return s.repo.ViewFile(ctx, id, fn)
}

// Delete removes a record. Deleting an absent id is not an error.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete media: %w", err)
	}
	s.logger.Info("media deleted", zap.String("id", id))
	return nil
}

// ImportDirectory adds every video and image file found under the source
// repository as a file-backed record titled after its file name. Other
// files are skipped. Returns the number of records added.
func (s *Service) ImportDirectory(ctx context.Context, sfr SourceFileRepository) (int, error) {
	added := 0
	err := sfr.GetSourceFiles(func(path string, info fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Warn("cannot access path", zap.String("path", path), zap.Error(err))
			return err
		}
		if info.IsDir() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		fob, err := sfr.GetSourceFile(path)
		if err != nil {
			return err
		}
		data, err := io.ReadAll(fob)
		fob.Close()
		if err != nil {
			return err
		}

		name := filepath.Base(path)
		rec, err := s.Upload(ctx, Upload{
			Title:      strings.TrimSuffix(name, filepath.Ext(name)),
			SourceType: SourceTypeFile,
			File:       &UploadFile{Name: name, Data: data},
		})
		if IsValidation(err) {
			s.logger.Info("skipping file", zap.String("path", path), zap.Error(err))
			return nil
		}
		if err != nil {
			return err
		}
		s.logger.Info("imported file", zap.String("path", path), zap.String("id", rec.ID))
		added++
		return nil
	})
	return added, err
}

// detectContentType trusts a specific declared type and sniffs otherwise
func detectContentType(declared string, data []byte) string {
	ct := strings.TrimSpace(declared)
	if i := strings.Index(ct, ";"); i != -1 {
		ct = strings.TrimSpace(ct[:i])
	}
	ct = strings.ToLower(ct)
	if ct == "" || ct == "application/octet-stream" {
		mtype := mimetype.Detect(data)
		ct = mtype.String()
		if i := strings.Index(ct, ";"); i != -1 {
			ct = ct[:i]
		}
	}
	return ct
}

func thumbnailDataURL(f *UploadFile) (string, error) {
	ct := detectContentType(f.ContentType, f.Data)
	if !strings.HasPrefix(ct, "image/") {
		return "", invalid("Thumbnail must be an image.")
	}
	return "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(f.Data), nil
}
