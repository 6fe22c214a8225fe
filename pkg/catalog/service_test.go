package catalog

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

// mockRepository is an in-memory Repository
type mockRepository struct {
	records map[string]*Record
	order   []string
	addErr  error
}

func newMockRepository() *mockRepository {
	return &mockRepository{records: map[string]*Record{}}
}

func (m *mockRepository) Add(ctx context.Context, rec *Record) error {
	if m.addErr != nil {
		return m.addErr
	}
	if _, ok := m.records[rec.ID]; ok {
		return ErrDuplicateID
	}
	m.records[rec.ID] = rec
	m.order = append(m.order, rec.ID)
	return nil
}

func (m *mockRepository) GetAll(ctx context.Context) ([]*Record, error) {
	items := make([]*Record, 0, len(m.order))
	for _, id := range m.order {
		if rec, ok := m.records[id]; ok {
			items = append(items, rec.WithoutData())
		}
	}
	return items, nil
}

func (m *mockRepository) GetByID(ctx context.Context, id string) (*Record, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.WithoutData(), nil
}

func (m *mockRepository) ReadFile(ctx context.Context, id string) ([]byte, error) {
	rec, ok := m.records[id]
	if !ok || rec.File == nil {
		return nil, ErrNotFound
	}
	return rec.File.Data, nil
}

func (m *mockRepository) ViewFile(ctx context.Context, id string, fn func(io.ReadSeeker) error) error {
	data, err := m.ReadFile(ctx, id)
	if err != nil {
		return err
	}
	return fn(bytes.NewReader(data))
}

func (m *mockRepository) Delete(ctx context.Context, id string) error {
	delete(m.records, id)
	return nil
}

// newTestService returns a service with a deterministic clock and ids
func newTestService(repo Repository) *Service {
	s := NewService(repo, zap.NewNop())
	clock := time.UnixMilli(1_700_000_000_000)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	n := 0
	s.newID = func() string {
		n++
		return "id-" + strconv.Itoa(n)
	}
	return s
}

func TestUpload_FileVideo(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	rec, err := svc.Upload(context.Background(), Upload{
		Title:      "  Clip  ",
		SourceType: SourceTypeFile,
		File:       &UploadFile{Name: "clip.mp4", ContentType: "video/mp4", Data: []byte("fake video")},
	})
	require.NoError(t, err)

	assert.Equal(t, "Clip", rec.Title)
	assert.Equal(t, MediaTypeVideo, rec.Type)
	assert.Equal(t, SourceTypeFile, rec.SourceType)
	assert.Equal(t, int64(0), rec.Views)
	assert.Nil(t, rec.File.Data)
	assert.Equal(t, int64(len("fake video")), rec.File.Size)
	assert.Equal(t, "video/mp4", rec.File.ContentType)
	assert.Empty(t, rec.RemoteURL)

	data, err := repo.ReadFile(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("fake video"), data)
}

func TestUpload_CreatedAtNotInFuture(t *testing.T) {
	svc := NewService(newMockRepository(), zap.NewNop())

	rec, err := svc.Upload(context.Background(), Upload{
		Title:      "Photo",
		SourceType: SourceTypeFile,
		File:       &UploadFile{Name: "p.png", Data: pngBytes},
	})
	require.NoError(t, err)

	assert.LessOrEqual(t, rec.CreatedAt, time.Now().UnixMilli())
	assert.NotEmpty(t, rec.ID)
}

func TestUpload_SniffsUndeclaredType(t *testing.T) {
	svc := newTestService(newMockRepository())

	rec, err := svc.Upload(context.Background(), Upload{
		Title:      "Photo",
		SourceType: SourceTypeFile,
		File:       &UploadFile{Name: "photo", ContentType: "application/octet-stream", Data: pngBytes},
	})
	require.NoError(t, err)

	assert.Equal(t, MediaTypeImage, rec.Type)
	assert.Equal(t, "image/png", rec.File.ContentType)
}

func TestUpload_RejectsNonMedia(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	_, err := svc.Upload(context.Background(), Upload{
		Title:      "Doc",
		SourceType: SourceTypeFile,
		File:       &UploadFile{Name: "doc.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")},
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, "Only video and image files are allowed.", err.Error())

	items, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestUpload_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		in      Upload
		message string
	}{
		{
			name:    "missing title",
			in:      Upload{Title: "   ", SourceType: SourceTypeURL, RemoteURL: "https://example.com/a.mp4"},
			message: "Please enter a title",
		},
		{
			name:    "missing file",
			in:      Upload{Title: "a", SourceType: SourceTypeFile},
			message: "Please select a file",
		},
		{
			name:    "empty file",
			in:      Upload{Title: "a", SourceType: SourceTypeFile, File: &UploadFile{Name: "a.mp4"}},
			message: "Please select a file",
		},
		{
			name:    "missing url",
			in:      Upload{Title: "a", SourceType: SourceTypeURL, RemoteURL: " "},
			message: "Please enter a URL",
		},
		{
			name:    "unknown media type",
			in:      Upload{Title: "a", SourceType: SourceTypeURL, RemoteURL: "https://example.com", Type: "audio"},
			message: "Unknown media type",
		},
		{
			name:    "unknown upload type",
			in:      Upload{Title: "a", SourceType: "ftp"},
			message: "Unknown upload type",
		},
		{
			name: "thumbnail not an image",
			in: Upload{
				Title:      "a",
				SourceType: SourceTypeURL,
				RemoteURL:  "https://example.com/a.mp4",
				Thumbnail:  &UploadFile{Name: "t.txt", ContentType: "text/plain", Data: []byte("hi")},
			},
			message: "Thumbnail must be an image.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockRepository()
			svc := newTestService(repo)

			_, err := svc.Upload(context.Background(), tt.in)
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			assert.Equal(t, tt.message, err.Error())
			assert.Empty(t, repo.records)
		})
	}
}

func TestUpload_URLDefaultsToVideo(t *testing.T) {
	svc := newTestService(newMockRepository())

	rec, err := svc.Upload(context.Background(), Upload{
		Title:      "Talk",
		SourceType: SourceTypeURL,
		RemoteURL:  "https://youtu.be/XYZ",
	})
	require.NoError(t, err)

	assert.Equal(t, MediaTypeVideo, rec.Type)
	assert.Equal(t, "https://youtu.be/XYZ", rec.RemoteURL)
	assert.Nil(t, rec.File)
}

func TestUpload_ThumbnailDataURL(t *testing.T) {
	svc := newTestService(newMockRepository())

	rec, err := svc.Upload(context.Background(), Upload{
		Title:      "Talk",
		SourceType: SourceTypeURL,
		Type:       MediaTypeVideo,
		RemoteURL:  "https://example.com/talk.mp4",
		Thumbnail:  &UploadFile{Name: "t.png", ContentType: "image/png", Data: pngBytes},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(rec.Thumbnail, "data:image/png;base64,"))
}

func TestUpload_StoreFailure(t *testing.T) {
	repo := newMockRepository()
	repo.addErr = errors.New("disk full")
	svc := newTestService(repo)

	_, err := svc.Upload(context.Background(), Upload{
		Title:      "Talk",
		SourceType: SourceTypeURL,
		RemoteURL:  "https://example.com/talk.mp4",
	})
	require.Error(t, err)
	assert.False(t, IsValidation(err))
	assert.Contains(t, err.Error(), "disk full")
}

func TestList_NewestFirst(t *testing.T) {
	svc := newTestService(newMockRepository())
	ctx := context.Background()

	for _, title := range []string{"first", "second", "third"} {
		_, err := svc.Upload(ctx, Upload{Title: title, SourceType: SourceTypeURL, RemoteURL: "https://example.com/" + title})
		require.NoError(t, err)
	}

	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "third", items[0].Title)
	assert.Equal(t, "second", items[1].Title)
	assert.Equal(t, "first", items[2].Title)
}

func TestGetAndDelete(t *testing.T) {
	svc := newTestService(newMockRepository())
	ctx := context.Background()

	rec, err := svc.Upload(ctx, Upload{Title: "a", SourceType: SourceTypeURL, RemoteURL: "https://example.com/a"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Title, got.Title)

	require.NoError(t, svc.Delete(ctx, rec.ID))
	require.NoError(t, svc.Delete(ctx, rec.ID))

	_, err = svc.Get(ctx, rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

// dirSource is a SourceFileRepository over a directory
type dirSource struct {
	root string
}

func (d dirSource) GetSourceFiles(walkFunc func(path string, info os.DirEntry, err error) error) error {
	return filepath.WalkDir(d.root, walkFunc)
}

func (d dirSource) GetSourceFile(fpath string) (*os.File, error) {
	return os.Open(fpath)
}

func TestImportDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sunset.png"), pngBytes, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("just text"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "beach.png"), pngBytes, 0644))

	repo := newMockRepository()
	svc := newTestService(repo)

	n, err := svc.ImportDirectory(context.Background(), dirSource{root: dir})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	items, err := svc.List(context.Background())
	require.NoError(t, err)
	titles := []string{}
	for _, rec := range items {
		titles = append(titles, rec.Title)
		assert.Equal(t, MediaTypeImage, rec.Type)
	}
	assert.ElementsMatch(t, []string{"sunset", "beach"}, titles)
}

func TestRecordValidate(t *testing.T) {
	ok := &Record{ID: "a", Type: MediaTypeVideo, SourceType: SourceTypeURL, RemoteURL: "https://x"}
	assert.NoError(t, ok.Validate())

	both := &Record{ID: "a", Type: MediaTypeVideo, SourceType: SourceTypeURL, RemoteURL: "https://x", File: &File{}}
	assert.ErrorIs(t, both.Validate(), ErrInvalidRecord)

	noFile := &Record{ID: "a", Type: MediaTypeImage, SourceType: SourceTypeFile}
	assert.ErrorIs(t, noFile.Validate(), ErrInvalidRecord)

	noID := &Record{Type: MediaTypeImage, SourceType: SourceTypeURL, RemoteURL: "https://x"}
	assert.ErrorIs(t, noID.Validate(), ErrInvalidRecord)

	beforeEpoch := &Record{ID: "a", Type: MediaTypeVideo, SourceType: SourceTypeURL, RemoteURL: "https://x", CreatedAt: -1}
	assert.ErrorIs(t, beforeEpoch.Validate(), ErrInvalidRecord)
}
