package storage

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"axviral/pkg/catalog"
	_ "modernc.org/sqlite"
)

// SqliteMediaStorage is the SQLite backed media store
type SqliteMediaStorage struct {
	db *sql.DB
}

// NewMediaSqliteStorage opens (or creates) the SQLite file at dbPath and
// runs migrations
func NewMediaSqliteStorage(dbPath string) (*SqliteMediaStorage, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", dbPath, err)
	}
	// single writer
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", dbPath, err)
	}

	s := &SqliteMediaStorage{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SqliteMediaStorage) migrate() error {
	log.Printf("[DB] Running migrations...")

	migrations := []string{
		`CREATE TABLE IF NOT EXISTS media (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			type TEXT NOT NULL,
			source_type TEXT NOT NULL,
			remote_url TEXT,
			thumbnail TEXT,
			created_at INTEGER NOT NULL,
			views INTEGER NOT NULL DEFAULT 0,
			file_name TEXT,
			file_content_type TEXT,
			file_size INTEGER,
			file_data BLOB
		)`,
		`CREATE INDEX IF NOT EXISTS idx_media_created_at ON media(created_at)`,
	}

	for i, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}

	log.Printf("[DB] Migrations completed successfully")
	return nil
}

// Close closes the database
func (s *SqliteMediaStorage) Close() error {
	return s.db.Close()
}

func (s *SqliteMediaStorage) Add(ctx context.Context, rec *catalog.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM media WHERE id = ?`, rec.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check media id: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("%w: %s", catalog.ErrDuplicateID, rec.ID)
	}

	var (
		fileName, fileType sql.NullString
		fileSize           sql.NullInt64
		fileData           []byte
	)
	if rec.File != nil {
		fileName = sql.NullString{String: rec.File.Name, Valid: true}
		fileType = sql.NullString{String: rec.File.ContentType, Valid: true}
		fileSize = sql.NullInt64{Int64: rec.File.Size, Valid: true}
		fileData = rec.File.Data
		if fileData == nil {
			fileData = []byte{}
		}
	}

	query := `
		INSERT INTO media
		(id, title, type, source_type, remote_url, thumbnail, created_at, views,
		 file_name, file_content_type, file_size, file_data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		rec.ID,
		rec.Title,
		string(rec.Type),
		string(rec.SourceType),
		nullString(rec.RemoteURL),
		nullString(rec.Thumbnail),
		rec.CreatedAt,
		rec.Views,
		fileName,
		fileType,
		fileSize,
		fileData,
	)
	if err != nil {
		return fmt.Errorf("failed to insert media: %w", err)
	}
	return tx.Commit()
}

const selectMedia = `
	SELECT id, title, type, source_type, remote_url, thumbnail, created_at, views,
	       file_name, file_content_type, file_size
	FROM media
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMedia(row rowScanner) (*catalog.Record, error) {
	var (
		rec                       catalog.Record
		mediaType, sourceType     string
		remoteURL, thumbnail      sql.NullString
		fileName, fileContentType sql.NullString
		fileSize                  sql.NullInt64
	)
	err := row.Scan(
		&rec.ID,
		&rec.Title,
		&mediaType,
		&sourceType,
		&remoteURL,
		&thumbnail,
		&rec.CreatedAt,
		&rec.Views,
		&fileName,
		&fileContentType,
		&fileSize,
	)
	if err != nil {
		return nil, err
	}
	rec.Type = catalog.MediaType(mediaType)
	rec.SourceType = catalog.SourceType(sourceType)
	rec.RemoteURL = remoteURL.String
	rec.Thumbnail = thumbnail.String
	if fileContentType.Valid {
		rec.File = &catalog.File{
			Name:        fileName.String,
			ContentType: fileContentType.String,
			Size:        fileSize.Int64,
		}
	}
	return &rec, nil
}

// GetAll returns all records ordered by createdAt ascending
func (s *SqliteMediaStorage) GetAll(ctx context.Context) ([]*catalog.Record, error) {
	rows, err := s.db.QueryContext(ctx, selectMedia+` ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query media: %w", err)
	}
	defer rows.Close()

	items := []*catalog.Record{}
	for rows.Next() {
		rec, err := scanMedia(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan media: %w", err)
		}
		items = append(items, rec)
	}
	return items, rows.Err()
}

func (s *SqliteMediaStorage) GetByID(ctx context.Context, id string) (*catalog.Record, error) {
	rec, err := scanMedia(s.db.QueryRowContext(ctx, selectMedia+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get media: %w", err)
	}
	return rec, nil
}

func (s *SqliteMediaStorage) ReadFile(ctx context.Context, id string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT file_data FROM media WHERE id = ? AND file_data IS NOT NULL`, id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, catalog.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read media file: %w", err)
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

// ViewFile hands fn a reader over the stored bytes
func (s *SqliteMediaStorage) ViewFile(ctx context.Context, id string, fn func(io.ReadSeeker) error) error {
	data, err := s.ReadFile(ctx, id)
	if err != nil {
		return err
	}
	return fn(bytes.NewReader(data))
}

func (s *SqliteMediaStorage) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM media WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete media: %w", err)
	}
	return nil
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
