package blobstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"notesbuzz/internal/apperr"
)

const (
	insertFileQuery = `INSERT INTO files (id, object_key, filename, content_type, size_bytes, category, uploaded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	selectFileQuery = `SELECT id, object_key, filename, content_type, size_bytes, category, uploaded_at
FROM files WHERE id = $1`
	listFilesQuery = `SELECT id, object_key, filename, content_type, size_bytes, category, uploaded_at
FROM files WHERE starts_with(filename, $1) ORDER BY uploaded_at DESC, id`
	renameFileQuery = `UPDATE files SET filename = $2 WHERE id = $1`
	deleteFileQuery = `DELETE FROM files WHERE id = $1 RETURNING object_key`
)

// Store pairs an object bucket with the files metadata table.
type Store struct {
	objects Objects
	db      *sqlx.DB
	logger  *slog.Logger
	now     func() time.Time
}

func NewStore(objects Objects, db *sqlx.DB, logger *slog.Logger) *Store {
	return &Store{
		objects: objects,
		db:      db,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Put writes the bytes and metadata of one file under a fresh id. Types other
// than application/* and image/* fail with apperr.ErrRejectedType before any
// write.
func (s *Store) Put(ctx context.Context, in PutInput) (StoredFile, error) {
	if !AcceptsContentType(in.ContentType) {
		return StoredFile{}, fmt.Errorf("%w: %q", apperr.ErrRejectedType, in.ContentType)
	}
	if strings.TrimSpace(in.Filename) == "" {
		return StoredFile{}, fmt.Errorf("%w: empty filename", apperr.ErrInvalidInput)
	}

	id := uuid.NewString()
	key := objectKeyPrefix + id

	size, err := s.objects.Put(ctx, key, in.Reader, in.Size, in.ContentType)
	if err != nil {
		return StoredFile{}, fmt.Errorf("%w: put object %s: %w", apperr.ErrStorage, key, err)
	}

	f := StoredFile{
		ID:          id,
		ObjectKey:   key,
		Filename:    in.Filename,
		ContentType: in.ContentType,
		SizeBytes:   size,
		Category:    in.Category,
		UploadedAt:  s.now(),
	}

	_, err = s.db.ExecContext(ctx, insertFileQuery,
		f.ID, f.ObjectKey, f.Filename, f.ContentType, f.SizeBytes, f.Category, f.UploadedAt)
	if err != nil {
		// Best effort: an object without metadata is unreachable.
		if rmErr := s.objects.Remove(context.WithoutCancel(ctx), key); rmErr != nil {
			s.logger.Error("remove orphaned object", "key", key, "err", rmErr)
		}
		return StoredFile{}, fmt.Errorf("%w: insert file %s: %w", apperr.ErrStorage, id, err)
	}

	return f, nil
}

// ListByPrefix returns files whose name starts with prefix, newest first.
// The prefix is matched literally and case-sensitively.
func (s *Store) ListByPrefix(ctx context.Context, prefix string) ([]StoredFile, error) {
	files := []StoredFile{}
	if err := s.db.SelectContext(ctx, &files, listFilesQuery, prefix); err != nil {
		return nil, fmt.Errorf("%w: list files: %w", apperr.ErrStorage, err)
	}
	return files, nil
}

// Get returns a file's metadata and a reader over its bytes. The caller
// closes the reader.
func (s *Store) Get(ctx context.Context, id string) (StoredFile, io.ReadCloser, error) {
	f, err := s.lookup(ctx, id)
	if err != nil {
		return StoredFile{}, nil, err
	}

	rc, err := s.objects.Open(ctx, f.ObjectKey)
	if errors.Is(err, apperr.ErrNotFound) {
		s.logger.Warn("metadata without object", "id", f.ID, "key", f.ObjectKey)
		return StoredFile{}, nil, apperr.ErrNotFound
	}
	if err != nil {
		return StoredFile{}, nil, fmt.Errorf("%w: open object %s: %w", apperr.ErrStorage, f.ObjectKey, err)
	}
	return f, rc, nil
}

// Rename changes the display name of a file.
func (s *Store) Rename(ctx context.Context, id, filename string) (StoredFile, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return StoredFile{}, fmt.Errorf("%w: empty filename", apperr.ErrInvalidInput)
	}
	if !validID(id) {
		return StoredFile{}, apperr.ErrNotFound
	}

	res, err := s.db.ExecContext(ctx, renameFileQuery, id, filename)
	if err != nil {
		return StoredFile{}, fmt.Errorf("%w: rename file %s: %w", apperr.ErrStorage, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return StoredFile{}, fmt.Errorf("%w: rename file %s: %w", apperr.ErrStorage, id, err)
	}
	if n == 0 {
		return StoredFile{}, apperr.ErrNotFound
	}

	return s.lookup(ctx, id)
}

// Delete removes a file's metadata and bytes. A second delete of the same id
// fails with apperr.ErrNotFound.
func (s *Store) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return apperr.ErrNotFound
	}

	var key string
	err := s.db.GetContext(ctx, &key, deleteFileQuery, id)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: delete file %s: %w", apperr.ErrStorage, id, err)
	}

	// The metadata row is gone, so the file is already unreachable.
	if err := s.objects.Remove(ctx, key); err != nil {
		s.logger.Warn("remove object", "id", id, "key", key, "err", err)
	}
	return nil
}

// Ping checks both the database and the bucket.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := s.objects.Ping(ctx); err != nil {
		return fmt.Errorf("object store: %w", err)
	}
	return nil
}

func (s *Store) lookup(ctx context.Context, id string) (StoredFile, error) {
	if !validID(id) {
		return StoredFile{}, apperr.ErrNotFound
	}

	var f StoredFile
	err := s.db.GetContext(ctx, &f, selectFileQuery, id)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredFile{}, apperr.ErrNotFound
	}
	if err != nil {
		return StoredFile{}, fmt.Errorf("%w: get file %s: %w", apperr.ErrStorage, id, err)
	}
	return f, nil
}

// validID reports whether id could name a stored file. Anything else is
// simply not found.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
