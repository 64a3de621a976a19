package sqlite

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/jacksonlee411/unit-roster/internal/infra/docstore/core"
)

// Store keeps documents in a single SQLite table, one row per key.
type Store struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
	now  func() time.Time
}

func Open(path string) (*Store, error) {
	if path == "" {
		path = "roster.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS roster_documents (
		key TEXT PRIMARY KEY,
		content BLOB NOT NULL,
		content_type TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create roster_documents table: %w", err)
	}
	return &Store{db: db, path: path, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *Store) Driver() core.Driver { return core.DriverSQLite }

func (s *Store) Path() string { return s.path }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Put(ctx context.Context, key string, r io.Reader, opts core.PutOptions) (core.Info, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return core.Info{}, err
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, `INSERT INTO roster_documents (key, content, content_type, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET content = excluded.content, content_type = excluded.content_type, updated_at = excluded.updated_at`,
		key, b, opts.ContentType, now.Format(time.RFC3339Nano)); err != nil {
		return core.Info{}, fmt.Errorf("upsert document: %w", err)
	}
	sum := sha256.Sum256(b)
	return core.Info{
		Key:          key,
		Size:         int64(len(b)),
		ContentType:  opts.ContentType,
		ETag:         hex.EncodeToString(sum[:]),
		LastModified: now,
	}, nil
}

func (s *Store) Get(ctx context.Context, key string) (core.Info, io.ReadCloser, error) {
	var content []byte
	var contentType, updatedAt string
	err := s.db.QueryRowContext(ctx, `SELECT content, content_type, updated_at FROM roster_documents WHERE key = ?`, key).
		Scan(&content, &contentType, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Info{}, nil, core.ErrNotFound
	}
	if err != nil {
		return core.Info{}, nil, fmt.Errorf("select document: %w", err)
	}
	info := core.Info{Key: key, Size: int64(len(content)), ContentType: contentType, LastModified: parseTime(updatedAt)}
	return info, io.NopCloser(bytes.NewReader(content)), nil
}

func (s *Store) Head(ctx context.Context, key string) (core.Info, error) {
	var size int64
	var contentType, updatedAt string
	err := s.db.QueryRowContext(ctx, `SELECT length(content), content_type, updated_at FROM roster_documents WHERE key = ?`, key).
		Scan(&size, &contentType, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Info{}, core.ErrNotFound
	}
	if err != nil {
		return core.Info{}, fmt.Errorf("select document: %w", err)
	}
	return core.Info{Key: key, Size: size, ContentType: contentType, LastModified: parseTime(updatedAt)}, nil
}

func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, `DELETE FROM roster_documents WHERE key = ?`, key)
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
