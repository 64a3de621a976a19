package postgres

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jacksonlee411/unit-roster/internal/infra/docstore/core"
)

type pgBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store keeps documents as rows of roster_documents, one row per key.
type Store struct {
	pool pgBeginner
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS roster_documents (
  key          text PRIMARY KEY,
  content      bytea NOT NULL,
  content_type text NOT NULL DEFAULT '',
  updated_at   timestamptz NOT NULL DEFAULT now()
);`

func New(pool pgBeginner) *Store {
	return &Store{pool: pool}
}

// Open connects to dsn and makes sure the documents table exists. The returned
// func closes the pool.
func Open(ctx context.Context, dsn string) (*Store, func(), error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: connect: %w", err)
	}
	s := New(pool)
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return s, pool.Close, nil
}

func (s *Store) Driver() core.Driver { return core.DriverPostgres }

func (s *Store) EnsureSchema(ctx context.Context) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	if _, err := tx.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("postgres: create roster_documents: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *Store) Put(ctx context.Context, key string, r io.Reader, opts core.PutOptions) (core.Info, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return core.Info{}, err
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return core.Info{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	var updatedAt time.Time
	if err := tx.QueryRow(ctx, `
INSERT INTO roster_documents (key, content, content_type, updated_at)
VALUES ($1::text, $2::bytea, $3::text, now())
ON CONFLICT (key) DO UPDATE
SET content = EXCLUDED.content,
    content_type = EXCLUDED.content_type,
    updated_at = EXCLUDED.updated_at
RETURNING updated_at
`, key, b, opts.ContentType).Scan(&updatedAt); err != nil {
		return core.Info{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return core.Info{}, err
	}

	sum := sha256.Sum256(b)
	return core.Info{
		Key:          key,
		Size:         int64(len(b)),
		ContentType:  opts.ContentType,
		ETag:         hex.EncodeToString(sum[:]),
		LastModified: updatedAt.UTC(),
	}, nil
}

func (s *Store) Get(ctx context.Context, key string) (core.Info, io.ReadCloser, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return core.Info{}, nil, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	var content []byte
	info := core.Info{Key: key}
	if err := tx.QueryRow(ctx, `
SELECT content, content_type, updated_at
FROM roster_documents
WHERE key = $1::text
`, key).Scan(&content, &info.ContentType, &info.LastModified); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return core.Info{}, nil, core.ErrNotFound
		}
		return core.Info{}, nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return core.Info{}, nil, err
	}
	info.Size = int64(len(content))
	info.LastModified = info.LastModified.UTC()
	return info, io.NopCloser(bytes.NewReader(content)), nil
}

func (s *Store) Head(ctx context.Context, key string) (core.Info, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return core.Info{}, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	info := core.Info{Key: key}
	if err := tx.QueryRow(ctx, `
SELECT octet_length(content)::bigint, content_type, updated_at
FROM roster_documents
WHERE key = $1::text
`, key).Scan(&info.Size, &info.ContentType, &info.LastModified); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return core.Info{}, core.ErrNotFound
		}
		return core.Info{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return core.Info{}, err
	}
	info.LastModified = info.LastModified.UTC()
	return info, nil
}

func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	tag, err := tx.Exec(ctx, `DELETE FROM roster_documents WHERE key = $1::text`, key)
	if err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
