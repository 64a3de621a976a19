// Package core defines the document storage abstraction shared by the roster
// stores and its backend drivers.
package core

import (
	"context"
	"errors"
	"io"
	"time"
)

// Driver identifies a concrete storage backend.
type Driver string

const (
	DriverFilesystem Driver = "fs"       // local directory (default)
	DriverMemory     Driver = "memory"   // tests and dry runs
	DriverS3         Driver = "s3"       // S3 / MinIO compatible bucket
	DriverPostgres   Driver = "postgres" // roster_documents table via pgx
	DriverSQLite     Driver = "sqlite"   // roster_documents table via modernc
)

type PutOptions struct {
	ContentType string
}

// Info describes a stored document.
type Info struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size_bytes"`
	ContentType  string    `json:"content_type,omitempty"`
	ETag         string    `json:"etag,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// Store holds whole JSON documents addressed by key. Put replaces the document
// as a unit: readers observe either the previous or the new content.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	Head(ctx context.Context, key string) (Info, error)
	Delete(ctx context.Context, key string) (bool, error)
	Driver() Driver
}

var ErrNotFound = errors.New("docstore: document not found")

// ReadAll fetches a whole document.
func ReadAll(ctx context.Context, s Store, key string) ([]byte, error) {
	_, rc, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}
