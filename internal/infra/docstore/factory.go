// Package docstore selects and opens the document storage backend.
package docstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jacksonlee411/unit-roster/internal/infra/docstore/core"
	fsstore "github.com/jacksonlee411/unit-roster/internal/infra/docstore/fs"
	"github.com/jacksonlee411/unit-roster/internal/infra/docstore/memory"
	pgstore "github.com/jacksonlee411/unit-roster/internal/infra/docstore/postgres"
	s3store "github.com/jacksonlee411/unit-roster/internal/infra/docstore/s3"
	sqlitestore "github.com/jacksonlee411/unit-roster/internal/infra/docstore/sqlite"
)

type Config struct {
	Driver      string
	Dir         string
	S3          s3store.Config
	PostgresDSN string
	SQLitePath  string
}

// Open returns the configured store and a cleanup func that is always safe to
// call.
func Open(ctx context.Context, cfg Config) (core.Store, func(), error) {
	noop := func() {}
	switch core.Driver(strings.ToLower(strings.TrimSpace(cfg.Driver))) {
	case "", core.DriverFilesystem:
		s, err := fsstore.New(cfg.Dir)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	case core.DriverMemory:
		return memory.New(), noop, nil
	case core.DriverS3:
		s, err := s3store.New(ctx, cfg.S3)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	case core.DriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, noop, fmt.Errorf("docstore: postgres dsn required")
		}
		s, closeFn, err := pgstore.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, noop, err
		}
		return s, closeFn, nil
	case core.DriverSQLite:
		s, err := sqlitestore.Open(cfg.SQLitePath)
		if err != nil {
			return nil, noop, err
		}
		return s, func() { _ = s.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("docstore: unknown driver %q", cfg.Driver)
	}
}
