package ports

import (
	"context"
	"io"

	"github.com/jacksonlee411/unit-roster/internal/infra/docstore/core"
	"github.com/jacksonlee411/unit-roster/modules/roster/domain/types"
)

// MappingSource never fails: an unreadable mapping degrades to an empty one so
// the listing page stays renderable.
type MappingSource interface {
	LoadMapping(ctx context.Context) types.UnitMapping
}

// ScopeStore reads degrade to "" (unscoped) on any error.
type ScopeStore interface {
	LoadScope(ctx context.Context) string
	SaveScope(ctx context.Context, scope string) error
}

type RecordStore interface {
	LoadRecords(ctx context.Context) ([]types.Record, error)
	SaveRecords(ctx context.Context, records []types.Record) error
	OpenDataset(ctx context.Context) (core.Info, io.ReadCloser, error)
}
