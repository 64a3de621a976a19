package persistence

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jacksonlee411/unit-roster/internal/infra/docstore/core"
	"github.com/jacksonlee411/unit-roster/modules/roster/domain/types"
	"github.com/jacksonlee411/unit-roster/pkg/httperr"
)

const DatasetKey = "current_data.json"

var (
	ErrDatasetCorrupt = errors.New("roster: stored dataset is corrupt")
	// ErrDatasetNotFound is a client error: download before any upload.
	ErrDatasetNotFound = httperr.NewBadRequest("dataset_not_found")
)

// RecordDocStore persists the whole dataset as one document.
type RecordDocStore struct {
	store core.Store
	key   string
}

func NewRecordDocStore(store core.Store) *RecordDocStore {
	return &RecordDocStore{store: store, key: DatasetKey}
}

// LoadRecords returns an empty dataset when none was stored yet, and also when
// the stored document has neither layout.
func (s *RecordDocStore) LoadRecords(ctx context.Context) ([]types.Record, error) {
	b, err := core.ReadAll(ctx, s.store, s.key)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return []types.Record{}, nil
		}
		return nil, fmt.Errorf("roster: read dataset: %w", err)
	}
	records, err := types.DecodeDataset(b)
	switch {
	case err == nil:
		return records, nil
	case errors.Is(err, types.ErrDatasetShape):
		return []types.Record{}, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrDatasetCorrupt, err)
	}
}

func (s *RecordDocStore) SaveRecords(ctx context.Context, records []types.Record) error {
	b, err := types.EncodeDataset(records)
	if err != nil {
		return err
	}
	if _, err := s.store.Put(ctx, s.key, bytes.NewReader(b), core.PutOptions{ContentType: "application/json"}); err != nil {
		return fmt.Errorf("roster: write dataset: %w", err)
	}
	return nil
}

// OpenDataset streams the stored document byte for byte.
func (s *RecordDocStore) OpenDataset(ctx context.Context) (core.Info, io.ReadCloser, error) {
	info, rc, err := s.store.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.Info{}, nil, ErrDatasetNotFound
		}
		return core.Info{}, nil, err
	}
	return info, rc, nil
}
