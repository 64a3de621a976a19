package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jacksonlee411/unit-roster/internal/infra/docstore/core"
	"github.com/jacksonlee411/unit-roster/modules/roster/domain/ports"
	"github.com/jacksonlee411/unit-roster/modules/roster/domain/types"
	"github.com/jacksonlee411/unit-roster/pkg/httperr"
	"github.com/jacksonlee411/unit-roster/pkg/unitscope"
)

const DefaultUploadMaxBytes int64 = 32 << 20

const (
	OpList       = "list"
	OpSearch     = "search"
	OpUpdate     = "update"
	OpBulkUpdate = "bulk_update"
	OpDelete     = "delete"
	OpUpload     = "upload"
	OpDownload   = "download"
)

var (
	ErrUnitScopeRequired = httperr.NewBadRequest("unit_scope_required")
	ErrDataFileRequired  = httperr.NewBadRequest("data_file_required")
	ErrDataFileType      = httperr.NewBadRequest("data_file_type")
	ErrDataFileTooLarge  = httperr.NewBadRequest("data_file_too_large")
	ErrInvalidJSON       = httperr.NewBadRequest("invalid_json")
	ErrInvalidStructure  = httperr.NewBadRequest("invalid_structure")
	ErrRecordRejected    = httperr.NewBadRequest("record_rejected")
)

const (
	ReasonUnitUnknown = "unit_unknown"
	ReasonIDNotFound  = "id_not_found"
)

// MetricsRecorder receives one observation per service operation.
type MetricsRecorder interface {
	Observe(ctx context.Context, op string, success bool, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) Observe(context.Context, string, bool, time.Duration) {}

// RosterFacade is what the HTTP layer and the CLI need from the service.
type RosterFacade interface {
	List(ctx context.Context, filterUnit string) (ListView, error)
	Search(ctx context.Context, query string, unit string) ([]types.Projection, error)
	Update(ctx context.Context, id string, unit string) (UpdateResult, error)
	BulkUpdate(ctx context.Context, ids []string, unit string) (int, error)
	Delete(ctx context.Context, id string) (int, error)
	Upload(ctx context.Context, req UploadRequest) (int, error)
	Download(ctx context.Context) (core.Info, io.ReadCloser, error)
}

var _ RosterFacade = (*RosterService)(nil)

type RosterServiceOptions struct {
	Mapping        ports.MappingSource
	Scope          ports.ScopeStore
	Records        ports.RecordStore
	Rule           *AdmissionRule
	Metrics        MetricsRecorder
	Logger         *zap.Logger
	UploadMaxBytes int64
}

// RosterService composes the stores and the enrichment pipeline. Mapping, scope
// and dataset are reloaded on every call; mutations are serialized.
type RosterService struct {
	mapping  ports.MappingSource
	scope    ports.ScopeStore
	records  ports.RecordStore
	rule     *AdmissionRule
	metrics  MetricsRecorder
	logger   *zap.Logger
	maxBytes int64

	mu  sync.Mutex
	now func() time.Time
}

func NewRosterService(opts RosterServiceOptions) *RosterService {
	s := &RosterService{
		mapping:  opts.Mapping,
		scope:    opts.Scope,
		records:  opts.Records,
		rule:     opts.Rule,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		maxBytes: opts.UploadMaxBytes,
		now:      time.Now,
	}
	if s.metrics == nil {
		s.metrics = nopRecorder{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.maxBytes <= 0 {
		s.maxBytes = DefaultUploadMaxBytes
	}
	return s
}

type ListView struct {
	Records    []types.EnrichedRecord
	Mapping    types.UnitMapping
	Total      int
	Stats      []types.UnitStat
	FilterUnit string
	UnitScope  string
}

type UpdateResult struct {
	Applied bool
	Reason  string
}

type UploadFile struct {
	Name   string
	Reader io.Reader
}

type UploadRequest struct {
	Scope string
	File  *UploadFile
}

func (s *RosterService) observe(ctx context.Context, op string, start time.Time, err error) {
	s.metrics.Observe(ctx, op, err == nil, s.now().Sub(start))
}

// scopedMapping returns the mapping restricted to the persisted scope.
func (s *RosterService) scopedMapping(ctx context.Context) (types.UnitMapping, string) {
	scope := s.scope.LoadScope(ctx)
	return unitscope.Filter(s.mapping.LoadMapping(ctx), scope), scope
}

func (s *RosterService) List(ctx context.Context, filterUnit string) (view ListView, err error) {
	start := s.now()
	defer func() { s.observe(ctx, OpList, start, err) }()

	mapping, scope := s.scopedMapping(ctx)
	raw, err := s.records.LoadRecords(ctx)
	if err != nil {
		return ListView{}, err
	}
	all := EnrichAndFilter(raw, mapping)

	filterUnit = strings.TrimSpace(filterUnit)
	shown := all
	if filterUnit != "" {
		shown = make([]types.EnrichedRecord, 0, len(all))
		for _, e := range all {
			if e.Unit == filterUnit {
				shown = append(shown, e)
			}
		}
	}
	shown = SortEnriched(shown, mapping)

	return ListView{
		Records:    shown,
		Mapping:    mapping,
		Total:      len(shown),
		Stats:      UnitStats(all, mapping),
		FilterUnit: filterUnit,
		UnitScope:  scope,
	}, nil
}

func (s *RosterService) Search(ctx context.Context, query string, unit string) (out []types.Projection, err error) {
	start := s.now()
	defer func() { s.observe(ctx, OpSearch, start, err) }()

	query = strings.ToLower(strings.TrimSpace(query))
	unit = strings.TrimSpace(unit)

	mapping, _ := s.scopedMapping(ctx)
	raw, err := s.records.LoadRecords(ctx)
	if err != nil {
		return nil, err
	}
	out = make([]types.Projection, 0)
	for _, e := range EnrichAndFilter(raw, mapping) {
		if unit != "" && e.Unit != unit {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(e.Name), query) {
			continue
		}
		out = append(out, project(e))
	}
	return SortByMapping(out, mapping, func(p types.Projection) string { return p.Unit }), nil
}

// unitAllowed reports whether unit may be assigned: empty clears the unit,
// anything else must be visible in the scoped mapping.
func (s *RosterService) unitAllowed(ctx context.Context, unit string) bool {
	if unit == "" {
		return true
	}
	mapping, _ := s.scopedMapping(ctx)
	return mapping.Has(unit)
}

func (s *RosterService) Update(ctx context.Context, id string, unit string) (res UpdateResult, err error) {
	start := s.now()
	defer func() { s.observe(ctx, OpUpdate, start, err) }()

	id = strings.TrimSpace(id)
	if !s.unitAllowed(ctx, unit) {
		s.logger.Info("update rejected", zap.String("id", id), zap.String("don_vi", unit), zap.String("reason", ReasonUnitUnknown))
		return UpdateResult{Reason: ReasonUnitUnknown}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.records.LoadRecords(ctx)
	if err != nil {
		return UpdateResult{}, err
	}
	for i := range records {
		if CanonicalID(records[i]) != id {
			continue
		}
		records[i].SetString(types.FieldUnit, unit)
		if err := s.records.SaveRecords(ctx, records); err != nil {
			return UpdateResult{}, err
		}
		return UpdateResult{Applied: true}, nil
	}
	return UpdateResult{Reason: ReasonIDNotFound}, nil
}

// BulkUpdate assigns unit to every record whose canonical id is in ids and
// returns how many changed. The dataset is rewritten even when nothing matched.
func (s *RosterService) BulkUpdate(ctx context.Context, ids []string, unit string) (changed int, err error) {
	start := s.now()
	defer func() { s.observe(ctx, OpBulkUpdate, start, err) }()

	if !s.unitAllowed(ctx, unit) {
		s.logger.Info("bulk update rejected", zap.Int("ids", len(ids)), zap.String("don_vi", unit), zap.String("reason", ReasonUnitUnknown))
		return 0, nil
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.records.LoadRecords(ctx)
	if err != nil {
		return 0, err
	}
	for i := range records {
		if _, ok := set[CanonicalID(records[i])]; ok {
			records[i].SetString(types.FieldUnit, unit)
			changed++
		}
	}
	if err := s.records.SaveRecords(ctx, records); err != nil {
		return 0, err
	}
	return changed, nil
}

func (s *RosterService) Delete(ctx context.Context, id string) (removed int, err error) {
	start := s.now()
	defer func() { s.observe(ctx, OpDelete, start, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.records.LoadRecords(ctx)
	if err != nil {
		return 0, err
	}
	kept := records[:0:0]
	for _, r := range records {
		if CanonicalID(r) == id {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	if err := s.records.SaveRecords(ctx, kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// Upload stores the scope first, then validates the file and replaces the
// dataset with its records. It returns the number of records stored.
func (s *RosterService) Upload(ctx context.Context, req UploadRequest) (n int, err error) {
	start := s.now()
	defer func() { s.observe(ctx, OpUpload, start, err) }()

	scope := unitscope.Normalize(req.Scope)
	if scope == "" {
		return 0, ErrUnitScopeRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.scope.SaveScope(ctx, scope); err != nil {
		return 0, fmt.Errorf("roster: save scope: %w", err)
	}
	records, err := s.ParseUpload(req.File)
	if err != nil {
		return 0, err
	}
	if err := s.records.SaveRecords(ctx, records); err != nil {
		return 0, err
	}
	s.logger.Info("dataset replaced", zap.String("unit_scope", scope), zap.Int("records", len(records)))
	return len(records), nil
}

// ParseUpload checks an upload file without storing anything.
func (s *RosterService) ParseUpload(f *UploadFile) ([]types.Record, error) {
	if f == nil || f.Reader == nil || strings.TrimSpace(f.Name) == "" {
		return nil, ErrDataFileRequired
	}
	if !strings.EqualFold(filepath.Ext(f.Name), ".json") {
		return nil, ErrDataFileType
	}
	b, err := io.ReadAll(io.LimitReader(f.Reader, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("roster: read upload: %w", err)
	}
	if int64(len(b)) > s.maxBytes {
		return nil, ErrDataFileTooLarge
	}
	records, err := DecodeUpload(b)
	if err != nil {
		return nil, err
	}
	for i, r := range records {
		ok, err := s.rule.Admit(r)
		if err != nil {
			return nil, httperr.WithDetail(ErrRecordRejected, "record "+strconv.Itoa(i)+": "+err.Error())
		}
		if !ok {
			return nil, httperr.WithDetail(ErrRecordRejected, "record "+strconv.Itoa(i))
		}
	}
	return records, nil
}

// DecodeUpload maps dataset decoding failures onto the upload error codes.
func DecodeUpload(b []byte) ([]types.Record, error) {
	records, err := types.DecodeDataset(b)
	switch {
	case err == nil:
		return records, nil
	case errors.Is(err, types.ErrMalformedJSON):
		return nil, ErrInvalidJSON
	default:
		return nil, ErrInvalidStructure
	}
}

func (s *RosterService) Download(ctx context.Context) (info core.Info, rc io.ReadCloser, err error) {
	start := s.now()
	defer func() { s.observe(ctx, OpDownload, start, err) }()

	return s.records.OpenDataset(ctx)
}
