package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"github.com/jacksonlee411/unit-roster/internal/infra/docstore/core"
)

const ScopeKey = "unit_scope.json"

type scopeDocument struct {
	UnitScope string `json:"unit_scope"`
}

// ScopeDocStore persists the current unit scope as {"unit_scope": "..."}.
type ScopeDocStore struct {
	store  core.Store
	key    string
	logger *zap.Logger
}

func NewScopeDocStore(store core.Store, logger *zap.Logger) *ScopeDocStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScopeDocStore{store: store, key: ScopeKey, logger: logger}
}

// LoadScope falls back to the unscoped "" on any failure.
func (s *ScopeDocStore) LoadScope(ctx context.Context) string {
	b, err := core.ReadAll(ctx, s.store, s.key)
	if err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			s.logger.Warn("unit scope unreadable", zap.String("key", s.key), zap.Error(err))
		}
		return ""
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		s.logger.Warn("unit scope malformed", zap.String("key", s.key), zap.Error(err))
		return ""
	}
	var scope string
	if v, ok := raw["unit_scope"]; ok {
		if err := json.Unmarshal(v, &scope); err != nil {
			return ""
		}
	}
	return scope
}

func (s *ScopeDocStore) SaveScope(ctx context.Context, scope string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(scopeDocument{UnitScope: scope}); err != nil {
		return err
	}
	_, err := s.store.Put(ctx, s.key, &buf, core.PutOptions{ContentType: "application/json"})
	return err
}
