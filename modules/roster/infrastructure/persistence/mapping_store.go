package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/jacksonlee411/unit-roster/modules/roster/domain/types"
)

// MappingFileSource reads the static unit mapping from a JSON file on every
// call. Any failure yields an empty mapping.
type MappingFileSource struct {
	path   string
	logger *zap.Logger
}

func NewMappingFileSource(path string, logger *zap.Logger) *MappingFileSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MappingFileSource{path: path, logger: logger}
}

func (s *MappingFileSource) LoadMapping(_ context.Context) types.UnitMapping {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("unit mapping unreadable", zap.String("path", s.path), zap.Error(err))
		}
		return types.UnitMapping{}
	}
	var m types.UnitMapping
	if err := json.Unmarshal(b, &m); err != nil {
		s.logger.Warn("unit mapping malformed", zap.String("path", s.path), zap.Error(err))
		return types.UnitMapping{}
	}
	return m
}
