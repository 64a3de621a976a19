package server

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/jacksonlee411/unit-roster/internal/config"
	"github.com/jacksonlee411/unit-roster/internal/infra/docstore"
	"github.com/jacksonlee411/unit-roster/internal/metrics"
	"github.com/jacksonlee411/unit-roster/modules/roster/infrastructure/persistence"
	"github.com/jacksonlee411/unit-roster/modules/roster/services"
)

// OpenRoster wires the roster service onto the configured document store.
// The returned cleanup releases the store and is always safe to call.
func OpenRoster(ctx context.Context, cfg config.Config, logger *zap.Logger, rec services.MetricsRecorder) (*services.RosterService, func(), error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	rule, err := services.NewAdmissionRule(cfg.UploadRule)
	if err != nil {
		return nil, func() {}, fmt.Errorf("server: upload rule: %w", err)
	}
	store, cleanup, err := docstore.Open(ctx, cfg.DocStore())
	if err != nil {
		return nil, cleanup, fmt.Errorf("server: open %s store: %w", cfg.Storage.Driver, err)
	}
	logger.Info("document store ready", zap.String("driver", string(store.Driver())))

	svc := services.NewRosterService(services.RosterServiceOptions{
		Mapping:        persistence.NewMappingFileSource(cfg.MappingPath, logger),
		Scope:          persistence.NewScopeDocStore(store, logger),
		Records:        persistence.NewRecordDocStore(store),
		Rule:           rule,
		Metrics:        rec,
		Logger:         logger,
		UploadMaxBytes: cfg.UploadMaxBytes,
	})
	return svc, cleanup, nil
}

// NewHandler assembles the full HTTP stack from cfg.
func NewHandler(ctx context.Context, cfg config.Config, logger *zap.Logger) (http.Handler, func(), error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	rec := metrics.New()
	svc, cleanup, err := OpenRoster(ctx, cfg, logger, rec)
	if err != nil {
		return nil, cleanup, err
	}
	a, err := loadAuthorizer(cfg.Authz)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	logger.Info("authz ready", zap.String("mode", string(a.Mode())))

	h, err := NewHandlerWithOptions(HandlerOptions{
		AllowlistPath: cfg.AllowlistPath,
		Facade:        svc,
		Authorizer:    a,
		DefaultRole:   cfg.Authz.DefaultRole,
		Metrics:       rec,
		Logger:        logger,
	})
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return h, cleanup, nil
}
