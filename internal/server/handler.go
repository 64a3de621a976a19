package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/jacksonlee411/unit-roster/internal/metrics"
	"github.com/jacksonlee411/unit-roster/internal/routing"
	"github.com/jacksonlee411/unit-roster/modules/roster/presentation/controllers"
	"github.com/jacksonlee411/unit-roster/modules/roster/services"
)

type HandlerOptions struct {
	AllowlistPath string
	Facade        services.RosterFacade
	Authorizer    authorizer
	DefaultRole   string
	Metrics       *metrics.Recorder
	Logger        *zap.Logger
}

func NewHandlerWithOptions(opts HandlerOptions) (http.Handler, error) {
	if opts.Facade == nil {
		return nil, errors.New("server: roster facade required")
	}
	if opts.Authorizer == nil {
		return nil, errors.New("server: authorizer required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	a, err := routing.LoadAllowlist(opts.AllowlistPath)
	if err != nil {
		return nil, err
	}
	classifier, err := routing.NewClassifier(a, "server")
	if err != nil {
		return nil, err
	}

	router := routing.NewRouter(classifier, logger)
	roster := controllers.RosterController{Facade: opts.Facade, Logger: logger}

	router.Handle(routing.RouteClassOps, http.MethodGet, "/health", http.HandlerFunc(handleHealth))
	router.Handle(routing.RouteClassOps, http.MethodGet, "/healthz", http.HandlerFunc(handleHealth))
	if opts.Metrics != nil {
		router.Handle(routing.RouteClassOps, http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	router.Handle(routing.RouteClassUI, http.MethodGet, "/", http.HandlerFunc(roster.HandleIndex))
	router.Handle(routing.RouteClassUI, http.MethodPost, "/upload", http.HandlerFunc(roster.HandleUpload))
	router.Handle(routing.RouteClassUI, http.MethodPost, "/update", http.HandlerFunc(roster.HandleUpdate))
	router.Handle(routing.RouteClassUI, http.MethodPost, "/bulk_update", http.HandlerFunc(roster.HandleBulkUpdate))
	router.Handle(routing.RouteClassUI, http.MethodPost, "/delete", http.HandlerFunc(roster.HandleDelete))
	router.Handle(routing.RouteClassUI, http.MethodGet, "/download", http.HandlerFunc(roster.HandleDownload))
	router.Handle(routing.RouteClassUI, http.MethodGet, "/export.xlsx", http.HandlerFunc(roster.HandleExportXLSX))
	router.Handle(routing.RouteClassUI, http.MethodGet, "/lang/vi", roster.HandleLang(controllers.LangVI))
	router.Handle(routing.RouteClassUI, http.MethodGet, "/lang/en", roster.HandleLang(controllers.LangEN))
	router.Handle(routing.RouteClassInternalAPI, http.MethodGet, "/search", http.HandlerFunc(roster.HandleSearch))

	if unlisted := router.Unlisted(); len(unlisted) > 0 {
		return nil, fmt.Errorf("server: routes missing from allowlist: %s", strings.Join(unlisted, ", "))
	}

	var observer httpObserver
	if opts.Metrics != nil {
		observer = opts.Metrics
	}
	var h http.Handler = router
	h = withAuthz(classifier, opts.Authorizer, opts.DefaultRole, logger, h)
	h = withAccessLog(logger, observer, h)
	h = withRequestID(h)
	return h, nil
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
