package server

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/jacksonlee411/unit-roster/internal/config"
	"github.com/jacksonlee411/unit-roster/internal/routing"
	"github.com/jacksonlee411/unit-roster/pkg/authz"
)

// RoleHeader carries the caller's role. It is trusted as set by the proxy in
// front of the service.
const RoleHeader = "X-Roster-Role"

func loadAuthorizer(cfg config.AuthzConfig) (*authz.Authorizer, error) {
	mode, err := authz.ParseMode(cfg.Mode, cfg.AllowDisabled)
	if err != nil {
		return nil, err
	}
	return authz.NewAuthorizer(cfg.ModelPath, cfg.PolicyPath, mode)
}

type authorizer interface {
	Authorize(subject string, domain string, object string, action string) (allowed bool, enforced bool, err error)
}

func withAuthz(classifier *routing.Classifier, a authorizer, defaultRole string, logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		rc := classifier.Classify(path)
		if rc == routing.RouteClassOps || rc == routing.RouteClassStatic {
			next.ServeHTTP(w, r)
			return
		}

		object, action, shouldCheck := authzRequirementForRoute(r.Method, path)
		if !shouldCheck {
			next.ServeHTTP(w, r)
			return
		}

		role := strings.TrimSpace(r.Header.Get(RoleHeader))
		if role == "" {
			role = defaultRole
		}
		subject := authz.SubjectFromRole(role)

		allowed, enforced, err := a.Authorize(subject, authz.DomainGlobal, object, action)
		if err != nil {
			logger.Error("authz error", zap.Error(err), zap.String("path", path))
			routing.WriteError(w, r, rc, http.StatusInternalServerError, "authz_error", "authz error")
			return
		}
		if !allowed {
			fields := []zap.Field{
				zap.String("subject", subject),
				zap.String("object", object),
				zap.String("action", action),
				zap.String("request_id", RequestIDFromContext(r.Context())),
			}
			if enforced {
				logger.Info("authz denied", fields...)
				routing.WriteError(w, r, rc, http.StatusForbidden, "forbidden", "forbidden")
				return
			}
			logger.Warn("authz shadow deny", fields...)
		}

		next.ServeHTTP(w, r)
	})
}

func authzRequirementForRoute(method string, path string) (object string, action string, ok bool) {
	switch path {
	case "/", "/search", "/export.xlsx":
		if method == http.MethodGet || method == http.MethodHead {
			return authz.ObjectRosterRecords, authz.ActionRead, true
		}
		return "", "", false
	case "/update", "/bulk_update", "/delete":
		if method == http.MethodPost {
			return authz.ObjectRosterRecords, authz.ActionWrite, true
		}
		return "", "", false
	case "/download":
		if method == http.MethodGet || method == http.MethodHead {
			return authz.ObjectRosterDataset, authz.ActionRead, true
		}
		return "", "", false
	case "/upload":
		if method == http.MethodPost {
			return authz.ObjectRosterDataset, authz.ActionWrite, true
		}
		return "", "", false
	default:
		return "", "", false
	}
}
