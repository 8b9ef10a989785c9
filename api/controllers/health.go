package controllers

import (
	"net/http"

	"github.com/omerfdemir/teklifix-backend/api/responses"
	"github.com/omerfdemir/teklifix-backend/pkg/config"
	"github.com/omerfdemir/teklifix-backend/pkg/db"
	pkgerrors "github.com/omerfdemir/teklifix-backend/pkg/errors"
	"github.com/omerfdemir/teklifix-backend/pkg/logger"
	pkgredis "github.com/omerfdemir/teklifix-backend/pkg/redis"
)

// HealthLive reports that the process is up, nothing more.
func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Teklifix-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings both backing stores before declaring readiness.
func HealthReady(cfg *config.Config, database db.Pinger, cache pkgredis.Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Teklifix-Env", cfg.App.Env)

		checks := map[string]string{"database": "ok", "redis": "ok"}
		if database == nil || database.Ping(r.Context()) != nil {
			checks["database"] = "unavailable"
		}
		if cache == nil || cache.Ping(r.Context()) != nil {
			checks["redis"] = "unavailable"
		}

		for _, state := range checks {
			if state != "ok" {
				err := pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(checks)
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
