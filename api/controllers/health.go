package controllers

import (
	"context"
	"net/http"

	"github.com/warebound/fulfillment-backend/api/responses"
	"github.com/warebound/fulfillment-backend/pkg/config"
	pkgerrors "github.com/warebound/fulfillment-backend/pkg/errors"
	"github.com/warebound/fulfillment-backend/pkg/logger"
)

const envHeader = "X-Warebound-Env"

// Pinger is the health check surface every dependency exposes.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every wired dependency. Nil pingers are skipped so
// deployments without an optional dependency still report ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		statuses := map[string]string{}
		failed := false
		for name, dep := range deps {
			if dep == nil {
				statuses[name] = "skipped"
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				statuses[name] = "down"
				failed = true
				if logg != nil {
					logg.Error(r.Context(), name+" ping failed", err)
				}
				continue
			}
			statuses[name] = "up"
		}

		if failed {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").
					WithDetails(statuses))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "dependencies": statuses})
	}
}
