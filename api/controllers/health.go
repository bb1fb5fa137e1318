package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/wooftrace/wooftrace-backend/api/responses"
	"github.com/wooftrace/wooftrace-backend/pkg/config"
	pkgerrors "github.com/wooftrace/wooftrace-backend/pkg/errors"
	"github.com/wooftrace/wooftrace-backend/pkg/logger"
)

const readyPingTimeout = 2 * time.Second

// Pinger is anything that can confirm its backing connection is alive.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-WoofTrace-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only while the store answers a ping.
func HealthReady(cfg *config.Config, store Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-WoofTrace-Env", cfg.App.Env)

		if store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readyPingTimeout)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store unreachable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}
