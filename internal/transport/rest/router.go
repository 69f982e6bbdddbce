package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/TraceApi/brasil-utils/internal/config"
	"github.com/TraceApi/brasil-utils/internal/transport/rest/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter mounts the API under /v1 plus /health and /metrics.
// CEP resolution hits a third-party service, so those routes are rate
// limited per client IP.
func NewRouter(cfg *config.Config, validation *ValidationHandler, address *AddressHandler, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		if cfg.AuthRequired {
			r.Use(middleware.AuthMiddleware(cfg.JWTSecret, log))
		}

		validation.RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			if cfg.RateLimit > 0 {
				r.Use(httprate.LimitByIP(cfg.RateLimit, time.Minute))
			}
			address.RegisterRoutes(r)
		})
	})

	return r
}
