// Package http composes the chi router from the module handlers.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"recircle/internal/collection"
	"recircle/internal/identity"
	"recircle/internal/ledger"
	"recircle/internal/reward"
	"recircle/internal/workflow"
	"recircle/pkg/platform/middleware/auth"
	"recircle/pkg/platform/middleware/metadata"
)

// Handlers are the module handlers the router mounts.
type Handlers struct {
	Identity   *identity.Handler
	Workflow   *workflow.Handler
	Collection *collection.Handler
	Ledger     *ledger.Handler
	Reward     *reward.Handler
}

// New composes the full router: unauthenticated auth and health routes, the
// Prometheus endpoint, and the bearer-token protected API.
func New(h Handlers, signingKey []byte, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(metadata.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	h.Identity.Register(r)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(signingKey))
		h.Workflow.Register(r)
		h.Collection.Register(r)
		h.Ledger.Register(r)
		h.Reward.Register(r)
	})

	logger.Debug("router composed")
	return r
}
