// Package httptransport assembles the chi router from the per-domain
// handlers and the shared middleware chain.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	accounthandler "innkeeper/internal/account/handler"
	billinghandler "innkeeper/internal/billing/handler"
	"innkeeper/internal/platform/metrics"
	"innkeeper/internal/platform/middleware"
	sessionhandler "innkeeper/internal/session/handler"
)

// Deps are the router's collaborators. Metrics may be nil in tests.
type Deps struct {
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Verifier middleware.TokenVerifier
	Sessions sessionhandler.Service
	Accounts accounthandler.Service
	Billing  billinghandler.Service
}

// NewRouter builds the full route tree. Every business route sits behind
// the auth middleware; health, metrics, and the session routes are open.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.Latency(deps.Metrics))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Session routes sit outside the auth group: login has no token yet,
	// logout validates the token it revokes.
	sessionhandler.New(deps.Sessions, deps.Logger).Register(r)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(deps.Verifier, deps.Logger))
		accounthandler.New(deps.Accounts, deps.Logger).Register(r)
		billinghandler.New(deps.Billing, deps.Logger).Register(r)
	})

	return r
}
