package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"biogate/internal/enrollment/handler"
	"biogate/internal/platform/metrics"
	"biogate/pkg/platform/httputil"
	"biogate/pkg/platform/middleware/metadata"
	request "biogate/pkg/platform/middleware/request"
	"biogate/pkg/platform/middleware/requesttime"
)

type routerDeps struct {
	logger      *slog.Logger
	gatherer    prometheus.Gatherer
	httpMetrics *metrics.Metrics
	enrollment  *handler.Handler
	// recordCount reports the number of enrolled identities for /health.
	recordCount func() int
}

func newRouter(deps routerDeps) chi.Router {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(deps.logger))
	r.Use(request.Logger(deps.logger))
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(deps.httpMetrics.LatencyMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"status":           "ok",
			"identity_records": deps.recordCount(),
		})
	})
	r.Handle("/metrics", promhttp.HandlerFor(deps.gatherer, promhttp.HandlerOpts{}))

	deps.enrollment.Register(r)
	return r
}
