package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"resumatch-gateway/internal/handlers"
	"resumatch-gateway/internal/metrics"
	"resumatch-gateway/internal/middleware"
)

func SetupRouter(r *chi.Mux, baseLogger *zap.Logger, analyzeHandler *handlers.AnalyzeHandler) {

	r.Use(metrics.Middleware)

	// base middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)

	r.Use(middleware.LoggingContext(baseLogger))
	r.Use(middleware.Recoverer())
	// The timeout must outlive the upstream model budget (60s), a
	// cache miss spends most of its time there.
	r.Use(middleware.Timeout(90 * time.Second))
	r.Use(middleware.MaxBodySize(12 << 20)) // resume upload + form overhead

	// routes
	r.Route("/check", func(r chi.Router) {
		r.Post("/analyze", analyzeHandler.Analyze)
	})

	// health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/metrics", metrics.Handler())
}
