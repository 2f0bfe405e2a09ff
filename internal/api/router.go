package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/probelab/beliefd/internal/api/handlers"
	mw "github.com/probelab/beliefd/internal/api/middleware"
	"github.com/probelab/beliefd/internal/config"
	"github.com/probelab/beliefd/internal/service"
	"github.com/probelab/beliefd/internal/store"
)

// App holds the router and metric counters for lifecycle management.
type App struct {
	Router       *chi.Mux
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

// NewApp wires the stores, services, and handlers. Each store is a single
// explicitly constructed instance; callers share them through the services
// rather than through package-level state.
func NewApp(dataDir string, logger *zap.Logger) *App {
	// Stores
	modelStore := store.NewModelStore(dataDir)
	graphStore := store.NewGraphStore(dataDir)
	planStore := store.NewPlanCacheStore(dataDir)
	observationStore := store.NewObservationStore(dataDir)

	// Services
	modelSvc := service.NewModelService(modelStore, graphStore, logger)
	planSvc := service.NewPlanCacheService(planStore, logger)
	perceptionSvc := service.NewPerceptionService(logger)

	// Handlers
	modelHandler := handlers.NewModelHandler(modelSvc, modelStore)
	graphHandler := handlers.NewGraphHandler(graphStore)
	planHandler := handlers.NewPlanHandler(planSvc)
	perceiveHandler := handlers.NewPerceiveHandler(perceptionSvc)
	observationHandler := handlers.NewObservationHandler(observationStore)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		startTime: time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	// Health and metrics
	r.Get("/health", healthHandler())
	r.Get("/metrics", app.metricsHandler())

	r.Route("/v1", func(r chi.Router) {
		// Mental models (beliefs)
		r.Route("/models", func(r chi.Router) {
			r.Get("/", modelHandler.List)
			r.Post("/", modelHandler.Create)
			r.Post("/candidates", modelHandler.Candidates)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", modelHandler.GetByID)
				r.Patch("/", modelHandler.Update)
				r.Post("/reinforce", modelHandler.Reinforce)
				r.Post("/challenge", modelHandler.Challenge)
				r.Post("/deprecate", modelHandler.Deprecate)
				r.Delete("/edges", graphHandler.DeleteByModel)
			})
		})

		// Relation edges
		r.Route("/edges", func(r chi.Router) {
			r.Get("/", graphHandler.List)
			r.Post("/", graphHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Delete("/", graphHandler.Delete)
				r.Post("/strengthen", graphHandler.Strengthen)
				r.Post("/weaken", graphHandler.Weaken)
			})
		})

		// Plan cache
		r.Route("/plans", func(r chi.Router) {
			r.Post("/", planHandler.Save)
			r.Post("/find", planHandler.Find)
			r.Post("/{id}/reuse", planHandler.RecordReuse)
		})

		// Perception (chunk + score)
		r.Post("/perceive", perceiveHandler.Perceive)

		// Observation log (read-only view)
		r.Route("/observations", func(r chi.Router) {
			r.Get("/", observationHandler.List)
			r.Get("/{id}", observationHandler.GetByID)
		})
	})

	return app
}

func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}
