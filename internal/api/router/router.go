// Package router assembles the chi HTTP router: telemetry intake, fleet
// lookups, the demo scenario, and JWT-guarded audit reporting.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/driveline-ai/fleetguard/internal/http/handlers"
	httpmiddleware "github.com/driveline-ai/fleetguard/internal/http/middleware"
	"github.com/driveline-ai/fleetguard/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger          *logging.Logger
	Ingest          *handlers.IngestHandler
	Fleet           *handlers.FleetHandler
	Audit           *handlers.AuditHandler
	Demo            *handlers.DemoHandler
	AdminAuthSecret string
	MetricsHandler  http.Handler
}

// New creates a chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", handlers.Health)

		if cfg.Ingest != nil {
			public.Route("/ingest", func(r chi.Router) {
				r.Post("/telemetry", cfg.Ingest.Ingest)
				r.Post("/telemetry/async", cfg.Ingest.IngestAsync)
				r.Get("/jobs/{jobID}", cfg.Ingest.GetJob)
			})
		}

		if cfg.Fleet != nil {
			public.Route("/fleet", func(r chi.Router) {
				r.Get("/{vehicleID}/state", cfg.Fleet.GetState)
				r.Get("/{vehicleID}/appointment", cfg.Fleet.GetAppointment)
			})
		}

		if cfg.Demo != nil {
			public.Get("/demo", cfg.Demo.Run)
		}
	})

	// Admin endpoints behind the JWT guard
	if cfg.Audit != nil {
		r.Group(func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Route("/audit", func(r chi.Router) {
				r.Get("/events", cfg.Audit.Events)
				r.Get("/alerts", cfg.Audit.Alerts)
			})
		})
	}

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	return r
}
