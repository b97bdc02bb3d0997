package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/daap14/teamhub/internal/api/handler"
	"github.com/daap14/teamhub/internal/api/middleware"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	DBPinger    handler.DBPinger
	Version     string
	OpenAPISpec []byte

	Authenticator middleware.Authenticator
	CronVerifier  middleware.CronVerifier

	Teams    handler.TeamService
	Profiles handler.ProfileService
	Products handler.ProductService
	Purge    handler.PurgeRunner

	// StorageHandler serves uploaded files under /storage/ when objects are
	// kept on the local filesystem.
	StorageHandler http.Handler

	MaxUploadBytes     int64
	RequestTimeout     time.Duration
	CORSAllowedOrigins []string
	RateLimiter        *middleware.RateLimiter

	// Registry receives HTTP metrics and backs /metrics. Nil uses the
	// Prometheus default registry.
	Registry *prometheus.Registry
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}
	metrics := middleware.NewHTTPMetrics(registerer)

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)
	r.Use(metrics.Handler)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if deps.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(deps.RequestTimeout))
	}

	healthHandler := handler.NewHealthHandler(deps.DBPinger, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	if len(deps.OpenAPISpec) > 0 {
		openapiHandler := handler.NewOpenAPIHandler(deps.OpenAPISpec)
		r.Get("/openapi.json", openapiHandler.ServeHTTP)
	}

	if deps.StorageHandler != nil {
		r.Method(http.MethodGet, "/storage/*", http.StripPrefix("/storage", deps.StorageHandler))
	}

	if deps.Purge != nil && deps.CronVerifier != nil {
		cleanupHandler := handler.NewCleanupHandler(deps.Purge)
		r.With(middleware.RequireCronSecret(deps.CronVerifier)).Post("/products-cleanup", cleanupHandler.ServeHTTP)
	}

	if deps.Authenticator == nil {
		return r
	}

	if deps.Profiles != nil {
		flowHandler := handler.NewFlowHandler(deps.Profiles)
		r.With(middleware.OptionalAuth(deps.Authenticator)).Get("/flow", flowHandler.ServeHTTP)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(deps.Authenticator))
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Handler)
		}

		if deps.Teams != nil {
			teamHandler := handler.NewTeamHandler(deps.Teams)
			r.Post("/team-actions", teamHandler.Action)
			r.Get("/teams", teamHandler.Get)
			r.Get("/teams/members", teamHandler.Members)
		}

		if deps.Profiles != nil {
			profileHandler := handler.NewProfileHandler(deps.Profiles, deps.MaxUploadBytes)
			r.Get("/profiles", profileHandler.Get)
			r.Patch("/profiles", profileHandler.Update)
		}

		if deps.Products != nil {
			productHandler := handler.NewProductHandler(deps.Products, deps.MaxUploadBytes)
			r.Route("/products", func(r chi.Router) {
				r.Get("/", productHandler.List)
				r.Post("/", productHandler.Create)
				r.Get("/{id}", productHandler.Get)
				r.Patch("/{id}", productHandler.Update)
				r.Delete("/{id}", productHandler.Delete)
				r.Post("/{id}/image", productHandler.UploadImage)
			})
		}
	})

	return r
}
