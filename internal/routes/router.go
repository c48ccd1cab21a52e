package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"gorm.io/gorm"

	"fleetops/vanlist/internal/api"
	"fleetops/vanlist/internal/logging"
	"fleetops/vanlist/internal/middleware"
)

// RegisterRoutes builds the router: global middleware, the unauthenticated
// health probe, then the /api tree.
func RegisterRoutes(deps *api.Dependencies, ormDB *gorm.DB, secret string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(deps.Metrics))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	logging.Info("Router initialized with metrics and logging middleware")

	r.Get("/healthCheck", api.HealthCheckHandler(deps.SqlxDB, deps.UpSince))

	RegisterAPIRoutes(r, deps, ormDB, secret)

	return r
}
