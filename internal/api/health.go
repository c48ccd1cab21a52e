package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"fleetops/vanlist/internal/models/dtos"
)

// HealthCheckHandler handles GET /healthCheck. It stays outside the auth
// stack so load balancers can probe it.
func HealthCheckHandler(db *sqlx.DB, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services := make(map[string]dtos.HealthServiceStatus)

		pgStatus := "ok"
		pgDetails := "Postgres connected"
		if err := db.PingContext(r.Context()); err != nil {
			pgStatus = "down"
			pgDetails = err.Error()
		}
		services["postgres"] = dtos.HealthServiceStatus{Status: pgStatus, Details: pgDetails}

		overall := "ok"
		for _, svc := range services {
			if svc.Status != "ok" {
				overall = "down"
				break
			}
		}

		resp := dtos.HealthResponse{
			Status:   overall,
			Uptime:   time.Since(upSince).Round(time.Second).String(),
			Services: services,
		}
		w.Header().Set("Content-Type", "application/json")
		if overall != "ok" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}
