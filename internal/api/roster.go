package api

import (
	"encoding/json"
	"net/http"
	"time"

	"fleetops/vanlist/internal/auth"
	"fleetops/vanlist/internal/common"
	"fleetops/vanlist/internal/models/dtos"
)

// ListVansHandler handles GET /api/vans?active_only=
func ListVansHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		activeOnly := r.URL.Query().Get("active_only") != "false"
		vans, err := deps.Services.Roster.ListVans(r.Context(), activeOnly)
		if err != nil {
			common.RespondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Vans fetched", vans)
	}
}

// SearchVansHandler handles GET /api/vans/search?q=
func SearchVansHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		vans, err := deps.Services.Roster.SearchVans(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			common.RespondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Vans fetched", vans)
	}
}

// ToggleVanHandler handles POST /api/vans/{vanID}/toggle (admin).
func ToggleVanHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, ok := uintURLParam(r, "vanID")
		if !ok {
			common.RespondError(w, initTime, nil, "Invalid van id", http.StatusBadRequest)
			return
		}
		van, err := deps.Services.Roster.ToggleVan(r.Context(), auth.GetCurrentUser(r.Context()), id)
		if err != nil {
			common.RespondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Van toggled", map[string]any{"id": van.ID, "active": van.Active})
	}
}

// VanStatusHandler handles POST /api/vans/{vanID}/operational-status.
func VanStatusHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, ok := uintURLParam(r, "vanID")
		if !ok {
			common.RespondError(w, initTime, nil, "Invalid van id", http.StatusBadRequest)
			return
		}
		var req dtos.VanStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}
		van, err := deps.Services.Roster.SetVanStatus(r.Context(), auth.GetCurrentUser(r.Context()), id, req.OperationalStatus)
		if err != nil {
			common.RespondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Operational status updated", map[string]any{
			"id":                 van.ID,
			"operational_status": van.OperationalStatus,
		})
	}
}

// ListDriversHandler handles GET /api/drivers?active_only=
func ListDriversHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		activeOnly := r.URL.Query().Get("active_only") != "false"
		drivers, err := deps.Services.Roster.ListDrivers(r.Context(), activeOnly)
		if err != nil {
			common.RespondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Drivers fetched", drivers)
	}
}

// SearchDriversHandler handles GET /api/drivers/search?q=
func SearchDriversHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		drivers, err := deps.Services.Roster.SearchDrivers(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			common.RespondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Drivers fetched", drivers)
	}
}

// DeactivateDriverHandler handles DELETE /api/drivers/{driverID} (admin).
func DeactivateDriverHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, ok := uintURLParam(r, "driverID")
		if !ok {
			common.RespondError(w, initTime, nil, "Invalid driver id", http.StatusBadRequest)
			return
		}
		driver, err := deps.Services.Roster.DeactivateDriver(r.Context(), auth.GetCurrentUser(r.Context()), id)
		if err != nil {
			common.RespondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Driver deactivated", map[string]any{"id": driver.ID, "active": driver.Active})
	}
}

// ToggleDriverHandler handles POST /api/drivers/{driverID}/toggle (admin).
func ToggleDriverHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, ok := uintURLParam(r, "driverID")
		if !ok {
			common.RespondError(w, initTime, nil, "Invalid driver id", http.StatusBadRequest)
			return
		}
		driver, err := deps.Services.Roster.ToggleDriver(r.Context(), auth.GetCurrentUser(r.Context()), id)
		if err != nil {
			common.RespondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Driver toggled", map[string]any{"id": driver.ID, "active": driver.Active})
	}
}
