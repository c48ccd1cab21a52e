package api

import (
	"encoding/json"
	"net/http"
	"time"

	"fleetops/vanlist/internal/auth"
	"fleetops/vanlist/internal/common"
	"fleetops/vanlist/internal/models/dtos"
)

// ListPreassignmentsHandler handles GET /api/preassignments
func ListPreassignmentsHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		rows, err := deps.Services.Preassignment.List(r.Context())
		if err != nil {
			common.RespondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Preassignments fetched", rows)
	}
}

// UpsertPreassignmentHandler handles POST /api/preassignments
func UpsertPreassignmentHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.PreassignmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DriverID == 0 || req.VanID == 0 {
			common.RespondError(w, initTime, err, "driver_id and van_id are required", http.StatusBadRequest)
			return
		}
		pa, err := deps.Services.Preassignment.Upsert(r.Context(), auth.GetCurrentUser(r.Context()), req)
		if err != nil {
			common.RespondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Preassignment saved", pa, http.StatusCreated)
	}
}

// DeletePreassignmentHandler handles DELETE /api/preassignments/{preassignmentID}
func DeletePreassignmentHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, ok := uintURLParam(r, "preassignmentID")
		if !ok {
			common.RespondError(w, initTime, nil, "Invalid preassignment id", http.StatusBadRequest)
			return
		}
		if err := deps.Services.Preassignment.Delete(r.Context(), auth.GetCurrentUser(r.Context()), id); err != nil {
			common.RespondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Preassignment deleted", map[string]any{"deleted": true, "id": id})
	}
}
