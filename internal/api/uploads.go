package api

import (
	"net/http"
	"strconv"
	"time"

	"fleetops/vanlist/internal/auth"
	"fleetops/vanlist/internal/common"
	"fleetops/vanlist/internal/fileparse"
)

// UploadVansHandler handles POST /api/upload/vans (admin). This is a pure
// roster refresh; it touches no assignments.
func UploadVansHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		content, filename, err := readUpload(r)
		if err != nil {
			common.RespondError(w, initTime, err, "No file provided", http.StatusBadRequest)
			return
		}

		table, err := fileparse.ReadTable(content, filename)
		if err != nil {
			common.RespondError(w, initTime, err, "", http.StatusBadRequest)
			return
		}
		parsed, err := fileparse.ParseVans(table)
		if err != nil {
			common.RespondError(w, initTime, err, "", http.StatusBadRequest)
			return
		}

		result, err := deps.Services.Import.ImportVans(r.Context(), parsed, filename, auth.GetCurrentUser(r.Context()))
		if err != nil {
			common.RespondServiceError(w, initTime, err)
			return
		}
		deps.Metrics.ImportsTotal.WithLabelValues("van").Inc()
		common.RespondSuccess(w, initTime, "Van roster imported", result)
	}
}

// UploadDriversHandler handles POST /api/upload/drivers (admin).
func UploadDriversHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		content, filename, err := readUpload(r)
		if err != nil {
			common.RespondError(w, initTime, err, "No file provided", http.StatusBadRequest)
			return
		}

		table, err := fileparse.ReadTable(content, filename)
		if err != nil {
			common.RespondError(w, initTime, err, "", http.StatusBadRequest)
			return
		}
		parsed, err := fileparse.ParseDrivers(table)
		if err != nil {
			common.RespondError(w, initTime, err, "", http.StatusBadRequest)
			return
		}
		if !parsed.HasIDs {
			common.RespondError(w, initTime, nil, "File has no Transporter ID column; roster imports need employee ids", http.StatusBadRequest)
			return
		}

		result, err := deps.Services.Import.ImportDrivers(r.Context(), parsed, filename, auth.GetCurrentUser(r.Context()))
		if err != nil {
			common.RespondServiceError(w, initTime, err)
			return
		}
		deps.Metrics.ImportsTotal.WithLabelValues("driver").Inc()
		common.RespondSuccess(w, initTime, "Driver roster imported", result)
	}
}

// ImportHistoryHandler handles GET /api/upload/history (admin).
func ImportHistoryHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			limit, _ = strconv.Atoi(v)
		}
		logs, err := deps.Services.Import.RecentImports(r.Context(), limit)
		if err != nil {
			common.RespondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Import history fetched", logs)
	}
}
