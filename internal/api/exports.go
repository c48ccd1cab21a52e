package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"gorm.io/gorm"

	"fleetops/vanlist/internal/auth"
	"fleetops/vanlist/internal/common"
	"fleetops/vanlist/internal/constants"
	"fleetops/vanlist/internal/logging"
	"fleetops/vanlist/internal/middleware"
	"fleetops/vanlist/internal/models/dtos"
	"fleetops/vanlist/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func sendWorkbook(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// recordExportAudit writes the audit entry best-effort; a failed write must
// not block the download that already rendered.
func recordExportAudit(db *gorm.DB, r *http.Request, details string) {
	actor := auth.GetCurrentUser(r.Context())
	err := db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		return services.RecordAudit(tx, actor, constants.ActionExport, "assignment", nil, details)
	})
	if err != nil {
		logging.Error("Failed to record export audit",
			"error", err.Error(),
			"request_id", middleware.RequestID(r.Context()))
	}
}

// ExportDailyHandler handles GET /api/export/daily?target_date=
func ExportDailyHandler(deps *Dependencies, db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		date, ok := parseDateParam(r.URL.Query().Get("target_date"))
		if !ok {
			common.RespondError(w, initTime, nil, "target_date is required (YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
		data, err := deps.Services.Export.ExportDaily(r.Context(), date)
		if err != nil {
			common.RespondServiceError(w, initTime, err)
			return
		}
		deps.Metrics.ExportsTotal.WithLabelValues("daily").Inc()
		recordExportAudit(db, r, fmt.Sprintf("Exported daily XLSX for %s", date.Format(dtos.DateLayout)))
		sendWorkbook(w, fmt.Sprintf("assignments_%s.xlsx", date.Format(dtos.DateLayout)), data)
	}
}

// ExportDailySimpleHandler handles GET /api/export/daily-simple?target_date=
func ExportDailySimpleHandler(deps *Dependencies, db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		date, ok := parseDateParam(r.URL.Query().Get("target_date"))
		if !ok {
			common.RespondError(w, initTime, nil, "target_date is required (YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
		data, err := deps.Services.Export.ExportDailySimple(r.Context(), date)
		if err != nil {
			common.RespondServiceError(w, initTime, err)
			return
		}
		deps.Metrics.ExportsTotal.WithLabelValues("daily_simple").Inc()
		recordExportAudit(db, r, fmt.Sprintf("Exported daily simple XLSX for %s", date.Format(dtos.DateLayout)))
		sendWorkbook(w, fmt.Sprintf("assignments_%s_simple.xlsx", date.Format(dtos.DateLayout)), data)
	}
}

// ExportWeeklyHandler handles GET /api/export/weekly?week=
func ExportWeeklyHandler(deps *Dependencies, db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		week, err := strconv.Atoi(r.URL.Query().Get("week"))
		if err != nil || week < 1 {
			common.RespondError(w, initTime, nil, "week must be a positive integer", http.StatusBadRequest)
			return
		}
		data, err := deps.Services.Export.ExportWeekly(r.Context(), week)
		if err != nil {
			common.RespondServiceError(w, initTime, err)
			return
		}
		deps.Metrics.ExportsTotal.WithLabelValues("weekly").Inc()
		recordExportAudit(db, r, fmt.Sprintf("Exported weekly XLSX for week %d", week))
		sendWorkbook(w, fmt.Sprintf("assignments_week_%d.xlsx", week), data)
	}
}

// ExportPeriodHandler handles GET /api/export/period?start_date=&end_date=
func ExportPeriodHandler(deps *Dependencies, db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		start, ok := parseDateParam(r.URL.Query().Get("start_date"))
		if !ok {
			common.RespondError(w, initTime, nil, "start_date is required (YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
		end, ok := parseDateParam(r.URL.Query().Get("end_date"))
		if !ok {
			common.RespondError(w, initTime, nil, "end_date is required (YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
		data, err := deps.Services.Export.ExportPeriod(r.Context(), start, end)
		if err != nil {
			common.RespondServiceError(w, initTime, err)
			return
		}
		deps.Metrics.ExportsTotal.WithLabelValues("period").Inc()
		recordExportAudit(db, r, fmt.Sprintf("Exported period XLSX for %s to %s",
			start.Format(dtos.DateLayout), end.Format(dtos.DateLayout)))
		sendWorkbook(w, fmt.Sprintf("assignments_%s_%s.xlsx",
			start.Format(dtos.DateLayout), end.Format(dtos.DateLayout)), data)
	}
}
