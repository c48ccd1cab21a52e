package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"fleetops/vanlist/internal/auth"
	"fleetops/vanlist/internal/common"
	"fleetops/vanlist/internal/models/dtos"
	"fleetops/vanlist/internal/services"
)

// AuditLogHandler handles GET /api/audit?limit= (admin).
func AuditLogHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			limit, _ = strconv.Atoi(v)
		}
		entries, err := deps.Services.Audit.Recent(r.Context(), limit)
		if err != nil {
			common.RespondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Audit log fetched", entries)
	}
}

// UpsertHistoricalHandler handles PUT /api/historical-assignments.
func UpsertHistoricalHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.HistoricalUpsertRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VanReg == "" {
			common.RespondError(w, initTime, err, "van_reg and assignment_date are required", http.StatusBadRequest)
			return
		}
		outcome, err := deps.Services.Historical.Upsert(r.Context(), auth.GetCurrentUser(r.Context()), req)
		if err != nil {
			common.RespondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Historical assignment saved", outcome)
	}
}

// ListHistoricalHandler handles GET /api/historical-assignments?date_from=&date_to=
func ListHistoricalHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		from, ok := parseDateParam(r.URL.Query().Get("date_from"))
		if !ok {
			common.RespondError(w, initTime, nil, "date_from is required (YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
		to := from
		if v := r.URL.Query().Get("date_to"); v != "" {
			if to, ok = parseDateParam(v); !ok {
				common.RespondError(w, initTime, nil, "Invalid date_to (YYYY-MM-DD)", http.StatusBadRequest)
				return
			}
		}
		rows, err := deps.Services.Historical.ListRange(r.Context(), from, to)
		if err != nil {
			common.RespondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Historical assignments fetched", rows)
	}
}

// WeekInfoHandler handles GET /api/week?week= or ?date=; without either it
// reports the current week.
func WeekInfoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		week := services.CurrentWeekNumber()
		if v := r.URL.Query().Get("week"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				common.RespondError(w, initTime, nil, "week must be an integer", http.StatusBadRequest)
				return
			}
			week = n
		} else if v := r.URL.Query().Get("date"); v != "" {
			d, ok := parseDateParam(v)
			if !ok {
				common.RespondError(w, initTime, nil, "Invalid date (YYYY-MM-DD)", http.StatusBadRequest)
				return
			}
			week = services.WeekNumber(d)
		}

		start, end := services.WeekDates(week)
		common.RespondSuccess(w, initTime, "Week info", dtos.WeekInfo{
			WeekNumber: week,
			StartDate:  start.Format(dtos.DateLayout),
			EndDate:    end.Format(dtos.DateLayout),
		})
	}
}
