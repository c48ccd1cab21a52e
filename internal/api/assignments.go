package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"fleetops/vanlist/internal/apperrors"
	"fleetops/vanlist/internal/auth"
	"fleetops/vanlist/internal/common"
	"fleetops/vanlist/internal/fileparse"
	"fleetops/vanlist/internal/models/dtos"
	"fleetops/vanlist/internal/services"
)

// maxUploadBytes caps roster uploads at 10 MiB.
const maxUploadBytes = 10 << 20

func parseDateParam(value string) (time.Time, bool) {
	d, err := time.Parse(dtos.DateLayout, value)
	if err != nil {
		return time.Time{}, false
	}
	return services.DateOnly(d), true
}

func uintURLParam(r *http.Request, name string) (uint, bool) {
	n, err := strconv.ParseUint(chi.URLParam(r, name), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(n), true
}

// ListAssignmentsHandler handles GET /api/assignments?date_from=&date_to=
func ListAssignmentsHandler(deps *Dependencies) http.HandlerFunc {
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

		assignments, err := deps.Services.Assignment.List(r.Context(), from, to)
		if err != nil {
			common.RespondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Assignments fetched", assignments)
	}
}

// CreateAssignmentHandler handles POST /api/assignments
func CreateAssignmentHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.AssignmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}
		date, ok := parseDateParam(req.AssignmentDate)
		if !ok {
			common.RespondError(w, initTime, nil, "Invalid assignment_date (YYYY-MM-DD)", http.StatusBadRequest)
			return
		}

		in := services.AssignmentInput{Date: date, VanID: req.VanID, DriverID: req.DriverID, Notes: req.Notes}
		asgn, err := deps.Services.Assignment.Create(r.Context(), auth.GetCurrentUser(r.Context()), in)
		if err != nil {
			if apperrors.IsConflict(err) {
				deps.Metrics.AssignmentConflicts.Inc()
			}
			common.RespondServiceError(w, initTime, err)
			return
		}
		deps.Metrics.AssignmentsCreatedTotal.WithLabelValues("api").Inc()
		common.RespondSuccess(w, initTime, "Assignment created", asgn, http.StatusCreated)
	}
}

// UpdateAssignmentHandler handles PUT /api/assignments/{assignmentID}
func UpdateAssignmentHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, ok := uintURLParam(r, "assignmentID")
		if !ok {
			common.RespondError(w, initTime, nil, "Invalid assignment id", http.StatusBadRequest)
			return
		}
		var req dtos.AssignmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}
		date, ok := parseDateParam(req.AssignmentDate)
		if !ok {
			common.RespondError(w, initTime, nil, "Invalid assignment_date (YYYY-MM-DD)", http.StatusBadRequest)
			return
		}

		in := services.AssignmentInput{Date: date, VanID: req.VanID, DriverID: req.DriverID, Notes: req.Notes}
		asgn, err := deps.Services.Assignment.Update(r.Context(), auth.GetCurrentUser(r.Context()), id, in)
		if err != nil {
			if apperrors.IsConflict(err) {
				deps.Metrics.AssignmentConflicts.Inc()
			}
			common.RespondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Assignment updated", asgn)
	}
}

// DeleteAssignmentHandler handles DELETE /api/assignments/{assignmentID}
func DeleteAssignmentHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, ok := uintURLParam(r, "assignmentID")
		if !ok {
			common.RespondError(w, initTime, nil, "Invalid assignment id", http.StatusBadRequest)
			return
		}
		if err := deps.Services.Assignment.Delete(r.Context(), auth.GetCurrentUser(r.Context()), id); err != nil {
			common.RespondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Assignment deleted", map[string]uint{"id": id})
	}
}

// PairAssignmentsHandler handles POST /api/assignments/pair
func PairAssignmentsHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.PairRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondError(w, initTime, err, "Invalid request body", http.StatusBadRequest)
			return
		}

		asgn, err := deps.Services.Assignment.Pair(r.Context(), auth.GetCurrentUser(r.Context()), req.DriverAssignmentID, req.VanAssignmentID)
		if err != nil {
			if apperrors.IsConflict(err) {
				deps.Metrics.AssignmentConflicts.Inc()
			}
			common.RespondServiceError(w, initTime, err)
			return
		}
		deps.Metrics.AssignmentsCreatedTotal.WithLabelValues("pairing").Inc()
		common.RespondSuccess(w, initTime, "Assignments paired", asgn)
	}
}

// UnpairAssignmentHandler handles POST /api/assignments/{assignmentID}/unpair
func UnpairAssignmentHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		id, ok := uintURLParam(r, "assignmentID")
		if !ok {
			common.RespondError(w, initTime, nil, "Invalid assignment id", http.StatusBadRequest)
			return
		}
		resp, err := deps.Services.Assignment.Unpair(r.Context(), auth.GetCurrentUser(r.Context()), id)
		if err != nil {
			if apperrors.IsConflict(err) {
				deps.Metrics.AssignmentConflicts.Inc()
			}
			common.RespondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Assignment unpaired", resp)
	}
}

// AvailableVansHandler handles GET /api/assignments/available-vans
func AvailableVansHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		date, ok := parseDateParam(r.URL.Query().Get("assignment_date"))
		if !ok {
			common.RespondError(w, initTime, nil, "assignment_date is required (YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
		vans, err := deps.Services.Assignment.AvailableVans(r.Context(), date, r.URL.Query().Get("q"))
		if err != nil {
			common.RespondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Available vans fetched", vans)
	}
}

// AvailableDriversHandler handles GET /api/assignments/available-drivers
func AvailableDriversHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		date, ok := parseDateParam(r.URL.Query().Get("assignment_date"))
		if !ok {
			common.RespondError(w, initTime, nil, "assignment_date is required (YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
		drivers, err := deps.Services.Assignment.AvailableDrivers(r.Context(), date, r.URL.Query().Get("q"))
		if err != nil {
			common.RespondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Available drivers fetched", drivers)
	}
}

// AssignableDriversHandler handles GET /api/assignments/assignable-drivers
func AssignableDriversHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		date, ok := parseDateParam(r.URL.Query().Get("assignment_date"))
		if !ok {
			common.RespondError(w, initTime, nil, "assignment_date is required (YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
		rows, err := deps.Services.Assignment.AssignableDrivers(r.Context(), date)
		if err != nil {
			common.RespondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Assignable drivers fetched", rows)
	}
}

// readUpload pulls the multipart "file" part, capped at maxUploadBytes.
func readUpload(r *http.Request) ([]byte, string, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, "", err
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return nil, "", err
	}
	return content, header.Filename, nil
}

// BulkUploadDriversHandler handles POST /api/assignments/bulk-upload-drivers.
// The file refreshes the driver roster first, then every driver it names gets
// a driver-only row on the target date unless already assigned.
func BulkUploadDriversHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		date, ok := parseDateParam(r.URL.Query().Get("assignment_date"))
		if !ok {
			common.RespondError(w, initTime, nil, "assignment_date is required (YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
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

		actor := auth.GetCurrentUser(r.Context())
		resp := dtos.BulkUploadResponse{}

		var result *services.BulkResult
		if parsed.HasIDs {
			importResult, err := deps.Services.Import.ImportDrivers(r.Context(), parsed, filename, actor)
			if err != nil {
				common.RespondServiceError(w, initTime, err)
				return
			}
			deps.Metrics.ImportsTotal.WithLabelValues("driver").Inc()
			resp.ImportResult = importResult

			ids := make([]string, 0, len(parsed.Rows))
			for _, row := range parsed.Rows {
				ids = append(ids, row.EmployeeID)
			}
			result, err = deps.Services.Bulk.ReconcileDrivers(r.Context(), actor, date, ids)
			if err != nil {
				common.RespondServiceError(w, initTime, err)
				return
			}
		} else {
			// Route sheets carry names only; resolve them against the
			// existing roster instead of importing.
			result, err = deps.Services.Bulk.ReconcileDriverNames(r.Context(), actor, date, parsed.Names)
			if err != nil {
				common.RespondServiceError(w, initTime, err)
				return
			}
			resp.UnmatchedNames = result.NotFound
		}

		resp.AssignmentsCreated = result.Created
		resp.AssignmentsSkipped = result.Skipped
		deps.Metrics.BulkRowsTotal.WithLabelValues("driver", "created").Add(float64(result.Created))
		deps.Metrics.BulkRowsTotal.WithLabelValues("driver", "skipped").Add(float64(result.Skipped))
		if result.Created > 0 {
			deps.Metrics.AssignmentsCreatedTotal.WithLabelValues("bulk").Add(float64(result.Created))
		}

		common.RespondSuccess(w, initTime, "Bulk driver upload processed", resp)
	}
}

// BulkUploadVansHandler handles POST /api/assignments/bulk-upload-vans.
func BulkUploadVansHandler(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		date, ok := parseDateParam(r.URL.Query().Get("assignment_date"))
		if !ok {
			common.RespondError(w, initTime, nil, "assignment_date is required (YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
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

		actor := auth.GetCurrentUser(r.Context())
		importResult, err := deps.Services.Import.ImportVans(r.Context(), parsed, filename, actor)
		if err != nil {
			common.RespondServiceError(w, initTime, err)
			return
		}
		deps.Metrics.ImportsTotal.WithLabelValues("van").Inc()

		codes := make([]string, 0, len(parsed.Rows))
		for _, row := range parsed.Rows {
			codes = append(codes, row.Code)
		}
		result, err := deps.Services.Bulk.ReconcileVans(r.Context(), actor, date, codes)
		if err != nil {
			common.RespondServiceError(w, initTime, err)
			return
		}

		deps.Metrics.BulkRowsTotal.WithLabelValues("van", "created").Add(float64(result.Created))
		deps.Metrics.BulkRowsTotal.WithLabelValues("van", "skipped").Add(float64(result.Skipped))
		if result.Created > 0 {
			deps.Metrics.AssignmentsCreatedTotal.WithLabelValues("bulk").Add(float64(result.Created))
		}

		common.RespondSuccess(w, initTime, "Bulk van upload processed", dtos.BulkUploadResponse{
			ImportResult:       importResult,
			AssignmentsCreated: result.Created,
			AssignmentsSkipped: result.Skipped,
		})
	}
}
