package routes

import (
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"fleetops/vanlist/internal/api"
	"fleetops/vanlist/internal/constants"
	"fleetops/vanlist/internal/middleware"
)

// RegisterAPIRoutes wires the /api tree. Reads are open to any authenticated
// user, schedule mutations need operator, and user/roster administration
// needs admin. Login is rate limited per client IP.
func RegisterAPIRoutes(r chi.Router, deps *api.Dependencies, ormDB *gorm.DB, secret string) {
	r.Route("/api", func(root chi.Router) {

		// Unauthenticated
		root.Group(func(public chi.Router) {
			public.Use(middleware.RateLimitMiddleware)
			public.Post("/auth/login", api.LoginHandler(deps))
		})
		root.Post("/auth/logout", api.LogoutHandler())

		// Everything below requires a live user
		root.Group(func(authed chi.Router) {
			authed.Use(middleware.AuthMiddleware(ormDB, secret))

			authed.Get("/auth/me", api.MeHandler())
			authed.Put("/auth/change-password", api.ChangePasswordHandler(deps))

			authed.Get("/week", api.WeekInfoHandler())

			authed.Get("/assignments", api.ListAssignmentsHandler(deps))
			authed.Get("/assignments/available-vans", api.AvailableVansHandler(deps))
			authed.Get("/assignments/available-drivers", api.AvailableDriversHandler(deps))
			authed.Get("/assignments/assignable-drivers", api.AssignableDriversHandler(deps))

			authed.Get("/vans", api.ListVansHandler(deps))
			authed.Get("/vans/search", api.SearchVansHandler(deps))
			authed.Get("/drivers", api.ListDriversHandler(deps))
			authed.Get("/drivers/search", api.SearchDriversHandler(deps))

			authed.Get("/preassignments", api.ListPreassignmentsHandler(deps))
			authed.Get("/historical-assignments", api.ListHistoricalHandler(deps))

			authed.Get("/export/daily", api.ExportDailyHandler(deps, ormDB))
			authed.Get("/export/daily-simple", api.ExportDailySimpleHandler(deps, ormDB))
			authed.Get("/export/weekly", api.ExportWeeklyHandler(deps, ormDB))
			authed.Get("/export/period", api.ExportPeriodHandler(deps, ormDB))

			// Operator: schedule mutations
			authed.Group(func(operator chi.Router) {
				operator.Use(middleware.RequireRole(constants.RoleOperator))

				operator.Post("/assignments", api.CreateAssignmentHandler(deps))
				operator.Put("/assignments/{assignmentID}", api.UpdateAssignmentHandler(deps))
				operator.Delete("/assignments/{assignmentID}", api.DeleteAssignmentHandler(deps))
				operator.Post("/assignments/pair", api.PairAssignmentsHandler(deps))
				operator.Post("/assignments/{assignmentID}/unpair", api.UnpairAssignmentHandler(deps))
				operator.Post("/assignments/bulk-upload-drivers", api.BulkUploadDriversHandler(deps))
				operator.Post("/assignments/bulk-upload-vans", api.BulkUploadVansHandler(deps))

				operator.Post("/vans/{vanID}/operational-status", api.VanStatusHandler(deps))
				operator.Post("/preassignments", api.UpsertPreassignmentHandler(deps))
				operator.Delete("/preassignments/{preassignmentID}", api.DeletePreassignmentHandler(deps))
				operator.Put("/historical-assignments", api.UpsertHistoricalHandler(deps))
			})

			// Admin: accounts, rosters and the audit trail
			authed.Group(func(admin chi.Router) {
				admin.Use(middleware.RequireRole(constants.RoleAdmin))

				admin.Get("/auth/users", api.ListUsersHandler(deps))
				admin.Post("/auth/users", api.CreateUserHandler(deps))
				admin.Put("/auth/users/{userID}", api.UpdateUserHandler(deps))

				admin.Post("/vans/{vanID}/toggle", api.ToggleVanHandler(deps))
				admin.Post("/drivers/{driverID}/toggle", api.ToggleDriverHandler(deps))
				admin.Delete("/drivers/{driverID}", api.DeactivateDriverHandler(deps))

				admin.Post("/upload/vans", api.UploadVansHandler(deps))
				admin.Post("/upload/drivers", api.UploadDriversHandler(deps))
				admin.Get("/upload/history", api.ImportHistoryHandler(deps))

				admin.Get("/audit", api.AuditLogHandler(deps))
			})
		})
	})
}
