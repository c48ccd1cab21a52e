package dtos

type APIResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	ResponseTime string `json:"response_time"`
	Data         any    `json:"data,omitempty"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        any    `json:"user"`
}

type UnpairResponse struct {
	DriverAssignmentID uint `json:"driver_assignment_id"`
	VanAssignmentID    uint `json:"van_assignment_id"`
}

type WeekInfo struct {
	WeekNumber int    `json:"week_number"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

// VanOption and DriverOption feed the schedule page pickers.
type VanOption struct {
	ID                uint    `json:"id"`
	Code              string  `json:"code"`
	Description       *string `json:"description"`
	OperationalStatus *string `json:"operational_status"`
}

type DriverOption struct {
	ID         uint   `json:"id"`
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
}

type PreassignmentEntry struct {
	ID               uint   `json:"id"`
	DriverID         uint   `json:"driver_id"`
	VanID            uint   `json:"van_id"`
	DriverName       string `json:"driver_name"`
	DriverEmployeeID string `json:"driver_employee_id"`
	VanCode          string `json:"van_code"`
}

// BulkUploadResponse reports one bulk day-upload: the roster refresh outcome
// plus the assignment reconciliation counts.
type BulkUploadResponse struct {
	ImportResult       any      `json:"import_result"`
	AssignmentsCreated int      `json:"assignments_created"`
	AssignmentsSkipped int      `json:"assignments_skipped"`
	UnmatchedNames     []string `json:"unmatched_names,omitempty"`
}

type HealthServiceStatus struct {
	Status  string `json:"status"`
	Details string `json:"details"`
}

type HealthResponse struct {
	Status   string                         `json:"status"`
	Uptime   string                         `json:"uptime"`
	Services map[string]HealthServiceStatus `json:"services"`
}
