package dtos

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type UserCreateRequest struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type UserUpdateRequest struct {
	FullName *string `json:"full_name"`
	Role     *string `json:"role"`
	Active   *bool   `json:"active"`
	Password *string `json:"password"`
}

// AssignmentRequest is shared by create and update; the update path treats it
// as a full overwrite, not a patch.
type AssignmentRequest struct {
	AssignmentDate string  `json:"assignment_date"`
	VanID          *uint   `json:"van_id"`
	DriverID       *uint   `json:"driver_id"`
	Notes          *string `json:"notes"`
}

type PairRequest struct {
	DriverAssignmentID uint `json:"driver_assignment_id"`
	VanAssignmentID    uint `json:"van_assignment_id"`
}

type PreassignmentRequest struct {
	DriverID uint `json:"driver_id"`
	VanID    uint `json:"van_id"`
}

type VanStatusRequest struct {
	OperationalStatus *string `json:"operational_status"`
}

type HistoricalUpsertRequest struct {
	VanReg         string  `json:"van_reg"`
	AssignmentDate string  `json:"assignment_date"`
	DriverName     *string `json:"driver_name"`
	IsVOR          bool    `json:"is_vor"`
}
