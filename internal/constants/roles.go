package constants

import (
	"database/sql/driver"
	"fmt"
)

// Role is the access level stored on a user row.
type Role string

const (
	RoleReadonly Role = "readonly"
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"
)

// roleLevels orders roles for the >= checks in middleware.
var roleLevels = map[Role]int{
	RoleReadonly: 1,
	RoleOperator: 2,
	RoleAdmin:    3,
}

// Stringer – convenient for fmt / logs
func (r Role) String() string { return string(r) }

// Level returns the numeric rank of the role, 0 for unknown roles.
func (r Role) Level() int { return roleLevels[r] }

// Valid reports whether the role is one of the known levels.
func (r Role) Valid() bool { return roleLevels[r] != 0 }

// AtLeast reports whether the role meets or exceeds min.
func (r Role) AtLeast(min Role) bool { return r.Level() >= min.Level() }

/* ---------- DB adapters so sqlx (or database/sql) scans/values cleanly ---------- */

// Scan implements the sql.Scanner interface
func (r *Role) Scan(src interface{}) error {
	if src == nil {
		*r = ""
		return nil
	}
	switch v := src.(type) {
	case string:
		*r = Role(v)
	case []byte:
		*r = Role(v)
	default:
		return fmt.Errorf("Role: cannot scan type %T", src)
	}
	return nil
}

// Value implements the driver.Valuer interface
func (r Role) Value() (driver.Value, error) { return string(r), nil }
