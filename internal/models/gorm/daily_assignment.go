package gorm

import "time"

// AssignmentShape classifies a row by which references are populated.
// It is derived from the row, never stored.
type AssignmentShape string

const (
	ShapePaired     AssignmentShape = "paired"
	ShapeDriverOnly AssignmentShape = "driver_only"
	ShapeVanOnly    AssignmentShape = "van_only"
)

// DailyAssignment pairs at most one van with at most one driver on a calendar
// date. A row with neither reference is invalid; the partial shapes exist so
// rosters and vehicle lists can be loaded independently and paired later.
type DailyAssignment struct {
	ID             uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	AssignmentDate time.Time `gorm:"column:assignment_date;type:date;not null;index:ix_assignments_date;uniqueIndex:uq_date_van;uniqueIndex:uq_date_driver" json:"assignment_date"`
	VanID          *uint     `gorm:"column:van_id;uniqueIndex:uq_date_van" json:"van_id"`
	DriverID       *uint     `gorm:"column:driver_id;uniqueIndex:uq_date_driver" json:"driver_id"`
	Notes          *string   `gorm:"column:notes;size:500" json:"notes"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	Van    *Van    `gorm:"foreignKey:VanID" json:"van"`
	Driver *Driver `gorm:"foreignKey:DriverID" json:"driver"`
}

// TableName specifies the table name for GORM
func (DailyAssignment) TableName() string {
	return "daily_assignments"
}

// Shape reports whether the row is paired, driver-only or van-only.
func (a *DailyAssignment) Shape() AssignmentShape {
	switch {
	case a.VanID != nil && a.DriverID != nil:
		return ShapePaired
	case a.DriverID != nil:
		return ShapeDriverOnly
	default:
		return ShapeVanOnly
	}
}
