package gorm

import "time"

// DriverVanPreassignment is a standing driver-to-van default. At most one row
// per driver; a new preassignment for a driver replaces the old one. It only
// ever acts as a suggestion when a driver-only assignment is created.
type DriverVanPreassignment struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	DriverID  uint      `gorm:"column:driver_id;uniqueIndex:uq_preassign_driver;not null" json:"driver_id"`
	VanID     uint      `gorm:"column:van_id;not null" json:"van_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	Driver Driver `gorm:"foreignKey:DriverID" json:"driver"`
	Van    Van    `gorm:"foreignKey:VanID" json:"van"`
}

// TableName specifies the table name for GORM
func (DriverVanPreassignment) TableName() string {
	return "driver_van_preassignments"
}
