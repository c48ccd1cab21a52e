package gorm

import "time"

// VanStatus mirrors the operational states reported by the vehicle feed.
type VanStatus string

const (
	VanOperational VanStatus = "OPERATIONAL"
	VanGrounded    VanStatus = "GROUNDED"
)

type Van struct {
	ID                uint       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Code              string     `gorm:"column:code;size:50;uniqueIndex;not null" json:"code"`
	Description       *string    `gorm:"column:description;size:200" json:"description"`
	OperationalStatus *VanStatus `gorm:"column:operational_status;size:30" json:"operational_status"`
	Active            bool       `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	Assignments []DailyAssignment `gorm:"foreignKey:VanID" json:"-"`
}

// TableName specifies the table name for GORM
func (Van) TableName() string {
	return "vans"
}
