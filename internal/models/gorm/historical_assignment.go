package gorm

import "time"

// HistoricalAssignment backfills the pre-system era of the schedule grid.
// Keyed by (date, van registration); driver is stored as free text because
// historical rosters predate the canonical driver table. is_vor marks the
// vehicle as off road for the day.
type HistoricalAssignment struct {
	ID             uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	AssignmentDate time.Time `gorm:"column:assignment_date;type:date;not null;uniqueIndex:uq_hist_date_van" json:"assignment_date"`
	VanReg         string    `gorm:"column:van_reg;size:50;not null;uniqueIndex:uq_hist_date_van" json:"van_reg"`
	DriverName     *string   `gorm:"column:driver_name;size:200" json:"driver_name"`
	IsVOR          bool      `gorm:"column:is_vor;not null;default:false" json:"is_vor"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (HistoricalAssignment) TableName() string {
	return "historical_assignments"
}
