package gorm

import "time"

type Driver struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	EmployeeID string    `gorm:"column:employee_id;size:50;uniqueIndex;not null" json:"employee_id"`
	Name       string    `gorm:"column:name;size:200;not null" json:"name"`
	Active     bool      `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	Assignments []DailyAssignment `gorm:"foreignKey:DriverID" json:"-"`
}

// TableName specifies the table name for GORM
func (Driver) TableName() string {
	return "drivers"
}
