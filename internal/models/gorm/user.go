package gorm

import (
	"time"

	"fleetops/vanlist/internal/constants"
)

type User struct {
	ID             uint           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Username       string         `gorm:"column:username;size:50;uniqueIndex;not null" json:"username"`
	FullName       string         `gorm:"column:full_name;size:200;not null" json:"full_name"`
	HashedPassword string         `gorm:"column:hashed_password;size:200;not null" json:"-"`
	Role           constants.Role `gorm:"column:role;size:20;not null;default:readonly" json:"role"`
	Active         bool           `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	AuditLogs []AuditLog `gorm:"foreignKey:UserID" json:"-"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}
