package gorm

import "time"

// AuditLog is append-only. UserID is kept nullable so entries survive user
// removal; Username is denormalized for the same reason.
type AuditLog struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID     *uint     `gorm:"column:user_id;index:ix_audit_user" json:"user_id"`
	Username   string    `gorm:"column:username;size:50;not null" json:"username"`
	Action     string    `gorm:"column:action;size:50;not null" json:"action"`
	EntityType *string   `gorm:"column:entity_type;size:50;index:ix_audit_entity" json:"entity_type"`
	EntityID   *uint     `gorm:"column:entity_id;index:ix_audit_entity" json:"entity_id"`
	Details    *string   `gorm:"column:details;type:text" json:"details"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime;index:ix_audit_created" json:"created_at"`
}

// TableName specifies the table name for GORM
func (AuditLog) TableName() string {
	return "audit_logs"
}
