package services

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"

	"fleetops/vanlist/internal/constants"
	models "fleetops/vanlist/internal/models/gorm"
)

// RecordAudit appends an audit entry inside the caller's transaction, so the
// entry commits (or rolls back) with the mutation it describes.
func RecordAudit(tx *gorm.DB, actor *models.User, action constants.AuditAction, entityType string, entityID *uint, details string) error {
	entry := models.AuditLog{
		Username: "system",
		Action:   string(action),
	}
	if actor != nil {
		entry.Username = actor.Username
		if actor.ID != 0 {
			id := actor.ID
			entry.UserID = &id
		}
	}
	if entityType != "" {
		entry.EntityType = &entityType
	}
	entry.EntityID = entityID
	if details != "" {
		entry.Details = &details
	}

	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

// AuditEntry is the flat row shape the admin audit view reads.
type AuditEntry struct {
	ID         uint    `db:"id" json:"id"`
	Username   string  `db:"username" json:"username"`
	Action     string  `db:"action" json:"action"`
	EntityType *string `db:"entity_type" json:"entity_type"`
	EntityID   *uint   `db:"entity_id" json:"entity_id"`
	Details    *string `db:"details" json:"details"`
	CreatedAt  string  `db:"created_at" json:"created_at"`
}

// AuditService serves the read side of the audit trail over the sqlx handle.
type AuditService struct {
	db *sqlx.DB
}

func NewAuditService(db *sqlx.DB) *AuditService {
	return &AuditService{db: db}
}

// Recent returns the newest entries, capped at limit.
func (s *AuditService) Recent(ctx context.Context, limit int) ([]AuditEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var entries []AuditEntry
	err := s.db.SelectContext(ctx, &entries,
		`SELECT id, username, action, entity_type, entity_id, details, created_at
		   FROM audit_logs
		  ORDER BY created_at DESC, id DESC
		  LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch audit entries: %w", err)
	}
	return entries, nil
}
