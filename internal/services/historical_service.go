package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"fleetops/vanlist/internal/constants"
	"fleetops/vanlist/internal/models/dtos"
	models "fleetops/vanlist/internal/models/gorm"
)

// HistoricalService edits the backfilled pre-system schedule grid. Rows are
// keyed by (date, van registration); an empty cell has no row at all.
type HistoricalService struct {
	db *gorm.DB
}

func NewHistoricalService(db *gorm.DB) *HistoricalService {
	return &HistoricalService{db: db}
}

// HistoricalOutcome reports what the upsert did with the cell.
type HistoricalOutcome struct {
	Status     string  `json:"status"` // created, updated or free
	ID         *uint   `json:"id,omitempty"`
	VanReg     string  `json:"van_reg"`
	Date       string  `json:"date"`
	DriverName *string `json:"driver_name,omitempty"`
	IsVOR      bool    `json:"is_vor"`
}

// Upsert sets one grid cell. An empty driver name with is_vor false means
// the cell is free, which deletes the row if present.
func (s *HistoricalService) Upsert(ctx context.Context, actor *models.User, in dtos.HistoricalUpsertRequest) (*HistoricalOutcome, error) {
	date, err := time.Parse(dtos.DateLayout, in.AssignmentDate)
	if err != nil {
		return nil, fmt.Errorf("invalid assignment_date: %w", err)
	}
	date = DateOnly(date)

	var driverName *string
	if in.DriverName != nil {
		if trimmed := strings.TrimSpace(*in.DriverName); trimmed != "" {
			driverName = &trimmed
		}
	}
	cellLabel := "VOR"
	if !in.IsVOR && driverName != nil {
		cellLabel = *driverName
	}

	out := &HistoricalOutcome{VanReg: in.VanReg, Date: date.Format(dtos.DateLayout), DriverName: driverName, IsVOR: in.IsVOR}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.HistoricalAssignment
		lookupErr := tx.Where("assignment_date = ? AND van_reg = ?", date, in.VanReg).First(&existing).Error
		found := lookupErr == nil
		if lookupErr != nil && !errors.Is(lookupErr, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up historical assignment: %w", lookupErr)
		}

		if driverName == nil && !in.IsVOR {
			out.Status = "free"
			if !found {
				return nil
			}
			details := fmt.Sprintf("Cleared historical: %s on %s", in.VanReg, out.Date)
			if err := RecordAudit(tx, actor, constants.ActionDelete, "historical_assignment", &existing.ID, details); err != nil {
				return err
			}
			if err := tx.Delete(&existing).Error; err != nil {
				return fmt.Errorf("failed to delete historical assignment: %w", err)
			}
			return nil
		}

		if found {
			existing.DriverName = driverName
			existing.IsVOR = in.IsVOR
			if err := tx.Save(&existing).Error; err != nil {
				return fmt.Errorf("failed to update historical assignment: %w", err)
			}
			out.Status = "updated"
			out.ID = &existing.ID
			details := fmt.Sprintf("Updated historical: %s on %s to %s", in.VanReg, out.Date, cellLabel)
			return RecordAudit(tx, actor, constants.ActionUpdate, "historical_assignment", &existing.ID, details)
		}

		record := models.HistoricalAssignment{
			AssignmentDate: date,
			VanReg:         in.VanReg,
			DriverName:     driverName,
			IsVOR:          in.IsVOR,
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to create historical assignment: %w", err)
		}
		out.Status = "created"
		out.ID = &record.ID
		details := fmt.Sprintf("Created historical: %s on %s to %s", in.VanReg, out.Date, cellLabel)
		return RecordAudit(tx, actor, constants.ActionCreate, "historical_assignment", &record.ID, details)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListRange returns the historical rows within a date range, for the week grid.
func (s *HistoricalService) ListRange(ctx context.Context, start, end time.Time) ([]models.HistoricalAssignment, error) {
	var rows []models.HistoricalAssignment
	err := s.db.WithContext(ctx).
		Where("assignment_date >= ? AND assignment_date <= ?", DateOnly(start), DateOnly(end)).
		Order("assignment_date, van_reg").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list historical assignments: %w", err)
	}
	return rows, nil
}
