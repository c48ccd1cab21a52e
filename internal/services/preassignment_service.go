package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"fleetops/vanlist/internal/apperrors"
	"fleetops/vanlist/internal/constants"
	"fleetops/vanlist/internal/models/dtos"
	models "fleetops/vanlist/internal/models/gorm"
)

// PreassignmentService manages the standing driver-to-van defaults consumed
// by the assignment auto-fill.
type PreassignmentService struct {
	db *gorm.DB
}

func NewPreassignmentService(db *gorm.DB) *PreassignmentService {
	return &PreassignmentService{db: db}
}

// List returns every preassignment with driver and van details joined in.
func (s *PreassignmentService) List(ctx context.Context) ([]dtos.PreassignmentEntry, error) {
	var rows []models.DriverVanPreassignment
	err := s.db.WithContext(ctx).
		Preload("Driver").Preload("Van").
		Joins("JOIN drivers ON drivers.id = driver_van_preassignments.driver_id").
		Order("drivers.name").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list preassignments: %w", err)
	}

	out := make([]dtos.PreassignmentEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, dtos.PreassignmentEntry{
			ID:               r.ID,
			DriverID:         r.DriverID,
			VanID:            r.VanID,
			DriverName:       r.Driver.Name,
			DriverEmployeeID: r.Driver.EmployeeID,
			VanCode:          r.Van.Code,
		})
	}
	return out, nil
}

// Upsert sets the driver's standing van, replacing any previous one. The
// table holds at most one row per driver.
func (s *PreassignmentService) Upsert(ctx context.Context, actor *models.User, in dtos.PreassignmentRequest) (*models.DriverVanPreassignment, error) {
	var result *models.DriverVanPreassignment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var driver models.Driver
		if err := tx.First(&driver, in.DriverID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("Driver")
			}
			return fmt.Errorf("failed to look up driver: %w", err)
		}
		var van models.Van
		if err := tx.First(&van, in.VanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("Van")
			}
			return fmt.Errorf("failed to look up van: %w", err)
		}

		var existing models.DriverVanPreassignment
		err := tx.Where("driver_id = ?", in.DriverID).First(&existing).Error
		switch {
		case err == nil:
			oldVan := existing.VanID
			existing.VanID = in.VanID
			if err := tx.Save(&existing).Error; err != nil {
				return fmt.Errorf("failed to update preassignment: %w", err)
			}
			details := fmt.Sprintf("Updated preassignment for driver '%s': van changed from %d to %s", driver.Name, oldVan, van.Code)
			if err := RecordAudit(tx, actor, constants.ActionUpdate, "preassignment", &existing.ID, details); err != nil {
				return err
			}
			result = &existing
		case errors.Is(err, gorm.ErrRecordNotFound):
			pa := models.DriverVanPreassignment{DriverID: in.DriverID, VanID: in.VanID}
			if err := tx.Create(&pa).Error; err != nil {
				return fmt.Errorf("failed to create preassignment: %w", err)
			}
			details := fmt.Sprintf("Pre-assigned van '%s' to driver '%s'", van.Code, driver.Name)
			if err := RecordAudit(tx, actor, constants.ActionCreate, "preassignment", &pa.ID, details); err != nil {
				return err
			}
			result = &pa
		default:
			return fmt.Errorf("failed to look up preassignment: %w", err)
		}

		result.Driver = driver
		result.Van = van
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes a preassignment by id.
func (s *PreassignmentService) Delete(ctx context.Context, actor *models.User, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pa models.DriverVanPreassignment
		err := tx.Preload("Driver").Preload("Van").First(&pa, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Preassignment")
		}
		if err != nil {
			return fmt.Errorf("failed to look up preassignment: %w", err)
		}

		details := fmt.Sprintf("Removed preassignment: driver '%s' was assigned van '%s'", pa.Driver.Name, pa.Van.Code)
		if err := RecordAudit(tx, actor, constants.ActionDelete, "preassignment", &pa.ID, details); err != nil {
			return err
		}
		if err := tx.Delete(&pa).Error; err != nil {
			return fmt.Errorf("failed to delete preassignment: %w", err)
		}
		return nil
	})
}
