package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"fleetops/vanlist/internal/apperrors"
	"fleetops/vanlist/internal/common"
	"fleetops/vanlist/internal/constants"
	"fleetops/vanlist/internal/models/dtos"
	models "fleetops/vanlist/internal/models/gorm"
)

const rosterSearchTTL = 30 * time.Second

// RosterService serves the van and driver registers behind the schedule:
// listings, the picker searches and the admin activate/deactivate switches.
// Searches are cached briefly because the schedule page fires one per
// keystroke.
type RosterService struct {
	db    *gorm.DB
	cache common.CacheInterface
}

func NewRosterService(db *gorm.DB, cache common.CacheInterface) *RosterService {
	return &RosterService{db: db, cache: cache}
}

// ListVans returns vans ordered by code, optionally including inactive ones.
func (s *RosterService) ListVans(ctx context.Context, activeOnly bool) ([]models.Van, error) {
	q := s.db.WithContext(ctx)
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var vans []models.Van
	if err := q.Order("code").Find(&vans).Error; err != nil {
		return nil, fmt.Errorf("failed to list vans: %w", err)
	}
	return vans, nil
}

// SearchVans matches active vans by code substring, case-insensitively.
func (s *RosterService) SearchVans(ctx context.Context, term string) ([]dtos.VanOption, error) {
	key := string(constants.CachePrefixVanSearch) + strings.ToLower(term)
	val, err := s.cache.GetOrSet(key, rosterSearchTTL, func() (any, error) {
		return s.queryVanOptions(ctx, term)
	})
	if err != nil {
		return nil, err
	}
	if opts, ok := val.([]dtos.VanOption); ok {
		return opts, nil
	}
	// Redis stores JSON, so its hits decode to generic values; serve this
	// request straight from the store.
	return s.queryVanOptions(ctx, term)
}

func (s *RosterService) queryVanOptions(ctx context.Context, term string) ([]dtos.VanOption, error) {
	q := s.db.WithContext(ctx).Where("active = ?", true)
	if term != "" {
		q = q.Where("LOWER(code) LIKE ?", "%"+strings.ToLower(term)+"%")
	}
	var vans []models.Van
	if err := q.Order("code").Find(&vans).Error; err != nil {
		return nil, fmt.Errorf("failed to search vans: %w", err)
	}

	opts := make([]dtos.VanOption, 0, len(vans))
	for _, v := range vans {
		opt := dtos.VanOption{ID: v.ID, Code: v.Code, Description: v.Description}
		if v.OperationalStatus != nil {
			st := string(*v.OperationalStatus)
			opt.OperationalStatus = &st
		}
		opts = append(opts, opt)
	}
	return opts, nil
}

// ToggleVan flips a van's active flag.
func (s *RosterService) ToggleVan(ctx context.Context, actor *models.User, vanID uint) (*models.Van, error) {
	var van models.Van
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&van, vanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("Van")
			}
			return fmt.Errorf("failed to fetch van: %w", err)
		}
		van.Active = !van.Active
		if err := tx.Model(&van).Update("active", van.Active).Error; err != nil {
			return fmt.Errorf("failed to toggle van: %w", err)
		}
		details := fmt.Sprintf("Toggled van '%s' active=%t", van.Code, van.Active)
		return RecordAudit(tx, actor, constants.ActionUpdate, "van", &van.ID, details)
	})
	if err != nil {
		return nil, err
	}
	return &van, nil
}

// SetVanStatus overwrites a van's operational status; nil clears it.
func (s *RosterService) SetVanStatus(ctx context.Context, actor *models.User, vanID uint, status *string) (*models.Van, error) {
	var van models.Van
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&van, vanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("Van")
			}
			return fmt.Errorf("failed to fetch van: %w", err)
		}

		old := "none"
		if van.OperationalStatus != nil {
			old = string(*van.OperationalStatus)
		}
		updated := "none"
		if status != nil {
			st := models.VanStatus(strings.ToUpper(*status))
			van.OperationalStatus = &st
			updated = string(st)
		} else {
			van.OperationalStatus = nil
		}
		if err := tx.Model(&van).Update("operational_status", van.OperationalStatus).Error; err != nil {
			return fmt.Errorf("failed to update operational status: %w", err)
		}
		details := fmt.Sprintf("Changed van '%s' operational_status: %s to %s", van.Code, old, updated)
		return RecordAudit(tx, actor, constants.ActionUpdate, "van", &van.ID, details)
	})
	if err != nil {
		return nil, err
	}
	return &van, nil
}

// ListDrivers returns drivers ordered by name, optionally including inactive.
func (s *RosterService) ListDrivers(ctx context.Context, activeOnly bool) ([]models.Driver, error) {
	q := s.db.WithContext(ctx)
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var drivers []models.Driver
	if err := q.Order("name").Find(&drivers).Error; err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}
	return drivers, nil
}

// SearchDrivers matches active drivers by name or employee id, capped at 20.
func (s *RosterService) SearchDrivers(ctx context.Context, term string) ([]dtos.DriverOption, error) {
	key := string(constants.CachePrefixDriverSearch) + strings.ToLower(term)
	val, err := s.cache.GetOrSet(key, rosterSearchTTL, func() (any, error) {
		return s.queryDriverOptions(ctx, term)
	})
	if err != nil {
		return nil, err
	}
	if opts, ok := val.([]dtos.DriverOption); ok {
		return opts, nil
	}
	return s.queryDriverOptions(ctx, term)
}

func (s *RosterService) queryDriverOptions(ctx context.Context, term string) ([]dtos.DriverOption, error) {
	q := s.db.WithContext(ctx).Where("active = ?", true)
	if term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(employee_id) LIKE ?", like, like)
	}
	var drivers []models.Driver
	if err := q.Order("name").Limit(20).Find(&drivers).Error; err != nil {
		return nil, fmt.Errorf("failed to search drivers: %w", err)
	}

	opts := make([]dtos.DriverOption, 0, len(drivers))
	for _, d := range drivers {
		opts = append(opts, dtos.DriverOption{ID: d.ID, EmployeeID: d.EmployeeID, Name: d.Name})
	}
	return opts, nil
}

// DeactivateDriver soft-deletes a driver so history keeps referencing them.
func (s *RosterService) DeactivateDriver(ctx context.Context, actor *models.User, driverID uint) (*models.Driver, error) {
	var driver models.Driver
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&driver, driverID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("Driver")
			}
			return fmt.Errorf("failed to fetch driver: %w", err)
		}
		driver.Active = false
		if err := tx.Model(&driver).Update("active", false).Error; err != nil {
			return fmt.Errorf("failed to deactivate driver: %w", err)
		}
		details := fmt.Sprintf("Deactivated driver '%s'", driver.Name)
		return RecordAudit(tx, actor, constants.ActionDelete, "driver", &driver.ID, details)
	})
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

// ToggleDriver flips a driver's active flag.
func (s *RosterService) ToggleDriver(ctx context.Context, actor *models.User, driverID uint) (*models.Driver, error) {
	var driver models.Driver
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&driver, driverID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("Driver")
			}
			return fmt.Errorf("failed to fetch driver: %w", err)
		}
		driver.Active = !driver.Active
		if err := tx.Model(&driver).Update("active", driver.Active).Error; err != nil {
			return fmt.Errorf("failed to toggle driver: %w", err)
		}
		details := fmt.Sprintf("Toggled driver '%s' active=%t", driver.Name, driver.Active)
		return RecordAudit(tx, actor, constants.ActionUpdate, "driver", &driver.ID, details)
	})
	if err != nil {
		return nil, err
	}
	return &driver, nil
}
