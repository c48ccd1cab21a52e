package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"fleetops/vanlist/internal/apperrors"
	"fleetops/vanlist/internal/constants"
	"fleetops/vanlist/internal/models/dtos"
	models "fleetops/vanlist/internal/models/gorm"
)

// BulkService reconciles a roster batch against one date's schedule: every
// candidate not already assigned gets a partial row, duplicates are skipped,
// and driver rows pick up preassigned vans against a batch-local occupied
// set so two drivers sharing a preassigned van never both receive it.
//
// The whole batch commits in one transaction. Rows are not run through the
// per-row conflict checker; the pre-scanned occupied sets plus the store's
// unique indexes are what keep the batch consistent, and a losing race fails
// the batch as a whole rather than half-committing the counts.
type BulkService struct {
	db *gorm.DB
}

func NewBulkService(db *gorm.DB) *BulkService {
	return &BulkService{db: db}
}

// BulkResult aggregates a batch outcome. NotFound is only populated on the
// name-matching path; unknown employee IDs and van codes are dropped
// silently, matching how ID-based roster files have always behaved.
type BulkResult struct {
	Created  int      `json:"created"`
	Skipped  int      `json:"skipped"`
	NotFound []string `json:"not_found,omitempty"`
}

// batchState is the occupied-set bookkeeping threaded through one batch.
type batchState struct {
	occupiedDrivers map[uint]bool
	occupiedVans    map[uint]bool
	preassigned     map[uint]uint // driver id -> van id
}

func loadBatchState(tx *gorm.DB, date time.Time) (*batchState, error) {
	st := &batchState{
		occupiedDrivers: make(map[uint]bool),
		occupiedVans:    make(map[uint]bool),
		preassigned:     make(map[uint]uint),
	}

	var rows []models.DailyAssignment
	if err := tx.Where("assignment_date = ?", date).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to scan existing assignments: %w", err)
	}
	for _, r := range rows {
		if r.DriverID != nil {
			st.occupiedDrivers[*r.DriverID] = true
		}
		if r.VanID != nil {
			st.occupiedVans[*r.VanID] = true
		}
	}

	var pres []models.DriverVanPreassignment
	if err := tx.Find(&pres).Error; err != nil {
		return nil, fmt.Errorf("failed to load preassignments: %w", err)
	}
	for _, p := range pres {
		st.preassigned[p.DriverID] = p.VanID
	}

	return st, nil
}

// addDriverRow creates one driver-only row, attaching the preassigned van
// when it is still unclaimed for this date within this batch.
func (st *batchState) addDriverRow(tx *gorm.DB, date time.Time, driver *models.Driver) error {
	asgn := models.DailyAssignment{
		AssignmentDate: date,
		DriverID:       &driver.ID,
	}

	if vanID, ok := st.preassigned[driver.ID]; ok && !st.occupiedVans[vanID] {
		v := vanID
		asgn.VanID = &v
		st.occupiedVans[vanID] = true
	}

	if err := tx.Create(&asgn).Error; err != nil {
		if isDuplicate(err) {
			return apperrors.Conflict("Conflict: concurrent assignment for driver '%s'", driver.Name)
		}
		return fmt.Errorf("failed to create assignment for driver %s: %w", driver.EmployeeID, err)
	}
	st.occupiedDrivers[driver.ID] = true
	return nil
}

// ReconcileDrivers creates driver-only rows for every known, active employee
// ID not already assigned on the date. Unknown IDs are dropped silently.
func (svc *BulkService) ReconcileDrivers(ctx context.Context, actor *models.User, date time.Time, employeeIDs []string) (*BulkResult, error) {
	date = DateOnly(date)
	result := &BulkResult{}

	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st, err := loadBatchState(tx, date)
		if err != nil {
			return err
		}

		var drivers []models.Driver
		if err := tx.Where("active = ?", true).Find(&drivers).Error; err != nil {
			return fmt.Errorf("failed to load active drivers: %w", err)
		}
		byEmployeeID := make(map[string]*models.Driver, len(drivers))
		for i := range drivers {
			byEmployeeID[drivers[i].EmployeeID] = &drivers[i]
		}

		for _, eid := range employeeIDs {
			driver, ok := byEmployeeID[eid]
			if !ok {
				continue
			}
			if st.occupiedDrivers[driver.ID] {
				result.Skipped++
				continue
			}
			if err := st.addDriverRow(tx, date, driver); err != nil {
				return err
			}
			result.Created++
		}

		details := fmt.Sprintf("Bulk uploaded drivers for %s: %d assignments created, %d skipped",
			date.Format(dtos.DateLayout), result.Created, result.Skipped)
		return RecordAudit(tx, actor, constants.ActionUpload, "assignment", nil, details)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReconcileDriverNames is the route-sheet variant: informal names are fuzzy
// matched against the active driver pool, the pool shrinking as names are
// consumed. Unmatched names are reported back, not treated as errors.
func (svc *BulkService) ReconcileDriverNames(ctx context.Context, actor *models.User, date time.Time, names []string) (*BulkResult, error) {
	date = DateOnly(date)
	result := &BulkResult{}

	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st, err := loadBatchState(tx, date)
		if err != nil {
			return err
		}

		var pool []models.Driver
		if err := tx.Where("active = ?", true).Find(&pool).Error; err != nil {
			return fmt.Errorf("failed to load active drivers: %w", err)
		}

		for _, name := range names {
			matched := MatchDriverName(name, pool)
			if matched == nil {
				result.NotFound = append(result.NotFound, name)
				continue
			}

			// Consume the match so no driver absorbs two roster names.
			driver := *matched
			for i := range pool {
				if pool[i].ID == driver.ID {
					pool = append(pool[:i], pool[i+1:]...)
					break
				}
			}

			if st.occupiedDrivers[driver.ID] {
				result.Skipped++
				continue
			}
			if err := st.addDriverRow(tx, date, &driver); err != nil {
				return err
			}
			result.Created++
		}

		details := fmt.Sprintf("Bulk uploaded driver route sheet for %s: %d assignments created, %d skipped, %d unmatched",
			date.Format(dtos.DateLayout), result.Created, result.Skipped, len(result.NotFound))
		return RecordAudit(tx, actor, constants.ActionUpload, "assignment", nil, details)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReconcileVans creates van-only rows for every known, active van code not
// already assigned on the date. Unknown codes are dropped silently; vans
// never fuzzy-match and never auto-fill.
func (svc *BulkService) ReconcileVans(ctx context.Context, actor *models.User, date time.Time, codes []string) (*BulkResult, error) {
	date = DateOnly(date)
	result := &BulkResult{}

	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st, err := loadBatchState(tx, date)
		if err != nil {
			return err
		}

		var vans []models.Van
		if err := tx.Where("active = ?", true).Find(&vans).Error; err != nil {
			return fmt.Errorf("failed to load active vans: %w", err)
		}
		byCode := make(map[string]*models.Van, len(vans))
		for i := range vans {
			byCode[vans[i].Code] = &vans[i]
		}

		for _, code := range codes {
			van, ok := byCode[code]
			if !ok {
				continue
			}
			if st.occupiedVans[van.ID] {
				result.Skipped++
				continue
			}

			asgn := models.DailyAssignment{
				AssignmentDate: date,
				VanID:          &van.ID,
			}
			if err := tx.Create(&asgn).Error; err != nil {
				if isDuplicate(err) {
					return apperrors.Conflict("Conflict: concurrent assignment for van '%s'", van.Code)
				}
				return fmt.Errorf("failed to create assignment for van %s: %w", van.Code, err)
			}
			st.occupiedVans[van.ID] = true
			result.Created++
		}

		details := fmt.Sprintf("Bulk uploaded vans for %s: %d assignments created, %d skipped",
			date.Format(dtos.DateLayout), result.Created, result.Skipped)
		return RecordAudit(tx, actor, constants.ActionUpload, "assignment", nil, details)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
