package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"fleetops/vanlist/internal/apperrors"
	"fleetops/vanlist/internal/constants"
	"fleetops/vanlist/internal/models/dtos"
	models "fleetops/vanlist/internal/models/gorm"
)

// AssignmentService owns the daily schedule: conflict checking, the
// create/update/delete lifecycle, and pairing/unpairing of partial rows.
// Every mutating operation runs in a single transaction with its audit entry;
// the store's unique indexes on (date, van) and (date, driver) are the
// backstop for races the pre-write scan cannot see.
type AssignmentService struct {
	db *gorm.DB
}

func NewAssignmentService(db *gorm.DB) *AssignmentService {
	return &AssignmentService{db: db}
}

// AssignmentInput carries the full desired state of a row. Updates overwrite
// every field, including clearing references passed as nil.
type AssignmentInput struct {
	Date     time.Time
	VanID    *uint
	DriverID *uint
	Notes    *string
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// checkVanConflict fails with a conflict error when another row already holds
// this van on this date. excludeID skips the row being updated in place.
func checkVanConflict(tx *gorm.DB, date time.Time, van *models.Van, excludeID *uint) error {
	q := tx.Model(&models.DailyAssignment{}).
		Where("assignment_date = ? AND van_id = ?", DateOnly(date), van.ID)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return fmt.Errorf("van conflict scan failed: %w", err)
	}
	if count > 0 {
		return apperrors.Conflict("Van '%s' is already assigned on %s", van.Code, DateOnly(date).Format(dtos.DateLayout))
	}
	return nil
}

// checkDriverConflict is the driver-side twin of checkVanConflict.
func checkDriverConflict(tx *gorm.DB, date time.Time, driver *models.Driver, excludeID *uint) error {
	q := tx.Model(&models.DailyAssignment{}).
		Where("assignment_date = ? AND driver_id = ?", DateOnly(date), driver.ID)
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return fmt.Errorf("driver conflict scan failed: %w", err)
	}
	if count > 0 {
		return apperrors.Conflict("Driver '%s' already has an assignment on %s", driver.Name, DateOnly(date).Format(dtos.DateLayout))
	}
	return nil
}

// CheckConflict is the pure read form: would (date, van, driver) collide with
// an existing row, ignoring excludeID? Van is checked before driver, matching
// the create path's surfacing order.
func (svc *AssignmentService) CheckConflict(ctx context.Context, date time.Time, vanID, driverID, excludeID *uint) error {
	tx := svc.db.WithContext(ctx)

	if vanID != nil {
		van, err := loadVan(tx, *vanID)
		if err != nil {
			return err
		}
		if err := checkVanConflict(tx, date, van, excludeID); err != nil {
			return err
		}
	}
	if driverID != nil {
		driver, err := loadDriver(tx, *driverID)
		if err != nil {
			return err
		}
		if err := checkDriverConflict(tx, date, driver, excludeID); err != nil {
			return err
		}
	}
	return nil
}

func loadVan(tx *gorm.DB, id uint) (*models.Van, error) {
	var van models.Van
	err := tx.First(&van, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Van")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch van: %w", err)
	}
	return &van, nil
}

func loadDriver(tx *gorm.DB, id uint) (*models.Driver, error) {
	var driver models.Driver
	err := tx.First(&driver, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Driver")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch driver: %w", err)
	}
	return &driver, nil
}

func loadAssignment(tx *gorm.DB, id uint) (*models.DailyAssignment, error) {
	var asgn models.DailyAssignment
	err := tx.Preload("Van").Preload("Driver").First(&asgn, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Assignment")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignment: %w", err)
	}
	return &asgn, nil
}

func vanLabel(van *models.Van) string {
	if van == nil {
		return "no van"
	}
	return fmt.Sprintf("van '%s'", van.Code)
}

func driverLabel(driver *models.Driver) string {
	if driver == nil {
		return "no driver"
	}
	return fmt.Sprintf("driver '%s'", driver.Name)
}

// Create inserts a new assignment row. A driver-only row picks up the
// driver's preassigned van when that van is still free on the date; a taken
// preassigned van never fails the create, the row just stays driver-only.
func (svc *AssignmentService) Create(ctx context.Context, actor *models.User, in AssignmentInput) (*models.DailyAssignment, error) {
	if in.VanID == nil && in.DriverID == nil {
		return nil, apperrors.Validation("At least one of van_id or driver_id must be provided")
	}

	date := DateOnly(in.Date)
	var created models.DailyAssignment

	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var van *models.Van
		var driver *models.Driver
		var err error

		if in.VanID != nil {
			if van, err = loadVan(tx, *in.VanID); err != nil {
				return err
			}
			if err = checkVanConflict(tx, date, van, nil); err != nil {
				return err
			}
		}

		if in.DriverID != nil {
			if driver, err = loadDriver(tx, *in.DriverID); err != nil {
				return err
			}
			if err = checkDriverConflict(tx, date, driver, nil); err != nil {
				return err
			}
		}

		created = models.DailyAssignment{
			AssignmentDate: date,
			VanID:          in.VanID,
			DriverID:       in.DriverID,
			Notes:          in.Notes,
		}
		if err := tx.Create(&created).Error; err != nil {
			if isDuplicate(err) {
				return apperrors.Conflict("Conflict: this van or driver is already assigned on this date")
			}
			return fmt.Errorf("failed to create assignment: %w", err)
		}

		// Auto-fill: a driver-only row inherits the driver's preassigned van
		// when that van is free. Failure here degrades to "no van attached".
		if created.VanID == nil && created.DriverID != nil {
			if filled := svc.applyPreassignment(tx, &created); filled != nil {
				van = filled
			}
		}

		details := fmt.Sprintf("Assigned %s to %s on %s",
			vanLabel(van), driverLabel(driver), date.Format(dtos.DateLayout))
		return RecordAudit(tx, actor, constants.ActionCreate, "assignment", &created.ID, details)
	})
	if err != nil {
		return nil, err
	}

	return loadAssignment(svc.db.WithContext(ctx), created.ID)
}

// applyPreassignment attaches the driver's standing van to a freshly created
// driver-only row when the van has no assignment on the date yet. Returns the
// attached van, or nil when there was nothing to attach.
func (svc *AssignmentService) applyPreassignment(tx *gorm.DB, asgn *models.DailyAssignment) *models.Van {
	var pre models.DriverVanPreassignment
	err := tx.Preload("Van").Where("driver_id = ?", *asgn.DriverID).First(&pre).Error
	if err != nil {
		return nil
	}

	if err := checkVanConflict(tx, asgn.AssignmentDate, &pre.Van, nil); err != nil {
		return nil
	}

	vanID := pre.VanID
	if err := tx.Model(asgn).Update("van_id", vanID).Error; err != nil {
		// A concurrent writer beat us to the van; leave the row driver-only.
		return nil
	}
	asgn.VanID = &vanID
	return &pre.Van
}

// Update overwrites date, references and notes wholesale. The conflict scans
// exclude the row itself so re-saving unchanged data never self-conflicts.
// No preassignment auto-fill on update.
func (svc *AssignmentService) Update(ctx context.Context, actor *models.User, id uint, in AssignmentInput) (*models.DailyAssignment, error) {
	if in.VanID == nil && in.DriverID == nil {
		return nil, apperrors.Validation("At least one of van_id or driver_id must be provided")
	}

	date := DateOnly(in.Date)

	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		asgn, err := loadAssignment(tx, id)
		if err != nil {
			return err
		}

		if in.VanID != nil {
			van, err := loadVan(tx, *in.VanID)
			if err != nil {
				return err
			}
			if err = checkVanConflict(tx, date, van, &id); err != nil {
				return err
			}
		}

		if in.DriverID != nil {
			driver, err := loadDriver(tx, *in.DriverID)
			if err != nil {
				return err
			}
			if err = checkDriverConflict(tx, date, driver, &id); err != nil {
				return err
			}
		}

		updates := map[string]interface{}{
			"assignment_date": date,
			"van_id":          nil,
			"driver_id":       nil,
			"notes":           nil,
		}
		if in.VanID != nil {
			updates["van_id"] = *in.VanID
		}
		if in.DriverID != nil {
			updates["driver_id"] = *in.DriverID
		}
		if in.Notes != nil {
			updates["notes"] = *in.Notes
		}
		if err := tx.Model(asgn).Updates(updates).Error; err != nil {
			if isDuplicate(err) {
				return apperrors.Conflict("Conflict: duplicate assignment")
			}
			return fmt.Errorf("failed to update assignment: %w", err)
		}

		details := fmt.Sprintf("Updated assignment on %s", date.Format(dtos.DateLayout))
		return RecordAudit(tx, actor, constants.ActionUpdate, "assignment", &asgn.ID, details)
	})
	if err != nil {
		return nil, err
	}

	return loadAssignment(svc.db.WithContext(ctx), id)
}

// Delete removes a row and audits what it referenced.
func (svc *AssignmentService) Delete(ctx context.Context, actor *models.User, id uint) error {
	return svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		asgn, err := loadAssignment(tx, id)
		if err != nil {
			return err
		}

		details := fmt.Sprintf("Deleted assignment: %s, %s on %s",
			vanLabel(asgn.Van), driverLabel(asgn.Driver),
			asgn.AssignmentDate.Format(dtos.DateLayout))
		if err := RecordAudit(tx, actor, constants.ActionDelete, "assignment", &asgn.ID, details); err != nil {
			return err
		}

		if err := tx.Delete(&models.DailyAssignment{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete assignment: %w", err)
		}
		return nil
	})
}

// Pair merges a driver-only row and a van-only row into one paired row.
// The van-only row is deleted first so its (date, van) slot is free before
// the van reference moves onto the surviving row.
func (svc *AssignmentService) Pair(ctx context.Context, actor *models.User, driverAsgnID, vanAsgnID uint) (*models.DailyAssignment, error) {
	var survivorID uint

	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		driverAsgn, err := loadAssignment(tx, driverAsgnID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return apperrors.NotFound("Driver assignment")
			}
			return err
		}
		if driverAsgn.DriverID == nil {
			return apperrors.Validation("Assignment has no driver")
		}
		if driverAsgn.VanID != nil {
			return apperrors.Validation("Driver assignment already has a van")
		}

		vanAsgn, err := loadAssignment(tx, vanAsgnID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return apperrors.NotFound("Van assignment")
			}
			return err
		}
		if vanAsgn.VanID == nil {
			return apperrors.Validation("Assignment has no van")
		}
		if vanAsgn.DriverID != nil {
			return apperrors.Validation("Van assignment already has a driver")
		}

		if !driverAsgn.AssignmentDate.Equal(vanAsgn.AssignmentDate) {
			return apperrors.Validation("Assignments must be on the same date")
		}

		targetVanID := *vanAsgn.VanID

		var notesParts []string
		for _, n := range []*string{driverAsgn.Notes, vanAsgn.Notes} {
			if n != nil && *n != "" {
				notesParts = append(notesParts, *n)
			}
		}

		// Free the (date, van) slot before the surviving row claims it.
		if err := tx.Delete(&models.DailyAssignment{}, vanAsgn.ID).Error; err != nil {
			return fmt.Errorf("failed to remove van-only row: %w", err)
		}

		updates := map[string]interface{}{"van_id": targetVanID}
		if len(notesParts) > 0 {
			updates["notes"] = strings.Join(notesParts, "; ")
		}
		if err := tx.Model(&models.DailyAssignment{}).Where("id = ?", driverAsgn.ID).Updates(updates).Error; err != nil {
			if isDuplicate(err) {
				return apperrors.Conflict("Conflict when pairing assignments")
			}
			return fmt.Errorf("failed to pair assignments: %w", err)
		}

		survivorID = driverAsgn.ID
		details := fmt.Sprintf("Paired driver assignment %d with van assignment %d", driverAsgnID, vanAsgnID)
		return RecordAudit(tx, actor, constants.ActionUpdate, "assignment", &survivorID, details)
	})
	if err != nil {
		return nil, err
	}

	return loadAssignment(svc.db.WithContext(ctx), survivorID)
}

// Unpair splits a paired row: the original keeps the driver and notes, a new
// row takes the van. The original's van reference is cleared before the new
// row is inserted so the (date, van) slot is never double-held.
func (svc *AssignmentService) Unpair(ctx context.Context, actor *models.User, id uint) (*dtos.UnpairResponse, error) {
	var out dtos.UnpairResponse

	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		asgn, err := loadAssignment(tx, id)
		if err != nil {
			return err
		}
		if asgn.VanID == nil || asgn.DriverID == nil {
			return apperrors.Validation("Assignment is not fully paired")
		}

		vanID := *asgn.VanID

		if err := tx.Model(&models.DailyAssignment{}).Where("id = ?", asgn.ID).Update("van_id", nil).Error; err != nil {
			return fmt.Errorf("failed to clear van reference: %w", err)
		}

		vanOnly := models.DailyAssignment{
			AssignmentDate: asgn.AssignmentDate,
			VanID:          &vanID,
		}
		if err := tx.Create(&vanOnly).Error; err != nil {
			if isDuplicate(err) {
				return apperrors.Conflict("Conflict when unpairing assignment")
			}
			return fmt.Errorf("failed to create van-only row: %w", err)
		}

		out = dtos.UnpairResponse{
			DriverAssignmentID: asgn.ID,
			VanAssignmentID:    vanOnly.ID,
		}
		details := fmt.Sprintf("Unpaired assignment %d into driver-only + van-only", id)
		return RecordAudit(tx, actor, constants.ActionUpdate, "assignment", &asgn.ID, details)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns all rows in the inclusive date range, eagerly loaded.
func (svc *AssignmentService) List(ctx context.Context, from, to time.Time) ([]models.DailyAssignment, error) {
	var rows []models.DailyAssignment
	err := svc.db.WithContext(ctx).
		Preload("Van").Preload("Driver").
		Where("assignment_date >= ? AND assignment_date <= ?", DateOnly(from), DateOnly(to)).
		Order("assignment_date, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return rows, nil
}

// AvailableVans returns active vans with no assignment on the date, filtered
// by an optional code fragment.
func (svc *AssignmentService) AvailableVans(ctx context.Context, date time.Time, q string) ([]dtos.VanOption, error) {
	tx := svc.db.WithContext(ctx)
	occupied := tx.Model(&models.DailyAssignment{}).
		Select("van_id").
		Where("assignment_date = ? AND van_id IS NOT NULL", DateOnly(date))

	query := tx.Model(&models.Van{}).
		Where("active = ?", true).
		Where("id NOT IN (?)", occupied)
	if q != "" {
		query = query.Where("LOWER(code) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	var vans []models.Van
	if err := query.Order("code").Limit(20).Find(&vans).Error; err != nil {
		return nil, fmt.Errorf("failed to list available vans: %w", err)
	}

	out := make([]dtos.VanOption, 0, len(vans))
	for _, v := range vans {
		opt := dtos.VanOption{ID: v.ID, Code: v.Code, Description: v.Description}
		if v.OperationalStatus != nil {
			s := string(*v.OperationalStatus)
			opt.OperationalStatus = &s
		}
		out = append(out, opt)
	}
	return out, nil
}

// AvailableDrivers returns active drivers with no assignment on the date,
// filtered by an optional name or employee-id fragment.
func (svc *AssignmentService) AvailableDrivers(ctx context.Context, date time.Time, q string) ([]dtos.DriverOption, error) {
	tx := svc.db.WithContext(ctx)
	occupied := tx.Model(&models.DailyAssignment{}).
		Select("driver_id").
		Where("assignment_date = ? AND driver_id IS NOT NULL", DateOnly(date))

	query := tx.Model(&models.Driver{}).
		Where("active = ?", true).
		Where("id NOT IN (?)", occupied)
	if q != "" {
		needle := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(employee_id) LIKE ?", needle, needle)
	}

	var drivers []models.Driver
	if err := query.Order("name").Limit(20).Find(&drivers).Error; err != nil {
		return nil, fmt.Errorf("failed to list available drivers: %w", err)
	}

	out := make([]dtos.DriverOption, 0, len(drivers))
	for _, d := range drivers {
		out = append(out, dtos.DriverOption{ID: d.ID, EmployeeID: d.EmployeeID, Name: d.Name})
	}
	return out, nil
}

// AssignableDriverRow is a driver-only row a van could be paired onto.
type AssignableDriverRow struct {
	AssignmentID uint   `json:"assignment_id"`
	DriverID     uint   `json:"driver_id"`
	EmployeeID   string `json:"employee_id"`
	Name         string `json:"name"`
}

// AssignableDrivers lists the driver-only rows on a date, the candidates for
// receiving a van via Pair.
func (svc *AssignmentService) AssignableDrivers(ctx context.Context, date time.Time) ([]AssignableDriverRow, error) {
	var rows []models.DailyAssignment
	err := svc.db.WithContext(ctx).
		Preload("Driver").
		Where("assignment_date = ? AND driver_id IS NOT NULL AND van_id IS NULL", DateOnly(date)).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list assignable drivers: %w", err)
	}

	out := make([]AssignableDriverRow, 0, len(rows))
	for _, r := range rows {
		row := AssignableDriverRow{AssignmentID: r.ID, DriverID: *r.DriverID}
		if r.Driver != nil {
			row.EmployeeID = r.Driver.EmployeeID
			row.Name = r.Driver.Name
		}
		out = append(out, row)
	}
	return out, nil
}
