package services

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"fleetops/vanlist/internal/constants"
	"fleetops/vanlist/internal/fileparse"
	"fleetops/vanlist/internal/logging"
	models "fleetops/vanlist/internal/models/gorm"
)

// ImportService refreshes the van and driver rosters from uploaded files.
// An import is an upsert against the full roster: new rows are created,
// changed rows updated, inactive rows reactivated when they reappear, and
// rows absent from the file deactivated rather than deleted so their
// assignment history stays intact.
type ImportService struct {
	db *gorm.DB
}

func NewImportService(db *gorm.DB) *ImportService {
	return &ImportService{db: db}
}

// ImportResult summarizes one roster refresh.
type ImportResult struct {
	Total       int      `json:"total"`
	Imported    int      `json:"imported"`
	Updated     int      `json:"updated"`
	Skipped     int      `json:"skipped"`
	Deactivated int      `json:"deactivated"`
	Errors      []string `json:"errors,omitempty"`
}

// ImportVans upserts the vehicle roster keyed by code.
func (s *ImportService) ImportVans(ctx context.Context, file *fileparse.VanFile, filename string, actor *models.User) (*ImportResult, error) {
	res := &ImportResult{Total: file.Total, Errors: append([]string{}, file.Errors...)}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []models.Van
		if err := tx.Find(&existing).Error; err != nil {
			return fmt.Errorf("failed to load vans: %w", err)
		}
		byCode := make(map[string]*models.Van, len(existing))
		for i := range existing {
			byCode[strings.ToUpper(existing[i].Code)] = &existing[i]
		}

		seen := make(map[string]bool, len(file.Rows))
		for _, row := range file.Rows {
			key := strings.ToUpper(row.Code)
			if seen[key] {
				res.Skipped++
				res.Errors = append(res.Errors, fmt.Sprintf("Row %d: duplicate code '%s' in file", row.RowNum, row.Code))
				continue
			}
			seen[key] = true

			var desc *string
			if row.Description != "" {
				d := row.Description
				desc = &d
			}
			var status *models.VanStatus
			if row.OperationalStatus != "" {
				st := models.VanStatus(strings.ToUpper(row.OperationalStatus))
				status = &st
			}

			if van, ok := byCode[key]; ok {
				changed := !van.Active
				van.Active = true
				if desc != nil && !strPtrEqual(van.Description, desc) {
					van.Description = desc
					changed = true
				}
				if status != nil && (van.OperationalStatus == nil || *van.OperationalStatus != *status) {
					van.OperationalStatus = status
					changed = true
				}
				if !changed {
					res.Skipped++
					continue
				}
				if err := tx.Save(van).Error; err != nil {
					return fmt.Errorf("failed to update van '%s': %w", van.Code, err)
				}
				res.Updated++
				continue
			}

			van := models.Van{Code: row.Code, Description: desc, OperationalStatus: status, Active: true}
			if err := tx.Create(&van).Error; err != nil {
				return fmt.Errorf("failed to create van '%s': %w", row.Code, err)
			}
			res.Imported++
		}

		// A file with no usable rows must not wipe the roster.
		if len(seen) > 0 {
			for key, van := range byCode {
				if !seen[key] && van.Active {
					if err := tx.Model(van).Update("active", false).Error; err != nil {
						return fmt.Errorf("failed to deactivate van '%s': %w", van.Code, err)
					}
					res.Deactivated++
				}
			}
		}

		return s.finishImport(tx, constants.ImportTypeVan, filename, res, actor)
	})
	if err != nil {
		return nil, err
	}

	logging.Info("Van import complete",
		"filename", filename,
		"imported", res.Imported,
		"updated", res.Updated,
		"deactivated", res.Deactivated)
	return res, nil
}

// ImportDrivers upserts the driver roster keyed by employee id.
func (s *ImportService) ImportDrivers(ctx context.Context, file *fileparse.DriverFile, filename string, actor *models.User) (*ImportResult, error) {
	res := &ImportResult{Total: file.Total, Errors: append([]string{}, file.Errors...)}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []models.Driver
		if err := tx.Find(&existing).Error; err != nil {
			return fmt.Errorf("failed to load drivers: %w", err)
		}
		byEmployeeID := make(map[string]*models.Driver, len(existing))
		for i := range existing {
			byEmployeeID[strings.ToUpper(existing[i].EmployeeID)] = &existing[i]
		}

		seen := make(map[string]bool, len(file.Rows))
		for _, row := range file.Rows {
			key := strings.ToUpper(row.EmployeeID)
			if seen[key] {
				res.Skipped++
				res.Errors = append(res.Errors, fmt.Sprintf("Row %d: duplicate employee_id '%s' in file", row.RowNum, row.EmployeeID))
				continue
			}
			seen[key] = true

			if drv, ok := byEmployeeID[key]; ok {
				changed := !drv.Active
				drv.Active = true
				if row.Name != "" && drv.Name != row.Name {
					drv.Name = row.Name
					changed = true
				}
				if !changed {
					res.Skipped++
					continue
				}
				if err := tx.Save(drv).Error; err != nil {
					return fmt.Errorf("failed to update driver '%s': %w", drv.EmployeeID, err)
				}
				res.Updated++
				continue
			}

			drv := models.Driver{EmployeeID: row.EmployeeID, Name: row.Name, Active: true}
			if err := tx.Create(&drv).Error; err != nil {
				return fmt.Errorf("failed to create driver '%s': %w", row.EmployeeID, err)
			}
			res.Imported++
		}

		// A file with no usable rows must not wipe the roster.
		if len(seen) > 0 {
			for key, drv := range byEmployeeID {
				if !seen[key] && drv.Active {
					if err := tx.Model(drv).Update("active", false).Error; err != nil {
						return fmt.Errorf("failed to deactivate driver '%s': %w", drv.EmployeeID, err)
					}
					res.Deactivated++
				}
			}
		}

		return s.finishImport(tx, constants.ImportTypeDriver, filename, res, actor)
	})
	if err != nil {
		return nil, err
	}

	logging.Info("Driver import complete",
		"filename", filename,
		"imported", res.Imported,
		"updated", res.Updated,
		"deactivated", res.Deactivated)
	return res, nil
}

// finishImport writes the import log row and audit entry with the final counts.
func (s *ImportService) finishImport(tx *gorm.DB, kind constants.ImportType, filename string, res *ImportResult, actor *models.User) error {
	log := models.ImportLog{
		Filename:        filename,
		ImportType:      string(kind),
		RecordsTotal:    res.Total,
		RecordsImported: res.Imported + res.Updated,
		RecordsSkipped:  res.Skipped,
		RecordsErrors:   len(res.Errors),
	}
	if len(res.Errors) > 0 {
		joined := strings.Join(res.Errors, "\n")
		log.ErrorDetails = &joined
	}
	if actor != nil {
		u := actor.Username
		log.UploadedBy = &u
	}
	if err := tx.Create(&log).Error; err != nil {
		return fmt.Errorf("failed to record import log: %w", err)
	}

	details := fmt.Sprintf("Imported %s file '%s': %d new, %d updated, %d skipped, %d deactivated",
		kind, filename, res.Imported, res.Updated, res.Skipped, res.Deactivated)
	return RecordAudit(tx, actor, constants.ActionUpload, "import_log", &log.ID, details)
}

// RecentImports lists the latest import log rows for the admin view.
func (s *ImportService) RecentImports(ctx context.Context, limit int) ([]models.ImportLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var logs []models.ImportLog
	err := s.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch import logs: %w", err)
	}
	return logs, nil
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
