package services

import (
	"context"
	"testing"

	"fleetops/vanlist/internal/fileparse"
	models "fleetops/vanlist/internal/models/gorm"
)

func vanFile(rows ...fileparse.VanRow) *fileparse.VanFile {
	return &fileparse.VanFile{Rows: rows, Total: len(rows)}
}

func driverFile(rows ...fileparse.DriverRow) *fileparse.DriverFile {
	return &fileparse.DriverFile{Rows: rows, HasIDs: true, Total: len(rows)}
}

func TestImportVans_CreateUpdateDeactivate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewImportService(db)
	actor := testActor(t, db)
	ctx := context.Background()

	res, err := svc.ImportVans(ctx, vanFile(
		fileparse.VanRow{Code: "VAN-1", Description: "Sprinter", RowNum: 2},
		fileparse.VanRow{Code: "VAN-2", RowNum: 3},
	), "vans.csv", actor)
	if err != nil {
		t.Fatalf("ImportVans failed: %v", err)
	}
	if res.Imported != 2 {
		t.Fatalf("Expected 2 imported, got %+v", res)
	}

	// Second file: VAN-1 changes, VAN-2 is absent, VAN-3 is new.
	res, err = svc.ImportVans(ctx, vanFile(
		fileparse.VanRow{Code: "VAN-1", Description: "Sprinter LWB", OperationalStatus: "grounded", RowNum: 2},
		fileparse.VanRow{Code: "VAN-3", RowNum: 3},
	), "vans2.csv", actor)
	if err != nil {
		t.Fatalf("Second ImportVans failed: %v", err)
	}
	if res.Imported != 1 || res.Updated != 1 || res.Deactivated != 1 {
		t.Fatalf("Expected 1 imported, 1 updated, 1 deactivated, got %+v", res)
	}

	var van1 models.Van
	if err := db.Where("code = ?", "VAN-1").First(&van1).Error; err != nil {
		t.Fatalf("VAN-1 missing: %v", err)
	}
	if van1.Description == nil || *van1.Description != "Sprinter LWB" {
		t.Errorf("Expected updated description, got %v", van1.Description)
	}
	if van1.OperationalStatus == nil || *van1.OperationalStatus != models.VanGrounded {
		t.Errorf("Expected GROUNDED status, got %v", van1.OperationalStatus)
	}

	var van2 models.Van
	if err := db.Where("code = ?", "VAN-2").First(&van2).Error; err != nil {
		t.Fatalf("VAN-2 missing: %v", err)
	}
	if van2.Active {
		t.Error("Expected VAN-2 deactivated")
	}

	// Third file: VAN-2 reappears and reactivates.
	res, err = svc.ImportVans(ctx, vanFile(
		fileparse.VanRow{Code: "VAN-1", Description: "Sprinter LWB", OperationalStatus: "grounded", RowNum: 2},
		fileparse.VanRow{Code: "VAN-2", RowNum: 3},
		fileparse.VanRow{Code: "VAN-3", RowNum: 4},
	), "vans3.csv", actor)
	if err != nil {
		t.Fatalf("Third ImportVans failed: %v", err)
	}
	if res.Updated != 1 {
		t.Fatalf("Expected 1 updated (reactivation), got %+v", res)
	}

	if err := db.Where("code = ?", "VAN-2").First(&van2).Error; err != nil {
		t.Fatalf("VAN-2 missing: %v", err)
	}
	if !van2.Active {
		t.Error("Expected VAN-2 reactivated")
	}
}

func TestImportVans_DuplicateInFileSkipped(t *testing.T) {
	db := setupTestDB(t)
	svc := NewImportService(db)
	actor := testActor(t, db)

	res, err := svc.ImportVans(context.Background(), vanFile(
		fileparse.VanRow{Code: "VAN-1", RowNum: 2},
		fileparse.VanRow{Code: "van-1", RowNum: 3},
	), "vans.csv", actor)
	if err != nil {
		t.Fatalf("ImportVans failed: %v", err)
	}
	if res.Imported != 1 || res.Skipped != 1 {
		t.Fatalf("Expected 1 imported and 1 skipped, got %+v", res)
	}
	if len(res.Errors) != 1 {
		t.Errorf("Expected duplicate reported in errors, got %v", res.Errors)
	}
}

func TestImportVans_NoValidRowsKeepsRoster(t *testing.T) {
	db := setupTestDB(t)
	svc := NewImportService(db)
	actor := testActor(t, db)

	seedVan(t, db, "VAN-1")
	seedVan(t, db, "VAN-2")

	// Every row failed parsing: nothing to reconcile against, so the
	// existing fleet must stay active.
	res, err := svc.ImportVans(context.Background(), &fileparse.VanFile{
		Total:  2,
		Errors: []string{"Row 2: empty code", "Row 3: empty code"},
	}, "broken.csv", actor)
	if err != nil {
		t.Fatalf("ImportVans failed: %v", err)
	}
	if res.Deactivated != 0 {
		t.Fatalf("Expected no deactivations, got %d", res.Deactivated)
	}

	var active int64
	if err := db.Model(&models.Van{}).Where("active = ?", true).Count(&active).Error; err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if active != 2 {
		t.Errorf("Expected both vans still active, got %d", active)
	}
}

func TestImportDrivers_NoValidRowsKeepsRoster(t *testing.T) {
	db := setupTestDB(t)
	svc := NewImportService(db)
	actor := testActor(t, db)

	seedDriver(t, db, "D100", "Alice Smith")

	res, err := svc.ImportDrivers(context.Background(), &fileparse.DriverFile{
		HasIDs: true,
		Total:  1,
		Errors: []string{"Row 2: empty employee_id"},
	}, "broken.csv", actor)
	if err != nil {
		t.Fatalf("ImportDrivers failed: %v", err)
	}
	if res.Deactivated != 0 {
		t.Fatalf("Expected no deactivations, got %d", res.Deactivated)
	}

	var d100 models.Driver
	if err := db.Where("employee_id = ?", "D100").First(&d100).Error; err != nil {
		t.Fatalf("D100 missing: %v", err)
	}
	if !d100.Active {
		t.Error("Expected D100 still active")
	}
}

func TestImportDrivers_NameChangeAndDeactivate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewImportService(db)
	actor := testActor(t, db)
	ctx := context.Background()

	_, err := svc.ImportDrivers(ctx, driverFile(
		fileparse.DriverRow{EmployeeID: "D100", Name: "Alice Smith", RowNum: 2},
		fileparse.DriverRow{EmployeeID: "D200", Name: "Bob Jones", RowNum: 3},
	), "drivers.csv", actor)
	if err != nil {
		t.Fatalf("ImportDrivers failed: %v", err)
	}

	res, err := svc.ImportDrivers(ctx, driverFile(
		fileparse.DriverRow{EmployeeID: "D100", Name: "Alice Smith-Jones", RowNum: 2},
	), "drivers2.csv", actor)
	if err != nil {
		t.Fatalf("Second ImportDrivers failed: %v", err)
	}
	if res.Updated != 1 || res.Deactivated != 1 {
		t.Fatalf("Expected 1 updated and 1 deactivated, got %+v", res)
	}

	var d100 models.Driver
	if err := db.Where("employee_id = ?", "D100").First(&d100).Error; err != nil {
		t.Fatalf("D100 missing: %v", err)
	}
	if d100.Name != "Alice Smith-Jones" {
		t.Errorf("Expected renamed driver, got %q", d100.Name)
	}
}

func TestImport_WritesLogRow(t *testing.T) {
	db := setupTestDB(t)
	svc := NewImportService(db)
	actor := testActor(t, db)

	if _, err := svc.ImportVans(context.Background(), vanFile(
		fileparse.VanRow{Code: "VAN-1", RowNum: 2},
	), "fleet.xlsx", actor); err != nil {
		t.Fatalf("ImportVans failed: %v", err)
	}

	var logs []models.ImportLog
	if err := db.Find(&logs).Error; err != nil {
		t.Fatalf("Failed to read import logs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("Expected 1 import log, got %d", len(logs))
	}
	if logs[0].Filename != "fleet.xlsx" || logs[0].ImportType != "van" {
		t.Errorf("Unexpected import log: %+v", logs[0])
	}
	if logs[0].UploadedBy == nil || *logs[0].UploadedBy != actor.Username {
		t.Errorf("Expected uploaded_by %q, got %v", actor.Username, logs[0].UploadedBy)
	}
}
