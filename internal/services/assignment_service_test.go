package services

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"fleetops/vanlist/internal/apperrors"
	"fleetops/vanlist/internal/constants"
	models "fleetops/vanlist/internal/models/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.AuditLog{},
		&models.Van{},
		&models.Driver{},
		&models.DailyAssignment{},
		&models.DriverVanPreassignment{},
		&models.ImportLog{},
		&models.HistoricalAssignment{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func testActor(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := models.User{
		Username:       "tester",
		FullName:       "Test Operator",
		HashedPassword: "x",
		Role:           constants.RoleOperator,
		Active:         true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	return &user
}

func seedVan(t *testing.T, db *gorm.DB, code string) *models.Van {
	t.Helper()
	van := models.Van{Code: code, Active: true}
	if err := db.Create(&van).Error; err != nil {
		t.Fatalf("Failed to seed van %s: %v", code, err)
	}
	return &van
}

func seedDriver(t *testing.T, db *gorm.DB, employeeID, name string) *models.Driver {
	t.Helper()
	driver := models.Driver{EmployeeID: employeeID, Name: name, Active: true}
	if err := db.Create(&driver).Error; err != nil {
		t.Fatalf("Failed to seed driver %s: %v", employeeID, err)
	}
	return &driver
}

var testDate = time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)

func TestCreateAssignment_RequiresReference(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAssignmentService(db)
	actor := testActor(t, db)

	_, err := svc.Create(context.Background(), actor, AssignmentInput{Date: testDate})
	if !apperrors.IsValidation(err) {
		t.Fatalf("Expected validation error, got %v", err)
	}
}

func TestCreateAssignment_UnknownVan(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAssignmentService(db)
	actor := testActor(t, db)

	missing := uint(999)
	_, err := svc.Create(context.Background(), actor, AssignmentInput{Date: testDate, VanID: &missing})
	if !apperrors.IsNotFound(err) {
		t.Fatalf("Expected not-found error, got %v", err)
	}
}

func TestCreateAssignment_VanConflict(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAssignmentService(db)
	actor := testActor(t, db)
	van := seedVan(t, db, "VAN-1")

	if _, err := svc.Create(context.Background(), actor, AssignmentInput{Date: testDate, VanID: &van.ID}); err != nil {
		t.Fatalf("First create failed: %v", err)
	}
	_, err := svc.Create(context.Background(), actor, AssignmentInput{Date: testDate, VanID: &van.ID})
	if !apperrors.IsConflict(err) {
		t.Fatalf("Expected conflict error, got %v", err)
	}

	// Same van on another date is fine.
	nextDay := testDate.AddDate(0, 0, 1)
	if _, err := svc.Create(context.Background(), actor, AssignmentInput{Date: nextDay, VanID: &van.ID}); err != nil {
		t.Fatalf("Create on different date failed: %v", err)
	}
}

func TestCreateAssignment_DriverConflict(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAssignmentService(db)
	actor := testActor(t, db)
	driver := seedDriver(t, db, "D100", "Alice Smith")

	if _, err := svc.Create(context.Background(), actor, AssignmentInput{Date: testDate, DriverID: &driver.ID}); err != nil {
		t.Fatalf("First create failed: %v", err)
	}
	_, err := svc.Create(context.Background(), actor, AssignmentInput{Date: testDate, DriverID: &driver.ID})
	if !apperrors.IsConflict(err) {
		t.Fatalf("Expected conflict error, got %v", err)
	}
}

func TestCreateAssignment_PreassignmentAutoFill(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAssignmentService(db)
	actor := testActor(t, db)
	van := seedVan(t, db, "VAN-1")
	driver := seedDriver(t, db, "D100", "Alice Smith")

	if err := db.Create(&models.DriverVanPreassignment{DriverID: driver.ID, VanID: van.ID}).Error; err != nil {
		t.Fatalf("Failed to seed preassignment: %v", err)
	}

	asgn, err := svc.Create(context.Background(), actor, AssignmentInput{Date: testDate, DriverID: &driver.ID})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if asgn.VanID == nil || *asgn.VanID != van.ID {
		t.Fatalf("Expected preassigned van %d to be attached, got %v", van.ID, asgn.VanID)
	}
	if asgn.Shape() != models.ShapePaired {
		t.Errorf("Expected paired shape, got %s", asgn.Shape())
	}
}

func TestCreateAssignment_PreassignmentNeverClobbers(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAssignmentService(db)
	actor := testActor(t, db)
	van := seedVan(t, db, "VAN-1")
	driver := seedDriver(t, db, "D100", "Alice Smith")
	other := seedDriver(t, db, "D200", "Bob Jones")

	if err := db.Create(&models.DriverVanPreassignment{DriverID: driver.ID, VanID: van.ID}).Error; err != nil {
		t.Fatalf("Failed to seed preassignment: %v", err)
	}

	// The van is already taken on the date by someone else.
	if _, err := svc.Create(context.Background(), actor, AssignmentInput{Date: testDate, VanID: &van.ID, DriverID: &other.ID}); err != nil {
		t.Fatalf("Seed create failed: %v", err)
	}

	asgn, err := svc.Create(context.Background(), actor, AssignmentInput{Date: testDate, DriverID: &driver.ID})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if asgn.VanID != nil {
		t.Fatalf("Expected driver-only row, van %d was attached", *asgn.VanID)
	}
}

func TestCreateAssignment_ExplicitVanSkipsAutoFill(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAssignmentService(db)
	actor := testActor(t, db)
	preferred := seedVan(t, db, "VAN-1")
	explicit := seedVan(t, db, "VAN-2")
	driver := seedDriver(t, db, "D100", "Alice Smith")

	if err := db.Create(&models.DriverVanPreassignment{DriverID: driver.ID, VanID: preferred.ID}).Error; err != nil {
		t.Fatalf("Failed to seed preassignment: %v", err)
	}

	asgn, err := svc.Create(context.Background(), actor, AssignmentInput{Date: testDate, VanID: &explicit.ID, DriverID: &driver.ID})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if asgn.VanID == nil || *asgn.VanID != explicit.ID {
		t.Fatalf("Expected explicit van %d to win, got %v", explicit.ID, asgn.VanID)
	}
}

func TestUpdateAssignment_ExcludesSelf(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAssignmentService(db)
	actor := testActor(t, db)
	van := seedVan(t, db, "VAN-1")
	driver := seedDriver(t, db, "D100", "Alice Smith")

	asgn, err := svc.Create(context.Background(), actor, AssignmentInput{Date: testDate, VanID: &van.ID, DriverID: &driver.ID})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Re-saving the same references must not self-conflict.
	notes := "double checked"
	updated, err := svc.Update(context.Background(), actor, asgn.ID, AssignmentInput{
		Date: testDate, VanID: &van.ID, DriverID: &driver.ID, Notes: &notes,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Notes == nil || *updated.Notes != notes {
		t.Errorf("Expected notes %q, got %v", notes, updated.Notes)
	}
}

func TestUpdateAssignment_ConflictAgainstOtherRow(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAssignmentService(db)
	actor := testActor(t, db)
	van1 := seedVan(t, db, "VAN-1")
	van2 := seedVan(t, db, "VAN-2")

	if _, err := svc.Create(context.Background(), actor, AssignmentInput{Date: testDate, VanID: &van1.ID}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	second, err := svc.Create(context.Background(), actor, AssignmentInput{Date: testDate, VanID: &van2.ID})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = svc.Update(context.Background(), actor, second.ID, AssignmentInput{Date: testDate, VanID: &van1.ID})
	if !apperrors.IsConflict(err) {
		t.Fatalf("Expected conflict error, got %v", err)
	}
}

func TestDeleteAssignment_FreesTheSlot(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAssignmentService(db)
	actor := testActor(t, db)
	van := seedVan(t, db, "VAN-1")

	asgn, err := svc.Create(context.Background(), actor, AssignmentInput{Date: testDate, VanID: &van.ID})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := svc.Delete(context.Background(), actor, asgn.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := svc.Create(context.Background(), actor, AssignmentInput{Date: testDate, VanID: &van.ID}); err != nil {
		t.Fatalf("Recreate after delete failed: %v", err)
	}
}

func TestPairAssignments_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAssignmentService(db)
	actor := testActor(t, db)
	van := seedVan(t, db, "VAN-1")
	driver := seedDriver(t, db, "D100", "Alice Smith")

	driverNotes := "early start"
	vanNotes := "check tyres"
	driverRow, err := svc.Create(context.Background(), actor, AssignmentInput{Date: testDate, DriverID: &driver.ID, Notes: &driverNotes})
	if err != nil {
		t.Fatalf("Create driver row failed: %v", err)
	}
	vanRow, err := svc.Create(context.Background(), actor, AssignmentInput{Date: testDate, VanID: &van.ID, Notes: &vanNotes})
	if err != nil {
		t.Fatalf("Create van row failed: %v", err)
	}

	paired, err := svc.Pair(context.Background(), actor, driverRow.ID, vanRow.ID)
	if err != nil {
		t.Fatalf("Pair failed: %v", err)
	}
	if paired.ID != driverRow.ID {
		t.Errorf("Expected driver row %d to survive, got %d", driverRow.ID, paired.ID)
	}
	if paired.VanID == nil || *paired.VanID != van.ID {
		t.Fatalf("Expected van %d on paired row, got %v", van.ID, paired.VanID)
	}
	if paired.Notes == nil || *paired.Notes != "early start; check tyres" {
		t.Errorf("Expected joined notes, got %v", paired.Notes)
	}

	var count int64
	db.Model(&models.DailyAssignment{}).Count(&count)
	if count != 1 {
		t.Errorf("Expected 1 row after pairing, got %d", count)
	}

	// Unpair splits back into two rows; the new van-only row carries no notes.
	resp, err := svc.Unpair(context.Background(), actor, paired.ID)
	if err != nil {
		t.Fatalf("Unpair failed: %v", err)
	}
	if resp.DriverAssignmentID != paired.ID {
		t.Errorf("Expected driver row %d, got %d", paired.ID, resp.DriverAssignmentID)
	}

	var vanOnly models.DailyAssignment
	if err := db.First(&vanOnly, resp.VanAssignmentID).Error; err != nil {
		t.Fatalf("Van-only row missing: %v", err)
	}
	if vanOnly.Shape() != models.ShapeVanOnly {
		t.Errorf("Expected van-only shape, got %s", vanOnly.Shape())
	}
	if vanOnly.Notes != nil {
		t.Errorf("Expected no notes on van-only row, got %q", *vanOnly.Notes)
	}

	var driverOnly models.DailyAssignment
	if err := db.First(&driverOnly, resp.DriverAssignmentID).Error; err != nil {
		t.Fatalf("Driver row missing: %v", err)
	}
	if driverOnly.VanID != nil {
		t.Errorf("Expected cleared van reference, got %d", *driverOnly.VanID)
	}
	if driverOnly.Notes == nil || *driverOnly.Notes != "early start; check tyres" {
		t.Errorf("Expected notes kept on driver row, got %v", driverOnly.Notes)
	}
}

func TestPairAssignments_DateMismatch(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAssignmentService(db)
	actor := testActor(t, db)
	van := seedVan(t, db, "VAN-1")
	driver := seedDriver(t, db, "D100", "Alice Smith")

	driverRow, err := svc.Create(context.Background(), actor, AssignmentInput{Date: testDate, DriverID: &driver.ID})
	if err != nil {
		t.Fatalf("Create driver row failed: %v", err)
	}
	vanRow, err := svc.Create(context.Background(), actor, AssignmentInput{Date: testDate.AddDate(0, 0, 1), VanID: &van.ID})
	if err != nil {
		t.Fatalf("Create van row failed: %v", err)
	}

	_, err = svc.Pair(context.Background(), actor, driverRow.ID, vanRow.ID)
	if !apperrors.IsValidation(err) {
		t.Fatalf("Expected validation error, got %v", err)
	}
}

func TestPairAssignments_ShapeValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAssignmentService(db)
	actor := testActor(t, db)
	van := seedVan(t, db, "VAN-1")
	van2 := seedVan(t, db, "VAN-2")
	driver := seedDriver(t, db, "D100", "Alice Smith")

	paired, err := svc.Create(context.Background(), actor, AssignmentInput{Date: testDate, VanID: &van.ID, DriverID: &driver.ID})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	vanRow, err := svc.Create(context.Background(), actor, AssignmentInput{Date: testDate, VanID: &van2.ID})
	if err != nil {
		t.Fatalf("Create van row failed: %v", err)
	}

	// A fully paired row cannot take part in pairing again.
	if _, err := svc.Pair(context.Background(), actor, paired.ID, vanRow.ID); !apperrors.IsValidation(err) {
		t.Fatalf("Expected validation error for paired driver side, got %v", err)
	}
	if _, err := svc.Pair(context.Background(), actor, vanRow.ID, paired.ID); !apperrors.IsValidation(err) {
		t.Fatalf("Expected validation error for van side with driver, got %v", err)
	}
}

func TestUnpair_RejectsPartialRow(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAssignmentService(db)
	actor := testActor(t, db)
	driver := seedDriver(t, db, "D100", "Alice Smith")

	row, err := svc.Create(context.Background(), actor, AssignmentInput{Date: testDate, DriverID: &driver.ID})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Unpair(context.Background(), actor, row.ID); !apperrors.IsValidation(err) {
		t.Fatalf("Expected validation error, got %v", err)
	}
}

func TestAvailableVansAndDrivers(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAssignmentService(db)
	actor := testActor(t, db)
	van1 := seedVan(t, db, "VAN-1")
	seedVan(t, db, "VAN-2")
	driver1 := seedDriver(t, db, "D100", "Alice Smith")
	seedDriver(t, db, "D200", "Bob Jones")

	if _, err := svc.Create(context.Background(), actor, AssignmentInput{Date: testDate, VanID: &van1.ID, DriverID: &driver1.ID}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	vans, err := svc.AvailableVans(context.Background(), testDate, "")
	if err != nil {
		t.Fatalf("AvailableVans failed: %v", err)
	}
	if len(vans) != 1 || vans[0].Code != "VAN-2" {
		t.Fatalf("Expected only VAN-2 available, got %+v", vans)
	}

	drivers, err := svc.AvailableDrivers(context.Background(), testDate, "")
	if err != nil {
		t.Fatalf("AvailableDrivers failed: %v", err)
	}
	if len(drivers) != 1 || drivers[0].EmployeeID != "D200" {
		t.Fatalf("Expected only D200 available, got %+v", drivers)
	}
}

func TestAssignableDrivers_ListsDriverOnlyRows(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAssignmentService(db)
	actor := testActor(t, db)
	van := seedVan(t, db, "VAN-1")
	d1 := seedDriver(t, db, "D100", "Alice Smith")
	d2 := seedDriver(t, db, "D200", "Bob Jones")

	if _, err := svc.Create(context.Background(), actor, AssignmentInput{Date: testDate, DriverID: &d1.ID}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Create(context.Background(), actor, AssignmentInput{Date: testDate, VanID: &van.ID, DriverID: &d2.ID}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	rows, err := svc.AssignableDrivers(context.Background(), testDate)
	if err != nil {
		t.Fatalf("AssignableDrivers failed: %v", err)
	}
	if len(rows) != 1 || rows[0].EmployeeID != "D100" {
		t.Fatalf("Expected only D100 assignable, got %+v", rows)
	}
}

func TestCreateAssignment_WritesAudit(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAssignmentService(db)
	actor := testActor(t, db)
	van := seedVan(t, db, "VAN-1")

	if _, err := svc.Create(context.Background(), actor, AssignmentInput{Date: testDate, VanID: &van.ID}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	var entries []models.AuditLog
	if err := db.Find(&entries).Error; err != nil {
		t.Fatalf("Failed to read audit log: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 audit entry, got %d", len(entries))
	}
	if entries[0].Username != actor.Username || entries[0].Action != string(constants.ActionCreate) {
		t.Errorf("Unexpected audit entry: %+v", entries[0])
	}
}
