package services

import (
	"context"
	"testing"
	"time"

	"fleetops/vanlist/internal/models/dtos"
	models "fleetops/vanlist/internal/models/gorm"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(dtos.DateLayout, s)
	if err != nil {
		t.Fatalf("Bad test date %q: %v", s, err)
	}
	return d
}

func TestHistoricalUpsert_Lifecycle(t *testing.T) {
	db := setupTestDB(t)
	svc := NewHistoricalService(db)
	actor := testActor(t, db)
	ctx := context.Background()

	name := "Alice Smith"
	out, err := svc.Upsert(ctx, actor, dtos.HistoricalUpsertRequest{
		VanReg: "AB12 CDE", AssignmentDate: "2025-11-03", DriverName: &name,
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if out.Status != "created" || out.ID == nil {
		t.Fatalf("Expected created outcome, got %+v", out)
	}

	out, err = svc.Upsert(ctx, actor, dtos.HistoricalUpsertRequest{
		VanReg: "AB12 CDE", AssignmentDate: "2025-11-03", IsVOR: true,
	})
	if err != nil {
		t.Fatalf("Second upsert failed: %v", err)
	}
	if out.Status != "updated" {
		t.Fatalf("Expected updated outcome, got %q", out.Status)
	}

	var row models.HistoricalAssignment
	if err := db.First(&row, *out.ID).Error; err != nil {
		t.Fatalf("Row missing: %v", err)
	}
	if !row.IsVOR || row.DriverName != nil {
		t.Errorf("Expected VOR cell with no driver, got %+v", row)
	}

	// Empty name with is_vor false frees the cell.
	out, err = svc.Upsert(ctx, actor, dtos.HistoricalUpsertRequest{
		VanReg: "AB12 CDE", AssignmentDate: "2025-11-03",
	})
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if out.Status != "free" {
		t.Fatalf("Expected free outcome, got %q", out.Status)
	}
	var count int64
	if err := db.Model(&models.HistoricalAssignment{}).Count(&count).Error; err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected row deleted, got %d rows", count)
	}
}

func TestHistoricalUpsert_FreeOnEmptyCellIsNoop(t *testing.T) {
	db := setupTestDB(t)
	svc := NewHistoricalService(db)
	actor := testActor(t, db)

	blank := "   "
	out, err := svc.Upsert(context.Background(), actor, dtos.HistoricalUpsertRequest{
		VanReg: "AB12 CDE", AssignmentDate: "2025-11-03", DriverName: &blank,
	})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if out.Status != "free" || out.ID != nil {
		t.Errorf("Expected free no-op on whitespace name, got %+v", out)
	}
}

func TestHistoricalUpsert_BadDate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewHistoricalService(db)
	actor := testActor(t, db)

	if _, err := svc.Upsert(context.Background(), actor, dtos.HistoricalUpsertRequest{
		VanReg: "AB12 CDE", AssignmentDate: "03/11/2025",
	}); err == nil {
		t.Fatal("Expected error for malformed date")
	}
}

func TestHistoricalListRange(t *testing.T) {
	db := setupTestDB(t)
	svc := NewHistoricalService(db)
	actor := testActor(t, db)
	ctx := context.Background()

	name := "Alice Smith"
	for _, c := range []struct{ reg, date string }{
		{"AB12 CDE", "2025-11-03"},
		{"FG34 HIJ", "2025-11-03"},
		{"AB12 CDE", "2025-11-10"},
	} {
		if _, err := svc.Upsert(ctx, actor, dtos.HistoricalUpsertRequest{
			VanReg: c.reg, AssignmentDate: c.date, DriverName: &name,
		}); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	rows, err := svc.ListRange(ctx,
		mustDate(t, "2025-11-02"), mustDate(t, "2025-11-08"))
	if err != nil {
		t.Fatalf("ListRange failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows in week, got %d", len(rows))
	}
	if rows[0].VanReg != "AB12 CDE" || rows[1].VanReg != "FG34 HIJ" {
		t.Errorf("Expected van_reg ordering, got %q then %q", rows[0].VanReg, rows[1].VanReg)
	}
}
