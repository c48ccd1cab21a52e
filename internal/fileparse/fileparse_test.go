package fileparse

import (
	"strings"
	"testing"
)

func table(rows ...[]string) *Table {
	return &Table{Rows: rows}
}

func TestReadTable_CSV(t *testing.T) {
	content := []byte("code,description\nVAN-1, Sprinter \nVAN-2,\n")
	tab, err := ReadTable(content, "fleet.csv")
	if err != nil {
		t.Fatalf("ReadTable failed: %v", err)
	}
	if len(tab.Rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(tab.Rows))
	}
	if tab.Rows[1][1] != "Sprinter" {
		t.Errorf("Expected trimmed cell, got %q", tab.Rows[1][1])
	}
}

func TestReadTable_UnsupportedExtension(t *testing.T) {
	_, err := ReadTable([]byte("whatever"), "fleet.pdf")
	if err == nil || !strings.Contains(err.Error(), "unsupported file format") {
		t.Fatalf("Expected unsupported format error, got %v", err)
	}
}

func TestParseVans_SimpleFormat(t *testing.T) {
	out, err := ParseVans(table(
		[]string{"code", "description", "operational_status"},
		[]string{"VAN-1", "Sprinter", "GROUNDED"},
		[]string{"", "missing code", ""},
		[]string{"VAN-2", "", ""},
	))
	if err != nil {
		t.Fatalf("ParseVans failed: %v", err)
	}
	if out.Total != 3 {
		t.Errorf("Expected total 3, got %d", out.Total)
	}
	if len(out.Rows) != 2 {
		t.Fatalf("Expected 2 parsed rows, got %d", len(out.Rows))
	}
	if out.Rows[0].Code != "VAN-1" || out.Rows[0].OperationalStatus != "GROUNDED" {
		t.Errorf("Unexpected first row: %+v", out.Rows[0])
	}
	if len(out.Errors) != 1 || !strings.Contains(out.Errors[0], "Row 3") {
		t.Errorf("Expected empty-code error for row 3, got %v", out.Errors)
	}
}

func TestParseVans_VehiclesData(t *testing.T) {
	out, err := ParseVans(table(
		[]string{"licensePlateNumber", "make", "model", "operationalStatus"},
		[]string{"AB12 CDE", "Ford", "Transit", "OPERATIONAL"},
		[]string{"FG34 HIJ", "", "Vito", ""},
	))
	if err != nil {
		t.Fatalf("ParseVans failed: %v", err)
	}
	if len(out.Rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(out.Rows))
	}
	if out.Rows[0].Description != "Ford Transit" {
		t.Errorf("Expected description assembled from make+model, got %q", out.Rows[0].Description)
	}
	if out.Rows[0].OperationalStatus != "OPERATIONAL" {
		t.Errorf("Expected OPERATIONAL status, got %q", out.Rows[0].OperationalStatus)
	}
	if out.Rows[1].Description != "Vito" {
		t.Errorf("Expected model-only description, got %q", out.Rows[1].Description)
	}
}

func TestParseVans_MissingCodeColumn(t *testing.T) {
	_, err := ParseVans(table(
		[]string{"registration", "description"},
		[]string{"VAN-1", "Sprinter"},
	))
	if err == nil || !strings.Contains(err.Error(), "'code' column") {
		t.Fatalf("Expected code-column error, got %v", err)
	}
}

func TestParseDrivers_SimpleFormat(t *testing.T) {
	out, err := ParseDrivers(table(
		[]string{"employee_id", "name"},
		[]string{"D100", "Alice Smith"},
		[]string{"D200", ""},
		[]string{"", "Bob Jones"},
	))
	if err != nil {
		t.Fatalf("ParseDrivers failed: %v", err)
	}
	if !out.HasIDs {
		t.Error("Expected HasIDs for simple format")
	}
	if len(out.Rows) != 1 || out.Rows[0].EmployeeID != "D100" {
		t.Fatalf("Expected only D100 parsed, got %+v", out.Rows)
	}
	if len(out.Errors) != 2 {
		t.Errorf("Expected 2 row errors, got %v", out.Errors)
	}
}

func TestParseDrivers_ScheduleWithIDs(t *testing.T) {
	// The real workbook buries the header a few rows down and puts a
	// "Total rostered" summary line directly under it.
	out, err := ParseDrivers(table(
		[]string{"Weekly Schedule"},
		[]string{},
		[]string{"", "Associate name", "Transporter ID"},
		[]string{"", "Total rostered: 2", ""},
		[]string{"", "Alice Smith", "D100"},
		[]string{"", "Bob Jones", "D200"},
		[]string{"", "Carol White", ""},
	))
	if err != nil {
		t.Fatalf("ParseDrivers failed: %v", err)
	}
	if !out.HasIDs {
		t.Error("Expected HasIDs when Transporter ID column present")
	}
	if len(out.Rows) != 2 {
		t.Fatalf("Expected 2 rows, got %+v", out.Rows)
	}
	if out.Rows[0].EmployeeID != "D100" || out.Rows[1].EmployeeID != "D200" {
		t.Errorf("Unexpected rows: %+v", out.Rows)
	}
	if len(out.Errors) != 1 || !strings.Contains(out.Errors[0], "empty employee_id") {
		t.Errorf("Expected empty-id error for Carol White, got %v", out.Errors)
	}
}

func TestParseDrivers_ScheduleNamesOnly(t *testing.T) {
	out, err := ParseDrivers(table(
		[]string{"Route Sheet"},
		[]string{"Associate name"},
		[]string{"Alice Smith"},
		[]string{""},
		[]string{"Bob Jones"},
	))
	if err != nil {
		t.Fatalf("ParseDrivers failed: %v", err)
	}
	if out.HasIDs {
		t.Error("Expected HasIDs false without Transporter ID column")
	}
	if len(out.Names) != 2 || out.Names[0] != "Alice Smith" || out.Names[1] != "Bob Jones" {
		t.Errorf("Unexpected names: %v", out.Names)
	}
	if len(out.Rows) != 0 {
		t.Errorf("Expected no ID rows, got %+v", out.Rows)
	}
}

func TestParseDrivers_MissingColumns(t *testing.T) {
	if _, err := ParseDrivers(table(
		[]string{"badge", "name"},
		[]string{"D100", "Alice"},
	)); err == nil || !strings.Contains(err.Error(), "employee_id") {
		t.Fatalf("Expected employee_id error, got %v", err)
	}

	if _, err := ParseDrivers(table(
		[]string{"employee_id", "full"},
		[]string{"D100", "Alice"},
	)); err == nil || !strings.Contains(err.Error(), "'name' column") {
		t.Fatalf("Expected name-column error, got %v", err)
	}
}
