package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"fleetops/vanlist/internal/apperrors"
	models "fleetops/vanlist/internal/models/gorm"
)

// ExportService renders schedule snapshots as styled XLSX workbooks.
type ExportService struct {
	db *gorm.DB
}

func NewExportService(db *gorm.DB) *ExportService {
	return &ExportService{db: db}
}

var exportHeaders = []string{
	"Date", "Week #", "Driver ID", "Driver Name",
	"Van (Plate)", "Van Description", "Operational Status", "Status",
	"Created At", "Updated At", "Notes",
}

var simpleExportHeaders = []string{"Driver ID", "Driver Name", "Van (Plate)", "Notes"}

// MaxExportRangeDays caps the period export so one request cannot pull the
// whole table.
const MaxExportRangeDays = 30

// ShortName collapses a roster name to first and last token, dropping middle
// names and route-sheet suffixes like "• DRR1".
func ShortName(name string) string {
	name = strings.TrimSpace(strings.SplitN(name, "•", 2)[0])
	tokens := strings.Fields(name)
	if len(tokens) <= 2 {
		return name
	}
	return tokens[0] + " " + tokens[len(tokens)-1]
}

func exportStatus(a *models.DailyAssignment) string {
	switch a.Shape() {
	case models.ShapePaired:
		return "Assigned"
	case models.ShapeDriverOnly:
		return "Driver Only"
	default:
		return "Van Only"
	}
}

func assignmentExportRow(a *models.DailyAssignment) []any {
	var driverID, driverName, vanCode, vanDesc, vanStatus string
	if a.Driver != nil {
		driverID = a.Driver.EmployeeID
		driverName = ShortName(a.Driver.Name)
	}
	if a.Van != nil {
		vanCode = a.Van.Code
		if a.Van.Description != nil {
			vanDesc = *a.Van.Description
		}
		if a.Van.OperationalStatus != nil {
			vanStatus = string(*a.Van.OperationalStatus)
		}
	}
	notes := ""
	if a.Notes != nil {
		notes = *a.Notes
	}

	return []any{
		a.AssignmentDate.Format("2006-01-02"),
		WeekNumber(a.AssignmentDate),
		driverID,
		driverName,
		vanCode,
		vanDesc,
		vanStatus,
		exportStatus(a),
		a.CreatedAt.Format("2006-01-02 15:04:05"),
		a.UpdatedAt.Format("2006-01-02 15:04:05"),
		notes,
	}
}

func (s *ExportService) loadRange(ctx context.Context, start, end time.Time) ([]models.DailyAssignment, error) {
	var rows []models.DailyAssignment
	err := s.db.WithContext(ctx).
		Preload("Van").Preload("Driver").
		Where("assignment_date >= ? AND assignment_date <= ?", DateOnly(start), DateOnly(end)).
		Order("assignment_date, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load assignments for export: %w", err)
	}
	return rows, nil
}

// writeSheet fills a worksheet with a styled header row and the data rows,
// then sizes columns to content (capped at width 40).
func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]any) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"2C3E50"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Style: 1},
			{Type: "right", Style: 1},
			{Type: "top", Style: 1},
			{Type: "bottom", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to build header style: %w", err)
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		widths[i] = len(h)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write row %d: %w", r+2, err)
			}
			if n := len(fmt.Sprint(v)); c < len(widths) && n > widths[c] {
				widths[c] = n
			}
		}
	}

	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		width := float64(w + 3)
		if width > 40 {
			width = 40
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("failed to size column %s: %w", col, err)
		}
	}
	return nil
}

func renderWorkbook(sheet string, headers []string, rows [][]any) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := writeSheet(f, sheet, headers, rows); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportDaily renders one day's assignments.
func (s *ExportService) ExportDaily(ctx context.Context, date time.Time) ([]byte, error) {
	assignments, err := s.loadRange(ctx, date, date)
	if err != nil {
		return nil, err
	}
	rows := make([][]any, 0, len(assignments))
	for i := range assignments {
		rows = append(rows, assignmentExportRow(&assignments[i]))
	}
	sheet := "Assignments " + DateOnly(date).Format("2006-01-02")
	return renderWorkbook(sheet, exportHeaders, rows)
}

// ExportDailySimple renders the stripped driver/van listing used for
// printing at the depot.
func (s *ExportService) ExportDailySimple(ctx context.Context, date time.Time) ([]byte, error) {
	assignments, err := s.loadRange(ctx, date, date)
	if err != nil {
		return nil, err
	}
	rows := make([][]any, 0, len(assignments))
	for i := range assignments {
		a := &assignments[i]
		var driverID, driverName, vanCode, notes string
		if a.Driver != nil {
			driverID = a.Driver.EmployeeID
			driverName = ShortName(a.Driver.Name)
		}
		if a.Van != nil {
			vanCode = a.Van.Code
		}
		if a.Notes != nil {
			notes = *a.Notes
		}
		rows = append(rows, []any{driverID, driverName, vanCode, notes})
	}
	sheet := "Assignments " + DateOnly(date).Format("2006-01-02")
	return renderWorkbook(sheet, simpleExportHeaders, rows)
}

// ExportWeekly renders a full schedule week.
func (s *ExportService) ExportWeekly(ctx context.Context, weekNumber int) ([]byte, error) {
	start, end := WeekDates(weekNumber)
	assignments, err := s.loadRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	rows := make([][]any, 0, len(assignments))
	for i := range assignments {
		rows = append(rows, assignmentExportRow(&assignments[i]))
	}
	return renderWorkbook(fmt.Sprintf("Week %d", weekNumber), exportHeaders, rows)
}

// ExportPeriod renders an arbitrary date range, capped at
// MaxExportRangeDays.
func (s *ExportService) ExportPeriod(ctx context.Context, start, end time.Time) ([]byte, error) {
	start, end = DateOnly(start), DateOnly(end)
	if start.After(end) {
		return nil, apperrors.Validation("start_date must be before or equal to end_date")
	}
	if int(end.Sub(start).Hours()/24) > MaxExportRangeDays {
		return nil, apperrors.Validation("Date range must not exceed %d days", MaxExportRangeDays)
	}

	assignments, err := s.loadRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	rows := make([][]any, 0, len(assignments))
	for i := range assignments {
		rows = append(rows, assignmentExportRow(&assignments[i]))
	}
	// sheet names are limited to 31 characters
	sheet := fmt.Sprintf("%s to %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	return renderWorkbook(sheet, exportHeaders, rows)
}
