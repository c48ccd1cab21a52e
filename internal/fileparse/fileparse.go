// Package fileparse turns uploaded CSV/XLSX rosters into typed row batches.
// It knows the three shapes the operation actually receives: plain exports
// with named columns, the fleet "VehiclesData" vehicle dump, and the weekly
// "Schedule" workbook whose header row sits several rows down.
package fileparse

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table is a raw grid of trimmed cell strings, headers included.
type Table struct {
	Rows [][]string
}

// ReadTable parses the upload by extension. XLSX reads the first sheet.
func ReadTable(content []byte, filename string) (*Table, error) {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".csv"):
		return readCSV(content)
	case strings.HasSuffix(lower, ".xlsx"), strings.HasSuffix(lower, ".xls"):
		return readXLSX(content)
	default:
		return nil, fmt.Errorf("unsupported file format: %s (use .csv or .xlsx)", filename)
	}
}

func readCSV(content []byte) (*Table, error) {
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1 // ragged rows are normal in hand-edited sheets

	var rows [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		rows = append(rows, trimRow(record))
	}
	return &Table{Rows: rows}, nil
}

func readXLSX(content []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	raw, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	rows := make([][]string, 0, len(raw))
	for _, r := range raw {
		rows = append(rows, trimRow(r))
	}
	return &Table{Rows: rows}, nil
}

func trimRow(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = strings.TrimSpace(c)
	}
	return out
}

// cell returns the trimmed cell or "" past the row's ragged edge.
func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// headerIndex maps lowercased header names to column positions.
func headerIndex(row []string) map[string]int {
	idx := make(map[string]int, len(row))
	for i, h := range row {
		key := strings.ToLower(strings.TrimSpace(h))
		if key != "" {
			if _, taken := idx[key]; !taken {
				idx[key] = i
			}
		}
	}
	return idx
}

// VanRow is one parsed vehicle line.
type VanRow struct {
	Code              string
	Description       string
	OperationalStatus string
	RowNum            int // 1-based spreadsheet row, for error messages
}

// VanFile is a parsed vehicle roster.
type VanFile struct {
	Rows   []VanRow
	Errors []string
	Total  int
}

// ParseVans handles both van formats: the simple code/description/
// operational_status layout and the VehiclesData dump, auto-detected by a
// licensePlateNumber column (description assembled from make + model).
func ParseVans(t *Table) (*VanFile, error) {
	if len(t.Rows) == 0 {
		return &VanFile{}, nil
	}

	headers := headerIndex(t.Rows[0])
	out := &VanFile{Total: len(t.Rows) - 1}

	if plateCol, ok := headers["licenseplatenumber"]; ok {
		statusCol, hasStatus := headers["operationalstatus"]
		var descCols []int
		for _, key := range []string{"make", "model"} {
			if c, ok := headers[key]; ok {
				descCols = append(descCols, c)
			}
		}

		for i, row := range t.Rows[1:] {
			rowNum := i + 2
			code := cell(row, plateCol)
			if code == "" {
				out.Errors = append(out.Errors, fmt.Sprintf("Row %d: empty licensePlateNumber", rowNum))
				continue
			}
			var parts []string
			for _, c := range descCols {
				if v := cell(row, c); v != "" {
					parts = append(parts, v)
				}
			}
			vr := VanRow{Code: code, Description: strings.Join(parts, " "), RowNum: rowNum}
			if hasStatus {
				vr.OperationalStatus = cell(row, statusCol)
			}
			out.Rows = append(out.Rows, vr)
		}
		return out, nil
	}

	codeCol, ok := headers["code"]
	if !ok {
		return nil, fmt.Errorf("file must have a 'code' column (or 'licensePlateNumber' for VehiclesData format)")
	}
	descCol, hasDesc := headers["description"]
	statusCol, hasStatus := headers["operational_status"]

	for i, row := range t.Rows[1:] {
		rowNum := i + 2
		code := cell(row, codeCol)
		if code == "" {
			out.Errors = append(out.Errors, fmt.Sprintf("Row %d: empty code", rowNum))
			continue
		}
		vr := VanRow{Code: code, RowNum: rowNum}
		if hasDesc {
			vr.Description = cell(row, descCol)
		}
		if hasStatus {
			vr.OperationalStatus = cell(row, statusCol)
		}
		out.Rows = append(out.Rows, vr)
	}
	return out, nil
}

// DriverRow is one parsed roster line.
type DriverRow struct {
	EmployeeID string
	Name       string
	RowNum     int
}

// DriverFile is a parsed driver roster. When the Schedule workbook carries no
// Transporter ID column, HasIDs is false and Names holds the informal name
// strings for fuzzy resolution instead.
type DriverFile struct {
	Rows   []DriverRow
	Names  []string
	HasIDs bool
	Errors []string
	Total  int
}

// scheduleHeader locates the Schedule-format header row: "Associate name"
// somewhere in the first ten rows. Returns the row index and the name/id
// column positions (idCol -1 when absent).
func scheduleHeader(t *Table) (rowIdx, nameCol, idCol int, found bool) {
	limit := len(t.Rows)
	if limit > 10 {
		limit = 10
	}
	for i := 0; i < limit; i++ {
		for j, c := range t.Rows[i] {
			if strings.EqualFold(c, "associate name") {
				idCol = -1
				for k, h := range t.Rows[i] {
					if strings.EqualFold(h, "transporter id") {
						idCol = k
						break
					}
				}
				return i, j, idCol, true
			}
		}
	}
	return 0, 0, 0, false
}

// ParseDrivers handles the simple employee_id/name layout and the Schedule
// workbook. Schedule parsing skips everything above the located header row
// plus the "Total rostered" summary line directly under it.
func ParseDrivers(t *Table) (*DriverFile, error) {
	if len(t.Rows) == 0 {
		return &DriverFile{HasIDs: true}, nil
	}

	if headerRow, nameCol, idCol, ok := scheduleHeader(t); ok {
		out := &DriverFile{HasIDs: idCol >= 0}
		dataStart := headerRow + 1
		if dataStart < len(t.Rows) {
			first := cell(t.Rows[dataStart], nameCol)
			if first != "" && strings.Contains(strings.ToLower(first), "total") {
				dataStart++
			}
		}
		out.Total = len(t.Rows) - dataStart

		for i := dataStart; i < len(t.Rows); i++ {
			rowNum := i + 1
			name := cell(t.Rows[i], nameCol)
			if name == "" {
				continue
			}
			if !out.HasIDs {
				out.Names = append(out.Names, name)
				continue
			}
			eid := cell(t.Rows[i], idCol)
			if eid == "" {
				out.Errors = append(out.Errors, fmt.Sprintf("Row %d: empty employee_id", rowNum))
				continue
			}
			out.Rows = append(out.Rows, DriverRow{EmployeeID: eid, Name: name, RowNum: rowNum})
		}
		return out, nil
	}

	headers := headerIndex(t.Rows[0])
	idCol, hasID := headers["employee_id"]
	nameCol, hasName := headers["name"]
	if !hasID {
		return nil, fmt.Errorf("file must have an 'employee_id' column (or 'Associate name' for Schedule format)")
	}
	if !hasName {
		return nil, fmt.Errorf("file must have a 'name' column")
	}

	out := &DriverFile{HasIDs: true, Total: len(t.Rows) - 1}
	for i, row := range t.Rows[1:] {
		rowNum := i + 2
		eid := cell(row, idCol)
		name := cell(row, nameCol)
		if eid == "" {
			out.Errors = append(out.Errors, fmt.Sprintf("Row %d: empty employee_id", rowNum))
			continue
		}
		if name == "" {
			out.Errors = append(out.Errors, fmt.Sprintf("Row %d: empty name", rowNum))
			continue
		}
		out.Rows = append(out.Rows, DriverRow{EmployeeID: eid, Name: name, RowNum: rowNum})
	}
	return out, nil
}
