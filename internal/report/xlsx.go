package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"hazmate/internal/domain"
)

// Sheet names in workbook order.
var SheetNames = []string{"Summary", "Line Items", "Placarding", "Safety Alerts", "Driver Actions"}

// WriteXLSX writes r as a workbook with one sheet per section. Header rows
// are bold and frozen.
func WriteXLSX(w io.Writer, r *domain.AnalysisResult) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	sheets := []table{
		summaryTable(r),
		lineItemsTable(r),
		placardingTable(r),
		safetyAlertsTable(r),
		driverActionsTable(r),
	}
	// Violations have no sheet of their own; they join the summary.
	for _, v := range r.ComplianceViolations {
		sheets[0].rows = append(sheets[0].rows, []string{"Compliance Violation", v})
	}

	for i, t := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", t.name); err != nil {
				return fmt.Errorf("renaming sheet: %w", err)
			}
		} else if _, err := f.NewSheet(t.name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", t.name, err)
		}
		if err := writeSheet(f, t, headerStyle); err != nil {
			return fmt.Errorf("writing sheet %s: %w", t.name, err)
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, t table, headerStyle int) error {
	if err := setRow(f, t.name, 1, t.header); err != nil {
		return err
	}
	for i, row := range t.rows {
		if err := setRow(f, t.name, i+2, row); err != nil {
			return err
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(t.header))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(t.name, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(t.name, "A", lastCol, 24); err != nil {
		return err
	}
	return f.SetPanes(t.name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func setRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return f.SetSheetRow(sheet, cell, &row)
}
