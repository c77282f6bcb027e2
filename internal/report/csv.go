package report

import (
	"encoding/csv"
	"io"

	"hazmate/internal/domain"
)

// BOM is written first so Excel on Windows reads the file as UTF-8.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes r as titled sections separated by blank lines. Each
// section is a title row, a header row and its data rows.
func WriteCSV(w io.Writer, r *domain.AnalysisResult) error {
	if _, err := w.Write(BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	sections := []table{
		summaryTable(r),
		lineItemsTable(r),
		placardingTable(r),
		safetyAlertsTable(r),
		violationsTable(r),
		driverActionsTable(r),
	}
	for i, t := range sections {
		if i > 0 {
			if err := cw.Write([]string{}); err != nil {
				return err
			}
		}
		if err := cw.Write([]string{t.name}); err != nil {
			return err
		}
		if err := cw.Write(t.header); err != nil {
			return err
		}
		if err := cw.WriteAll(t.rows); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
