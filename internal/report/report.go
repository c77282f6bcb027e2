// Package report exports an AnalysisResult as CSV or XLSX.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"hazmate/internal/domain"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "csv" or "xlsx" in any case; empty means csv.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: unknown report format %q", domain.ErrInvalidInput, s)
	}
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

func (f Format) Filename() string {
	return "hazmat-report." + string(f)
}

// Write renders r in the given format.
func Write(w io.Writer, f Format, r *domain.AnalysisResult) error {
	switch f {
	case FormatXLSX:
		return WriteXLSX(w, r)
	case FormatCSV:
		return WriteCSV(w, r)
	default:
		return fmt.Errorf("%w: unknown report format %q", domain.ErrInvalidInput, f)
	}
}

// table is one section of a report: a CSV block or an XLSX sheet.
type table struct {
	name   string
	header []string
	rows   [][]string
}

func summaryTable(r *domain.AnalysisResult) table {
	band := r.ScoreBand()
	pct := ""
	if p, ok := r.CompliancePercent(); ok {
		pct = strconv.FormatFloat(p, 'f', 0, 64) + "%"
	}
	return table{
		name:   "Summary",
		header: []string{"Field", "Value"},
		rows: [][]string{
			{"Document Valid", formatBool(r.DocumentIsValid)},
			{"Compliance Score", r.ComplianceScore},
			{"Compliance Percent", pct},
			{"Score Band", string(band)},
			{"Can Drive", formatBool(r.DriverSummary.CanDrive)},
			{"Placards", join(r.Placards)},
			{"Placard Reasoning", r.PlacardReasoning},
			{"Missing Fields", join(r.MissingFields)},
			{"Missing Critical Items", join(r.DriverSummary.MissingCriticalItems)},
			{"Incompatibilities", join(r.Incompatibilities)},
			{"Immediate Actions", join(r.ImmediateActions)},
			{"Emergency Contact", r.DriverSummary.EmergencyInfo.EmergencyContact},
			{"Evacuation Distance", r.DriverSummary.EmergencyInfo.EvacuationDistance},
			{"Fire Response", r.DriverSummary.EmergencyInfo.FireResponse},
			{"PPE Required", join(r.DriverSummary.EmergencyInfo.PPERequired)},
			{"CFR References", join(r.CFRReferences)},
		},
	}
}

func lineItemsTable(r *domain.AnalysisResult) table {
	t := table{
		name: "Line Items",
		header: []string{
			"Line", "UN Number", "Proper Shipping Name", "Hazard Class", "Packing Group", "Quantity",
			"ERG Guide", "Hazards", "PPE", "Evacuation Distance", "Fire Response",
		},
	}
	for _, li := range r.LineItems {
		t.rows = append(t.rows, []string{
			strconv.Itoa(li.LineNumber),
			li.UNNumber,
			li.ProperShippingName,
			li.HazardClass,
			li.PackingGroup,
			li.Quantity,
			li.ErgSummary.GuideNumber,
			join(li.ErgSummary.Hazards),
			join(li.ErgSummary.PPE),
			li.ErgSummary.EvacuationDistance,
			li.ErgSummary.FireResponse,
		})
	}
	return t
}

// placardingTable merges the regulatory requirements with the driver's
// placement instructions; a placard named in both shows on one row.
func placardingTable(r *domain.AnalysisResult) table {
	t := table{
		name:   "Placarding",
		header: []string{"Placard", "Required", "Quantity Threshold", "Locations", "Reasoning", "CFR Reference"},
	}
	placements := make(map[string]domain.PlacardPlacement, len(r.DriverSummary.PlacardPlacements))
	for _, p := range r.DriverSummary.PlacardPlacements {
		placements[p.PlacardName] = p
	}
	seen := make(map[string]bool)
	for _, req := range r.PlacardingRequirements {
		seen[req.PlacardName] = true
		t.rows = append(t.rows, []string{
			req.PlacardName,
			formatBool(req.Required),
			req.QuantityThreshold,
			join(placements[req.PlacardName].Locations),
			req.Reasoning,
			req.CFRReference,
		})
	}
	for _, p := range r.DriverSummary.PlacardPlacements {
		if seen[p.PlacardName] {
			continue
		}
		t.rows = append(t.rows, []string{
			p.PlacardName, formatBool(p.Required), "", join(p.Locations), p.Reasoning, p.CFRReference,
		})
	}
	return t
}

func safetyAlertsTable(r *domain.AnalysisResult) table {
	t := table{
		name:   "Safety Alerts",
		header: []string{"Severity", "Title", "Message", "Action Required", "CFR Reference"},
	}
	for _, a := range r.SafetyAlerts {
		t.rows = append(t.rows, []string{string(a.Severity), a.Title, a.Message, a.ActionRequired, a.CFRReference})
	}
	return t
}

func violationsTable(r *domain.AnalysisResult) table {
	t := table{name: "Compliance Violations", header: []string{"#", "Violation"}}
	for i, v := range r.ComplianceViolations {
		t.rows = append(t.rows, []string{strconv.Itoa(i + 1), v})
	}
	return t
}

func driverActionsTable(r *domain.AnalysisResult) table {
	t := table{
		name:   "Driver Actions",
		header: []string{"Priority", "Action", "Location", "Reasoning", "CFR Reference"},
	}
	for _, a := range r.DriverSummary.PrimaryActions {
		t.rows = append(t.rows, []string{string(a.Priority), a.Action, a.Location, a.Reasoning, a.CFRReference})
	}
	return t
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func join(items []string) string {
	return strings.Join(items, "; ")
}
