package report_test

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"hazmate/internal/domain"
	"hazmate/internal/report"
)

func sampleResult() *domain.AnalysisResult {
	return &domain.AnalysisResult{
		DocumentIsValid:  false,
		ComplianceScore:  "6/10",
		MissingFields:    []string{"Emergency Response Telephone Number"},
		Placards:         []string{"FLAMMABLE", "CORROSIVE"},
		PlacardReasoning: "1,320 lbs of Class 3 exceeds 1,001 lbs",
		LineItems: []domain.LineItem{
			{
				LineNumber: 1, UNNumber: "1203", ProperShippingName: "Gasoline", HazardClass: "3",
				PackingGroup: "II", Quantity: "165 gal",
				ErgSummary: domain.ErgSummary{GuideNumber: "128", Hazards: []string{"Highly flammable", "Vapors may explode"}},
			},
			{LineNumber: 2, UNNumber: "1830", ProperShippingName: "Sulfuric acid", HazardClass: "8", PackingGroup: "II", Quantity: "55 gal"},
		},
		PlacardingRequirements: []domain.PlacardingRequirement{
			{PlacardName: "FLAMMABLE", Required: true, QuantityThreshold: "1001+ lbs", CFRReference: "49 CFR 172.504(e)"},
		},
		SafetyAlerts: []domain.SafetyAlert{
			{Severity: domain.SeverityCritical, Title: "Missing emergency phone", Message: "No 24h number", ActionRequired: "Call shipper"},
		},
		ComplianceViolations: []string{"No emergency response telephone number (49 CFR 172.604)"},
		CFRReferences:        []string{"49 CFR 172.604"},
		DriverSummary: domain.DriverSummary{
			CanDrive: false,
			PrimaryActions: []domain.DriverAction{
				{Priority: domain.PriorityCritical, Action: "Do not depart", Reasoning: "Papers incomplete"},
			},
			PlacardPlacements: []domain.PlacardPlacement{
				{PlacardName: "FLAMMABLE", Required: true, Locations: []string{"front", "rear", "both sides"}},
				{PlacardName: "CORROSIVE", Required: false, Locations: []string{"both sides"}},
			},
			ComplianceScore: "6/10",
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    report.Format
		wantErr bool
	}{
		{"", report.FormatCSV, false},
		{"csv", report.FormatCSV, false},
		{" XLSX ", report.FormatXLSX, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := report.ParseFormat(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	assert.Equal(t, "hazmat-report.csv", report.FormatCSV.Filename())
	assert.Equal(t, "hazmat-report.xlsx", report.FormatXLSX.Filename())
	assert.Contains(t, report.FormatCSV.ContentType(), "text/csv")
}

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, report.BOM)))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	return records
}

func indexOf(records [][]string, title string) int {
	for i, rec := range records {
		if len(rec) == 1 && rec[0] == title {
			return i
		}
	}
	return -1
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteCSV(&buf, sampleResult()))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), report.BOM))

	records := readCSV(t, buf.Bytes())
	titles := []string{"Summary", "Line Items", "Placarding", "Safety Alerts", "Compliance Violations", "Driver Actions"}
	last := -1
	for _, title := range titles {
		i := indexOf(records, title)
		require.Greater(t, i, last, "section %s out of order", title)
		last = i
	}

	summary := indexOf(records, "Summary")
	assert.Equal(t, []string{"Field", "Value"}, records[summary+1])
	assert.Contains(t, records, []string{"Compliance Score", "6/10"})
	assert.Contains(t, records, []string{"Compliance Percent", "60%"})
	assert.Contains(t, records, []string{"Score Band", "poor"})
	assert.Contains(t, records, []string{"Placards", "FLAMMABLE; CORROSIVE"})

	items := indexOf(records, "Line Items")
	assert.Equal(t, "UN Number", records[items+1][1])
	assert.Equal(t, []string{"1", "1203", "Gasoline", "3", "II", "165 gal", "128", "Highly flammable; Vapors may explode", "", "", ""}, records[items+2])
	assert.Equal(t, "1830", records[items+3][1])

	placarding := indexOf(records, "Placarding")
	assert.Equal(t, []string{"FLAMMABLE", "Yes", "1001+ lbs", "front; rear; both sides", "", "49 CFR 172.504(e)"}, records[placarding+2])
	assert.Equal(t, "CORROSIVE", records[placarding+3][0])

	actions := indexOf(records, "Driver Actions")
	assert.Equal(t, []string{"critical", "Do not depart", "", "Papers incomplete", ""}, records[actions+2])
}

func TestWriteCSV_EmptyResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.WriteCSV(&buf, &domain.AnalysisResult{}))

	records := readCSV(t, buf.Bytes())
	assert.Contains(t, records, []string{"Score Band", "unknown"})
	assert.Contains(t, records, []string{"Compliance Percent", ""})
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.Write(&buf, report.FormatXLSX, sampleResult()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, report.SheetNames, f.GetSheetList())

	rows, err := f.GetRows("Line Items")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Proper Shipping Name", rows[0][2])
	assert.Equal(t, "Gasoline", rows[1][2])

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	assert.Contains(t, summary, []string{"Compliance Violation", "No emergency response telephone number (49 CFR 172.604)"})

	alerts, err := f.GetRows("Safety Alerts")
	require.NoError(t, err)
	assert.Equal(t, "critical", alerts[1][0])

	styleID, err := f.GetCellStyle("Summary", "A1")
	require.NoError(t, err)
	assert.NotZero(t, styleID)
}
