package guidelines_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hazmate/internal/guidelines"
)

func TestDefault(t *testing.T) {
	rs := guidelines.Default()

	assert.Equal(t, 10, rs.ScoreScale)
	assert.Equal(t, 1001.0, rs.WeightThreshold.Pounds)
	assert.Equal(t, 454.0, rs.WeightThreshold.Kilograms)
	assert.Len(t, rs.AlwaysPlacard, 6)
	assert.Len(t, rs.ThresholdPlacard, 11)
	assert.Contains(t, rs.ShippingPapers.EssentialFields, "Emergency Response Telephone Number")
	assert.Equal(t, "49 CFR 177.848", rs.Segregation.CFRReference)
	assert.Equal(t, "49 CFR 172.504(e)", rs.CFRReferences["placarding"])
	assert.Contains(t, rs.Scoring.Deductions, "incorrect placarding for the load")
}

func TestParse_RequiresScoringDeductions(t *testing.T) {
	src, err := os.ReadFile("rules.yaml")
	require.NoError(t, err)
	rs, err := guidelines.Parse(src)
	require.NoError(t, err)

	rs.Scoring.Deductions = nil
	err = rs.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scoring.deductions")
}

func TestPlacardFor(t *testing.T) {
	rs := guidelines.Default()

	flammable := rs.PlacardFor("3")
	require.Len(t, flammable, 1)
	assert.Equal(t, "FLAMMABLE", flammable[0].Placard)
	assert.Equal(t, "1001+ lbs", flammable[0].Threshold)

	explosive := rs.PlacardFor("1.1")
	require.Len(t, explosive, 1)
	assert.Equal(t, "EXPLOSIVES", explosive[0].Placard)

	// 6.1 appears in both tables: inhalation hazard always, POISON by weight.
	poison := rs.PlacardFor("6.1")
	require.Len(t, poison, 2)
	assert.Equal(t, "POISON INHALATION HAZARD", poison[0].Placard)
	assert.Equal(t, "POISON", poison[1].Placard)

	assert.Empty(t, rs.PlacardFor("42"))
}

func TestReferenceListsAreSorted(t *testing.T) {
	rs := guidelines.Default()

	refs := rs.CFRReferenceList()
	require.NotEmpty(t, refs)
	assert.IsNonDecreasing(t, refs)

	markers := rs.SegregationMarkers()
	require.Len(t, markers, 2)
	assert.Contains(t, markers[0], "O: ")
	assert.Contains(t, markers[1], "X: ")
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"not yaml", "score_scale: [", "decoding rules"},
		{"zero scale", "score_scale: 0", "score_scale"},
		{"no threshold", "score_scale: 10", "weight_threshold"},
		{
			"empty table",
			"score_scale: 10\nweight_threshold: {pounds: 1001, kilograms: 454, pounds_per_gallon: 8}\n",
			"always_placard",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := guidelines.Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	src, err := os.ReadFile("rules.yaml")
	require.NoError(t, err)
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, src, 0o600))

	rs, err := guidelines.Load(path)
	require.NoError(t, err)
	assert.Equal(t, guidelines.Default(), rs)

	_, err = guidelines.Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	rs, err = guidelines.LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, 10, rs.ScoreScale)
}
