// Package guidelines holds the regulatory reference data (placarding tables,
// shipping paper requirements, CFR citations) that the analysis prompts embed.
package guidelines

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRules []byte

// PlacardRule maps a hazard class to the placard it requires.
type PlacardRule struct {
	Class        string   `yaml:"class"`
	Divisions    []string `yaml:"divisions,omitempty"`
	Placard      string   `yaml:"placard"`
	Threshold    string   `yaml:"threshold,omitempty"`
	CFRReference string   `yaml:"cfr_reference"`
	Reasoning    string   `yaml:"reasoning"`
}

// WeightThreshold is the aggregate gross weight at which Table 2 placards apply.
type WeightThreshold struct {
	Pounds          float64 `yaml:"pounds"`
	Kilograms       float64 `yaml:"kilograms"`
	PoundsPerGallon float64 `yaml:"pounds_per_gallon"`
}

type ShippingPapers struct {
	MandatorySequence     []string `yaml:"mandatory_sequence"`
	EssentialFields       []string `yaml:"essential_fields"`
	CertificationLanguage []string `yaml:"certification_language"`
	ConditionalFields     []string `yaml:"conditional_fields"`
}

type Segregation struct {
	CFRReference string            `yaml:"cfr_reference"`
	Markers      map[string]string `yaml:"markers"`
}

// Scoring lists what lowers the compliance score.
type Scoring struct {
	Deductions []string `yaml:"deductions"`
}

type SafetyPriorities struct {
	Critical []string `yaml:"critical"`
	Warning  []string `yaml:"warning"`
	Info     []string `yaml:"info"`
}

// RuleSet is the full body of reference data.
type RuleSet struct {
	ScoreScale       int               `yaml:"score_scale"`
	Scoring          Scoring           `yaml:"scoring"`
	WeightThreshold  WeightThreshold   `yaml:"weight_threshold"`
	AlwaysPlacard    []PlacardRule     `yaml:"always_placard"`
	ThresholdPlacard []PlacardRule     `yaml:"threshold_placard"`
	ShippingPapers   ShippingPapers    `yaml:"shipping_papers"`
	Segregation      Segregation       `yaml:"segregation"`
	SafetyPriorities SafetyPriorities  `yaml:"safety_priorities"`
	CFRReferences    map[string]string `yaml:"cfr_references"`
}

// Default returns the rule set compiled into the binary.
func Default() *RuleSet {
	rs, err := Parse(defaultRules)
	if err != nil {
		panic(fmt.Sprintf("embedded rules.yaml is invalid: %v", err))
	}
	return rs
}

// Load reads and validates a rule set file.
func Load(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	rs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("rules file %s: %w", path, err)
	}
	return rs, nil
}

// LoadOrDefault uses path when set and falls back to the embedded rules otherwise.
func LoadOrDefault(path string) (*RuleSet, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Parse decodes and validates YAML rule data.
func Parse(data []byte) (*RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("decoding rules: %w", err)
	}
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return &rs, nil
}

// Validate rejects rule sets the prompts cannot be built from.
func (rs *RuleSet) Validate() error {
	switch {
	case rs.ScoreScale <= 0:
		return fmt.Errorf("score_scale must be positive, got %d", rs.ScoreScale)
	case rs.WeightThreshold.Pounds <= 0 || rs.WeightThreshold.Kilograms <= 0:
		return fmt.Errorf("weight_threshold must be positive")
	case rs.WeightThreshold.PoundsPerGallon <= 0:
		return fmt.Errorf("weight_threshold.pounds_per_gallon must be positive")
	case len(rs.AlwaysPlacard) == 0:
		return fmt.Errorf("always_placard table is empty")
	case len(rs.ThresholdPlacard) == 0:
		return fmt.Errorf("threshold_placard table is empty")
	case len(rs.ShippingPapers.MandatorySequence) == 0:
		return fmt.Errorf("shipping_papers.mandatory_sequence is empty")
	case len(rs.ShippingPapers.EssentialFields) == 0:
		return fmt.Errorf("shipping_papers.essential_fields is empty")
	case len(rs.Scoring.Deductions) == 0:
		return fmt.Errorf("scoring.deductions is empty")
	}
	for _, r := range append(append([]PlacardRule{}, rs.AlwaysPlacard...), rs.ThresholdPlacard...) {
		if r.Class == "" || r.Placard == "" {
			return fmt.Errorf("placard rule missing class or placard: %+v", r)
		}
	}
	return nil
}

// PlacardFor returns the rules that apply to a hazard class, Table 1 first.
func (rs *RuleSet) PlacardFor(hazardClass string) []PlacardRule {
	var out []PlacardRule
	for _, r := range rs.AlwaysPlacard {
		if r.Class == hazardClass || contains(r.Divisions, hazardClass) {
			out = append(out, r)
		}
	}
	for _, r := range rs.ThresholdPlacard {
		if r.Class == hazardClass {
			out = append(out, r)
		}
	}
	return out
}

// CFRReferenceList returns the citation map as sorted "name: citation" lines.
func (rs *RuleSet) CFRReferenceList() []string {
	keys := make([]string, 0, len(rs.CFRReferences))
	for k := range rs.CFRReferences {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+": "+rs.CFRReferences[k])
	}
	return out
}

// SegregationMarkers returns markers as sorted "X: meaning" lines.
func (rs *RuleSet) SegregationMarkers() []string {
	keys := make([]string, 0, len(rs.Segregation.Markers))
	for k := range rs.Segregation.Markers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+": "+rs.Segregation.Markers[k])
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
