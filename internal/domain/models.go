package domain

import (
	"strconv"
	"strings"
)

// DefaultComplianceScore is reported when the analysis stage produced no usable score.
const DefaultComplianceScore = "0/10"

// ErgSummary is the Emergency Response Guidebook digest for one line item.
type ErgSummary struct {
	UNNumber           string   `json:"un_number"`
	GuideNumber        string   `json:"guide_number"`
	Hazards            []string `json:"hazards"`
	PPE                []string `json:"ppe"`
	EvacuationDistance string   `json:"evacuation_distance"`
	FireResponse       string   `json:"fire_response"`
}

// LineItem is a single hazardous material entry on the shipping paper.
type LineItem struct {
	LineNumber         int        `json:"lineNumber"`
	UNNumber           string     `json:"unNumber"`
	ProperShippingName string     `json:"properShippingName"`
	HazardClass        string     `json:"hazardClass"`
	PackingGroup       string     `json:"packingGroup"`
	Quantity           string     `json:"quantity"`
	ErgSummary         ErgSummary `json:"ergSummary"`
}

// DocumentValidation records field-presence checks on the shipping paper.
type DocumentValidation struct {
	HasEmergencyContact     bool     `json:"hasEmergencyContact"`
	HasShipperCertification bool     `json:"hasShipperCertification"`
	HasDateOfAcceptance     bool     `json:"hasDateOfAcceptance"`
	HasProperSequence       bool     `json:"hasProperSequence"`
	HasRequiredQuantity     bool     `json:"hasRequiredQuantity"`
	HasPackageDescription   bool     `json:"hasPackageDescription"`
	MissingCriticalFields   []string `json:"missingCriticalFields"`
	ValidationErrors        []string `json:"validationErrors"`
}

// PlacardingRequirement is one placard decision with its regulatory basis.
type PlacardingRequirement struct {
	PlacardName       string `json:"placardName"`
	Required          bool   `json:"required"`
	QuantityThreshold string `json:"quantityThreshold"`
	Reasoning         string `json:"reasoning"`
	CFRReference      string `json:"cfrReference"`
}

// SafetyAlert is a prioritized message for the person handling the load.
type SafetyAlert struct {
	Severity       Severity `json:"severity"`
	Title          string   `json:"title"`
	Message        string   `json:"message"`
	ActionRequired string   `json:"actionRequired"`
	CFRReference   string   `json:"cfrReference,omitempty"`
}

// DriverAction is a single to-do item in the driver summary.
type DriverAction struct {
	Priority     Priority `json:"priority"`
	Action       string   `json:"action"`
	Location     string   `json:"location,omitempty"`
	Reasoning    string   `json:"reasoning,omitempty"`
	CFRReference string   `json:"cfrReference,omitempty"`
}

// PlacardPlacement tells the driver where a placard goes on the vehicle.
type PlacardPlacement struct {
	PlacardName  string   `json:"placardName"`
	Required     bool     `json:"required"`
	Locations    []string `json:"locations"`
	Reasoning    string   `json:"reasoning"`
	CFRReference string   `json:"cfrReference"`
}

// EmergencyInfo summarizes what to do if something goes wrong en route.
type EmergencyInfo struct {
	EvacuationDistance string   `json:"evacuationDistance"`
	PPERequired        []string `json:"ppeRequired"`
	FireResponse       string   `json:"fireResponse"`
	EmergencyContact   string   `json:"emergencyContact,omitempty"`
}

// DriverSummary is the condensed, driver-facing view of the analysis.
type DriverSummary struct {
	CanDrive             bool               `json:"canDrive"`
	PrimaryActions       []DriverAction     `json:"primaryActions"`
	PlacardPlacements    []PlacardPlacement `json:"placardPlacements"`
	EmergencyInfo        EmergencyInfo      `json:"emergencyInfo"`
	MissingCriticalItems []string           `json:"missingCriticalItems"`
	ComplianceScore      string             `json:"complianceScore"`
}

// AnalysisResult is the stable contract every provider produces.
// Sequence order is display order; nothing is deduplicated.
type AnalysisResult struct {
	DocumentIsValid        bool                    `json:"documentIsValid"`
	MissingFields          []string                `json:"missingFields"`
	Placards               []string                `json:"placards"`
	PlacardReasoning       string                  `json:"placardReasoning"`
	Incompatibilities      []string                `json:"incompatibilities"`
	ComplianceScore        string                  `json:"complianceScore"`
	LineItems              []LineItem              `json:"lineItems"`
	DocumentValidation     DocumentValidation      `json:"documentValidation"`
	PlacardingRequirements []PlacardingRequirement `json:"placardingRequirements"`
	SafetyAlerts           []SafetyAlert           `json:"safetyAlerts"`
	ImmediateActions       []string                `json:"immediateActions"`
	ComplianceViolations   []string                `json:"complianceViolations"`
	CFRReferences          []string                `json:"cfrReferences"`
	DriverSummary          DriverSummary           `json:"driverSummary"`
}

// ParseScore splits a "<numerator>/<denominator>" score. ok is false when the
// score is malformed or the denominator is not positive.
func ParseScore(score string) (numerator, denominator float64, ok bool) {
	num, den, found := strings.Cut(strings.TrimSpace(score), "/")
	if !found {
		return 0, 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return 0, 0, false
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
	if err != nil || d <= 0 {
		return 0, 0, false
	}
	return n, d, true
}

// CompliancePercent returns the compliance score as a percentage.
func (r *AnalysisResult) CompliancePercent() (float64, bool) {
	n, d, ok := ParseScore(r.ComplianceScore)
	if !ok {
		return 0, false
	}
	return n / d * 100, true
}

// ScoreBand buckets the compliance score for display.
func (r *AnalysisResult) ScoreBand() ScoreBand {
	pct, ok := r.CompliancePercent()
	switch {
	case !ok:
		return ScoreBandUnknown
	case pct >= 90:
		return ScoreBandGood
	case pct >= 70:
		return ScoreBandFair
	default:
		return ScoreBandPoor
	}
}

// RawLineItem is a line item as transcribed by the extraction stage, unvalidated.
type RawLineItem struct {
	UNNumber           string `json:"unNumber"`
	ProperShippingName string `json:"properShippingName"`
	HazardClass        string `json:"hazardClass"`
	PackingGroup       string `json:"packingGroup"`
	Quantity           string `json:"quantity"`
}

// RawExtraction is the intermediate output of the extraction stage. It is
// handed to the analysis stage and then discarded.
type RawExtraction struct {
	LineItems            []RawLineItem `json:"lineItems"`
	MissingFields        []string      `json:"missingFields"`
	EmergencyContact     string        `json:"emergencyContact,omitempty"`
	ShipperCertification string        `json:"shipperCertification,omitempty"`
	DateOfAcceptance     string        `json:"dateOfAcceptance,omitempty"`
	TotalQuantity        string        `json:"totalQuantity,omitempty"`
	PackageDescription   string        `json:"packageDescription,omitempty"`
	DocumentType         DocumentType  `json:"documentType,omitempty"`
}

// ProviderInfo describes one selectable LLM backend.
type ProviderInfo struct {
	Vendor          Vendor   `json:"vendor"`
	DefaultModel    string   `json:"defaultModel"`
	SuggestedModels []string `json:"suggestedModels"`
	Configured      bool     `json:"configured"`
	Default         bool     `json:"default"`
	AcceptsPDF      bool     `json:"acceptsPdf"`
}
