// Package normalizer turns untrusted LLM output into the stable result shape.
//
// Every function here is total: any input, including nil, scalars and
// arrays where objects are expected, yields a fully populated value.
package normalizer

import (
	"hazmate/internal/domain"
)

// Normalize coerces a decoded JSON value into an AnalysisResult, substituting
// defaults for every absent or mis-shaped field, nested objects included.
func Normalize(v any) domain.AnalysisResult {
	m := object(v)
	compliance := score(field(m, "complianceScore", "compliance_score"), domain.DefaultComplianceScore)

	return domain.AnalysisResult{
		DocumentIsValid:        boolean(field(m, "documentIsValid", "document_valid", "document_is_valid")),
		MissingFields:          textList(field(m, "missingFields", "missing_fields")),
		Placards:               textList(field(m, "placards")),
		PlacardReasoning:       text(field(m, "placardReasoning", "placard_reasoning")),
		Incompatibilities:      textList(field(m, "incompatibilities")),
		ComplianceScore:        compliance,
		LineItems:              lineItems(field(m, "lineItems", "line_items")),
		DocumentValidation:     documentValidation(object(field(m, "documentValidation", "document_validation"))),
		PlacardingRequirements: placardingRequirements(field(m, "placardingRequirements", "placarding_requirements")),
		SafetyAlerts:           safetyAlerts(field(m, "safetyAlerts", "safety_alerts")),
		ImmediateActions:       textList(field(m, "immediateActions", "immediate_actions")),
		ComplianceViolations:   textList(field(m, "complianceViolations", "compliance_violations")),
		CFRReferences:          textList(field(m, "cfrReferences", "cfr_references")),
		DriverSummary:          driverSummary(object(field(m, "driverSummary", "driver_summary")), compliance),
	}
}

// NormalizeExtraction coerces stage-one output into a RawExtraction.
func NormalizeExtraction(v any) domain.RawExtraction {
	m := object(v)

	arr, _ := field(m, "lineItems", "line_items").([]any)
	items := make([]domain.RawLineItem, 0, len(arr))
	for _, e := range arr {
		item, ok := e.(map[string]any)
		if !ok {
			continue
		}
		items = append(items, domain.RawLineItem{
			UNNumber:           text(field(item, "unNumber", "un_number")),
			ProperShippingName: text(field(item, "properShippingName", "proper_shipping_name")),
			HazardClass:        text(field(item, "hazardClass", "hazard_class")),
			PackingGroup:       text(field(item, "packingGroup", "packing_group")),
			Quantity:           text(field(item, "quantity")),
		})
	}

	return domain.RawExtraction{
		LineItems:            items,
		MissingFields:        textList(field(m, "missingFields", "missing_fields")),
		EmergencyContact:     text(field(m, "emergencyContact", "emergency_contact")),
		ShipperCertification: text(field(m, "shipperCertification", "shipper_certification")),
		DateOfAcceptance:     text(field(m, "dateOfAcceptance", "date_of_acceptance")),
		TotalQuantity:        text(field(m, "totalQuantity", "total_quantity")),
		PackageDescription:   text(field(m, "packageDescription", "package_description")),
		DocumentType:         domain.ParseDocumentType(text(field(m, "documentType", "document_type"))),
	}
}

// lineItems keeps one entry per source element; non-objects become fully
// defaulted items. A missing lineNumber falls back to the 1-based position.
func lineItems(v any) []domain.LineItem {
	arr, _ := v.([]any)
	out := make([]domain.LineItem, 0, len(arr))
	for i, e := range arr {
		item := object(e)
		n, ok := positiveInt(field(item, "lineNumber", "line_number"))
		if !ok {
			n = i + 1
		}
		out = append(out, domain.LineItem{
			LineNumber:         n,
			UNNumber:           text(field(item, "unNumber", "un_number")),
			ProperShippingName: text(field(item, "properShippingName", "proper_shipping_name")),
			HazardClass:        text(field(item, "hazardClass", "hazard_class")),
			PackingGroup:       text(field(item, "packingGroup", "packing_group")),
			Quantity:           text(field(item, "quantity")),
			ErgSummary:         ergSummary(object(field(item, "ergSummary", "erg_summary"))),
		})
	}
	return out
}

func ergSummary(m map[string]any) domain.ErgSummary {
	return domain.ErgSummary{
		UNNumber:           text(field(m, "un_number", "unNumber")),
		GuideNumber:        text(field(m, "guide_number", "guideNumber")),
		Hazards:            textList(field(m, "hazards")),
		PPE:                textList(field(m, "ppe")),
		EvacuationDistance: text(field(m, "evacuation_distance", "evacuationDistance")),
		FireResponse:       text(field(m, "fire_response", "fireResponse")),
	}
}

func documentValidation(m map[string]any) domain.DocumentValidation {
	return domain.DocumentValidation{
		HasEmergencyContact:     boolean(field(m, "hasEmergencyContact")),
		HasShipperCertification: boolean(field(m, "hasShipperCertification")),
		HasDateOfAcceptance:     boolean(field(m, "hasDateOfAcceptance")),
		HasProperSequence:       boolean(field(m, "hasProperSequence")),
		HasRequiredQuantity:     boolean(field(m, "hasRequiredQuantity")),
		HasPackageDescription:   boolean(field(m, "hasPackageDescription")),
		MissingCriticalFields:   textList(field(m, "missingCriticalFields")),
		ValidationErrors:        textList(field(m, "validationErrors")),
	}
}

func placardingRequirements(v any) []domain.PlacardingRequirement {
	arr, _ := v.([]any)
	out := make([]domain.PlacardingRequirement, 0, len(arr))
	for _, e := range arr {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, domain.PlacardingRequirement{
			PlacardName:       text(field(m, "placardName")),
			Required:          boolean(field(m, "required")),
			QuantityThreshold: text(field(m, "quantityThreshold")),
			Reasoning:         text(field(m, "reasoning")),
			CFRReference:      text(field(m, "cfrReference")),
		})
	}
	return out
}

func safetyAlerts(v any) []domain.SafetyAlert {
	arr, _ := v.([]any)
	out := make([]domain.SafetyAlert, 0, len(arr))
	for _, e := range arr {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		sev, ok := domain.ParseSeverity(text(field(m, "severity")))
		if !ok {
			sev = domain.SeverityWarning
		}
		out = append(out, domain.SafetyAlert{
			Severity:       sev,
			Title:          text(field(m, "title")),
			Message:        text(field(m, "message")),
			ActionRequired: text(field(m, "actionRequired")),
			CFRReference:   text(field(m, "cfrReference")),
		})
	}
	return out
}

func driverSummary(m map[string]any, fallbackScore string) domain.DriverSummary {
	return domain.DriverSummary{
		CanDrive:             boolean(field(m, "canDrive")),
		PrimaryActions:       driverActions(field(m, "primaryActions")),
		PlacardPlacements:    placardPlacements(field(m, "placardPlacements")),
		EmergencyInfo:        emergencyInfo(object(field(m, "emergencyInfo"))),
		MissingCriticalItems: textList(field(m, "missingCriticalItems")),
		ComplianceScore:      score(field(m, "complianceScore"), fallbackScore),
	}
}

func driverActions(v any) []domain.DriverAction {
	arr, _ := v.([]any)
	out := make([]domain.DriverAction, 0, len(arr))
	for _, e := range arr {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		p, ok := domain.ParsePriority(text(field(m, "priority")))
		if !ok {
			p = domain.PriorityMedium
		}
		out = append(out, domain.DriverAction{
			Priority:     p,
			Action:       text(field(m, "action")),
			Location:     text(field(m, "location")),
			Reasoning:    text(field(m, "reasoning")),
			CFRReference: text(field(m, "cfrReference")),
		})
	}
	return out
}

func placardPlacements(v any) []domain.PlacardPlacement {
	arr, _ := v.([]any)
	out := make([]domain.PlacardPlacement, 0, len(arr))
	for _, e := range arr {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, domain.PlacardPlacement{
			PlacardName:  text(field(m, "placardName")),
			Required:     boolean(field(m, "required")),
			Locations:    textList(field(m, "locations")),
			Reasoning:    text(field(m, "reasoning")),
			CFRReference: text(field(m, "cfrReference")),
		})
	}
	return out
}

func emergencyInfo(m map[string]any) domain.EmergencyInfo {
	return domain.EmergencyInfo{
		EvacuationDistance: text(field(m, "evacuationDistance")),
		PPERequired:        textList(field(m, "ppeRequired")),
		FireResponse:       text(field(m, "fireResponse")),
		EmergencyContact:   text(field(m, "emergencyContact")),
	}
}
