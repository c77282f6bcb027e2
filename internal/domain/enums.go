package domain

import "strings"

// Severity classifies a safety alert.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// ParseSeverity maps free text to a Severity; ok is false for unknown values.
func ParseSeverity(s string) (Severity, bool) {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityCritical:
		return SeverityCritical, true
	case SeverityWarning:
		return SeverityWarning, true
	case SeverityInfo:
		return SeverityInfo, true
	}
	return "", false
}

// Priority ranks a driver action.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// ParsePriority maps free text to a Priority; ok is false for unknown values.
func ParsePriority(s string) (Priority, bool) {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case PriorityCritical:
		return PriorityCritical, true
	case PriorityHigh:
		return PriorityHigh, true
	case PriorityMedium:
		return PriorityMedium, true
	case PriorityLow:
		return PriorityLow, true
	}
	return "", false
}

// DocumentType tags the kind of shipping paper that was photographed.
type DocumentType string

const (
	DocumentTypeBillOfLading DocumentType = "bill_of_lading"
	DocumentTypeManifest     DocumentType = "manifest"
	DocumentTypeOther        DocumentType = "other"
)

// ParseDocumentType maps free text to a DocumentType. Empty input stays empty;
// anything unrecognized becomes DocumentTypeOther.
func ParseDocumentType(s string) DocumentType {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	switch DocumentType(norm) {
	case "":
		return ""
	case DocumentTypeBillOfLading, "bol":
		return DocumentTypeBillOfLading
	case DocumentTypeManifest:
		return DocumentTypeManifest
	}
	return DocumentTypeOther
}

// Vendor names an LLM backend.
type Vendor string

const (
	VendorOpenAI Vendor = "openai"
	VendorGemini Vendor = "gemini"
	VendorClaude Vendor = "claude"
)

var vendorAliases = map[string]Vendor{
	"openai":    VendorOpenAI,
	"gemini":    VendorGemini,
	"google":    VendorGemini,
	"claude":    VendorClaude,
	"anthropic": VendorClaude,
}

// ParseVendor resolves a vendor name or alias, case-insensitively.
func ParseVendor(s string) (Vendor, bool) {
	v, ok := vendorAliases[strings.ToLower(strings.TrimSpace(s))]
	return v, ok
}

// Stage identifies a step of the analysis pipeline.
type Stage string

const (
	StageExtraction Stage = "extraction"
	StageAnalysis   Stage = "analysis"
)

// ScoreBand is a coarse bucket of the compliance score.
type ScoreBand string

const (
	ScoreBandGood    ScoreBand = "good"
	ScoreBandFair    ScoreBand = "fair"
	ScoreBandPoor    ScoreBand = "poor"
	ScoreBandUnknown ScoreBand = "unknown"
)

// SupportedImageTypes maps accepted image MIME types to their canonical form.
var SupportedImageTypes = map[string]string{
	"image/jpeg": "image/jpeg",
	"image/jpg":  "image/jpeg",
	"image/png":  "image/png",
	"image/webp": "image/webp",
	"image/gif":  "image/gif",
}

// MIMETypePDF is accepted by vendors that read documents natively.
const MIMETypePDF = "application/pdf"

// CanonicalMIMEType lower-cases, strips parameters and resolves aliases.
// ok is false for types no vendor accepts.
func CanonicalMIMEType(contentType string) (string, bool) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct == MIMETypePDF {
		return ct, true
	}
	canonical, ok := SupportedImageTypes[ct]
	return canonical, ok
}
