package port

import (
	"context"

	"hazmate/internal/domain"
)

// AnalyzeInput carries one shipping document through the pipeline.
type AnalyzeInput struct {
	FileBytes   []byte
	ContentType string // canonical MIME type
	RequestID   string
}

// DocumentAnalyzer turns a document image into a normalized compliance result.
// A failure in either stage yields an error and no partial result.
type DocumentAnalyzer interface {
	AnalyzeDocument(ctx context.Context, input AnalyzeInput) (*domain.AnalysisResult, error)
	Vendor() domain.Vendor
	Model() string
}

// ProviderOverride selects a vendor and/or model for a single request.
// An empty Vendor means the process default vendor.
type ProviderOverride struct {
	Vendor string
	Model  string
}

// IsZero reports whether the override changes nothing.
func (o *ProviderOverride) IsZero() bool {
	return o == nil || (o.Vendor == "" && o.Model == "")
}

// AnalyzerResolver hands out analyzers for the default or an overridden provider.
type AnalyzerResolver interface {
	Resolve(override *ProviderOverride) (DocumentAnalyzer, error)
	Default() DocumentAnalyzer
	Catalog() []domain.ProviderInfo
}
