package service_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hazmate/internal/config"
	"hazmate/internal/domain"
	"hazmate/internal/metrics"
	"hazmate/internal/port"
	"hazmate/internal/service"
	"hazmate/mocks"
)

// pngContent returns minimal PNG bytes (magic bytes plus padding).
func pngContent() []byte {
	header := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	return append(header, bytes.Repeat([]byte{0x00}, 100)...)
}

func pdfContent() []byte {
	return []byte("%PDF-1.4 straight bill of lading")
}

func testResult() *domain.AnalysisResult {
	return &domain.AnalysisResult{
		DocumentIsValid: true,
		ComplianceScore: "9/10",
		MissingFields:   []string{},
		Placards:        []string{"FLAMMABLE"},
	}
}

type fixture struct {
	resolver *mocks.MockAnalyzerResolver
	analyzer *mocks.MockDocumentAnalyzer
	storage  *mocks.MockObjectStorage
	metrics  *metrics.Metrics
	svc      service.AnalysisService
}

func newFixture(t *testing.T, archive *config.ArchiveConfig) *fixture {
	t.Helper()
	f := &fixture{
		resolver: new(mocks.MockAnalyzerResolver),
		analyzer: new(mocks.MockDocumentAnalyzer),
		storage:  new(mocks.MockObjectStorage),
		metrics:  metrics.New(prometheus.NewRegistry()),
	}
	f.analyzer.On("Vendor").Return(domain.VendorGemini).Maybe()
	f.analyzer.On("Model").Return("gemini-2.0-flash").Maybe()

	upload := config.UploadConfig{MaxFileSizeMB: 1}
	f.svc = service.NewAnalysisService(f.resolver, f.storage, &upload, archive, nil, f.metrics)
	return f
}

func TestAnalysisService_Analyze_Success(t *testing.T) {
	f := newFixture(t, nil)
	f.resolver.On("Resolve", (*port.ProviderOverride)(nil)).Return(f.analyzer, nil)
	f.analyzer.On("AnalyzeDocument", mock.Anything, mock.MatchedBy(func(in port.AnalyzeInput) bool {
		return in.ContentType == "image/png" && len(in.FileBytes) == 108 && in.RequestID == "req-1"
	})).Return(testResult(), nil)

	out, err := f.svc.Analyze(context.Background(), service.AnalyzeInput{
		File:        bytes.NewReader(pngContent()),
		FileName:    "bol.png",
		ContentType: "image/png",
		Size:        108,
		RequestID:   "req-1",
	})

	require.NoError(t, err)
	assert.Equal(t, "9/10", out.Result.ComplianceScore)
	assert.Equal(t, domain.VendorGemini, out.Vendor)
	assert.Equal(t, "gemini-2.0-flash", out.Model)
	assert.Empty(t, out.ArchiveKey)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Analyses.WithLabelValues("gemini", "success")))
	f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestAnalysisService_Analyze_ContentTypeHandling(t *testing.T) {
	tests := []struct {
		name     string
		declared string
		content  []byte
		want     string
	}{
		{"declared alias", "image/JPG", pngContent(), "image/jpeg"},
		{"declared with params", "image/png; charset=binary", pngContent(), "image/png"},
		{"sniffed when empty", "", pngContent(), "image/png"},
		{"sniffed when octet-stream", "application/octet-stream", pdfContent(), domain.MIMETypePDF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			f.resolver.On("Resolve", mock.Anything).Return(f.analyzer, nil)
			f.analyzer.On("AnalyzeDocument", mock.Anything, mock.MatchedBy(func(in port.AnalyzeInput) bool {
				return in.ContentType == tt.want
			})).Return(testResult(), nil)

			out, err := f.svc.Analyze(context.Background(), service.AnalyzeInput{
				File:        bytes.NewReader(tt.content),
				ContentType: tt.declared,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.ContentType)
		})
	}
}

func TestAnalysisService_Analyze_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		input   service.AnalyzeInput
		wantErr error
	}{
		{"missing file", service.AnalyzeInput{}, domain.ErrInvalidInput},
		{"empty file", service.AnalyzeInput{File: bytes.NewReader(nil), ContentType: "image/png"}, domain.ErrInvalidInput},
		{"declared too large", service.AnalyzeInput{File: bytes.NewReader(pngContent()), Size: 2 << 20}, domain.ErrFileTooLarge},
		{"actually too large", service.AnalyzeInput{File: bytes.NewReader(make([]byte, 1<<20+1)), ContentType: "image/png"}, domain.ErrFileTooLarge},
		{"unsupported declared", service.AnalyzeInput{File: strings.NewReader("hello"), ContentType: "text/plain"}, domain.ErrUnsupportedFileType},
		{"unsupported sniffed", service.AnalyzeInput{File: strings.NewReader("just some text")}, domain.ErrUnsupportedFileType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			_, err := f.svc.Analyze(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
			f.resolver.AssertNotCalled(t, "Resolve", mock.Anything)
		})
	}
}

func TestAnalysisService_Analyze_PassesOverride(t *testing.T) {
	f := newFixture(t, nil)
	override := &port.ProviderOverride{Vendor: "claude", Model: "claude-opus-4-20250514"}
	f.resolver.On("Resolve", override).Return(nil, fmt.Errorf("%w: ANTHROPIC_API_KEY is not set", domain.ErrConfiguration))

	_, err := f.svc.Analyze(context.Background(), service.AnalyzeInput{
		File:        bytes.NewReader(pngContent()),
		ContentType: "image/png",
		Override:    override,
	})

	assert.ErrorIs(t, err, domain.ErrConfiguration)
	f.analyzer.AssertNotCalled(t, "AnalyzeDocument", mock.Anything, mock.Anything)
}

func TestAnalysisService_Analyze_PipelineFailureCounted(t *testing.T) {
	f := newFixture(t, &config.ArchiveConfig{Bucket: "archive", Prefix: "documents"})
	f.resolver.On("Resolve", mock.Anything).Return(f.analyzer, nil)
	failure := &domain.AnalysisError{
		Vendor: domain.VendorGemini,
		Stage:  domain.StageExtraction,
		Err:    &domain.UpstreamError{Vendor: domain.VendorGemini, StatusCode: 503, Message: "overloaded"},
	}
	f.analyzer.On("AnalyzeDocument", mock.Anything, mock.Anything).Return(nil, failure)

	out, err := f.svc.Analyze(context.Background(), service.AnalyzeInput{
		File:        bytes.NewReader(pngContent()),
		ContentType: "image/png",
	})

	assert.Nil(t, out)
	assert.ErrorIs(t, err, domain.ErrUpstreamRequest)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Analyses.WithLabelValues("gemini", "upstream_error")))
	f.storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestAnalysisService_Analyze_Archives(t *testing.T) {
	f := newFixture(t, &config.ArchiveConfig{Bucket: "archive", Prefix: "documents"})
	f.resolver.On("Resolve", mock.Anything).Return(f.analyzer, nil)
	f.analyzer.On("AnalyzeDocument", mock.Anything, mock.Anything).Return(testResult(), nil)

	var keys []string
	f.storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "archive"
	})).Run(func(args mock.Arguments) {
		keys = append(keys, args.Get(1).(port.UploadInput).Key)
	}).Return(&port.UploadOutput{Location: "s3://archive/x"}, nil).Twice()

	out, err := f.svc.Analyze(context.Background(), service.AnalyzeInput{
		File:        bytes.NewReader(pdfContent()),
		ContentType: "application/pdf",
		RequestID:   "req-42",
	})

	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Regexp(t, regexp.MustCompile(`^documents/\d{4}/\d{2}/\d{2}/req-42/document\.pdf$`), keys[0])
	assert.Regexp(t, regexp.MustCompile(`^documents/\d{4}/\d{2}/\d{2}/req-42/result\.json$`), keys[1])
	assert.Equal(t, keys[0], out.ArchiveKey)
	f.storage.AssertExpectations(t)
}

func TestAnalysisService_Analyze_ArchiveFailureDoesNotFail(t *testing.T) {
	f := newFixture(t, &config.ArchiveConfig{Bucket: "archive"})
	f.resolver.On("Resolve", mock.Anything).Return(f.analyzer, nil)
	f.analyzer.On("AnalyzeDocument", mock.Anything, mock.Anything).Return(testResult(), nil)
	f.storage.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("s3 upload: access denied")).Once()

	out, err := f.svc.Analyze(context.Background(), service.AnalyzeInput{
		File:        bytes.NewReader(pngContent()),
		ContentType: "image/png",
	})

	require.NoError(t, err)
	assert.True(t, out.Result.DocumentIsValid)
	assert.Empty(t, out.ArchiveKey)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ArchiveFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Analyses.WithLabelValues("gemini", "success")))
}

func TestAnalysisService_Providers(t *testing.T) {
	f := newFixture(t, nil)
	catalog := []domain.ProviderInfo{{Vendor: domain.VendorGemini, DefaultModel: "gemini-2.0-flash", Default: true}}
	f.resolver.On("Catalog").Return(catalog)
	f.resolver.On("Default").Return(f.analyzer)

	assert.Equal(t, catalog, f.svc.Providers())

	vendor, model := f.svc.DefaultProvider()
	assert.Equal(t, domain.VendorGemini, vendor)
	assert.Equal(t, "gemini-2.0-flash", model)
}
