package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"hazmate/internal/config"
	"hazmate/internal/domain"
	"hazmate/internal/logger"
	"hazmate/internal/metrics"
	"hazmate/internal/port"
)

const archiveTimeout = 30 * time.Second

// AnalyzeInput is the DTO for one analysis request.
type AnalyzeInput struct {
	File        io.Reader
	FileName    string
	ContentType string // as declared by the client; may be empty
	Size        int64  // declared size, -1 or 0 when unknown
	Override    *port.ProviderOverride
	RequestID   string
}

// AnalyzeOutput is the normalized result plus the provider that produced it.
type AnalyzeOutput struct {
	Result      *domain.AnalysisResult
	Vendor      domain.Vendor
	Model       string
	ContentType string
	ArchiveKey  string // empty when the archive is disabled or the upload failed
}

// AnalysisService defines the document analysis contract.
type AnalysisService interface {
	Analyze(ctx context.Context, input AnalyzeInput) (*AnalyzeOutput, error)
	Providers() []domain.ProviderInfo
	DefaultProvider() (domain.Vendor, string)
}

type analysisService struct {
	resolver port.AnalyzerResolver
	storage  port.ObjectStorage
	upload   config.UploadConfig
	archive  config.ArchiveConfig
	log      logger.Logger
	metrics  *metrics.Metrics
}

// NewAnalysisService creates a new AnalysisService implementation. storage
// may be nil, which disables the archive regardless of archiveCfg.
func NewAnalysisService(
	resolver port.AnalyzerResolver,
	storage port.ObjectStorage,
	uploadCfg *config.UploadConfig,
	archiveCfg *config.ArchiveConfig,
	log logger.Logger,
	m *metrics.Metrics,
) AnalysisService {
	if log == nil {
		log = logger.NewNop()
	}
	s := &analysisService{
		resolver: resolver,
		storage:  storage,
		upload:   *uploadCfg,
		log:      log,
		metrics:  m,
	}
	if archiveCfg != nil {
		s.archive = *archiveCfg
	}
	return s
}

func (s *analysisService) Analyze(ctx context.Context, input AnalyzeInput) (*AnalyzeOutput, error) {
	log := logger.FromContext(ctx, s.log)

	data, err := s.readFile(input)
	if err != nil {
		return nil, err
	}
	contentType, err := resolveContentType(input.ContentType, input.FileName, data)
	if err != nil {
		return nil, err
	}

	analyzer, err := s.resolver.Resolve(input.Override)
	if err != nil {
		log.Warn("provider resolution failed", logger.Error(err))
		return nil, err
	}

	log.Info("analyzing document",
		logger.String("file_name", input.FileName),
		logger.String("content_type", contentType),
		logger.Int("bytes", len(data)),
		logger.String("vendor", string(analyzer.Vendor())),
		logger.String("model", analyzer.Model()),
	)

	result, err := analyzer.AnalyzeDocument(ctx, port.AnalyzeInput{
		FileBytes:   data,
		ContentType: contentType,
		RequestID:   input.RequestID,
	})
	s.metrics.CountAnalysis(analyzer.Vendor(), metrics.Outcome(err))
	if err != nil {
		log.Warn("analysis failed", logger.Error(err))
		return nil, err
	}

	out := &AnalyzeOutput{
		Result:      result,
		Vendor:      analyzer.Vendor(),
		Model:       analyzer.Model(),
		ContentType: contentType,
	}
	out.ArchiveKey = s.archiveDocument(ctx, log, input, contentType, data, result)

	log.Info("analysis complete",
		logger.Bool("document_is_valid", result.DocumentIsValid),
		logger.String("compliance_score", result.ComplianceScore),
		logger.Int("line_items", len(result.LineItems)),
	)
	return out, nil
}

func (s *analysisService) Providers() []domain.ProviderInfo {
	return s.resolver.Catalog()
}

func (s *analysisService) DefaultProvider() (domain.Vendor, string) {
	def := s.resolver.Default()
	return def.Vendor(), def.Model()
}

// readFile enforces the upload limit on both the declared and the actual size.
func (s *analysisService) readFile(input AnalyzeInput) ([]byte, error) {
	if input.File == nil {
		return nil, fmt.Errorf("%w: file is required", domain.ErrInvalidInput)
	}
	maxBytes := s.upload.MaxBytes()
	if input.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(input.File, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, domain.ErrFileTooLarge
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", domain.ErrInvalidInput)
	}
	return data, nil
}

// resolveContentType trusts a declared type unless it is missing or generic,
// in which case the content is sniffed.
func resolveContentType(declared, fileName string, data []byte) (string, error) {
	ct := strings.ToLower(strings.TrimSpace(declared))
	if base, _, _ := strings.Cut(ct, ";"); base == "" || strings.TrimSpace(base) == "application/octet-stream" {
		ct = http.DetectContentType(data)
	}
	if canonical, ok := domain.CanonicalMIMEType(ct); ok {
		return canonical, nil
	}
	return "", fmt.Errorf("%w: %s (%s)", domain.ErrUnsupportedFileType, ct, filepath.Base(fileName))
}

// archiveDocument stores the document and its result. Failures are logged
// and counted; the analysis has already succeeded.
func (s *analysisService) archiveDocument(
	ctx context.Context,
	log logger.Logger,
	input AnalyzeInput,
	contentType string,
	data []byte,
	result *domain.AnalysisResult,
) string {
	if s.storage == nil || !s.archive.Enabled() {
		return ""
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
	defer cancel()

	dir := s.archiveDir(input.RequestID)
	docKey := path.Join(dir, "document"+extensionFor(contentType))

	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.archive.Bucket,
		Key:         docKey,
		Body:        bytes.NewReader(data),
		ContentType: contentType,
		Size:        int64(len(data)),
	}); err != nil {
		s.metrics.CountArchiveFailure()
		log.Warn("archiving document failed", logger.String("key", docKey), logger.Error(err))
		return ""
	}

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		s.metrics.CountArchiveFailure()
		log.Warn("encoding archived result failed", logger.Error(err))
		return docKey
	}
	resultKey := path.Join(dir, "result.json")
	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.archive.Bucket,
		Key:         resultKey,
		Body:        bytes.NewReader(payload),
		ContentType: "application/json",
		Size:        int64(len(payload)),
	}); err != nil {
		s.metrics.CountArchiveFailure()
		log.Warn("archiving result failed", logger.String("key", resultKey), logger.Error(err))
	}

	log.Debug("document archived", logger.String("key", docKey))
	return docKey
}

// archiveDir is <prefix>/<yyyy>/<mm>/<dd>/<request id>.
func (s *analysisService) archiveDir(requestID string) string {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return path.Join(s.archive.Prefix, time.Now().UTC().Format("2006/01/02"), requestID)
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case domain.MIMETypePDF:
		return ".pdf"
	default:
		return ""
	}
}
