// Package analyzer runs the two-stage document pipeline against an LLM
// backend and hands out pipelines per provider.
package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"hazmate/internal/domain"
	"hazmate/internal/logger"
	"hazmate/internal/metrics"
	"hazmate/internal/normalizer"
	"hazmate/internal/port"
)

// Generation settings applied to both stages.
type Generation struct {
	MaxTokens   int
	Temperature float64
}

// Pipeline implements port.DocumentAnalyzer on top of any port.LLMClient.
type Pipeline struct {
	client  port.LLMClient
	prompts Prompts
	gen     Generation
	log     logger.Logger
	metrics *metrics.Metrics
}

// NewPipeline creates a pipeline. log may be nil; m may be nil.
func NewPipeline(client port.LLMClient, prompts Prompts, gen Generation, log logger.Logger, m *metrics.Metrics) *Pipeline {
	if log == nil {
		log = logger.NewNop()
	}
	return &Pipeline{client: client, prompts: prompts, gen: gen, log: log, metrics: m}
}

func (p *Pipeline) Vendor() domain.Vendor { return p.client.Vendor() }
func (p *Pipeline) Model() string         { return p.client.Model() }

// AnalyzeDocument runs extraction, then analysis. The stages are strictly
// sequential and a stage-one failure means stage two is never attempted.
func (p *Pipeline) AnalyzeDocument(ctx context.Context, input port.AnalyzeInput) (*domain.AnalysisResult, error) {
	if len(input.FileBytes) == 0 {
		return nil, fmt.Errorf("%w: document is empty", domain.ErrInvalidInput)
	}
	if !p.client.Accepts(input.ContentType) {
		return nil, fmt.Errorf("%w: %s does not accept %q", domain.ErrUnsupportedFileType, p.Vendor(), input.ContentType)
	}

	if input.RequestID != "" {
		ctx = logger.WithContext(ctx, logger.FromContext(ctx, p.log).With(logger.String("request_id", input.RequestID)))
	}

	raw, err := p.Extract(ctx, input)
	if err != nil {
		return nil, err
	}
	return p.Analyze(ctx, raw)
}

// Extract is stage one: transcribe the document into a RawExtraction.
func (p *Pipeline) Extract(ctx context.Context, input port.AnalyzeInput) (*domain.RawExtraction, error) {
	log := p.stageLogger(ctx)
	text, err := p.complete(ctx, log, domain.StageExtraction, port.CompletionRequest{
		System:     p.prompts.Extraction,
		Text:       ExtractionInstruction,
		Attachment: &port.Attachment{MIMEType: input.ContentType, Data: input.FileBytes},
	})
	if err != nil {
		return nil, err
	}

	obj, err := normalizer.DecodeObject(p.Vendor(), text)
	if err != nil {
		return nil, p.stageError(domain.StageExtraction, err)
	}
	raw := normalizer.NormalizeExtraction(obj)
	if echoesTemplate(raw) {
		return nil, p.stageError(domain.StageExtraction, &domain.ParseError{
			Vendor: p.Vendor(),
			Raw:    domain.Truncate(text, 500),
			Err:    errors.New("extraction echoed the schema template instead of document data"),
		})
	}

	log.Debug("extraction parsed",
		logger.Int("line_items", len(raw.LineItems)),
		logger.Strings("missing_fields", raw.MissingFields),
	)
	return &raw, nil
}

// Analyze is stage two: evaluate a RawExtraction against the regulations.
// The document itself is not resent.
func (p *Pipeline) Analyze(ctx context.Context, raw *domain.RawExtraction) (*domain.AnalysisResult, error) {
	log := p.stageLogger(ctx)
	payload, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return nil, p.stageError(domain.StageAnalysis, fmt.Errorf("encoding extraction: %w", err))
	}

	text, err := p.complete(ctx, log, domain.StageAnalysis, port.CompletionRequest{
		System: p.prompts.Analysis,
		Text:   AnalysisLeadIn + string(payload),
	})
	if err != nil {
		return nil, err
	}

	v, err := normalizer.DecodeJSON(p.Vendor(), text)
	if err != nil {
		return nil, p.stageError(domain.StageAnalysis, err)
	}
	result := normalizer.Normalize(v)
	return &result, nil
}

func (p *Pipeline) complete(ctx context.Context, log logger.Logger, stage domain.Stage, req port.CompletionRequest) (string, error) {
	req.JSONMode = true
	req.MaxTokens = p.gen.MaxTokens
	req.Temperature = p.gen.Temperature

	log.Info("stage started", logger.String("stage", string(stage)))
	start := time.Now()
	text, err := p.client.Complete(ctx, req)
	elapsed := time.Since(start)
	p.metrics.ObserveStage(p.Vendor(), stage, elapsed)

	if err != nil {
		log.Warn("stage failed",
			logger.String("stage", string(stage)),
			logger.Duration("duration", elapsed),
			logger.Error(err),
		)
		return "", p.stageError(stage, err)
	}
	log.Info("stage finished",
		logger.String("stage", string(stage)),
		logger.Duration("duration", elapsed),
		logger.Int("response_bytes", len(text)),
	)
	return text, nil
}

func (p *Pipeline) stageLogger(ctx context.Context) logger.Logger {
	return logger.FromContext(ctx, p.log).With(
		logger.String("vendor", string(p.Vendor())),
		logger.String("model", p.Model()),
	)
}

func (p *Pipeline) stageError(stage domain.Stage, err error) error {
	return &domain.AnalysisError{Vendor: p.Vendor(), Model: p.Model(), Stage: stage, Err: err}
}

// echoesTemplate reports whether the model copied the schema descriptions
// back instead of reading the document.
func echoesTemplate(raw domain.RawExtraction) bool {
	for _, item := range raw.LineItems {
		for _, v := range []string{item.UNNumber, item.ProperShippingName, item.HazardClass, item.PackingGroup, item.Quantity} {
			v = strings.ToLower(strings.TrimSpace(v))
			if v == "string" || strings.HasPrefix(v, "string (") {
				return true
			}
		}
	}
	return false
}
