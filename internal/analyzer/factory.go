package analyzer

import (
	"fmt"
	"strings"
	"time"

	"hazmate/internal/analyzer/claude"
	"hazmate/internal/analyzer/gemini"
	"hazmate/internal/analyzer/openai"
	"hazmate/internal/config"
	"hazmate/internal/domain"
	"hazmate/internal/guidelines"
	"hazmate/internal/logger"
	"hazmate/internal/metrics"
	"hazmate/internal/port"
)

// Constructor builds a vendor client from that vendor's settings.
type Constructor func(cfg config.ProviderConfig, timeout time.Duration) (port.LLMClient, error)

// vendorInfo is static catalog data for a vendor.
type vendorInfo struct {
	suggestedModels []string
	acceptsPDF      bool
}

var catalog = map[domain.Vendor]vendorInfo{
	domain.VendorOpenAI: {suggestedModels: []string{"gpt-4o", "gpt-4o-mini", "gpt-4-turbo"}},
	domain.VendorGemini: {
		suggestedModels: []string{"gemini-2.0-flash", "gemini-2.5-flash", "gemini-2.5-pro", "gemini-1.5-flash", "gemini-1.5-pro"},
		acceptsPDF:      true,
	},
	domain.VendorClaude: {suggestedModels: []string{"claude-sonnet-4-20250514", "claude-opus-4-20250514", "claude-3-5-haiku-20241022"}},
}

// Factory resolves the process-default pipeline once and builds a fresh
// pipeline for every per-request override. The registry is per instance.
type Factory struct {
	cfg          config.AIConfig
	prompts      Prompts
	log          logger.Logger
	metrics      *metrics.Metrics
	constructors map[domain.Vendor]Constructor
	order        []domain.Vendor

	defaultVendor domain.Vendor
	def           *Pipeline
}

// Option configures a Factory.
type Option func(*Factory)

func WithLogger(l logger.Logger) Option { return func(f *Factory) { f.log = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(f *Factory) { f.metrics = m } }

// WithVendor registers or replaces the constructor for a vendor.
func WithVendor(v domain.Vendor, c Constructor) Option {
	return func(f *Factory) { f.Register(v, c) }
}

// NewFactory renders prompts from rules, registers the built-in vendors and
// builds the default pipeline. An unknown AI_PROVIDER or a missing key for
// the default vendor is an error.
func NewFactory(cfg config.AIConfig, rules *guidelines.RuleSet, opts ...Option) (*Factory, error) {
	prompts, err := BuildPrompts(rules)
	if err != nil {
		return nil, err
	}

	f := &Factory{
		cfg:          cfg,
		prompts:      prompts,
		log:          logger.NewNop(),
		constructors: make(map[domain.Vendor]Constructor),
	}
	f.Register(domain.VendorOpenAI, func(c config.ProviderConfig, t time.Duration) (port.LLMClient, error) {
		cl, err := openai.New(c, t)
		if err != nil {
			return nil, err
		}
		return cl, nil
	})
	f.Register(domain.VendorGemini, func(c config.ProviderConfig, t time.Duration) (port.LLMClient, error) {
		cl, err := gemini.New(c, t)
		if err != nil {
			return nil, err
		}
		return cl, nil
	})
	f.Register(domain.VendorClaude, func(c config.ProviderConfig, t time.Duration) (port.LLMClient, error) {
		cl, err := claude.New(c, t)
		if err != nil {
			return nil, err
		}
		return cl, nil
	})
	for _, opt := range opts {
		opt(f)
	}

	name := cfg.Provider
	if name == "" {
		name = string(domain.VendorOpenAI)
	}
	vendor, ok := f.parseVendor(name)
	if !ok {
		return nil, fmt.Errorf("%w: AI_PROVIDER=%q", domain.ErrUnknownProvider, name)
	}
	def, err := f.build(vendor, "")
	if err != nil {
		return nil, fmt.Errorf("default provider %s: %w", vendor, err)
	}
	f.defaultVendor = vendor
	f.def = def

	f.log.Info("default analysis provider ready",
		logger.String("vendor", string(vendor)),
		logger.String("model", def.Model()),
	)
	return f, nil
}

// Register adds a vendor constructor. Registering after NewFactory returns
// affects overrides only.
func (f *Factory) Register(v domain.Vendor, c Constructor) {
	if _, exists := f.constructors[v]; !exists {
		f.order = append(f.order, v)
	}
	f.constructors[v] = c
}

// Default returns the pipeline built at startup.
func (f *Factory) Default() port.DocumentAnalyzer { return f.def }

// Resolve returns the default pipeline for a zero override and a freshly
// built one otherwise. A model without a vendor applies to the default vendor.
// An override naming exactly the default vendor and model also returns the
// shared default pipeline, which holds no per-request state.
func (f *Factory) Resolve(o *port.ProviderOverride) (port.DocumentAnalyzer, error) {
	if o.IsZero() {
		return f.def, nil
	}

	vendor := f.defaultVendor
	if strings.TrimSpace(o.Vendor) != "" {
		v, ok := f.parseVendor(o.Vendor)
		if !ok {
			return nil, fmt.Errorf("%w: %q", domain.ErrUnknownProvider, o.Vendor)
		}
		vendor = v
	}

	model := strings.TrimSpace(o.Model)
	if vendor == f.defaultVendor && (model == "" || model == f.def.Model()) {
		return f.def, nil
	}
	return f.build(vendor, model)
}

// Catalog lists every registered vendor with its default model.
func (f *Factory) Catalog() []domain.ProviderInfo {
	out := make([]domain.ProviderInfo, 0, len(f.order))
	for _, v := range f.order {
		pc := f.cfg.For(v)
		info := catalog[v]
		defaultModel := pc.Model
		if v == f.defaultVendor {
			defaultModel = f.def.Model()
		}
		suggested := append([]string{}, info.suggestedModels...)
		out = append(out, domain.ProviderInfo{
			Vendor:          v,
			DefaultModel:    defaultModel,
			SuggestedModels: suggested,
			Configured:      strings.TrimSpace(pc.APIKey) != "",
			Default:         v == f.defaultVendor,
			AcceptsPDF:      info.acceptsPDF,
		})
	}
	return out
}

func (f *Factory) parseVendor(name string) (domain.Vendor, bool) {
	v, ok := domain.ParseVendor(name)
	if !ok {
		// Vendors registered under their own names without an alias entry.
		v = domain.Vendor(strings.ToLower(strings.TrimSpace(name)))
	}
	_, registered := f.constructors[v]
	return v, registered
}

func (f *Factory) build(vendor domain.Vendor, model string) (*Pipeline, error) {
	ctor := f.constructors[vendor]
	pc := f.cfg.For(vendor)
	if model != "" {
		pc.Model = model
	}
	client, err := ctor(pc, f.cfg.Timeout())
	if err != nil {
		return nil, err
	}
	gen := Generation{MaxTokens: f.cfg.MaxTokens, Temperature: f.cfg.Temperature}
	return NewPipeline(client, f.prompts, gen, f.log, f.metrics), nil
}
