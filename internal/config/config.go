package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"hazmate/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Log     LogConfig
	AI      AIConfig
	Upload  UploadConfig
	CORS    CORSConfig
	Rules   RulesConfig
	Archive ArchiveConfig
	Metrics MetricsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ProviderConfig holds credentials and defaults for one LLM vendor.
type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"` // empty means the vendor's public endpoint
}

// AIConfig selects the default vendor and holds settings shared by all of them.
type AIConfig struct {
	Provider    string `mapstructure:"provider"`
	OpenAI      ProviderConfig
	Gemini      ProviderConfig
	Claude      ProviderConfig
	TimeoutSecs int     `mapstructure:"timeout_secs"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// For returns the settings of a vendor.
func (a *AIConfig) For(v domain.Vendor) ProviderConfig {
	switch v {
	case domain.VendorOpenAI:
		return a.OpenAI
	case domain.VendorGemini:
		return a.Gemini
	case domain.VendorClaude:
		return a.Claude
	}
	return ProviderConfig{}
}

// Timeout is the per-call deadline applied to every vendor request.
func (a *AIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSecs) * time.Second
}

// UploadConfig bounds accepted documents.
type UploadConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
}

// MaxBytes is the upload limit in bytes.
func (u *UploadConfig) MaxBytes() int64 {
	return u.MaxFileSizeMB << 20
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RulesConfig points at an optional rule set override; empty uses the built-in rules.
type RulesConfig struct {
	File string `mapstructure:"file"`
}

// ArchiveConfig holds S3 settings for the optional document archive.
// The archive is disabled when Bucket is empty.
type ArchiveConfig struct {
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// Enabled reports whether documents should be archived.
func (a *ArchiveConfig) Enabled() bool { return a.Bucket != "" }

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from environment variables. Vendor keys use their
// conventional unprefixed names; service settings use the HAZMATE_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "300s")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// AI defaults
	v.SetDefault("ai.provider", string(domain.VendorOpenAI))
	v.SetDefault("ai.openai.model", "gpt-4o")
	v.SetDefault("ai.gemini.model", "gemini-2.0-flash")
	v.SetDefault("ai.claude.model", "claude-sonnet-4-20250514")
	v.SetDefault("ai.timeout_secs", 120)
	v.SetDefault("ai.max_tokens", 4096)
	v.SetDefault("ai.temperature", 0.1)

	v.SetDefault("upload.max_file_size_mb", 10)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")
	v.SetDefault("archive.region", "us-east-1")
	v.SetDefault("archive.prefix", "documents")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":             "HAZMATE_SERVER_PORT",
		"server.read_timeout":     "HAZMATE_SERVER_READ_TIMEOUT",
		"server.write_timeout":    "HAZMATE_SERVER_WRITE_TIMEOUT",
		"server.environment":      "HAZMATE_SERVER_ENVIRONMENT",
		"log.level":               "HAZMATE_LOG_LEVEL",
		"log.format":              "HAZMATE_LOG_FORMAT",
		"ai.provider":             "AI_PROVIDER",
		"ai.openai.api_key":       "OPENAI_API_KEY",
		"ai.openai.model":         "OPENAI_MODEL",
		"ai.openai.base_url":      "OPENAI_BASE_URL",
		"ai.gemini.api_key":       "GOOGLE_API_KEY",
		"ai.gemini.model":         "GEMINI_MODEL",
		"ai.gemini.base_url":      "GEMINI_BASE_URL",
		"ai.claude.api_key":       "ANTHROPIC_API_KEY",
		"ai.claude.model":         "CLAUDE_MODEL",
		"ai.claude.base_url":      "CLAUDE_BASE_URL",
		"ai.timeout_secs":         "AI_TIMEOUT_SECS",
		"ai.max_tokens":           "AI_MAX_TOKENS",
		"ai.temperature":          "AI_TEMPERATURE",
		"upload.max_file_size_mb": "HAZMATE_UPLOAD_MAX_FILE_SIZE_MB",
		"cors.allowed_origins":    "HAZMATE_CORS_ALLOWED_ORIGINS",
		"rules.file":              "HAZMATE_RULES_FILE",
		"archive.bucket":          "HAZMATE_ARCHIVE_BUCKET",
		"archive.region":          "HAZMATE_ARCHIVE_REGION",
		"archive.endpoint":        "HAZMATE_ARCHIVE_ENDPOINT",
		"archive.access_key":      "HAZMATE_ARCHIVE_ACCESS_KEY",
		"archive.secret_key":      "HAZMATE_ARCHIVE_SECRET_KEY",
		"archive.prefix":          "HAZMATE_ARCHIVE_PREFIX",
		"metrics.enabled":         "HAZMATE_METRICS_ENABLED",
		"metrics.path":            "HAZMATE_METRICS_PATH",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if HAZMATE_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("HAZMATE_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.AI = AIConfig{
		Provider: strings.ToLower(strings.TrimSpace(v.GetString("ai.provider"))),
		OpenAI: ProviderConfig{
			APIKey:  v.GetString("ai.openai.api_key"),
			Model:   v.GetString("ai.openai.model"),
			BaseURL: v.GetString("ai.openai.base_url"),
		},
		Gemini: ProviderConfig{
			APIKey:  v.GetString("ai.gemini.api_key"),
			Model:   v.GetString("ai.gemini.model"),
			BaseURL: v.GetString("ai.gemini.base_url"),
		},
		Claude: ProviderConfig{
			APIKey:  v.GetString("ai.claude.api_key"),
			Model:   v.GetString("ai.claude.model"),
			BaseURL: v.GetString("ai.claude.base_url"),
		},
		TimeoutSecs: v.GetInt("ai.timeout_secs"),
		MaxTokens:   v.GetInt("ai.max_tokens"),
		Temperature: v.GetFloat64("ai.temperature"),
	}
	cfg.Upload = UploadConfig{
		MaxFileSizeMB: v.GetInt64("upload.max_file_size_mb"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}
	cfg.Rules = RulesConfig{File: v.GetString("rules.file")}
	cfg.Archive = ArchiveConfig{
		Bucket:    v.GetString("archive.bucket"),
		Region:    v.GetString("archive.region"),
		Endpoint:  v.GetString("archive.endpoint"),
		AccessKey: v.GetString("archive.access_key"),
		SecretKey: v.GetString("archive.secret_key"),
		Prefix:    strings.Trim(v.GetString("archive.prefix"), "/"),
	}
	cfg.Metrics = MetricsConfig{
		Enabled: v.GetBool("metrics.enabled"),
		Path:    v.GetString("metrics.path"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges. Vendor names and keys are checked when the
// provider factory is built.
func (c *Config) Validate() error {
	switch {
	case c.AI.TimeoutSecs <= 0:
		return fmt.Errorf("AI_TIMEOUT_SECS must be positive, got %d", c.AI.TimeoutSecs)
	case c.AI.MaxTokens <= 0:
		return fmt.Errorf("AI_MAX_TOKENS must be positive, got %d", c.AI.MaxTokens)
	case c.AI.Temperature < 0 || c.AI.Temperature > 2:
		return fmt.Errorf("AI_TEMPERATURE must be between 0 and 2, got %g", c.AI.Temperature)
	case c.Upload.MaxFileSizeMB <= 0:
		return fmt.Errorf("HAZMATE_UPLOAD_MAX_FILE_SIZE_MB must be positive, got %d", c.Upload.MaxFileSizeMB)
	case c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/"):
		return fmt.Errorf("HAZMATE_METRICS_PATH must start with /, got %q", c.Metrics.Path)
	}
	return nil
}
