// Command analyze runs the two-stage hazmat analysis against a local file and
// prints the result.
// Usage: go run ./cmd/analyze -file bol.jpg [-provider gemini] [-model m] [-format json|csv|xlsx]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"hazmate/internal/analyzer"
	"hazmate/internal/config"
	"hazmate/internal/guidelines"
	"hazmate/internal/logger"
	"hazmate/internal/port"
	"hazmate/internal/report"
	"hazmate/internal/service"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	file := fs.String("file", "", "path to the shipping document (image, or PDF with gemini)")
	provider := fs.String("provider", "", "LLM vendor: openai, gemini or claude (default from AI_PROVIDER)")
	model := fs.String("model", "", "model name for the vendor")
	format := fs.String("format", "json", "output format: json, csv or xlsx")
	verbose := fs.Bool("v", false, "log pipeline progress to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		fs.Usage()
		return errors.New("-file is required")
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	appLog := logger.NewNop()
	if *verbose {
		appLog, err = logger.New(logger.Config{Level: "debug", Format: "console", OutputPaths: []string{"stderr"}})
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		defer func() { _ = appLog.Sync() }()
	}

	rules, err := guidelines.LoadOrDefault(cfg.Rules.File)
	if err != nil {
		return fmt.Errorf("loading rules: %w", err)
	}

	// The default vendor must be configured even when -provider overrides it.
	factory, err := analyzer.NewFactory(cfg.AI, rules, analyzer.WithLogger(appLog))
	if err != nil {
		return fmt.Errorf("initializing analyzer: %w", err)
	}

	var override *port.ProviderOverride
	if *provider != "" || *model != "" {
		override = &port.ProviderOverride{Vendor: *provider, Model: *model}
	}

	f, err := os.Open(*file)
	if err != nil {
		return fmt.Errorf("opening %s: %w", *file, err)
	}
	defer func() { _ = f.Close() }()
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", *file, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// No archive from the CLI.
	svc := service.NewAnalysisService(factory, nil, &cfg.Upload, nil, appLog, nil)
	out, err := svc.Analyze(ctx, service.AnalyzeInput{
		File:      f,
		FileName:  filepath.Base(*file),
		Size:      info.Size(),
		Override:  override,
		RequestID: uuid.NewString(),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "analyzed %s with %s/%s\n", filepath.Base(*file), out.Vendor, out.Model)

	if *format == "json" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out.Result)
	}
	rf, err := report.ParseFormat(*format)
	if err != nil {
		return err
	}
	return report.Write(stdout, rf, out.Result)
}
