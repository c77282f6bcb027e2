package domain

import (
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"
)

var (
	ErrConfiguration       = errors.New("provider is not configured")
	ErrUpstreamRequest     = errors.New("upstream request failed")
	ErrResponseParse       = errors.New("upstream response is not valid JSON")
	ErrAnalysisFailed      = errors.New("document analysis failed")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUnknownProvider     = errors.New("unknown provider")
)

// UpstreamError is a transport failure or non-success status from a vendor API.
type UpstreamError struct {
	Vendor     Vendor
	StatusCode int // 0 when no response was received
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s API request failed: %v", e.Vendor, e.Err)
	}
	return fmt.Sprintf("%s API error (status %d): %s", e.Vendor, e.StatusCode, e.Message)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstreamRequest }

// RateLimited reports whether the vendor rejected the call for quota reasons.
func (e *UpstreamError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// ParseError means the vendor answered, but not with JSON.
type ParseError struct {
	Vendor Vendor
	Raw    string // truncated vendor text
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s output: %v (raw: %s)", e.Vendor, e.Err, e.Raw)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrResponseParse }

// AnalysisError wraps the failure of one pipeline stage. There is no partial result.
type AnalysisError struct {
	Vendor Vendor
	Model  string
	Stage  Stage
	Err    error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("%s stage failed (%s/%s): %v", e.Stage, e.Vendor, e.Model, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

func (e *AnalysisError) Is(target error) bool { return target == ErrAnalysisFailed }

// Truncate shortens vendor text for inclusion in errors. The cut backs off to
// a rune boundary so the result stays valid UTF-8.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
