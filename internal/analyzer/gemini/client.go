// Package gemini is the Google Gemini generateContent backend.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"hazmate/internal/config"
	"hazmate/internal/domain"
	"hazmate/internal/port"
)

const (
	apiBaseURL   = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel = "gemini-2.0-flash"
)

// Shipping papers legitimately describe dangerous goods, which the default
// safety filters tend to block.
var safetyCategories = []string{
	"HARM_CATEGORY_HARASSMENT",
	"HARM_CATEGORY_HATE_SPEECH",
	"HARM_CATEGORY_SEXUALLY_EXPLICIT",
	"HARM_CATEGORY_DANGEROUS_CONTENT",
}

// Client implements port.LLMClient against the Gemini REST API.
type Client struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// New creates a Gemini client. BaseURL, when set, replaces the v1beta API root.
func New(cfg config.ProviderConfig, timeout time.Duration) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: GOOGLE_API_KEY is not set", domain.ErrConfiguration)
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = apiBaseURL
	}
	return &Client{
		apiKey:   apiKey,
		model:    model,
		endpoint: fmt.Sprintf("%s/models/%s:generateContent", base, model),
		client:   &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) Vendor() domain.Vendor { return domain.VendorGemini }
func (c *Client) Model() string         { return c.model }

// Accepts reports supported images and PDF, which Gemini reads natively.
func (c *Client) Accepts(mimeType string) bool {
	if mimeType == domain.MIMETypePDF {
		return true
	}
	_, ok := domain.SupportedImageTypes[mimeType]
	return ok
}

func (c *Client) Complete(ctx context.Context, req port.CompletionRequest) (string, error) {
	var parts []map[string]interface{}
	if req.Attachment != nil {
		parts = append(parts, map[string]interface{}{
			"inline_data": map[string]interface{}{
				"mime_type": req.Attachment.MIMEType,
				"data":      base64.StdEncoding.EncodeToString(req.Attachment.Data),
			},
		})
	}
	parts = append(parts, map[string]interface{}{"text": req.Text})

	generationConfig := map[string]interface{}{
		"temperature":     req.Temperature,
		"maxOutputTokens": req.MaxTokens,
	}
	if req.JSONMode {
		generationConfig["responseMimeType"] = "application/json"
	}

	safety := make([]map[string]string, 0, len(safetyCategories))
	for _, cat := range safetyCategories {
		safety = append(safety, map[string]string{"category": cat, "threshold": "BLOCK_NONE"})
	}

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"role": "user", "parts": parts},
		},
		"generationConfig": generationConfig,
		"safetySettings":   safety,
	}
	if req.System != "" {
		reqBody["systemInstruction"] = map[string]interface{}{
			"parts": []map[string]interface{}{{"text": req.System}},
		}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", &domain.UpstreamError{Vendor: domain.VendorGemini, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.UpstreamError{Vendor: domain.VendorGemini, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &domain.UpstreamError{
			Vendor:     domain.VendorGemini,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(respBody),
		}
	}

	return parseResponse(respBody)
}

// geminiResponse models the Gemini API response.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

func parseResponse(body []byte) (string, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &domain.ParseError{
			Vendor: domain.VendorGemini,
			Raw:    domain.Truncate(string(body), 500),
			Err:    fmt.Errorf("unmarshaling response envelope: %w", err),
		}
	}

	if len(resp.Candidates) == 0 {
		reason := "no candidates"
		if resp.PromptFeedback.BlockReason != "" {
			reason = "prompt blocked: " + resp.PromptFeedback.BlockReason
		}
		return "", &domain.ParseError{Vendor: domain.VendorGemini, Err: errors.New(reason)}
	}

	cand := resp.Candidates[0]
	var sb strings.Builder
	for _, p := range cand.Content.Parts {
		sb.WriteString(p.Text)
	}
	text := sb.String()

	switch cand.FinishReason {
	case "MAX_TOKENS":
		return "", &domain.ParseError{
			Vendor: domain.VendorGemini,
			Raw:    domain.Truncate(text, 500),
			Err:    errors.New("response truncated at the token limit"),
		}
	case "SAFETY", "RECITATION", "PROHIBITED_CONTENT", "BLOCKLIST":
		return "", &domain.ParseError{
			Vendor: domain.VendorGemini,
			Raw:    domain.Truncate(text, 500),
			Err:    fmt.Errorf("response stopped: %s", cand.FinishReason),
		}
	}
	return text, nil
}

// errorMessage pulls error.message out of a Gemini error body, falling back
// to the truncated raw body.
func errorMessage(body []byte) string {
	var e struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		return domain.Truncate(e.Error.Message, 500)
	}
	return domain.Truncate(string(body), 500)
}
