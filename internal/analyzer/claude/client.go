// Package claude is the Anthropic Messages API backend.
package claude

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"hazmate/internal/config"
	"hazmate/internal/domain"
	"hazmate/internal/port"
)

const defaultModel = "claude-sonnet-4-20250514"

// Client implements port.LLMClient using the Anthropic SDK.
type Client struct {
	api   anthropic.Client
	model string
}

// New creates a client. The SDK's automatic retries are disabled; a failed
// call surfaces immediately.
func New(cfg config.ProviderConfig, timeout time.Duration) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: ANTHROPIC_API_KEY is not set", domain.ErrConfiguration)
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(timeout),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}

	return &Client{api: anthropic.NewClient(opts...), model: model}, nil
}

func (c *Client) Vendor() domain.Vendor { return domain.VendorClaude }
func (c *Client) Model() string         { return c.model }

func (c *Client) Accepts(mimeType string) bool {
	_, ok := domain.SupportedImageTypes[mimeType]
	return ok
}

// Complete sends one user turn. JSON output is requested through the
// system prompt; the Messages API has no JSON response mode.
func (c *Client) Complete(ctx context.Context, req port.CompletionRequest) (string, error) {
	var blocks []anthropic.ContentBlockParamUnion
	if req.Attachment != nil {
		blocks = append(blocks, anthropic.NewImageBlockBase64(
			req.Attachment.MIMEType,
			base64.StdEncoding.EncodeToString(req.Attachment.Data),
		))
	}
	blocks = append(blocks, anthropic.NewTextBlock(req.Text))

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(req.MaxTokens),
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
		Temperature: anthropic.Float(req.Temperature),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	msg, err := c.api.Messages.New(ctx, params)
	if err != nil {
		return "", upstreamError(err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := sb.String()

	switch msg.StopReason {
	case anthropic.StopReasonMaxTokens:
		return "", &domain.ParseError{
			Vendor: domain.VendorClaude,
			Raw:    domain.Truncate(text, 500),
			Err:    errors.New("response truncated at the token limit"),
		}
	case anthropic.StopReasonRefusal:
		return "", &domain.ParseError{
			Vendor: domain.VendorClaude,
			Raw:    domain.Truncate(text, 500),
			Err:    errors.New("model refused the request"),
		}
	}
	return text, nil
}

func upstreamError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.RawJSON()
		if msg == "" {
			msg = fmt.Sprintf("status %d", apiErr.StatusCode)
		}
		return &domain.UpstreamError{
			Vendor:     domain.VendorClaude,
			StatusCode: apiErr.StatusCode,
			Message:    domain.Truncate(msg, 500),
			Err:        err,
		}
	}
	return &domain.UpstreamError{Vendor: domain.VendorClaude, Err: err}
}
