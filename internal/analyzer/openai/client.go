// Package openai is the OpenAI chat completions backend.
package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"hazmate/internal/config"
	"hazmate/internal/domain"
	"hazmate/internal/port"
)

const defaultModel = "gpt-4o"

// Client implements port.LLMClient using go-openai.
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
}

// New creates a client. BaseURL, when set, replaces https://api.openai.com/v1.
func New(cfg config.ProviderConfig, timeout time.Duration) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY is not set", domain.ErrConfiguration)
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	openaiCfg := openai.DefaultConfig(apiKey)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		openaiCfg.BaseURL = strings.TrimRight(base, "/")
	}
	openaiCfg.HTTPClient = &http.Client{Timeout: timeout}

	return &Client{
		api:     openai.NewClientWithConfig(openaiCfg),
		model:   model,
		timeout: timeout,
	}, nil
}

func (c *Client) Vendor() domain.Vendor { return domain.VendorOpenAI }
func (c *Client) Model() string         { return c.model }

// Accepts reports image types only; chat completions take images as data URIs.
func (c *Client) Accepts(mimeType string) bool {
	_, ok := domain.SupportedImageTypes[mimeType]
	return ok
}

// Complete sends one system + user exchange and returns the assistant text.
func (c *Client) Complete(ctx context.Context, req port.CompletionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	user := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if req.Attachment != nil {
		dataURI := fmt.Sprintf("data:%s;base64,%s", req.Attachment.MIMEType, base64.StdEncoding.EncodeToString(req.Attachment.Data))
		user.MultiContent = []openai.ChatMessagePart{
			{
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: dataURI, Detail: openai.ImageURLDetailHigh},
			},
			{Type: openai.ChatMessagePartTypeText, Text: req.Text},
		}
	} else {
		user.Content = req.Text
	}

	chatReq := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			user,
		},
		MaxCompletionTokens: req.MaxTokens,
	}
	// Reasoning models only accept the default temperature.
	if !isReasoningModel(c.model) {
		chatReq.Temperature = float32(req.Temperature)
	}
	if req.JSONMode {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.api.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", upstreamError(err)
	}
	if len(resp.Choices) == 0 {
		return "", &domain.ParseError{Vendor: domain.VendorOpenAI, Err: errors.New("response has no choices")}
	}

	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonLength {
		return "", &domain.ParseError{
			Vendor: domain.VendorOpenAI,
			Raw:    domain.Truncate(choice.Message.Content, 500),
			Err:    errors.New("response truncated at the token limit"),
		}
	}
	if choice.Message.Refusal != "" {
		return "", &domain.ParseError{
			Vendor: domain.VendorOpenAI,
			Raw:    domain.Truncate(choice.Message.Refusal, 500),
			Err:    errors.New("model refused the request"),
		}
	}
	return choice.Message.Content, nil
}

func isReasoningModel(model string) bool {
	for _, prefix := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}

func upstreamError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &domain.UpstreamError{
			Vendor:     domain.VendorOpenAI,
			StatusCode: apiErr.HTTPStatusCode,
			Message:    domain.Truncate(apiErr.Message, 500),
			Err:        err,
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &domain.UpstreamError{
			Vendor:     domain.VendorOpenAI,
			StatusCode: reqErr.HTTPStatusCode,
			Message:    domain.Truncate(reqErr.Error(), 500),
			Err:        err,
		}
	}
	return &domain.UpstreamError{Vendor: domain.VendorOpenAI, Err: err}
}
