package port

import (
	"context"

	"hazmate/internal/domain"
)

// Attachment is binary document content sent alongside a prompt.
type Attachment struct {
	MIMEType string
	Data     []byte
}

// CompletionRequest is one single-turn call to a model.
type CompletionRequest struct {
	System      string
	Text        string
	Attachment  *Attachment
	JSONMode    bool
	MaxTokens   int
	Temperature float64
}

// LLMClient is a vendor backend. Complete returns the model's raw text;
// callers are responsible for decoding it.
type LLMClient interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	Vendor() domain.Vendor
	Model() string
	// Accepts reports whether the vendor can read documents of this MIME type.
	Accepts(mimeType string) bool
}
