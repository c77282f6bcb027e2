package handler

import "hazmate/internal/domain"

// Swagger type definitions for API documentation.

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}

// ProvidersResponse lists the selectable LLM backends.
type ProvidersResponse struct {
	DefaultVendor domain.Vendor         `json:"defaultVendor" example:"openai"`
	DefaultModel  string                `json:"defaultModel" example:"gpt-4o"`
	Providers     []domain.ProviderInfo `json:"providers"`
}

// ReadinessResponse reports the provider new requests will use by default.
type ReadinessResponse struct {
	Status string        `json:"status" example:"ok"`
	Vendor domain.Vendor `json:"vendor" example:"gemini"`
	Model  string        `json:"model" example:"gemini-2.0-flash"`
}
