package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hazmate/internal/domain"
	"hazmate/internal/logger"
	"hazmate/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
// Rate limiting is checked before the general upstream case.
func MapDomainError(err error) (status int, code, msg string) {
	var upstream *domain.UpstreamError
	switch {
	case errors.Is(err, domain.ErrUnknownProvider):
		return http.StatusBadRequest, "UNKNOWN_PROVIDER", err.Error()
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", err.Error() + "; allowed: jpg, png, webp, gif (pdf with gemini)"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_INPUT", err.Error()
	case errors.As(err, &upstream) && upstream.RateLimited():
		return http.StatusTooManyRequests, "UPSTREAM_RATE_LIMITED", err.Error()
	case errors.Is(err, domain.ErrUpstreamRequest):
		return http.StatusBadGateway, "UPSTREAM_ERROR", err.Error()
	case errors.Is(err, domain.ErrResponseParse):
		return http.StatusBadGateway, "RESPONSE_PARSE_ERROR", err.Error()
	case errors.Is(err, domain.ErrConfiguration):
		return http.StatusInternalServerError, "CONFIGURATION_ERROR", err.Error()
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context(), logger.NewNop()).Error("request failed",
			logger.String("request_id", middleware.GetRequestID(c)),
			logger.String("code", code),
			logger.Error(err),
		)
	}
	_ = c.Error(err)
	RespondError(c, status, code, msg)
}
