package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"hazmate/internal/domain"
	"hazmate/internal/middleware"
	"hazmate/internal/port"
	"hazmate/internal/service"
)

// multipartOverhead is allowed on top of the file limit for form fields and boundaries.
const multipartOverhead = 1 << 20

// AnalysisHandler handles document analysis endpoints.
type AnalysisHandler struct {
	svc          service.AnalysisService
	maxBodyBytes int64
}

// NewAnalysisHandler creates a new AnalysisHandler. maxFileBytes caps the
// uploaded document.
func NewAnalysisHandler(svc service.AnalysisService, maxFileBytes int64) *AnalysisHandler {
	return &AnalysisHandler{svc: svc, maxBodyBytes: maxFileBytes + multipartOverhead}
}

// Analyze handles POST /api/v1/analyze
// @Summary Analyze a shipping document
// @Description Upload a bill of lading or manifest image and get a hazmat compliance analysis
// @Tags analysis
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document image (JPG, PNG, WEBP, GIF; PDF with gemini)"
// @Param provider formData string false "LLM vendor: openai, gemini or claude"
// @Param model formData string false "Model name for the selected vendor"
// @Success 200 {object} Response{data=domain.AnalysisResult} "Analysis result"
// @Failure 400 {object} ErrorResponseBody "Missing file, unsupported type or unknown provider"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 429 {object} ErrorResponseBody "Vendor rate limit"
// @Failure 502 {object} ErrorResponseBody "Vendor error or unparseable vendor output"
// @Failure 500 {object} ErrorResponseBody "Provider not configured"
// @Router /analyze [post]
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			HandleError(c, domain.ErrFileTooLarge)
			return
		}
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	var override *port.ProviderOverride
	vendor, model := formOrQuery(c, "provider"), formOrQuery(c, "model")
	if vendor != "" || model != "" {
		override = &port.ProviderOverride{Vendor: vendor, Model: model}
	}

	out, err := h.svc.Analyze(c.Request.Context(), service.AnalyzeInput{
		File:        file,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Override:    override,
		RequestID:   middleware.GetRequestID(c),
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("X-Analysis-Provider", string(out.Vendor))
	c.Header("X-Analysis-Model", out.Model)
	RespondOK(c, out.Result)
}

// Providers handles GET /api/v1/providers
// @Summary List LLM providers
// @Description Vendors, their default and suggested models, and which one is the default
// @Tags analysis
// @Produce json
// @Success 200 {object} Response{data=ProvidersResponse} "Provider catalog"
// @Router /providers [get]
func (h *AnalysisHandler) Providers(c *gin.Context) {
	vendor, model := h.svc.DefaultProvider()
	RespondOK(c, ProvidersResponse{
		DefaultVendor: vendor,
		DefaultModel:  model,
		Providers:     h.svc.Providers(),
	})
}

func formOrQuery(c *gin.Context, key string) string {
	if v := strings.TrimSpace(c.PostForm(key)); v != "" {
		return v
	}
	return strings.TrimSpace(c.Query(key))
}
