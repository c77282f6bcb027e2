package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"hazmate/internal/domain"
	"hazmate/internal/normalizer"
	"hazmate/internal/report"
)

const maxReportBodyBytes = 5 << 20

// ReportHandler handles report export endpoints.
type ReportHandler struct{}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler() *ReportHandler {
	return &ReportHandler{}
}

// Export handles POST /api/v1/reports/export
// @Summary Export an analysis as CSV or XLSX
// @Description Accepts an AnalysisResult (or the analyze response envelope) and returns a downloadable report
// @Tags reports
// @Accept json
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv (default) or xlsx"
// @Param body body domain.AnalysisResult true "Analysis result to export"
// @Success 200 {file} file "Report file"
// @Failure 400 {object} ErrorResponseBody "Invalid format or body"
// @Router /reports/export [post]
func (h *ReportHandler) Export(c *gin.Context) {
	format, err := report.ParseFormat(c.Query("format"))
	if err != nil {
		HandleError(c, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxReportBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			HandleError(c, domain.ErrFileTooLarge)
			return
		}
		HandleError(c, fmt.Errorf("%w: reading body: %v", domain.ErrInvalidInput, err))
		return
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		HandleError(c, fmt.Errorf("%w: body is not valid JSON", domain.ErrInvalidInput))
		return
	}
	result := normalizer.Normalize(unwrapEnvelope(raw))

	var buf bytes.Buffer
	if err := report.Write(&buf, format, &result); err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, format.Filename()))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// unwrapEnvelope accepts a body posted straight back from /analyze.
func unwrapEnvelope(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	if _, isResult := m["documentIsValid"]; isResult {
		return v
	}
	if data, ok := m["data"].(map[string]any); ok {
		return data
	}
	return v
}
