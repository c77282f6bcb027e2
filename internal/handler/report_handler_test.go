package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"hazmate/internal/handler"
	"hazmate/internal/report"
)

const exportBody = `{
	"documentIsValid": false,
	"complianceScore": "6/10",
	"lineItems": [{"unNumber": "1203", "properShippingName": "Gasoline", "hazardClass": "3"}],
	"safetyAlerts": [{"severity": "urgent", "title": "Check phone"}]
}`

func exportRequest(t *testing.T, query, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/reports/export"+query, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	handler.NewReportHandler().Export(c)
	return w
}

func TestReportHandler_Export_CSV(t *testing.T) {
	w := exportRequest(t, "", exportBody)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="hazmat-report.csv"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), report.BOM))
	assert.Contains(t, w.Body.String(), "Gasoline")
	// severity normalized on entry
	assert.Contains(t, w.Body.String(), "warning,Check phone")
}

func TestReportHandler_Export_XLSXFromEnvelope(t *testing.T) {
	envelope, err := json.Marshal(map[string]json.RawMessage{
		"success": json.RawMessage(`true`),
		"data":    json.RawMessage(exportBody),
	})
	require.NoError(t, err)

	w := exportRequest(t, "?format=xlsx", string(envelope))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="hazmat-report.xlsx"`, w.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows("Line Items")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "1203", rows[1][1])
}

func TestReportHandler_Export_BadRequests(t *testing.T) {
	w := exportRequest(t, "?format=pdf", exportBody)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = exportRequest(t, "", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
}
