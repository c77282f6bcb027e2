package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hazmate/internal/service"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	svc service.AnalysisService
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(svc service.AnalysisService) *HealthHandler {
	return &HealthHandler{svc: svc}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz. The default provider is built at startup,
// so a running process is ready; the response names that provider.
func (h *HealthHandler) Readiness(c *gin.Context) {
	vendor, model := h.svc.DefaultProvider()
	c.JSON(http.StatusOK, ReadinessResponse{Status: "ok", Vendor: vendor, Model: model})
}
