package router

import (
	"github.com/gin-gonic/gin"

	"hazmate/internal/config"
	"hazmate/internal/handler"
	"hazmate/internal/logger"
	"hazmate/internal/metrics"
	"hazmate/internal/middleware"
)

// Handlers groups the route handlers.
type Handlers struct {
	Analysis *handler.AnalysisHandler
	Report   *handler.ReportHandler
	Health   *handler.HealthHandler
}

// Setup configures the Gin engine with all routes and middleware. m may be
// nil, in which case no metrics are recorded or served.
func Setup(cfg *config.Config, h Handlers, log logger.Logger, m *metrics.Metrics) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = cfg.Upload.MaxBytes()

	// Global middleware
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	if m != nil {
		r.Use(middleware.Metrics(m))
	}

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)

	if m != nil && cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(m.Handler()))
	}

	v1 := r.Group("/api/v1")
	v1.POST("/analyze", h.Analysis.Analyze)
	v1.GET("/providers", h.Analysis.Providers)
	v1.POST("/reports/export", h.Report.Export)

	return r
}
