package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"audit-backend/internal/audits"
	"audit-backend/internal/services/health"
	"audit-backend/internal/shared/config"
	"audit-backend/internal/shared/metrics"
	"audit-backend/internal/shared/server/middleware"
	"audit-backend/internal/shared/server/respond"
)

// RouterDeps carries the dependencies the router wires into routes.
type RouterDeps struct {
	Config       config.Config
	AuditHandler *audits.Handler
	Health       *health.Service
	Limiter      *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	if cfg.Env == "dev" || cfg.Env == "local" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService("")
	}

	analyzeLimit := middleware.RateLimit(middleware.RateLimitConfig{
		DefaultGroup: "ANALYZE",
		Limiter:      deps.Limiter,
		Rules: map[string]middleware.RateLimitRule{
			"ANALYZE": middleware.PerMinute(cfg.AnalyzeRatePerMin),
		},
	})

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, healthSvc.Status())
	})

	if deps.AuditHandler != nil {
		r.GET("/", deps.AuditHandler.Dashboard)
		deps.AuditHandler.RegisterRoutes(api, analyzeLimit)
		deps.AuditHandler.RegisterWorkspaceRoutes(api, analyzeLimit)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
