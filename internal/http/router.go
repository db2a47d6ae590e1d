package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/studypulse-backend/internal/http/handlers"
	httpMW "github.com/yungbote/studypulse-backend/internal/http/middleware"
	"github.com/yungbote/studypulse-backend/internal/observability"
	"github.com/yungbote/studypulse-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	CORSOrigins    []string
	Metrics        *observability.Metrics
	AuthMiddleware *httpMW.AuthMiddleware

	StudyHandler     *httpH.StudyHandler
	ImportHandler    *httpH.ImportHandler
	DashboardHandler *httpH.DashboardHandler
	HealthHandler    *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.RequestIDs())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	protected := r.Group("/api")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Study records
		if cfg.StudyHandler != nil {
			protected.POST("/study-logs", cfg.StudyHandler.CreateStudyLog)
			protected.GET("/study-logs", cfg.StudyHandler.ListStudyLogs)
			protected.POST("/focus-sessions", cfg.StudyHandler.StartFocusSession)
			protected.POST("/focus-sessions/:id/complete", cfg.StudyHandler.CompleteFocusSession)
			protected.POST("/deadlines", cfg.StudyHandler.CreateDeadline)
			protected.PATCH("/deadlines/:id/status", cfg.StudyHandler.TransitionDeadline)
			protected.POST("/objectives/:type/complete", cfg.StudyHandler.CompleteObjective)
			protected.GET("/preferences", cfg.StudyHandler.GetPreferences)
			protected.PUT("/preferences", cfg.StudyHandler.UpdatePreferences)
		}

		// Imports
		if cfg.ImportHandler != nil {
			protected.POST("/imports/ics", cfg.ImportHandler.ImportICS)
			protected.POST("/imports/csv", cfg.ImportHandler.ImportCSV)
			protected.POST("/imports/pdf", cfg.ImportHandler.ImportPDF)
		}

		// Derived views
		if cfg.DashboardHandler != nil {
			protected.GET("/dashboard", cfg.DashboardHandler.GetDashboard)
			protected.GET("/grades/summary", cfg.DashboardHandler.GradeSummary)
			protected.GET("/blocks", cfg.DashboardHandler.ListBlocks)
			protected.GET("/blocks/:id/todo", cfg.DashboardHandler.BlockTodo)
			protected.GET("/schedule/suggestion", cfg.DashboardHandler.Suggestion)
		}
	}

	return r
}
