package app

import (
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/studypulse-backend/internal/data/repos"
	"github.com/yungbote/studypulse-backend/internal/http"
	httpH "github.com/yungbote/studypulse-backend/internal/http/handlers"
	httpMW "github.com/yungbote/studypulse-backend/internal/http/middleware"
	"github.com/yungbote/studypulse-backend/internal/observability"
	"github.com/yungbote/studypulse-backend/internal/platform/logger"
	"github.com/yungbote/studypulse-backend/internal/realtime/bus"
	"github.com/yungbote/studypulse-backend/internal/services"
)

type Services struct {
	Engine    *services.ProgressEngine
	Study     services.StudyService
	Imports   services.ImportService
	Dashboard services.DashboardService
}

type Handlers struct {
	Health    *httpH.HealthHandler
	Study     *httpH.StudyHandler
	Import    *httpH.ImportHandler
	Dashboard *httpH.DashboardHandler
}

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

func wireRepos(db *gorm.DB, log *logger.Logger) services.Repos {
	log.Info("Wiring repos...")
	return services.Repos{
		StudyLogs:      repos.NewStudyLogRepo(db, log),
		FocusSessions:  repos.NewFocusSessionRepo(db, log),
		Deadlines:      repos.NewDeadlineRepo(db, log),
		PersonalEvents: repos.NewPersonalEventRepo(db, log),
		Assessments:    repos.NewAssessmentRepo(db, log),
		Progress:       repos.NewProgressRepo(db, log),
	}
}

func wireServices(db *gorm.DB, log *logger.Logger, r services.Repos, b bus.Bus, s services.Settings) Services {
	log.Info("Wiring services...")
	engine := services.NewProgressEngine(db, log, r, b, s)
	return Services{
		Engine:    engine,
		Study:     services.NewStudyService(db, log, r, engine),
		Imports:   services.NewImportService(db, log, r, engine, s),
		Dashboard: services.NewDashboardService(db, log, r, engine, s),
	}
}

func wireHandlers(db *gorm.DB, log *logger.Logger, svc Services, loc *time.Location) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    httpH.NewHealthHandler(db),
		Study:     httpH.NewStudyHandler(log, svc.Study),
		Import:    httpH.NewImportHandler(log, svc.Imports),
		Dashboard: httpH.NewDashboardHandler(log, svc.Dashboard, loc),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, cfg.JWTSecretKey),
	}
}

func wireServer(log *logger.Logger, cfg Config, h Handlers, mw Middleware, m *observability.Metrics) *http.Server {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return http.NewServer(cfg.Addr(), http.RouterConfig{
		Log:              log,
		ServiceName:      serviceName,
		CORSOrigins:      cfg.CORSOrigins,
		Metrics:          m,
		AuthMiddleware:   mw.Auth,
		StudyHandler:     h.Study,
		ImportHandler:    h.Import,
		DashboardHandler: h.Dashboard,
		HealthHandler:    h.Health,
	})
}
