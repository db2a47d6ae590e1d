package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/studypulse-backend/internal/data/db"
	"github.com/yungbote/studypulse-backend/internal/http"
	"github.com/yungbote/studypulse-backend/internal/jobs/rollover"
	"github.com/yungbote/studypulse-backend/internal/observability"
	"github.com/yungbote/studypulse-backend/internal/platform/logger"
	"github.com/yungbote/studypulse-backend/internal/realtime/bus"
	"github.com/yungbote/studypulse-backend/internal/services"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *http.Server
	Cfg      Config
	Services Services
	Bus      bus.Bus
	Metrics  *observability.Metrics
	Rollover *rollover.Scheduler

	dbService    *db.Service
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// New loads config, opens the database and wires every layer. It does not
// start background work or listen.
func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading configuration...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.LogMode != logMode {
		if relog, err := logger.New(cfg.LogMode); err == nil {
			log.Sync()
			log = relog
		}
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Sync()
		return nil, err
	}

	dbs, err := db.Open(cfg.DB, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init db: %w", err)
	}
	if err := dbs.AutoMigrateAll(); err != nil {
		_ = dbs.Close()
		log.Sync()
		return nil, fmt.Errorf("db automigrate: %w", err)
	}
	theDB := dbs.DB()

	b, err := bus.New(log, bus.RedisConfig{Addr: cfg.Redis.Addr, Channel: cfg.Redis.Channel})
	if err != nil {
		_ = dbs.Close()
		log.Sync()
		return nil, fmt.Errorf("init bus: %w", err)
	}

	metrics := observability.Init(cfg.MetricsEnabled)

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, reposet, b, services.Settings{
		Location:          loc,
		GradeTarget:       cfg.GradeTarget,
		PerformanceTarget: cfg.PerformanceTarget,
		Metrics:           metrics,
	})
	handlerset := wireHandlers(theDB, log, serviceset, loc)
	middleware := wireMiddleware(log, cfg)
	server := wireServer(log, cfg, handlerset, middleware, metrics)

	return &App{
		Log:       log,
		DB:        theDB,
		Server:    server,
		Cfg:       cfg,
		Services:  serviceset,
		Bus:       b,
		Metrics:   metrics,
		Rollover:  rollover.New(log, serviceset.Dashboard, cfg.RolloverSpec, loc, metrics),
		dbService: dbs,
	}, nil
}

// Start launches tracing, the transition log forwarder, the redis health
// collector and the rollover scheduler. Calling it twice is a no-op.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.otelShutdown = observability.InitOTel(ctx, a.Log, a.Cfg.Otel)

	if err := a.Bus.StartForwarder(ctx, logTransitions(a.Log)); err != nil {
		a.Log.Warn("Transition forwarder not started", "error", err)
	}

	a.Metrics.StartRedisCollector(ctx, a.Log, a.Cfg.Redis.Addr, a.Cfg.Redis.PingInterval)

	if err := a.Rollover.Start(ctx); err != nil {
		return fmt.Errorf("start rollover: %w", err)
	}
	return nil
}

// Run serves HTTP until ctx is done, then shuts the server down.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("HTTP server listening", "addr", a.Cfg.Addr())
		errCh <- a.Server.Run()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http: %w", err)
	}
	return <-errCh
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Rollover != nil {
		a.Rollover.Stop()
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	var errs []error
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		errs = append(errs, a.otelShutdown(ctx))
		cancel()
	}
	if a.Bus != nil {
		errs = append(errs, a.Bus.Close())
	}
	if a.dbService != nil {
		errs = append(errs, a.dbService.Close())
	}
	if err := errors.Join(errs...); err != nil && a.Log != nil {
		a.Log.Warn("Shutdown finished with errors", "error", err)
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}

// logTransitions is the in-process bus consumer: one log line per
// transition event.
func logTransitions(log *logger.Logger) func(bus.Event) {
	transitionLog := log.With("component", "TransitionLog")
	return func(ev bus.Event) {
		transitionLog.Info("Progress transition",
			"user_id", ev.UserID,
			"kind", ev.Kind,
			"xp", ev.XP,
			"level", ev.Level,
		)
	}
}
