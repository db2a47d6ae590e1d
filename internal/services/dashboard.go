package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/studypulse-backend/internal/domain/study"
	"github.com/yungbote/studypulse-backend/internal/modules/study/blocks"
	"github.com/yungbote/studypulse-backend/internal/modules/study/grades"
	"github.com/yungbote/studypulse-backend/internal/modules/study/performance"
	"github.com/yungbote/studypulse-backend/internal/modules/study/pipeline"
	"github.com/yungbote/studypulse-backend/internal/modules/study/schedule"
	"github.com/yungbote/studypulse-backend/internal/modules/study/timeutil"
	"github.com/yungbote/studypulse-backend/internal/platform/dbctx"
	"github.com/yungbote/studypulse-backend/internal/platform/logger"
)

// Dashboard is the full derived view of a user's progress.
type Dashboard struct {
	pipeline.Snapshot
	TierLabel   string                `json:"tier_label"`
	Transitions []pipeline.Transition `json:"transitions"`
}

type DashboardService interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
	GradeSummaries(ctx context.Context, target float64) ([]grades.Summary, error)
	BlockIDs(ctx context.Context) ([]string, error)
	BlockTodo(ctx context.Context, blockID string) ([]study.Assessment, error)
	// Suggestion returns nil when the day has no usable window.
	Suggestion(ctx context.Context, day time.Time) (*schedule.Suggestion, error)
	// RefreshUser recomputes one user's progress without request data.
	RefreshUser(ctx context.Context, userID uuid.UUID) (pipeline.Result, error)
	// RefreshAll recomputes every user with stored progress and returns
	// how many succeeded.
	RefreshAll(ctx context.Context) (int, error)
}

type dashboardService struct {
	db       *gorm.DB
	log      *logger.Logger
	repos    Repos
	engine   *ProgressEngine
	settings Settings
}

func NewDashboardService(db *gorm.DB, log *logger.Logger, r Repos, engine *ProgressEngine, s Settings) DashboardService {
	return &dashboardService{
		db:       db,
		log:      log.With("service", "DashboardService"),
		repos:    r,
		engine:   engine,
		settings: s,
	}
}

var tierLabels = map[study.PerformanceTier]string{
	study.TierElite:            "Elite",
	study.TierHighPerformer:    "High performer",
	study.TierOnTrack:          "On track",
	study.TierNeedsImprovement: "Needs improvement",
}

func (s *dashboardService) Dashboard(ctx context.Context) (*Dashboard, error) {
	userID, err := userFrom(ctx)
	if err != nil {
		return nil, err
	}
	res, dirty, err := s.engine.Preview(ctx, userID)
	if err != nil {
		return nil, err
	}
	if dirty {
		if res, err = s.engine.Refresh(ctx, userID); err != nil {
			return nil, err
		}
	}
	return &Dashboard{
		Snapshot:    res.Snapshot,
		TierLabel:   tierLabels[performance.TierFor(res.Snapshot.Performance.Index)],
		Transitions: res.Transitions,
	}, nil
}

func (s *dashboardService) assessments(ctx context.Context) ([]study.Assessment, error) {
	userID, err := userFrom(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.repos.Assessments.ListByUser(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, err
	}
	return derefAll(rows), nil
}

// GradeSummaries uses the configured target when target <= 0.
func (s *dashboardService) GradeSummaries(ctx context.Context, target float64) ([]grades.Summary, error) {
	items, err := s.assessments(ctx)
	if err != nil {
		return nil, err
	}
	if target <= 0 {
		target = s.settings.GradeTarget
	}
	return grades.CalculateGradeSummaries(items, target), nil
}

func (s *dashboardService) BlockIDs(ctx context.Context) ([]string, error) {
	items, err := s.assessments(ctx)
	if err != nil {
		return nil, err
	}
	return blocks.IDs(items), nil
}

func (s *dashboardService) BlockTodo(ctx context.Context, blockID string) ([]study.Assessment, error) {
	userID, err := userFrom(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.repos.Assessments.ListByBlock(dbctx.Context{Ctx: ctx}, userID, blockID)
	if err != nil {
		return nil, err
	}
	return blocks.Todo(derefAll(rows), blockID), nil
}

func (s *dashboardService) Suggestion(ctx context.Context, day time.Time) (*schedule.Suggestion, error) {
	userID, err := userFrom(ctx)
	if err != nil {
		return nil, err
	}
	now := s.engine.Now()
	day = timeutil.StartOfDay(day.In(now.Location()))

	var (
		events    []*study.PersonalEvent
		sessions  []*study.FocusSession
		deadlines []*study.SchoolDeadline
		prefs     study.Preferences
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		events, err = s.repos.PersonalEvents.ListByUser(dbctx.Context{Ctx: gctx}, userID)
		return
	})
	g.Go(func() (err error) {
		sessions, err = s.repos.FocusSessions.ListByUser(dbctx.Context{Ctx: gctx}, userID)
		return
	})
	g.Go(func() (err error) {
		deadlines, err = s.repos.Deadlines.ListByUser(dbctx.Context{Ctx: gctx}, userID)
		return
	})
	g.Go(func() error {
		_, decoded, err := s.engine.loadState(dbctx.Context{Ctx: gctx}, userID)
		prefs = decoded.Preferences
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load schedule inputs: %w", err)
	}

	busy := schedule.BusyFromRecords(derefAll(events), derefAll(sessions), day)
	urgent := schedule.UrgentCount(derefAll(deadlines), now, schedule.UrgentHorizon)
	return schedule.Suggest(schedule.RequestFor(day, prefs, busy, urgent)), nil
}

func (s *dashboardService) RefreshUser(ctx context.Context, userID uuid.UUID) (pipeline.Result, error) {
	return s.engine.Refresh(ctx, userID)
}

func (s *dashboardService) RefreshAll(ctx context.Context) (int, error) {
	ids, err := s.repos.Progress.ListUserIDs(dbctx.Context{Ctx: ctx})
	if err != nil {
		return 0, err
	}
	ok := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return ok, err
		}
		if _, err := s.engine.Refresh(ctx, id); err != nil {
			s.log.Error("Refresh failed", "user_id", id, "error", err)
			continue
		}
		ok++
	}
	s.log.Info("Refreshed users", "ok", ok, "total", len(ids))
	return ok, nil
}
