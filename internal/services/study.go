package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/studypulse-backend/internal/domain/study"
	"github.com/yungbote/studypulse-backend/internal/modules/study/objectives"
	"github.com/yungbote/studypulse-backend/internal/modules/study/pipeline"
	"github.com/yungbote/studypulse-backend/internal/modules/study/snapshot"
	"github.com/yungbote/studypulse-backend/internal/platform/apierr"
	"github.com/yungbote/studypulse-backend/internal/platform/dbctx"
	"github.com/yungbote/studypulse-backend/internal/platform/logger"
)

const (
	// XPPerMinute is the base award of study logs and focus sessions.
	XPPerMinute = 1
	// MinFocusXP is the floor of a completed focus session's award.
	MinFocusXP = 5
	// ManualDeadlineXP is the default award of a manually created deadline.
	ManualDeadlineXP = 50

	maxMinutes = 24 * 60
)

type LogStudyInput struct {
	Date    *time.Time `json:"date"`
	Minutes int        `json:"minutes"`
	XP      *int       `json:"xp"`
	Notes   *string    `json:"notes"`
}

type StartFocusInput struct {
	StartTime *time.Time `json:"start_time"`
	Duration  int        `json:"duration"`
}

type CreateDeadlineInput struct {
	Title    string    `json:"title"`
	Deadline time.Time `json:"deadline"`
	XP       *int      `json:"xp"`
}

type StudyService interface {
	LogStudy(ctx context.Context, in LogStudyInput) (*study.StudyLog, pipeline.Result, error)
	ListStudyLogs(ctx context.Context) ([]*study.StudyLog, error)
	StartFocusSession(ctx context.Context, in StartFocusInput) (*study.FocusSession, error)
	CompleteFocusSession(ctx context.Context, id uuid.UUID, end *time.Time) (*study.FocusSession, pipeline.Result, error)
	CreateDeadline(ctx context.Context, in CreateDeadlineInput) (*study.SchoolDeadline, error)
	TransitionDeadline(ctx context.Context, id uuid.UUID, to study.DeadlineStatus) (*study.SchoolDeadline, pipeline.Result, error)
	CompleteObjective(ctx context.Context, t study.ObjectiveType) (pipeline.Result, error)
	GetPreferences(ctx context.Context) (study.Preferences, error)
	UpdatePreferences(ctx context.Context, prefs study.Preferences) (study.Preferences, error)
}

type studyService struct {
	db     *gorm.DB
	log    *logger.Logger
	repos  Repos
	engine *ProgressEngine
}

func NewStudyService(db *gorm.DB, log *logger.Logger, r Repos, engine *ProgressEngine) StudyService {
	return &studyService{
		db:     db,
		log:    log.With("service", "StudyService"),
		repos:  r,
		engine: engine,
	}
}

// inTx runs fn in a transaction and publishes the produced transitions
// after commit.
func (s *studyService) inTx(ctx context.Context, userID uuid.UUID, fn func(dbc dbctx.Context) (pipeline.Result, error)) (pipeline.Result, error) {
	var res pipeline.Result
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		res, err = fn(dbctx.Context{Ctx: ctx, Tx: tx})
		return err
	})
	if err != nil {
		return pipeline.Result{}, err
	}
	s.engine.Publish(ctx, userID, res.Transitions)
	return res, nil
}

func (s *studyService) multiplier(dbc dbctx.Context, userID uuid.UUID) (float64, error) {
	_, decoded, err := s.engine.lockState(dbc, userID)
	if err != nil {
		return 0, err
	}
	return Multiplier(decoded.State, s.engine.Now()), nil
}

func (s *studyService) LogStudy(ctx context.Context, in LogStudyInput) (*study.StudyLog, pipeline.Result, error) {
	userID, err := userFrom(ctx)
	if err != nil {
		return nil, pipeline.Result{}, err
	}
	if in.Minutes <= 0 || in.Minutes > maxMinutes {
		return nil, pipeline.Result{}, invalid("invalid_minutes", "minutes must be between 1 and 1440")
	}
	if in.XP != nil && *in.XP < 0 {
		return nil, pipeline.Result{}, invalid("invalid_xp", "xp must not be negative")
	}

	now := s.engine.Now()
	date := now
	if in.Date != nil {
		date = in.Date.In(now.Location())
	}

	var created *study.StudyLog
	res, err := s.inTx(ctx, userID, func(dbc dbctx.Context) (pipeline.Result, error) {
		award := 0
		if in.XP != nil {
			award = *in.XP
		} else {
			m, err := s.multiplier(dbc, userID)
			if err != nil {
				return pipeline.Result{}, err
			}
			award = ScaleXP(in.Minutes*XPPerMinute, m)
		}
		row := &study.StudyLog{
			UserID:    userID,
			Date:      date,
			Minutes:   in.Minutes,
			XPAwarded: award,
			Notes:     in.Notes,
		}
		if _, err := s.repos.StudyLogs.Create(dbc, []*study.StudyLog{row}); err != nil {
			return pipeline.Result{}, err
		}
		created = row
		return s.engine.Apply(dbc, userID, award, nil)
	})
	if err != nil {
		return nil, pipeline.Result{}, err
	}
	s.log.Info("Study logged", "user_id", userID, "minutes", created.Minutes, "xp", created.XPAwarded)
	return created, res, nil
}

func (s *studyService) ListStudyLogs(ctx context.Context) ([]*study.StudyLog, error) {
	userID, err := userFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.repos.StudyLogs.ListByUser(dbctx.Context{Ctx: ctx}, userID)
}

func (s *studyService) StartFocusSession(ctx context.Context, in StartFocusInput) (*study.FocusSession, error) {
	userID, err := userFrom(ctx)
	if err != nil {
		return nil, err
	}
	if in.Duration < 0 || in.Duration > maxMinutes {
		return nil, invalid("invalid_duration", "duration must be between 0 and 1440")
	}
	start := s.engine.Now()
	if in.StartTime != nil {
		start = in.StartTime.In(start.Location())
	}
	row := &study.FocusSession{
		UserID:    userID,
		StartTime: start,
		Duration:  in.Duration,
	}
	if err := s.repos.FocusSessions.Create(dbctx.Context{Ctx: ctx}, row); err != nil {
		return nil, err
	}
	return row, nil
}

// FocusXP is the base award of a completed session of minutes.
func FocusXP(minutes int) int {
	xp := minutes * XPPerMinute
	if xp < MinFocusXP {
		return MinFocusXP
	}
	return xp
}

func (s *studyService) CompleteFocusSession(ctx context.Context, id uuid.UUID, end *time.Time) (*study.FocusSession, pipeline.Result, error) {
	userID, err := userFrom(ctx)
	if err != nil {
		return nil, pipeline.Result{}, err
	}
	endAt := s.engine.Now()
	if end != nil {
		endAt = end.In(endAt.Location())
	}

	var done study.FocusSession
	res, err := s.inTx(ctx, userID, func(dbc dbctx.Context) (pipeline.Result, error) {
		row, err := s.repos.FocusSessions.GetByID(dbc, userID, id)
		if err != nil {
			return pipeline.Result{}, err
		}
		if row == nil {
			return pipeline.Result{}, apierr.NotFound("focus_session_not_found", apierr.ErrNotFound)
		}
		if row.Completed {
			return pipeline.Result{}, apierr.New(http.StatusConflict, "focus_session_completed", study.ErrSessionAlreadyCompleted)
		}

		minutes := row.Duration
		if minutes <= 0 {
			minutes = int(endAt.Sub(row.StartTime).Minutes())
		}
		m, err := s.multiplier(dbc, userID)
		if err != nil {
			return pipeline.Result{}, err
		}
		award := ScaleXP(FocusXP(minutes), m)

		done, err = row.Complete(endAt, award)
		if err != nil {
			return pipeline.Result{}, err
		}
		if err := s.repos.FocusSessions.Update(dbc, &done); err != nil {
			return pipeline.Result{}, err
		}
		return s.engine.Apply(dbc, userID, award, nil)
	})
	if err != nil {
		return nil, pipeline.Result{}, err
	}
	return &done, res, nil
}

func (s *studyService) CreateDeadline(ctx context.Context, in CreateDeadlineInput) (*study.SchoolDeadline, error) {
	userID, err := userFrom(ctx)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalid("invalid_title", "title required")
	}
	if in.Deadline.IsZero() {
		return nil, invalid("invalid_deadline", "deadline required")
	}
	xpValue := ManualDeadlineXP
	if in.XP != nil {
		if *in.XP < 0 {
			return nil, invalid("invalid_xp", "xp must not be negative")
		}
		xpValue = *in.XP
	}
	row := &study.SchoolDeadline{
		UserID:   userID,
		Title:    title,
		Deadline: in.Deadline,
		Status:   study.DeadlineOnTrack,
		XP:       xpValue,
		Source:   study.DeadlineSourceManual,
	}
	if err := s.repos.Deadlines.Create(dbctx.Context{Ctx: ctx}, row); err != nil {
		return nil, err
	}
	return row, nil
}

// TransitionDeadline moves a deadline forward. The deadline's XP is paid on
// the move into completed; repeating that move is a no-op.
func (s *studyService) TransitionDeadline(ctx context.Context, id uuid.UUID, to study.DeadlineStatus) (*study.SchoolDeadline, pipeline.Result, error) {
	userID, err := userFrom(ctx)
	if err != nil {
		return nil, pipeline.Result{}, err
	}
	if !to.Valid() {
		return nil, pipeline.Result{}, invalid("invalid_status", fmt.Sprintf("unknown status %q", to))
	}

	var updated study.SchoolDeadline
	res, err := s.inTx(ctx, userID, func(dbc dbctx.Context) (pipeline.Result, error) {
		row, err := s.repos.Deadlines.GetByID(dbc, userID, id)
		if err != nil {
			return pipeline.Result{}, err
		}
		if row == nil {
			return pipeline.Result{}, apierr.NotFound("deadline_not_found", apierr.ErrNotFound)
		}
		before := row.Status
		updated, err = row.Transition(to, s.engine.Now())
		if err != nil {
			return pipeline.Result{}, apierr.New(http.StatusConflict, "invalid_transition", err)
		}
		if before == updated.Status {
			return s.engine.Apply(dbc, userID, 0, nil)
		}
		if err := s.repos.Deadlines.Update(dbc, &updated); err != nil {
			return pipeline.Result{}, err
		}
		award := 0
		if updated.Status == study.DeadlineCompleted {
			award = updated.XP
		}
		return s.engine.Apply(dbc, userID, award, nil)
	})
	if err != nil {
		return nil, pipeline.Result{}, err
	}
	return &updated, res, nil
}

func (s *studyService) CompleteObjective(ctx context.Context, t study.ObjectiveType) (pipeline.Result, error) {
	userID, err := userFrom(ctx)
	if err != nil {
		return pipeline.Result{}, err
	}
	return s.inTx(ctx, userID, func(dbc dbctx.Context) (pipeline.Result, error) {
		return s.engine.Apply(dbc, userID, 0, func(st *pipeline.State) error {
			next, err := objectives.MarkComplete(st.Objectives, t)
			if err != nil {
				switch {
				case errors.Is(err, objectives.ErrNotManual):
					return apierr.New(http.StatusConflict, "objective_not_manual", err)
				default:
					return apierr.BadRequest("unknown_objective", err)
				}
			}
			st.Objectives = next
			return nil
		})
	})
}

func (s *studyService) GetPreferences(ctx context.Context) (study.Preferences, error) {
	userID, err := userFrom(ctx)
	if err != nil {
		return study.Preferences{}, err
	}
	_, decoded, err := s.engine.loadState(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return study.Preferences{}, err
	}
	return decoded.Preferences, nil
}

// UpdatePreferences overlays the set fields of prefs on the stored ones.
func (s *studyService) UpdatePreferences(ctx context.Context, prefs study.Preferences) (study.Preferences, error) {
	userID, err := userFrom(ctx)
	if err != nil {
		return study.Preferences{}, err
	}
	if err := snapshot.ValidatePreferences(prefs); err != nil {
		return study.Preferences{}, apierr.BadRequest("invalid_preferences", errors.Join(apierr.ErrInvalidArgument, err))
	}

	var merged study.Preferences
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		row, decoded, err := s.engine.lockState(dbc, userID)
		if err != nil {
			return err
		}
		merged = snapshot.MergePreferences(decoded.Preferences, prefs)
		if err := snapshot.Encode(row, decoded.State, &merged); err != nil {
			return err
		}
		return s.repos.Progress.Upsert(dbc, row)
	})
	if err != nil {
		return study.Preferences{}, err
	}
	return merged, nil
}
