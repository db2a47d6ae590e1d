package services

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/studypulse-backend/internal/data/repos"
	"github.com/yungbote/studypulse-backend/internal/domain/study"
	"github.com/yungbote/studypulse-backend/internal/modules/study/objectives"
	"github.com/yungbote/studypulse-backend/internal/modules/study/pipeline"
	"github.com/yungbote/studypulse-backend/internal/modules/study/snapshot"
	"github.com/yungbote/studypulse-backend/internal/observability"
	"github.com/yungbote/studypulse-backend/internal/platform/dbctx"
	"github.com/yungbote/studypulse-backend/internal/platform/logger"
	"github.com/yungbote/studypulse-backend/internal/realtime/bus"
)

// Settings are the knobs shared by every study service.
type Settings struct {
	// Location is the user's calendar; day and week boundaries use it.
	Location          *time.Location
	GradeTarget       float64
	PerformanceTarget float64
	// Clock defaults to time.Now.
	Clock func() time.Time
	// Metrics may be nil.
	Metrics *observability.Metrics
}

// Repos is the set of repositories the study services read and write.
type Repos struct {
	StudyLogs      repos.StudyLogRepo
	FocusSessions  repos.FocusSessionRepo
	Deadlines      repos.DeadlineRepo
	PersonalEvents repos.PersonalEventRepo
	Assessments    repos.AssessmentRepo
	Progress       repos.ProgressRepo
}

// ProgressEngine loads a user's records and stored progress, runs the
// recompute pipeline, persists the new state and publishes transitions.
type ProgressEngine struct {
	db       *gorm.DB
	log      *logger.Logger
	repos    Repos
	bus      bus.Bus
	settings Settings
}

func NewProgressEngine(db *gorm.DB, log *logger.Logger, r Repos, b bus.Bus, s Settings) *ProgressEngine {
	if s.Location == nil {
		s.Location = time.Local
	}
	if s.Clock == nil {
		s.Clock = time.Now
	}
	return &ProgressEngine{
		db:       db,
		log:      log.With("service", "ProgressEngine"),
		repos:    r,
		bus:      b,
		settings: s,
	}
}

// Now is the current instant in the configured location.
func (e *ProgressEngine) Now() time.Time {
	return e.settings.Clock().In(e.settings.Location)
}

func (e *ProgressEngine) Location() *time.Location { return e.settings.Location }

func (e *ProgressEngine) options(award int) pipeline.Options {
	return pipeline.Options{AwardXP: award, PerformanceTarget: e.settings.PerformanceTarget}
}

func derefAll[T any](rows []*T) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

// loadState reads and validates the stored progress. A missing row yields
// a fresh row and zero state.
func (e *ProgressEngine) loadState(dbc dbctx.Context, userID uuid.UUID) (*study.UserProgress, snapshot.Decoded, error) {
	row, err := e.repos.Progress.GetByUserID(dbc, userID)
	if err != nil {
		return nil, snapshot.Decoded{}, fmt.Errorf("load progress: %w", err)
	}
	if row == nil {
		row = &study.UserProgress{UserID: userID}
	}
	decoded := snapshot.Decode(*row)
	for _, p := range decoded.Problems {
		e.log.Warn("Dropped invalid progress blob", "user_id", userID, "field", p.Field, "reason", p.Reason)
	}
	return row, decoded, nil
}

// lockState is loadState for writers: it takes the row lock on dbc's
// transaction so overlapping updates of one user serialize.
func (e *ProgressEngine) lockState(dbc dbctx.Context, userID uuid.UUID) (*study.UserProgress, snapshot.Decoded, error) {
	row, err := e.repos.Progress.LockByUserID(dbc, userID)
	if err != nil {
		return nil, snapshot.Decoded{}, fmt.Errorf("lock progress: %w", err)
	}
	decoded := snapshot.Decode(*row)
	for _, p := range decoded.Problems {
		e.log.Warn("Dropped invalid progress blob", "user_id", userID, "field", p.Field, "reason", p.Reason)
	}
	return row, decoded, nil
}

// loadRecords reads every record set on dbc. Within a transaction the reads
// run in order on the one connection; otherwise they run concurrently.
func (e *ProgressEngine) loadRecords(dbc dbctx.Context, userID uuid.UUID) (pipeline.Records, error) {
	var (
		logs        []*study.StudyLog
		sessions    []*study.FocusSession
		deadlines   []*study.SchoolDeadline
		assessments []*study.Assessment
	)
	loaders := []func(dbctx.Context) error{
		func(c dbctx.Context) (err error) { logs, err = e.repos.StudyLogs.ListByUser(c, userID); return },
		func(c dbctx.Context) (err error) { sessions, err = e.repos.FocusSessions.ListByUser(c, userID); return },
		func(c dbctx.Context) (err error) { deadlines, err = e.repos.Deadlines.ListByUser(c, userID); return },
		func(c dbctx.Context) (err error) { assessments, err = e.repos.Assessments.ListByUser(c, userID); return },
	}

	if dbc.Tx != nil {
		for _, load := range loaders {
			if err := load(dbc); err != nil {
				return pipeline.Records{}, err
			}
		}
	} else {
		g, gctx := errgroup.WithContext(dbc.Ctx)
		for _, load := range loaders {
			load := load
			g.Go(func() error { return load(dbctx.Context{Ctx: gctx}) })
		}
		if err := g.Wait(); err != nil {
			return pipeline.Records{}, err
		}
	}

	return pipeline.Records{
		Logs:        derefAll(logs),
		Sessions:    derefAll(sessions),
		Deadlines:   derefAll(deadlines),
		Assessments: derefAll(assessments),
	}, nil
}

// Multiplier returns the XP multiplier of the objectives mode in force at
// now, after any pending rollover.
func Multiplier(st pipeline.State, now time.Time) float64 {
	obj, _, _ := objectives.Rollover(st.Objectives, st.History, now)
	if m, ok := objectives.XPMultiplier[obj.MomentumMode]; ok {
		return m
	}
	return 1
}

// ScaleXP applies the multiplier to base, rounding half up.
func ScaleXP(base int, multiplier float64) int {
	if base <= 0 {
		return 0
	}
	return int(math.Round(float64(base) * multiplier))
}

// Mutation edits the state after the first recompute pass. It runs inside
// the persistence transaction.
type Mutation func(st *pipeline.State) error

// Apply recomputes userID's progress inside dbc's transaction and saves it.
// The progress row stays locked until that transaction ends.
// award is added to the XP total in the same pass. A non-nil mutate runs on
// the recomputed state and is followed by a second pass, so a manual
// completion pays its bonus in the same call.
func (e *ProgressEngine) Apply(dbc dbctx.Context, userID uuid.UUID, award int, mutate Mutation) (pipeline.Result, error) {
	now := e.Now()
	row, decoded, err := e.lockState(dbc, userID)
	if err != nil {
		return pipeline.Result{}, err
	}
	rec, err := e.loadRecords(dbc, userID)
	if err != nil {
		return pipeline.Result{}, fmt.Errorf("load records: %w", err)
	}

	res := pipeline.Recompute(decoded.State, rec, e.options(award), now)
	if mutate != nil {
		st := res.State
		if err := mutate(&st); err != nil {
			return pipeline.Result{}, err
		}
		second := pipeline.Recompute(st, rec, e.options(0), now)
		second.Transitions = append(res.Transitions, second.Transitions...)
		res = second
	}

	if err := snapshot.Encode(row, res.State, nil); err != nil {
		return pipeline.Result{}, err
	}
	if err := e.repos.Progress.Upsert(dbc, row); err != nil {
		return pipeline.Result{}, fmt.Errorf("save progress: %w", err)
	}
	return res, nil
}

// Preview recomputes userID's progress from a concurrent read of the
// stored rows without saving. dirty reports whether saving would change
// anything.
func (e *ProgressEngine) Preview(ctx context.Context, userID uuid.UUID) (res pipeline.Result, dirty bool, err error) {
	var (
		row     *study.UserProgress
		decoded snapshot.Decoded
		rec     pipeline.Records
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		row, decoded, err = e.loadState(dbctx.Context{Ctx: gctx}, userID)
		return
	})
	g.Go(func() (err error) {
		rec, err = e.loadRecords(dbctx.Context{Ctx: gctx}, userID)
		return
	})
	if err := g.Wait(); err != nil {
		return pipeline.Result{}, false, err
	}

	res = pipeline.Recompute(decoded.State, rec, e.options(0), e.Now())
	dirty = row.CreatedAt.IsZero() ||
		len(decoded.Problems) > 0 ||
		len(res.Transitions) > 0 ||
		!reflect.DeepEqual(decoded.State, res.State)
	return res, dirty, nil
}

// Refresh recomputes and saves userID's progress in its own transaction and
// publishes the transitions once committed.
func (e *ProgressEngine) Refresh(ctx context.Context, userID uuid.UUID) (pipeline.Result, error) {
	var res pipeline.Result
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		res, err = e.Apply(dbctx.Context{Ctx: ctx, Tx: tx}, userID, 0, nil)
		return err
	})
	if err != nil {
		return pipeline.Result{}, err
	}
	e.Publish(ctx, userID, res.Transitions)
	return res, nil
}

// Publish counts each transition and forwards it on the bus, whose
// consumers do the logging. Bus failures are logged, never returned: the
// state is already committed.
func (e *ProgressEngine) Publish(ctx context.Context, userID uuid.UUID, transitions []pipeline.Transition) {
	for _, t := range transitions {
		e.settings.Metrics.IncTransition(string(t.Kind))
		if e.bus == nil {
			continue
		}
		ev := bus.Event{UserID: userID, Kind: string(t.Kind), XP: t.XP, Level: t.Level, At: t.At}
		if err := e.bus.Publish(ctx, ev); err != nil {
			e.log.Warn("Failed to publish transition", "user_id", userID, "kind", t.Kind, "error", err)
		}
	}
}
