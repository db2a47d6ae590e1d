// Package pipeline recomputes every derived value from a user's records in
// one pass and reports the one-time transitions (bonus awards, resets,
// level-ups) found by comparing the previous state with the new one.
//
// Recompute is pure. Feeding its returned State back in with the same
// records yields no further transitions.
package pipeline

import (
	"time"

	"github.com/yungbote/studypulse-backend/internal/domain/study"
	"github.com/yungbote/studypulse-backend/internal/modules/study/blocks"
	"github.com/yungbote/studypulse-backend/internal/modules/study/challenge"
	"github.com/yungbote/studypulse-backend/internal/modules/study/momentum"
	"github.com/yungbote/studypulse-backend/internal/modules/study/objectives"
	"github.com/yungbote/studypulse-backend/internal/modules/study/performance"
	"github.com/yungbote/studypulse-backend/internal/modules/study/streak"
	"github.com/yungbote/studypulse-backend/internal/modules/study/xp"
)

// State is the persisted part of a user's progress.
type State struct {
	TotalXP    int                        `json:"total_xp"`
	Objectives study.DailyObjectivesState `json:"objectives"`
	History    []study.DayCompletion      `json:"history"`
	Challenge  study.WeeklyChallenge      `json:"challenge"`
}

type Records struct {
	Logs        []study.StudyLog
	Sessions    []study.FocusSession
	Deadlines   []study.SchoolDeadline
	Assessments []study.Assessment
}

type Options struct {
	// AwardXP is added to the total before level-up detection, e.g. the XP
	// of a study log or completed deadline recorded in the same request.
	AwardXP int
	// PerformanceTarget on a 0-10 scale; zero uses the performance default.
	PerformanceTarget float64
}

type Snapshot struct {
	XP           study.XPState              `json:"xp"`
	XPProgress   float64                    `json:"xp_progress"`
	Streak       study.StreakState          `json:"streak"`
	Momentum     study.MomentumScore        `json:"momentum"`
	Performance  study.PerformanceIndex     `json:"performance"`
	Objectives   study.DailyObjectivesState `json:"objectives"`
	Challenge    study.WeeklyChallenge      `json:"challenge"`
	Blocks       []study.BlockProgress      `json:"blocks"`
	XPMultiplier float64                    `json:"xp_multiplier"`
	ComputedAt   time.Time                  `json:"computed_at"`
}

type TransitionKind string

const (
	ObjectivesRegenerated TransitionKind = "objectives_regenerated"
	ObjectivesCompleted   TransitionKind = "objectives_completed"
	ChallengeReset        TransitionKind = "challenge_reset"
	ChallengeCompleted    TransitionKind = "challenge_completed"
	LevelUp               TransitionKind = "level_up"
)

type Transition struct {
	Kind  TransitionKind `json:"kind"`
	XP    int            `json:"xp,omitempty"`
	Level int            `json:"level,omitempty"`
	At    time.Time      `json:"at"`
}

type Result struct {
	State       State        `json:"state"`
	Snapshot    Snapshot     `json:"snapshot"`
	Transitions []Transition `json:"transitions"`
}

// Recompute advances prev to now: rolls over stale objectives and
// challenges, recounts progress, pays each bonus at most once and detects
// level-ups.
func Recompute(prev State, rec Records, opts Options, now time.Time) Result {
	var out []Transition
	emit := func(kind TransitionKind, xpAmount, level int) {
		out = append(out, Transition{Kind: kind, XP: xpAmount, Level: level, At: now})
	}

	next := State{TotalXP: prev.TotalXP}
	award := 0
	if opts.AwardXP > 0 {
		award = opts.AwardXP
	}

	obj, hist, rolled := objectives.Rollover(prev.Objectives, prev.History, now)
	if rolled {
		emit(ObjectivesRegenerated, 0, 0)
	}
	obj, bonus := objectives.Progress(obj, rec.Logs, rec.Sessions)
	if bonus > 0 {
		emit(ObjectivesCompleted, bonus, 0)
		award += bonus
	}
	next.Objectives = obj
	next.History = hist

	ch, reset := challenge.Reset(prev.Challenge, now)
	if reset {
		emit(ChallengeReset, 0, 0)
	}
	ch, bonus = challenge.Progress(ch, rec.Logs, rec.Sessions)
	if bonus > 0 {
		emit(ChallengeCompleted, bonus, 0)
		award += bonus
	}
	next.Challenge = ch

	awarded := xp.Award(prev.TotalXP, award)
	next.TotalXP = awarded.State.TotalXP
	if awarded.LeveledUp {
		emit(LevelUp, award, awarded.State.Level)
	}

	snap := Snapshot{
		XP:          awarded.State,
		XPProgress:  xp.Progress(awarded.State),
		Streak:      streak.Calculate(rec.Logs, now),
		Momentum:    momentum.Calculate(momentum.Input{Logs: rec.Logs, Sessions: rec.Sessions, Deadlines: rec.Deadlines}, now),
		Performance: performance.Calculate(performance.Input{
			Assessments:   rec.Assessments,
			Sessions:      rec.Sessions,
			Logs:          rec.Logs,
			Deadlines:     rec.Deadlines,
			TargetAverage: opts.PerformanceTarget,
		}, now),
		Objectives:   next.Objectives,
		Challenge:    next.Challenge,
		Blocks:       blocks.SummarizeAll(rec.Assessments),
		XPMultiplier: objectives.XPMultiplier[next.Objectives.MomentumMode],
		ComputedAt:   now,
	}
	if out == nil {
		out = []Transition{}
	}
	return Result{State: next, Snapshot: snap, Transitions: out}
}
