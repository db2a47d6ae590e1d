// Package objectives generates and tracks the three daily objectives.
//
// A state belongs to one calendar day. When that day is behind today the
// state is replaced wholesale and its completion rate moves into history,
// which in turn drives the advisory momentum mode of the next day.
package objectives

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/yungbote/studypulse-backend/internal/domain/study"
	"github.com/yungbote/studypulse-backend/internal/modules/study/timeutil"
)

const (
	BonusXP = 25

	TargetFocusSessions  = 2
	TargetStudyMinutes   = 45
	TargetDeadlineReview = 1

	modeWindow    = 3
	recoveryBelow = 0.5
	performAbove  = 0.8

	// MaxHistory caps how many finished days are retained.
	MaxHistory = 30
)

var (
	ErrNotManual        = errors.New("objective is tracked automatically")
	ErrUnknownObjective = errors.New("unknown objective type")
)

// XPMultiplier is the advisory XP factor for each mode.
var XPMultiplier = map[study.MomentumMode]float64{
	study.ModeRecovery:    1.2,
	study.ModeStable:      1.0,
	study.ModePerformance: 1.1,
}

// Template returns the fixed objective set with zero progress.
func Template() []study.Objective {
	return []study.Objective{
		{Type: study.ObjectiveFocusSessions, Label: "Complete 2 focus sessions", Target: TargetFocusSessions},
		{Type: study.ObjectiveStudyMinutes, Label: "Study for 45 minutes", Target: TargetStudyMinutes},
		{Type: study.ObjectiveDeadlineReview, Label: "Review your upcoming deadlines", Target: TargetDeadlineReview},
	}
}

// Generate returns a fresh state for now's calendar day.
func Generate(now time.Time, mode study.MomentumMode) study.DailyObjectivesState {
	if mode == "" {
		mode = study.ModeStable
	}
	return study.DailyObjectivesState{
		Date:         timeutil.StartOfDay(now),
		Objectives:   Template(),
		MomentumMode: mode,
	}
}

// IsStale reports whether the state's day is strictly before now's day.
// A zero state is always stale.
func IsStale(s study.DailyObjectivesState, now time.Time) bool {
	if s.Date.IsZero() {
		return true
	}
	return timeutil.DaysBetween(s.Date.In(now.Location()), now) > 0
}

// CompletionRate is the share of completed objectives.
func CompletionRate(s study.DailyObjectivesState) float64 {
	if len(s.Objectives) == 0 {
		return 0
	}
	done := 0
	for _, o := range s.Objectives {
		if o.Completed {
			done++
		}
	}
	return float64(done) / float64(len(s.Objectives))
}

// Mode derives the momentum mode from the average rate of the most recent
// days in history. Without history the mode is stable.
func Mode(history []study.DayCompletion) study.MomentumMode {
	if len(history) == 0 {
		return study.ModeStable
	}
	sorted := append([]study.DayCompletion(nil), history...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })
	if len(sorted) > modeWindow {
		sorted = sorted[:modeWindow]
	}
	sum := 0.0
	for _, h := range sorted {
		sum += h.Rate
	}
	avg := sum / float64(len(sorted))
	switch {
	case avg < recoveryBelow:
		return study.ModeRecovery
	case avg > performAbove:
		return study.ModePerformance
	default:
		return study.ModeStable
	}
}

// Rollover replaces a stale state. The finished day's rate is appended to
// history (one entry per day) and the new state's mode comes from the
// updated history. rolled is false when s is still current.
func Rollover(s study.DailyObjectivesState, history []study.DayCompletion, now time.Time) (next study.DailyObjectivesState, hist []study.DayCompletion, rolled bool) {
	if !IsStale(s, now) {
		return s, history, false
	}
	hist = append([]study.DayCompletion(nil), history...)
	if !s.Date.IsZero() && !hasDay(hist, s.Date) {
		hist = append(hist, study.DayCompletion{Date: timeutil.StartOfDay(s.Date), Rate: CompletionRate(s)})
	}
	sort.Slice(hist, func(i, j int) bool { return hist[i].Date.Before(hist[j].Date) })
	if len(hist) > MaxHistory {
		hist = hist[len(hist)-MaxHistory:]
	}
	return Generate(now, Mode(hist)), hist, true
}

func hasDay(hist []study.DayCompletion, day time.Time) bool {
	for _, h := range hist {
		if timeutil.SameDay(h.Date, day) {
			return true
		}
	}
	return false
}

// Progress recomputes the automatic objectives from today's records. Manual
// objectives keep their stored progress. The returned bonus is BonusXP the
// first time every objective is complete and 0 otherwise; the returned
// state already carries BonusXPAwarded so persisting it with the award
// prevents a second payout.
func Progress(s study.DailyObjectivesState, logs []study.StudyLog, sessions []study.FocusSession) (study.DailyObjectivesState, int) {
	day := timeutil.Window{Start: timeutil.StartOfDay(s.Date), End: timeutil.EndOfDay(s.Date)}

	sessionsToday := 0
	for _, fs := range sessions {
		if fs.Completed && day.Contains(fs.StartTime) {
			sessionsToday++
		}
	}
	minutesToday := 0
	for _, l := range logs {
		if day.Contains(l.Date) {
			minutesToday += l.Minutes
		}
	}

	next := s
	next.Objectives = make([]study.Objective, len(s.Objectives))
	all := len(s.Objectives) > 0
	for i, o := range s.Objectives {
		switch o.Type {
		case study.ObjectiveFocusSessions:
			o.Current = sessionsToday
		case study.ObjectiveStudyMinutes:
			o.Current = minutesToday
		}
		o.Completed = o.Current >= o.Target
		all = all && o.Completed
		next.Objectives[i] = o
	}
	next.AllCompleted = all

	bonus := 0
	if all && !s.BonusXPAwarded {
		bonus = BonusXP
		next.BonusXPAwarded = true
	}
	return next, bonus
}

// MarkComplete sets a manual objective to done. Only deadline_review is
// manual.
func MarkComplete(s study.DailyObjectivesState, t study.ObjectiveType) (study.DailyObjectivesState, error) {
	switch t {
	case study.ObjectiveDeadlineReview:
	case study.ObjectiveFocusSessions, study.ObjectiveStudyMinutes:
		return s, fmt.Errorf("%w: %s", ErrNotManual, t)
	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownObjective, t)
	}
	next := s
	next.Objectives = make([]study.Objective, len(s.Objectives))
	copy(next.Objectives, s.Objectives)
	found := false
	for i, o := range next.Objectives {
		if o.Type == t {
			o.Current = o.Target
			o.Completed = true
			next.Objectives[i] = o
			found = true
		}
	}
	if !found {
		return s, fmt.Errorf("%w: %q not in today's set", ErrUnknownObjective, t)
	}
	return next, nil
}
