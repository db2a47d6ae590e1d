// Package challenge tracks the weekly challenge, one per ISO week.
package challenge

import (
	"time"

	"github.com/yungbote/studypulse-backend/internal/domain/study"
	"github.com/yungbote/studypulse-backend/internal/modules/study/scoring"
	"github.com/yungbote/studypulse-backend/internal/modules/study/timeutil"
)

const (
	DefaultType    = study.ChallengeFocusSessions
	DefaultTarget  = 5
	DefaultBonusXP = 40
)

// New returns the default challenge for now's ISO week.
func New(now time.Time) study.WeeklyChallenge {
	return study.WeeklyChallenge{
		Type:      DefaultType,
		Target:    DefaultTarget,
		WeekStart: timeutil.StartOfISOWeek(now),
		BonusXP:   DefaultBonusXP,
	}
}

// NeedsReset reports whether c belongs to a different ISO week than now.
func NeedsReset(c study.WeeklyChallenge, now time.Time) bool {
	if c.WeekStart.IsZero() {
		return true
	}
	return !timeutil.SameISOWeek(now, c.WeekStart)
}

// Reset returns a fresh challenge when c is from another week, keeping its
// type, target and bonus. reset is false when c is current.
func Reset(c study.WeeklyChallenge, now time.Time) (next study.WeeklyChallenge, reset bool) {
	if !NeedsReset(c, now) {
		return c, false
	}
	next = New(now)
	if c.Type != "" && c.Target > 0 {
		next.Type = c.Type
		next.Target = c.Target
		next.BonusXP = c.BonusXP
	}
	return next, true
}

// Window is [weekStart, end of Sunday] inclusive.
func Window(c study.WeeklyChallenge) timeutil.Window {
	return timeutil.ISOWeek(c.WeekStart)
}

// Progress recounts the challenge from records inside its week. The bonus
// is returned once, together with a state that has XPAwarded set.
func Progress(c study.WeeklyChallenge, logs []study.StudyLog, sessions []study.FocusSession) (study.WeeklyChallenge, int) {
	w := Window(c)
	next := c
	switch c.Type {
	case study.ChallengeFocusSessions:
		next.Current = scoring.CompletedSessionsIn(sessions, w)
	case study.ChallengeStudyDays:
		next.Current = scoring.StudyDaysIn(logs, w)
	case study.ChallengeStudyMinutes:
		next.Current = scoring.MinutesIn(logs, w)
	}
	next.Completed = next.Target > 0 && next.Current >= next.Target

	bonus := 0
	if next.Completed && !c.XPAwarded {
		bonus = c.BonusXP
		next.XPAwarded = true
	}
	return next, bonus
}
