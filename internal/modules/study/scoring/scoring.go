// Package scoring holds the component formulas shared by the momentum and
// performance index scorers.
package scoring

import (
	"math"

	"github.com/yungbote/studypulse-backend/internal/domain/study"
	"github.com/yungbote/studypulse-backend/internal/modules/study/timeutil"
)

const (
	// TrendThreshold is the absolute point change needed before a trend
	// leaves neutral.
	TrendThreshold = 2.0

	WeeklyFocusCap = 5
	WeeklyDaysCap  = 5
	StreakCap      = 7
)

// Capped returns min(n, limit)/limit*100.
func Capped(n, limit int) float64 {
	if limit <= 0 {
		return 0
	}
	if n > limit {
		n = limit
	}
	if n < 0 {
		n = 0
	}
	return float64(n) / float64(limit) * 100
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Clamp100 bounds v to [0, 100].
func Clamp100(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// StudyDaysIn counts distinct local calendar days with a log inside w.
func StudyDaysIn(logs []study.StudyLog, w timeutil.Window) int {
	loc := w.Start.Location()
	seen := make(map[int64]struct{})
	for _, l := range logs {
		if !w.Contains(l.Date) {
			continue
		}
		seen[timeutil.DayKey(l.Date, loc).Unix()] = struct{}{}
	}
	return len(seen)
}

// CompletedSessionsIn counts completed focus sessions that started inside w.
func CompletedSessionsIn(sessions []study.FocusSession, w timeutil.Window) int {
	n := 0
	for _, s := range sessions {
		if s.Completed && w.Contains(s.StartTime) {
			n++
		}
	}
	return n
}

// MinutesIn sums study log minutes inside w.
func MinutesIn(logs []study.StudyLog, w timeutil.Window) int {
	total := 0
	for _, l := range logs {
		if w.Contains(l.Date) {
			total += l.Minutes
		}
	}
	return total
}

// FocusScore is the weekly-capped focus session component.
func FocusScore(sessions []study.FocusSession, w timeutil.Window) float64 {
	return Capped(CompletedSessionsIn(sessions, w), WeeklyFocusCap)
}

// StreakBonus is the capped streak component.
func StreakBonus(currentStreak int) float64 {
	return Capped(currentStreak, StreakCap)
}

// NewTrend compares current with previous. Delta is rounded to one decimal
// and DeltaPercentage is 0 when previous is 0.
func NewTrend(current, previous int) study.Trend {
	diff := float64(current - previous)
	dir := study.TrendNeutral
	switch {
	case diff > TrendThreshold:
		dir = study.TrendUp
	case diff < -TrendThreshold:
		dir = study.TrendDown
	}
	pct := 0.0
	if previous != 0 {
		pct = diff / float64(previous) * 100
	}
	return study.Trend{
		Direction:       dir,
		Delta:           Round1(diff),
		DeltaPercentage: Round1(pct),
		Previous:        previous,
	}
}
