// Package momentum computes the weekly momentum score: a 0-100 weighted
// blend of study consistency, deadline control, focus sessions and streak.
package momentum

import (
	"math"
	"time"

	"github.com/yungbote/studypulse-backend/internal/domain/study"
	"github.com/yungbote/studypulse-backend/internal/modules/study/scoring"
	"github.com/yungbote/studypulse-backend/internal/modules/study/streak"
	"github.com/yungbote/studypulse-backend/internal/modules/study/timeutil"
)

const (
	WeightConsistency     = 0.4
	WeightDeadlineControl = 0.3
	WeightFocus           = 0.2
	WeightStreak          = 0.1
)

type Input struct {
	Logs      []study.StudyLog
	Sessions  []study.FocusSession
	Deadlines []study.SchoolDeadline
}

type components struct {
	consistency     float64
	deadlineControl float64
	focus           float64
	streak          float64
}

func (c components) weighted() float64 {
	return c.consistency*WeightConsistency +
		c.deadlineControl*WeightDeadlineControl +
		c.focus*WeightFocus +
		c.streak*WeightStreak
}

// DeadlineControl is on-track / (on-track + at-risk) as a percentage, and
// 100 when nothing is active.
func DeadlineControl(deadlines []study.SchoolDeadline) float64 {
	onTrack, atRisk := 0, 0
	for _, d := range deadlines {
		switch d.Status {
		case study.DeadlineOnTrack:
			onTrack++
		case study.DeadlineAtRisk:
			atRisk++
		}
	}
	if onTrack+atRisk == 0 {
		return 100
	}
	return float64(onTrack) / float64(onTrack+atRisk) * 100
}

func compute(in Input, w timeutil.Window, currentStreak int) components {
	return components{
		consistency:     scoring.Capped(scoring.StudyDaysIn(in.Logs, w), scoring.WeeklyDaysCap),
		deadlineControl: DeadlineControl(in.Deadlines),
		focus:           scoring.FocusScore(in.Sessions, w),
		streak:          scoring.StreakBonus(currentStreak),
	}
}

// Calculate scores this ISO week up to now and compares it with the whole
// previous ISO week. Deadline control uses the current deadline set for both
// weeks since statuses carry no history.
func Calculate(in Input, now time.Time) study.MomentumScore {
	cur := compute(in, timeutil.ThisWeek(now), streak.Calculate(in.Logs, now).CurrentStreak)

	last := timeutil.LastWeek(now)
	prev := compute(in, last, streak.AsOf(in.Logs, last.End).CurrentStreak)

	score := int(math.Round(cur.weighted()))
	previous := int(math.Round(prev.weighted()))
	return study.MomentumScore{
		Score: score,
		Breakdown: study.MomentumBreakdown{
			Consistency:     int(math.Round(cur.consistency)),
			DeadlineControl: int(math.Round(cur.deadlineControl)),
			FocusScore:      int(math.Round(cur.focus)),
			StreakBonus:     int(math.Round(cur.streak)),
		},
		Trend: scoring.NewTrend(score, previous),
	}
}
