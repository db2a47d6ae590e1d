// Package performance computes the performance index, a five-factor weighted
// 0-100 score with a week-over-week trend and the gap to a target average.
package performance

import (
	"math"
	"time"

	"github.com/yungbote/studypulse-backend/internal/domain/study"
	"github.com/yungbote/studypulse-backend/internal/modules/study/scoring"
	"github.com/yungbote/studypulse-backend/internal/modules/study/streak"
	"github.com/yungbote/studypulse-backend/internal/modules/study/timeutil"
)

const (
	WeightGradeProgression  = 0.40
	WeightBlockCompletion   = 0.20
	WeightFocusConsistency  = 0.15
	WeightDeadlineAdherence = 0.15
	WeightWeeklyStreak      = 0.10

	DefaultTargetAverage = 7.0

	neutralScore     = 50.0
	targetBonus      = 10.0
	defaultBlockName = "default"
)

type Input struct {
	Assessments []study.Assessment
	Sessions    []study.FocusSession
	Logs        []study.StudyLog
	Deadlines   []study.SchoolDeadline

	// TargetAverage on a 0-10 scale. Zero means DefaultTargetAverage.
	TargetAverage float64
	// WeekStart bounds focus consistency. Zero means Monday of now's week.
	WeekStart time.Time
}

func (in Input) target() float64 {
	if in.TargetAverage > 0 {
		return in.TargetAverage
	}
	return DefaultTargetAverage
}

// WeightedAverage averages assessments with a positive score, weighting a
// missing weight as 1. ok is false when nothing qualifies.
func WeightedAverage(items []study.Assessment) (avg float64, ok bool) {
	var sum, weights float64
	for _, a := range items {
		if !a.Scored() || *a.Score <= 0 {
			continue
		}
		w := a.EffectiveWeight()
		sum += *a.Score * w
		weights += w
	}
	if weights <= 0 {
		return 0, false
	}
	return sum / weights, true
}

// GradeProgression maps the weighted average onto 0-100 with a bonus for
// reaching target. Without grades it is neutral.
func GradeProgression(items []study.Assessment, target float64) float64 {
	avg, ok := WeightedAverage(items)
	if !ok {
		return neutralScore
	}
	score := avg / 10 * 100
	if avg >= target {
		score += targetBonus
	}
	return math.Min(score, 100)
}

// BlockCompletion is the share of blocks with at least one passed
// assessment. Assessments without a block fall into one shared group.
func BlockCompletion(items []study.Assessment) float64 {
	passed := map[string]bool{}
	for _, a := range items {
		key := defaultBlockName
		if a.BlockID != nil && *a.BlockID != "" {
			key = *a.BlockID
		}
		passed[key] = passed[key] || a.Status == study.AssessmentPassed
	}
	if len(passed) == 0 {
		return neutralScore
	}
	n := 0
	for _, ok := range passed {
		if ok {
			n++
		}
	}
	return float64(n) / float64(len(passed)) * 100
}

// DeadlineAdherence is the share of non-failed future deadlines that are
// on-track or completed, and 100 when there are none.
func DeadlineAdherence(deadlines []study.SchoolDeadline, now time.Time) float64 {
	active, good := 0, 0
	for _, d := range deadlines {
		if d.Status == study.DeadlineFailed || !d.Deadline.After(now) {
			continue
		}
		active++
		if d.Status == study.DeadlineOnTrack || d.Status == study.DeadlineCompleted {
			good++
		}
	}
	if active == 0 {
		return 100
	}
	return float64(good) / float64(active) * 100
}

type components struct {
	grade, blocks, focus, deadlines, streak float64
}

func (c components) weighted() float64 {
	return c.grade*WeightGradeProgression +
		c.blocks*WeightBlockCompletion +
		c.focus*WeightFocusConsistency +
		c.deadlines*WeightDeadlineAdherence +
		c.streak*WeightWeeklyStreak
}

// Calculate returns the index for the week up to now. The prior-week index
// shifts focus and streak back one ISO week and reuses the other factors.
func Calculate(in Input, now time.Time) study.PerformanceIndex {
	target := in.target()
	weekStart := in.WeekStart
	if weekStart.IsZero() {
		weekStart = timeutil.StartOfISOWeek(now)
	}

	shared := components{
		grade:     GradeProgression(in.Assessments, target),
		blocks:    BlockCompletion(in.Assessments),
		deadlines: DeadlineAdherence(in.Deadlines, now),
	}

	cur := shared
	cur.focus = scoring.FocusScore(in.Sessions, timeutil.Window{Start: weekStart, End: now})
	cur.streak = scoring.StreakBonus(streak.Calculate(in.Logs, now).CurrentStreak)

	last := timeutil.LastWeek(now)
	prev := shared
	prev.focus = scoring.FocusScore(in.Sessions, last)
	prev.streak = scoring.StreakBonus(streak.AsOf(in.Logs, last.End).CurrentStreak)

	index := int(math.Round(cur.weighted()))
	previous := int(math.Round(prev.weighted()))

	gap := 0.0
	if avg, ok := WeightedAverage(in.Assessments); ok {
		gap = scoring.Round2(target - avg)
	}

	return study.PerformanceIndex{
		Index: index,
		Breakdown: study.PerformanceBreakdown{
			GradeProgression:  int(math.Round(cur.grade)),
			BlockCompletion:   int(math.Round(cur.blocks)),
			FocusConsistency:  int(math.Round(cur.focus)),
			DeadlineAdherence: int(math.Round(cur.deadlines)),
			WeeklyStreak:      int(math.Round(cur.streak)),
		},
		Trend:    scoring.NewTrend(index, previous),
		ScoreGap: gap,
		Tier:     TierFor(index),
	}
}

// TierFor classifies an index for display.
func TierFor(index int) study.PerformanceTier {
	switch {
	case index >= 85:
		return study.TierElite
	case index >= 70:
		return study.TierHighPerformer
	case index >= 55:
		return study.TierOnTrack
	default:
		return study.TierNeedsImprovement
	}
}

type Badge string

const (
	BadgeNone  Badge = ""
	BadgeTop10 Badge = "top10"
	BadgeTop25 Badge = "top25"
	BadgeTop50 Badge = "top50"
)

// PercentileBadge maps a percentile rank to a badge. Each tier includes its
// lower edge.
func PercentileBadge(percentile float64) Badge {
	switch {
	case percentile >= 90:
		return BadgeTop10
	case percentile >= 75:
		return BadgeTop25
	case percentile >= 50:
		return BadgeTop50
	default:
		return BadgeNone
	}
}
