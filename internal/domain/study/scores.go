package study

type TrendDirection string

const (
	TrendUp      TrendDirection = "up"
	TrendDown    TrendDirection = "down"
	TrendNeutral TrendDirection = "neutral"
)

// Trend compares this week's score with last week's.
type Trend struct {
	Direction       TrendDirection `json:"direction"`
	Delta           float64        `json:"delta"`
	DeltaPercentage float64        `json:"delta_percentage"`
	Previous        int            `json:"previous"`
}

type MomentumBreakdown struct {
	Consistency     int `json:"consistency"`
	DeadlineControl int `json:"deadline_control"`
	FocusScore      int `json:"focus_score"`
	StreakBonus     int `json:"streak_bonus"`
}

type MomentumScore struct {
	Score     int               `json:"score"`
	Breakdown MomentumBreakdown `json:"breakdown"`
	Trend     Trend             `json:"trend"`
}

type PerformanceBreakdown struct {
	GradeProgression  int `json:"grade_progression"`
	BlockCompletion   int `json:"block_completion"`
	FocusConsistency  int `json:"focus_consistency"`
	DeadlineAdherence int `json:"deadline_adherence"`
	WeeklyStreak      int `json:"weekly_streak"`
}

type PerformanceTier string

const (
	TierElite            PerformanceTier = "elite"
	TierHighPerformer    PerformanceTier = "high-performer"
	TierOnTrack          PerformanceTier = "on-track"
	TierNeedsImprovement PerformanceTier = "needs-improvement"
)

type PerformanceIndex struct {
	Index     int                  `json:"index"`
	Breakdown PerformanceBreakdown `json:"breakdown"`
	Trend     Trend                `json:"trend"`
	ScoreGap  float64              `json:"score_gap"`
	Tier      PerformanceTier      `json:"tier"`
}

type BlockProgress struct {
	BlockID       string `json:"block_id"`
	Total         int    `json:"total"`
	Passed        int    `json:"passed"`
	Failed        int    `json:"failed"`
	Pending       int    `json:"pending"`
	PercentPassed int    `json:"percent_passed"`
}
