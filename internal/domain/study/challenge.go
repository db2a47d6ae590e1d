package study

import "time"

type ChallengeType string

const (
	ChallengeFocusSessions ChallengeType = "focus_sessions"
	ChallengeStudyDays     ChallengeType = "study_days"
	ChallengeStudyMinutes  ChallengeType = "study_minutes"
)

// WeeklyChallenge is one ISO week's (Monday start) goal.
type WeeklyChallenge struct {
	Type      ChallengeType `json:"type" validate:"required,oneof=focus_sessions study_days study_minutes"`
	Target    int           `json:"target" validate:"gt=0"`
	Current   int           `json:"current" validate:"gte=0"`
	Completed bool          `json:"completed"`
	WeekStart time.Time     `json:"week_start" validate:"required"`
	BonusXP   int           `json:"bonus_xp" validate:"gte=0"`
	XPAwarded bool          `json:"xp_awarded"`
}
