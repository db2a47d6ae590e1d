package study

import "time"

type ObjectiveType string

const (
	ObjectiveFocusSessions  ObjectiveType = "focus_sessions"
	ObjectiveStudyMinutes   ObjectiveType = "study_minutes"
	ObjectiveDeadlineReview ObjectiveType = "deadline_review"
)

type MomentumMode string

const (
	ModeRecovery    MomentumMode = "recovery"
	ModeStable      MomentumMode = "stable"
	ModePerformance MomentumMode = "performance"
)

type Objective struct {
	Type      ObjectiveType `json:"type" validate:"required,oneof=focus_sessions study_minutes deadline_review"`
	Label     string        `json:"label"`
	Target    int           `json:"target" validate:"gt=0"`
	Current   int           `json:"current" validate:"gte=0"`
	Completed bool          `json:"completed"`
}

// DailyObjectivesState is one calendar day's goal set. It is replaced, not
// mutated in place, when its Date falls before today.
type DailyObjectivesState struct {
	Date           time.Time    `json:"date" validate:"required"`
	Objectives     []Objective  `json:"objectives" validate:"required,min=1,dive"`
	AllCompleted   bool         `json:"all_completed"`
	MomentumMode   MomentumMode `json:"momentum_mode" validate:"omitempty,oneof=recovery stable performance"`
	BonusXPAwarded bool         `json:"bonus_xp_awarded"`
}

// DayCompletion records the completion rate of a finished day's objectives.
type DayCompletion struct {
	Date time.Time `json:"date" validate:"required"`
	Rate float64   `json:"rate" validate:"gte=0,lte=1"`
}
