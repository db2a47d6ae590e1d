package study

type DeadlineStatus string

const (
	DeadlineOnTrack   DeadlineStatus = "on-track"
	DeadlineAtRisk    DeadlineStatus = "at-risk"
	DeadlineCompleted DeadlineStatus = "completed"
	DeadlineFailed    DeadlineStatus = "failed"
)

// Terminal reports whether no further transition is allowed.
func (s DeadlineStatus) Terminal() bool {
	return s == DeadlineCompleted || s == DeadlineFailed
}

func (s DeadlineStatus) Valid() bool {
	switch s {
	case DeadlineOnTrack, DeadlineAtRisk, DeadlineCompleted, DeadlineFailed:
		return true
	default:
		return false
	}
}

type DeadlineSource string

const (
	DeadlineSourceLTI    DeadlineSource = "lti"
	DeadlineSourceManual DeadlineSource = "manual"
)

type EventSource string

const (
	EventSourceICS    EventSource = "ics"
	EventSourceManual EventSource = "manual"
)

type AssessmentStatus string

const (
	AssessmentPassed  AssessmentStatus = "passed"
	AssessmentFailed  AssessmentStatus = "failed"
	AssessmentPending AssessmentStatus = "pending"
)

type AssessmentSource string

const (
	AssessmentSourceCSV    AssessmentSource = "csv"
	AssessmentSourcePDF    AssessmentSource = "pdf"
	AssessmentSourceManual AssessmentSource = "manual"
)
