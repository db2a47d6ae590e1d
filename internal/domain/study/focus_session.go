package study

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrSessionAlreadyCompleted = errors.New("focus session already completed")

type FocusSession struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	StartTime time.Time      `gorm:"column:start_time;not null;index" json:"start_time"`
	EndTime   *time.Time     `gorm:"column:end_time" json:"end_time,omitempty"`
	Duration  int            `gorm:"column:duration;not null" json:"duration"`
	Completed bool           `gorm:"column:completed;not null;index" json:"completed"`
	XPAwarded *int           `gorm:"column:xp_awarded" json:"xp_awarded,omitempty"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (FocusSession) TableName() string { return "focus_session" }

// Complete marks the session finished at end and returns the copy. A session
// can only be completed once. Duration falls back to the elapsed minutes when
// the planned duration is unset.
func (s FocusSession) Complete(end time.Time, xp int) (FocusSession, error) {
	if s.Completed {
		return s, ErrSessionAlreadyCompleted
	}
	if end.Before(s.StartTime) {
		end = s.StartTime
	}
	if s.Duration <= 0 {
		s.Duration = int(end.Sub(s.StartTime).Minutes())
	}
	s.EndTime = &end
	s.Completed = true
	s.XPAwarded = &xp
	return s, nil
}
