package study

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SchoolDeadline struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Title       string         `gorm:"column:title;not null" json:"title"`
	Deadline    time.Time      `gorm:"column:deadline;not null;index" json:"deadline"`
	Status      DeadlineStatus `gorm:"column:status;not null;index" json:"status"`
	XP          int            `gorm:"column:xp;not null" json:"xp"`
	Source      DeadlineSource `gorm:"column:source;not null" json:"source"`
	CompletedAt *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (SchoolDeadline) TableName() string { return "school_deadline" }

// Active reports whether the deadline still counts toward deadline-control
// style metrics (neither completed nor failed).
func (d SchoolDeadline) Active() bool {
	return !d.Status.Terminal()
}

// Transition moves the deadline forward. on-track and at-risk may swap with
// each other; completed and failed are terminal.
func (d SchoolDeadline) Transition(to DeadlineStatus, at time.Time) (SchoolDeadline, error) {
	if !to.Valid() {
		return d, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}
	if d.Status.Terminal() {
		if d.Status == to {
			return d, nil
		}
		return d, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, d.Status, to)
	}
	d.Status = to
	if to == DeadlineCompleted {
		t := at
		d.CompletedAt = &t
	}
	return d, nil
}
