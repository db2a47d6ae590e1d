package study

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StudyLog is a single user-entered block of study time. Immutable once created.
type StudyLog struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Date      time.Time      `gorm:"column:date;not null;index" json:"date"`
	Minutes   int            `gorm:"column:minutes;not null" json:"minutes"`
	XPAwarded int            `gorm:"column:xp_awarded;not null" json:"xp_awarded"`
	Notes     *string        `gorm:"column:notes;type:text" json:"notes,omitempty"`
	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (StudyLog) TableName() string { return "study_log" }
