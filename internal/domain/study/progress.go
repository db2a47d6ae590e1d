package study

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// XPState is fully derivable from TotalXP.
type XPState struct {
	TotalXP           int `json:"total_xp"`
	Level             int `json:"level"`
	XPForCurrentLevel int `json:"xp_for_current_level"`
	XPForNextLevel    int `json:"xp_for_next_level"`
}

type StreakState struct {
	CurrentStreak int        `json:"current_streak"`
	LongestStreak int        `json:"longest_streak"`
	LastStudyDate *time.Time `json:"last_study_date,omitempty"`
}

// UserProgress is the persisted, authoritative part of a user's gamified
// state. Everything else is recomputed from the record tables.
type UserProgress struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`

	TotalXP int `gorm:"column:total_xp;not null" json:"total_xp"`

	// JSON blobs validated by the snapshot package before use.
	Objectives       datatypes.JSON `gorm:"column:objectives;type:jsonb" json:"objectives"`
	Challenge        datatypes.JSON `gorm:"column:challenge;type:jsonb" json:"challenge"`
	ObjectiveHistory datatypes.JSON `gorm:"column:objective_history;type:jsonb" json:"objective_history"`
	Preferences      datatypes.JSON `gorm:"column:preferences;type:jsonb" json:"preferences"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;index" json:"updated_at"`
}

func (UserProgress) TableName() string { return "user_progress" }
