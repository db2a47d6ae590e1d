package study

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Assessment is one graded (or not yet graded) item of a course. Score and
// Weight are independently nullable; a nil Score means not graded yet.
type Assessment struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	Course    string           `gorm:"column:course;not null;index" json:"course"`
	Item      string           `gorm:"column:item;not null" json:"item"`
	Score     *float64         `gorm:"column:score" json:"score"`
	Weight    *float64         `gorm:"column:weight" json:"weight"`
	Date      *time.Time       `gorm:"column:date" json:"date,omitempty"`
	Status    AssessmentStatus `gorm:"column:status;not null" json:"status"`
	BlockID   *string          `gorm:"column:block_id;index" json:"block_id,omitempty"`
	Source    AssessmentSource `gorm:"column:source;not null" json:"source"`
	CreatedAt time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time        `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt   `gorm:"index" json:"-"`
}

func (Assessment) TableName() string { return "assessment" }

// EffectiveWeight returns the weight used for aggregation; nil counts as 1.
func (a Assessment) EffectiveWeight() float64 {
	if !finite(a.Weight) {
		return 1
	}
	return *a.Weight
}

// Scored is false for a missing score and for a non-finite one stored by an
// older import.
func (a Assessment) Scored() bool { return finite(a.Score) }

func finite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}
