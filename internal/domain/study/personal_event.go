package study

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PersonalEvent struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Title     string         `gorm:"column:title;not null" json:"title"`
	Start     time.Time      `gorm:"column:start_at;not null;index" json:"start"`
	End       time.Time      `gorm:"column:end_at;not null" json:"end"`
	Location  *string        `gorm:"column:location" json:"location,omitempty"`
	Source    EventSource    `gorm:"column:source;not null" json:"source"`
	Tag       *string        `gorm:"column:tag;index" json:"tag,omitempty"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (PersonalEvent) TableName() string { return "personal_event" }
