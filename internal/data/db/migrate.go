package db

import (
	"gorm.io/gorm"

	"github.com/yungbote/studypulse-backend/internal/domain/study"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Records
		&study.StudyLog{},
		&study.FocusSession{},
		&study.SchoolDeadline{},
		&study.PersonalEvent{},
		&study.Assessment{},

		// Persisted progress
		&study.UserProgress{},
	)
}
