package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/studypulse-backend/internal/data/repos/study"
	"github.com/yungbote/studypulse-backend/internal/platform/logger"
)

type StudyLogRepo = study.StudyLogRepo
type FocusSessionRepo = study.FocusSessionRepo
type DeadlineRepo = study.DeadlineRepo
type PersonalEventRepo = study.PersonalEventRepo
type AssessmentRepo = study.AssessmentRepo
type ProgressRepo = study.ProgressRepo

func NewStudyLogRepo(db *gorm.DB, baseLog *logger.Logger) StudyLogRepo {
	return study.NewStudyLogRepo(db, baseLog)
}

func NewFocusSessionRepo(db *gorm.DB, baseLog *logger.Logger) FocusSessionRepo {
	return study.NewFocusSessionRepo(db, baseLog)
}

func NewDeadlineRepo(db *gorm.DB, baseLog *logger.Logger) DeadlineRepo {
	return study.NewDeadlineRepo(db, baseLog)
}

func NewPersonalEventRepo(db *gorm.DB, baseLog *logger.Logger) PersonalEventRepo {
	return study.NewPersonalEventRepo(db, baseLog)
}

func NewAssessmentRepo(db *gorm.DB, baseLog *logger.Logger) AssessmentRepo {
	return study.NewAssessmentRepo(db, baseLog)
}

func NewProgressRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRepo {
	return study.NewProgressRepo(db, baseLog)
}
