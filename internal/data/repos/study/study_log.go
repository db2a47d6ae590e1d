package study

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/studypulse-backend/internal/data/db"
	types "github.com/yungbote/studypulse-backend/internal/domain/study"
	"github.com/yungbote/studypulse-backend/internal/platform/dbctx"
	"github.com/yungbote/studypulse-backend/internal/platform/logger"
)

type StudyLogRepo interface {
	Create(dbc dbctx.Context, logs []*types.StudyLog) ([]*types.StudyLog, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.StudyLog, error)
}

type studyLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudyLogRepo(db *gorm.DB, baseLog *logger.Logger) StudyLogRepo {
	repoLog := baseLog.With("repo", "StudyLogRepo")
	return &studyLogRepo{db: db, log: repoLog}
}

func (r *studyLogRepo) Create(dbc dbctx.Context, logs []*types.StudyLog) ([]*types.StudyLog, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(logs) == 0 {
		return []*types.StudyLog{}, nil
	}
	for _, l := range logs {
		if l.ID == uuid.Nil {
			l.ID = uuid.New()
		}
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&logs).Error; err != nil {
		return nil, db.MapError("create study logs", err)
	}
	return logs, nil
}

// ListByUser returns the user's logs, newest first.
func (r *studyLogRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.StudyLog, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.StudyLog
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("date DESC, created_at DESC").
		Find(&results).Error; err != nil {
		return nil, db.MapError("list study logs", err)
	}
	return results, nil
}
