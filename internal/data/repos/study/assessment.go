package study

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/studypulse-backend/internal/data/db"
	types "github.com/yungbote/studypulse-backend/internal/domain/study"
	"github.com/yungbote/studypulse-backend/internal/platform/dbctx"
	"github.com/yungbote/studypulse-backend/internal/platform/logger"
)

type AssessmentRepo interface {
	Upsert(dbc dbctx.Context, rows []*types.Assessment) error
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Assessment, error)
	ListByBlock(dbc dbctx.Context, userID uuid.UUID, blockID string) ([]*types.Assessment, error)
}

type assessmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssessmentRepo(db *gorm.DB, baseLog *logger.Logger) AssessmentRepo {
	return &assessmentRepo{db: db, log: baseLog.With("repo", "AssessmentRepo")}
}

// Upsert writes imported assessments. Imports carry the latest grade, so
// every graded column is refreshed.
func (r *assessmentRepo) Upsert(dbc dbctx.Context, rows []*types.Assessment) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		row.UpdatedAt = now
	}
	err := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"course",
				"item",
				"score",
				"weight",
				"date",
				"status",
				"block_id",
				"source",
				"updated_at",
				"deleted_at",
			}),
		}).
		Create(&rows).Error
	return db.MapError("upsert assessments", err)
}

func (r *assessmentRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Assessment, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var results []*types.Assessment
	if userID == uuid.Nil {
		return results, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, course ASC, item ASC").
		Find(&results).Error; err != nil {
		return nil, db.MapError("list assessments", err)
	}
	return results, nil
}

func (r *assessmentRepo) ListByBlock(dbc dbctx.Context, userID uuid.UUID, blockID string) ([]*types.Assessment, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var results []*types.Assessment
	if userID == uuid.Nil || blockID == "" {
		return results, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ? AND block_id = ?", userID, blockID).
		Find(&results).Error; err != nil {
		return nil, db.MapError("list block assessments", err)
	}
	return results, nil
}
