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

type PersonalEventRepo interface {
	Upsert(dbc dbctx.Context, rows []*types.PersonalEvent) error
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.PersonalEvent, error)
}

type personalEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPersonalEventRepo(db *gorm.DB, baseLog *logger.Logger) PersonalEventRepo {
	return &personalEventRepo{db: db, log: baseLog.With("repo", "PersonalEventRepo")}
}

func (r *personalEventRepo) Upsert(dbc dbctx.Context, rows []*types.PersonalEvent) error {
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
				"title",
				"start_at",
				"end_at",
				"location",
				"updated_at",
				"deleted_at",
			}),
		}).
		Create(&rows).Error
	return db.MapError("upsert personal events", err)
}

func (r *personalEventRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.PersonalEvent, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var results []*types.PersonalEvent
	if userID == uuid.Nil {
		return results, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("start_at ASC").
		Find(&results).Error; err != nil {
		return nil, db.MapError("list personal events", err)
	}
	return results, nil
}
