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

type DeadlineRepo interface {
	Create(dbc dbctx.Context, deadline *types.SchoolDeadline) error
	Upsert(dbc dbctx.Context, rows []*types.SchoolDeadline) error
	GetByID(dbc dbctx.Context, userID, id uuid.UUID) (*types.SchoolDeadline, error)
	Update(dbc dbctx.Context, deadline *types.SchoolDeadline) error
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.SchoolDeadline, error)
}

type deadlineRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDeadlineRepo(db *gorm.DB, baseLog *logger.Logger) DeadlineRepo {
	repoLog := baseLog.With("repo", "DeadlineRepo")
	return &deadlineRepo{db: db, log: repoLog}
}

func (r *deadlineRepo) Create(dbc dbctx.Context, deadline *types.SchoolDeadline) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if deadline == nil {
		return nil
	}
	if deadline.ID == uuid.Nil {
		deadline.ID = uuid.New()
	}
	return db.MapError("create deadline", transaction.WithContext(dbc.Ctx).Create(deadline).Error)
}

// Upsert writes imported deadlines. A re-import refreshes title and due
// time but never the status, so completed deadlines stay completed.
func (r *deadlineRepo) Upsert(dbc dbctx.Context, rows []*types.SchoolDeadline) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
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
	err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"title",
				"deadline",
				"updated_at",
				"deleted_at",
			}),
		}).
		Create(&rows).Error
	return db.MapError("upsert deadlines", err)
}

func (r *deadlineRepo) GetByID(dbc dbctx.Context, userID, id uuid.UUID) (*types.SchoolDeadline, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil || id == uuid.Nil {
		return nil, nil
	}

	var row types.SchoolDeadline
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, db.MapError("get deadline", err)
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *deadlineRepo) Update(dbc dbctx.Context, deadline *types.SchoolDeadline) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if deadline == nil || deadline.ID == uuid.Nil {
		return nil
	}
	return db.MapError("update deadline", transaction.WithContext(dbc.Ctx).Save(deadline).Error)
}

func (r *deadlineRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.SchoolDeadline, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.SchoolDeadline
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("deadline ASC").
		Find(&results).Error; err != nil {
		return nil, db.MapError("list deadlines", err)
	}
	return results, nil
}
