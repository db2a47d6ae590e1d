package study

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/studypulse-backend/internal/data/db"
	types "github.com/yungbote/studypulse-backend/internal/domain/study"
	"github.com/yungbote/studypulse-backend/internal/platform/dbctx"
	"github.com/yungbote/studypulse-backend/internal/platform/logger"
)

type ProgressRepo interface {
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.UserProgress, error)
	LockByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.UserProgress, error)
	Upsert(dbc dbctx.Context, row *types.UserProgress) error
	ListUserIDs(dbc dbctx.Context) ([]uuid.UUID, error)
}

type progressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProgressRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRepo {
	return &progressRepo{db: db, log: baseLog.With("repo", "ProgressRepo")}
}

// GetByUserID returns nil for a user that has no progress row yet.
func (r *progressRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.UserProgress, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil {
		return nil, nil
	}
	var row types.UserProgress
	if err := t.WithContext(dbc.Ctx).Where("user_id = ?", userID).Limit(1).Find(&row).Error; err != nil {
		return nil, db.MapError("get progress", err)
	}
	if row.UserID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

// LockByUserID creates userID's row if missing and reads it FOR UPDATE, so
// concurrent read-modify-write cycles on one user run one after another.
// The lock is held until dbc.Tx ends.
func (r *progressRepo) LockByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.UserProgress, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user id")
	}
	if dbc.Tx == nil {
		return nil, fmt.Errorf("LockByUserID requires dbc.Tx")
	}
	now := time.Now().UTC()
	seed := &types.UserProgress{UserID: userID, CreatedAt: now, UpdatedAt: now}
	if err := dbc.Tx.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(seed).Error; err != nil {
		return nil, db.MapError("seed progress", err)
	}
	var row types.UserProgress
	if err := dbc.Tx.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		Take(&row).Error; err != nil {
		return nil, db.MapError("lock progress", err)
	}
	return &row, nil
}

func (r *progressRepo) Upsert(dbc dbctx.Context, row *types.UserProgress) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.UserID == uuid.Nil {
		return nil
	}
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now
	err := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_xp",
				"objectives",
				"challenge",
				"objective_history",
				"preferences",
				"updated_at",
			}),
		}).
		Create(row).Error
	return db.MapError("upsert progress", err)
}

// ListUserIDs returns every user with persisted progress, for the rollover job.
func (r *progressRepo) ListUserIDs(dbc dbctx.Context) ([]uuid.UUID, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var ids []uuid.UUID
	if err := t.WithContext(dbc.Ctx).
		Model(&types.UserProgress{}).
		Order("user_id").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, db.MapError("list progress users", err)
	}
	return ids, nil
}
