package study

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/studypulse-backend/internal/data/db"
	types "github.com/yungbote/studypulse-backend/internal/domain/study"
	"github.com/yungbote/studypulse-backend/internal/platform/dbctx"
	"github.com/yungbote/studypulse-backend/internal/platform/logger"
)

type FocusSessionRepo interface {
	Create(dbc dbctx.Context, session *types.FocusSession) error
	GetByID(dbc dbctx.Context, userID, id uuid.UUID) (*types.FocusSession, error)
	Update(dbc dbctx.Context, session *types.FocusSession) error
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.FocusSession, error)
}

type focusSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFocusSessionRepo(db *gorm.DB, baseLog *logger.Logger) FocusSessionRepo {
	repoLog := baseLog.With("repo", "FocusSessionRepo")
	return &focusSessionRepo{db: db, log: repoLog}
}

func (r *focusSessionRepo) Create(dbc dbctx.Context, session *types.FocusSession) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if session == nil {
		return nil
	}
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	return db.MapError("create focus session", transaction.WithContext(dbc.Ctx).Create(session).Error)
}

// GetByID returns nil when the session does not exist or belongs to
// another user.
func (r *focusSessionRepo) GetByID(dbc dbctx.Context, userID, id uuid.UUID) (*types.FocusSession, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == uuid.Nil || id == uuid.Nil {
		return nil, nil
	}

	var row types.FocusSession
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, db.MapError("get focus session", err)
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *focusSessionRepo) Update(dbc dbctx.Context, session *types.FocusSession) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if session == nil || session.ID == uuid.Nil {
		return nil
	}
	return db.MapError("update focus session", transaction.WithContext(dbc.Ctx).Save(session).Error)
}

func (r *focusSessionRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.FocusSession, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.FocusSession
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("start_time DESC").
		Find(&results).Error; err != nil {
		return nil, db.MapError("list focus sessions", err)
	}
	return results, nil
}
