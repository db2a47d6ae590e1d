package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/studypulse-backend/internal/platform/apierr"
)

// MapError tags storage failures with the apierr sentinels so handlers can
// classify them. Unknown failures are wrapped with op only.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, errors.Join(apierr.ErrNotFound, err))
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505": // unique_violation
			return fmt.Errorf("%s: %w", op, errors.Join(apierr.ErrConflict, err))
		case "23503", "23502", "22P02": // foreign_key, not_null, invalid_text_representation
			return fmt.Errorf("%s: %w", op, errors.Join(apierr.ErrInvalidArgument, err))
		}
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "unique constraint failed") || errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s: %w", op, errors.Join(apierr.ErrConflict, err))
	}
	return fmt.Errorf("%s: %w", op, err)
}
