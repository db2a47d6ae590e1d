package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/yungbote/studypulse-backend/internal/platform/apierr"
	"github.com/yungbote/studypulse-backend/internal/platform/ctxutil"
)

var errNoUser = apierr.New(http.StatusUnauthorized, "unauthorized", apierr.ErrUnauthorized)

// userFrom returns the authenticated user of ctx.
func userFrom(ctx context.Context) (uuid.UUID, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, errNoUser
	}
	return rd.UserID, nil
}

func invalid(code, msg string) error {
	return apierr.BadRequest(code, errors.Join(apierr.ErrInvalidArgument, errors.New(msg)))
}
