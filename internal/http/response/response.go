package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/studypulse-backend/internal/platform/apierr"
	"github.com/yungbote/studypulse-backend/internal/platform/ctxutil"
)

var errInternal = errors.New("internal error")

type APIError struct {
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondServiceError classifies err and writes the envelope. Internal
// errors are recorded on the context for the request logger and replaced
// by a generic message carrying the request id.
func RespondServiceError(c *gin.Context, err error) {
	status, code := apierr.Classify(err)
	if status < http.StatusInternalServerError {
		RespondError(c, status, code, err)
		return
	}
	_ = c.Error(err)
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message:   errInternal.Error(),
			Code:      code,
			RequestID: ctxutil.RequestID(c.Request.Context()),
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
