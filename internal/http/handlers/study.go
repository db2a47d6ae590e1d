package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/studypulse-backend/internal/domain/study"
	"github.com/yungbote/studypulse-backend/internal/http/response"
	"github.com/yungbote/studypulse-backend/internal/modules/study/pipeline"
	"github.com/yungbote/studypulse-backend/internal/platform/logger"
	"github.com/yungbote/studypulse-backend/internal/services"
)

type StudyHandler struct {
	log   *logger.Logger
	study services.StudyService
}

func NewStudyHandler(log *logger.Logger, study services.StudyService) *StudyHandler {
	return &StudyHandler{log: log.With("handler", "StudyHandler"), study: study}
}

// bindJSON binds an optional body; an empty body leaves dst untouched.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return false
	}
	return true
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return uuid.Nil, false
	}
	return id, true
}

func progressBody(res pipeline.Result) gin.H {
	return gin.H{
		"progress":    res.Snapshot,
		"transitions": res.Transitions,
	}
}

// POST /study-logs
// body: { "minutes": 45, "date": "...", "xp": 10, "notes": "..." }
func (h *StudyHandler) CreateStudyLog(c *gin.Context) {
	var in services.LogStudyInput
	if !bindJSON(c, &in) {
		return
	}
	row, res, err := h.study.LogStudy(c.Request.Context(), in)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	body := progressBody(res)
	body["study_log"] = row
	response.RespondCreated(c, body)
}

// GET /study-logs
func (h *StudyHandler) ListStudyLogs(c *gin.Context) {
	rows, err := h.study.ListStudyLogs(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	if rows == nil {
		rows = []*study.StudyLog{}
	}
	response.RespondOK(c, gin.H{"study_logs": rows})
}

// POST /focus-sessions
// body: { "duration": 25, "start_time": "..." }
func (h *StudyHandler) StartFocusSession(c *gin.Context) {
	var in services.StartFocusInput
	if !bindJSON(c, &in) {
		return
	}
	row, err := h.study.StartFocusSession(c.Request.Context(), in)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"focus_session": row})
}

// POST /focus-sessions/:id/complete
// body (optional): { "end_time": "..." }
func (h *StudyHandler) CompleteFocusSession(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		EndTime *time.Time `json:"end_time"`
	}
	if !bindJSON(c, &req) {
		return
	}
	row, res, err := h.study.CompleteFocusSession(c.Request.Context(), id, req.EndTime)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	body := progressBody(res)
	body["focus_session"] = row
	response.RespondOK(c, body)
}

// POST /deadlines
// body: { "title": "...", "deadline": "...", "xp": 50 }
func (h *StudyHandler) CreateDeadline(c *gin.Context) {
	var in services.CreateDeadlineInput
	if !bindJSON(c, &in) {
		return
	}
	row, err := h.study.CreateDeadline(c.Request.Context(), in)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"deadline": row})
}

// PATCH /deadlines/:id/status
// body: { "status": "on-track" | "at-risk" | "completed" | "failed" }
func (h *StudyHandler) TransitionDeadline(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Status study.DeadlineStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	row, res, err := h.study.TransitionDeadline(c.Request.Context(), id, req.Status)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	body := progressBody(res)
	body["deadline"] = row
	response.RespondOK(c, body)
}

// POST /objectives/:type/complete
func (h *StudyHandler) CompleteObjective(c *gin.Context) {
	res, err := h.study.CompleteObjective(c.Request.Context(), study.ObjectiveType(c.Param("type")))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, progressBody(res))
}

// GET /preferences
func (h *StudyHandler) GetPreferences(c *gin.Context) {
	prefs, err := h.study.GetPreferences(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"preferences": prefs})
}

// PUT /preferences
// body: { "study_window_start": "08:00", "preferred_start": "14:00", ... }
func (h *StudyHandler) UpdatePreferences(c *gin.Context) {
	var in study.Preferences
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	prefs, err := h.study.UpdatePreferences(c.Request.Context(), in)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"preferences": prefs})
}
