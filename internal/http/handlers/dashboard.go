package handlers

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/studypulse-backend/internal/http/response"
	"github.com/yungbote/studypulse-backend/internal/platform/logger"
	"github.com/yungbote/studypulse-backend/internal/services"
)

type DashboardHandler struct {
	log       *logger.Logger
	dashboard services.DashboardService
	loc       *time.Location
	now       func() time.Time
}

// NewDashboardHandler reads date parameters in loc.
func NewDashboardHandler(log *logger.Logger, dashboard services.DashboardService, loc *time.Location) *DashboardHandler {
	if loc == nil {
		loc = time.Local
	}
	return &DashboardHandler{
		log:       log.With("handler", "DashboardHandler"),
		dashboard: dashboard,
		loc:       loc,
		now:       time.Now,
	}
}

// GET /dashboard
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	d, err := h.dashboard.Dashboard(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, d)
}

// GET /grades/summary?target=5.5
func (h *DashboardHandler) GradeSummary(c *gin.Context) {
	target := 0.0
	if raw := strings.TrimSpace(c.Query("target")); raw != "" {
		v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
		if err != nil || math.IsNaN(v) || v < 0 || v > 10 {
			response.RespondError(c, http.StatusBadRequest, "invalid_target", err)
			return
		}
		target = v
	}
	summaries, err := h.dashboard.GradeSummaries(c.Request.Context(), target)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"summaries": summaries})
}

// GET /blocks
func (h *DashboardHandler) ListBlocks(c *gin.Context) {
	ids, err := h.dashboard.BlockIDs(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"blocks": ids})
}

// GET /blocks/:id/todo
func (h *DashboardHandler) BlockTodo(c *gin.Context) {
	items, err := h.dashboard.BlockTodo(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"items": items})
}

// GET /schedule/suggestion?date=2024-03-07
func (h *DashboardHandler) Suggestion(c *gin.Context) {
	day := h.now().In(h.loc)
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		d, err := time.ParseInLocation("2006-01-02", raw, h.loc)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_date", err)
			return
		}
		day = d
	}
	s, err := h.dashboard.Suggestion(c.Request.Context(), day)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"suggestion": s})
}
