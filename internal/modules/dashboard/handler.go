package dashboard

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/myceliumAI/polypore/internal/pkg/response"
)

type Handler struct {
	service     *Service
	defaultDays int
}

func NewHandler(service *Service, defaultDays int) *Handler {
	if !ValidHorizon(defaultDays) {
		defaultDays = 90
	}
	return &Handler{service: service, defaultDays: defaultDays}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	dash := rg.Group("/dashboard")
	{
		dash.GET("/inventory", h.Inventory)
		dash.GET("/timeline", h.Timeline)
		dash.GET("/timeline-by-category", h.TimelineByCategory)
	}
}

func (h *Handler) Inventory(c *gin.Context) {
	rows, err := h.service.InventoryNow(c.Request.Context())
	if err != nil {
		h.internal(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

// GET /dashboard/timeline?days=90
func (h *Handler) Timeline(c *gin.Context) {
	days, ok := h.days(c)
	if !ok {
		return
	}
	out, err := h.service.ItemTimeline(c.Request.Context(), days)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) TimelineByCategory(c *gin.Context) {
	days, ok := h.days(c)
	if !ok {
		return
	}
	out, err := h.service.CategoryTimeline(c.Request.Context(), days)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) days(c *gin.Context) (int, bool) {
	raw := c.Query("days")
	if raw == "" {
		return h.defaultDays, true
	}
	days, err := strconv.Atoi(raw)
	if err != nil || !ValidHorizon(days) {
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeInvalidPayload, "Invalid days parameter",
			map[string]string{"days": "must be an integer between 1 and 365"})
		return 0, false
	}
	return days, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	if errors.Is(err, ErrInvalidHorizon) {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidPayload, err.Error())
		return
	}
	h.internal(c, err)
}

func (h *Handler) internal(c *gin.Context, err error) {
	log.Printf("dashboard_query_failed path=%s error=%q", c.FullPath(), err.Error())
	_ = c.Error(err)
	response.Error(c, http.StatusInternalServerError, response.CodeInternal, "Internal server error")
}
