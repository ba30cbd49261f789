package shoot

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/myceliumAI/polypore/internal/pkg/response"
	"github.com/myceliumAI/polypore/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	shoots := rg.Group("/shoots")
	{
		shoots.GET("", h.ListShoots)
		shoots.GET("/:id", h.GetShoot)
		shoots.GET("/:id/packing-list", h.PackingList)
	}
}

func (h *Handler) RegisterOperatorRoutes(rg *gin.RouterGroup) {
	shoots := rg.Group("/shoots")
	{
		shoots.POST("", h.CreateShoot)
		shoots.PATCH("/:id", h.UpdateShoot)
		shoots.DELETE("/:id", h.DeleteShoot)
	}
}

func (h *Handler) ListShoots(c *gin.Context) {
	out, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) GetShoot(c *gin.Context) {
	id, ok := shootID(c)
	if !ok {
		return
	}
	sh, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, sh)
}

func (h *Handler) PackingList(c *gin.Context) {
	id, ok := shootID(c)
	if !ok {
		return
	}
	lines, err := h.service.PackingList(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, lines)
}

func (h *Handler) CreateShoot(c *gin.Context) {
	var req CreateShootRequest
	if !bind(c, &req) {
		return
	}
	sh, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, sh)
}

func (h *Handler) UpdateShoot(c *gin.Context) {
	id, ok := shootID(c)
	if !ok {
		return
	}
	var req UpdateShootRequest
	if !bind(c, &req) {
		return
	}
	sh, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, sh)
}

func (h *Handler) DeleteShoot(c *gin.Context) {
	id, ok := shootID(c)
	if !ok {
		return
	}
	out, err := h.service.Delete(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func shootID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidPayload, "Invalid shoot ID")
		return 0, false
	}
	return id, true
}

func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidPayload, "Invalid request body")
		return false
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeInvalidPayload, "Invalid payload", errs)
		return false
	}
	return true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Shoot not found")
	case errors.Is(err, ErrInvalidDates):
		response.Error(c, http.StatusBadRequest, response.CodeInvalidDates, err.Error())
	case errors.Is(err, ErrInvalidPayload):
		response.Error(c, http.StatusBadRequest, response.CodeInvalidPayload, err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "Internal server error")
	}
}
