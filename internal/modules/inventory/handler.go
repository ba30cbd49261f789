package inventory

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
	rg.GET("/items", h.ListItems)
	rg.GET("/items/:id", h.GetItem)
}

func (h *Handler) RegisterOperatorRoutes(rg *gin.RouterGroup) {
	rg.POST("/items", h.CreateItem)
	rg.PATCH("/items/:id", h.UpdateItem)
	rg.DELETE("/items/:id", h.DeleteItem)
}

func (h *Handler) ListItems(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, items)
}

func (h *Handler) GetItem(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	item, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

func (h *Handler) CreateItem(c *gin.Context) {
	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidPayload, "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeInvalidPayload, "Invalid payload", errs)
		return
	}

	item, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, item)
}

func (h *Handler) UpdateItem(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidPayload, "Invalid request body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeInvalidPayload, "Invalid payload", errs)
		return
	}

	item, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

func (h *Handler) DeleteItem(c *gin.Context) {
	id, ok := itemID(c)
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

func itemID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidPayload, "Invalid item ID")
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "Item not found")
	case errors.Is(err, ErrInvalidPayload):
		response.Error(c, http.StatusBadRequest, response.CodeInvalidPayload, err.Error())
	case errors.Is(err, ErrStockBelowReserved):
		response.Error(c, http.StatusConflict, response.CodeStockBelowReserved, err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "Internal server error")
	}
}
