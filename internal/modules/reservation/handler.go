package reservation

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

// RegisterPublicRoutes exposes read-only endpoints.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/reservations", h.ListReservations)
}

// RegisterOperatorRoutes exposes mutations; the group is expected to be authenticated.
func (h *Handler) RegisterOperatorRoutes(rg *gin.RouterGroup) {
	rg.POST("/reservations", h.CreateReservation)
	rg.PATCH("/reservations/:id", h.UpdateQuantity)
	rg.PUT("/reservations/:id", h.UpdateReservation)
	rg.POST("/reservations/:id/cancel", h.CancelReservation)
}

func (h *Handler) ListReservations(c *gin.Context) {
	out, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) CreateReservation(c *gin.Context) {
	var req CreateReservationRequest
	if !bind(c, &req) {
		return
	}

	r, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, r)
}

func (h *Handler) UpdateQuantity(c *gin.Context) {
	id, ok := reservationID(c)
	if !ok {
		return
	}
	var req UpdateQuantityRequest
	if !bind(c, &req) {
		return
	}

	r, err := h.service.UpdateQuantity(c.Request.Context(), id, *req.Quantity)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, r)
}

func (h *Handler) UpdateReservation(c *gin.Context) {
	id, ok := reservationID(c)
	if !ok {
		return
	}
	var req UpdateReservationRequest
	if !bind(c, &req) {
		return
	}

	r, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, r)
}

func (h *Handler) CancelReservation(c *gin.Context) {
	id, ok := reservationID(c)
	if !ok {
		return
	}
	if err := h.service.Cancel(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	response.NoContent(c)
}

func reservationID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		response.Error(c, http.StatusBadRequest, response.CodeInvalidPayload, "Invalid reservation ID")
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
		response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
	case errors.Is(err, ErrInvalidPayload):
		response.Error(c, http.StatusBadRequest, response.CodeInvalidPayload, err.Error())
	case errors.Is(err, ErrNoAvailability):
		response.Error(c, http.StatusConflict, response.CodeNoAvailability, "No availability for requested period")
	case errors.Is(err, ErrAlreadyStarted):
		response.Error(c, http.StatusConflict, response.CodeAlreadyStarted, "Reservation already started")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternal, "Internal server error")
	}
}
