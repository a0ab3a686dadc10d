package handlers

import (
	"errors"
	"net/http"

	"fixline/middleware"
	"fixline/models"
	"fixline/services/dispatch"
	"fixline/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the dispatch operations over HTTP.
type BookingHandler struct {
	Dispatch dispatch.DispatchService
	Logger   *zap.Logger
}

// NewBookingHandler creates a BookingHandler.
func NewBookingHandler(dispatchSvc dispatch.DispatchService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Dispatch: dispatchSvc, Logger: logger}
}

// Pointer fields so 0 (equator, prime meridian) is a present value and only a
// genuinely absent coordinate fails binding.
type originInput struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

type createBookingInput struct {
	ServiceType   string      `json:"serviceType" binding:"required"`
	Subproblem    string      `json:"subproblem"`
	Origin        originInput `json:"origin" binding:"required"`
	SearchType    string      `json:"searchType" binding:"required"`
	Address       string      `json:"address"`
	PreferredDate string      `json:"preferredDate"`
	PreferredTime string      `json:"preferredTime"`
	EstimatedCost float64     `json:"estimatedCost"`
}

// CreateBooking handles the customer's create/search request.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var input createBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	req := dispatch.DispatchRequest{
		CustomerID:    middleware.CallerID(c),
		ServiceType:   input.ServiceType,
		Subproblem:    input.Subproblem,
		Latitude:      *input.Origin.Lat,
		Longitude:     *input.Origin.Lng,
		SearchType:    input.SearchType,
		Address:       input.Address,
		PreferredDate: input.PreferredDate,
		PreferredTime: input.PreferredTime,
		EstimatedCost: input.EstimatedCost,
	}

	result, err := h.Dispatch.Initiate(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, dispatch.ErrInvalidRequest):
			utils.JSONError(c, http.StatusBadRequest, "invalid booking request", err.Error())
		case errors.Is(err, dispatch.ErrNoCandidates):
			utils.JSONError(c, http.StatusUnprocessableEntity, "no technician nearby", "")
		default:
			h.Logger.Error("booking creation failed", zap.Error(err))
			utils.JSONError(c, http.StatusInternalServerError, "failed to create booking", "")
		}
		return
	}

	resp := gin.H{
		"bookingId": result.Booking.ID,
		"status":    result.Booking.Status,
	}
	// Candidate snapshot is only exposed for rapid searches.
	if result.Booking.SearchType == models.SearchTypeRapid {
		resp["candidateTechnicianIds"] = result.CandidateIDs
	}
	c.JSON(http.StatusCreated, resp)
}

type bookingResponseInput struct {
	BookingID string `json:"bookingId" binding:"required"`
	Response  string `json:"response" binding:"required"`
}

// RespondToBooking consumes a technician's accept/reject for a booking request.
func (h *BookingHandler) RespondToBooking(c *gin.Context) {
	var input bookingResponseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	technicianID := middleware.CallerID(c)
	err := h.Dispatch.OnResponse(c.Request.Context(), input.BookingID, technicianID, input.Response)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"result": "applied"})
	case errors.Is(err, dispatch.ErrStaleResponse):
		// Too late: the cascade already moved on. Not an error for the responder.
		c.JSON(http.StatusOK, gin.H{"result": "too_late"})
	case errors.Is(err, dispatch.ErrInvalidRequest):
		utils.JSONError(c, http.StatusBadRequest, "invalid response", err.Error())
	case errors.Is(err, dispatch.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "booking not found", "")
	default:
		h.Logger.Error("booking response failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to process response", "")
	}
}

// GetBooking returns the status projection of a booking.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	projection, err := h.Dispatch.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, dispatch.ErrNotFound) {
			utils.JSONError(c, http.StatusNotFound, "booking not found", "")
			return
		}
		h.Logger.Error("booking status query failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to fetch booking", "")
		return
	}
	c.JSON(http.StatusOK, projection)
}

// CompleteBooking transitions accepted -> completed for the assigned technician.
func (h *BookingHandler) CompleteBooking(c *gin.Context) {
	err := h.Dispatch.Complete(c.Request.Context(), c.Param("id"), middleware.CallerID(c))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": models.StatusCompleted})
	case errors.Is(err, dispatch.ErrUnauthorized):
		utils.JSONError(c, http.StatusForbidden, "unauthorized access", "")
	case errors.Is(err, dispatch.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "booking not found", "")
	case errors.Is(err, dispatch.ErrConflict):
		utils.JSONError(c, http.StatusConflict, "booking is not in an acceptable state", "")
	default:
		h.Logger.Error("booking completion failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to complete booking", "")
	}
}

// CancelBooking aborts an in-flight cascade for the owning customer.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	err := h.Dispatch.Cancel(c.Request.Context(), c.Param("id"), middleware.CallerID(c))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": models.StatusCancelled})
	case errors.Is(err, dispatch.ErrUnauthorized):
		utils.JSONError(c, http.StatusForbidden, "unauthorized access", "")
	case errors.Is(err, dispatch.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "booking not found", "")
	case errors.Is(err, dispatch.ErrConflict):
		utils.JSONError(c, http.StatusConflict, "booking already resolved", "")
	default:
		h.Logger.Error("booking cancellation failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to cancel booking", "")
	}
}

// GetCustomerBookings lists the caller's bookings as a customer.
func (h *BookingHandler) GetCustomerBookings(c *gin.Context) {
	bookings, err := h.Dispatch.ListByCustomer(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		h.Logger.Error("customer booking list failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to fetch bookings", "")
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// GetTechnicianBookings lists the caller's assigned bookings as a technician.
func (h *BookingHandler) GetTechnicianBookings(c *gin.Context) {
	bookings, err := h.Dispatch.ListByTechnician(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		h.Logger.Error("technician booking list failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to fetch bookings", "")
		return
	}
	c.JSON(http.StatusOK, bookings)
}
