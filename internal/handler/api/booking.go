package api

import (
	"errors"
	"net/http"

	reqdto "chairtime/internal/handler/dto/request"
	resdto "chairtime/internal/handler/dto/response"
	"chairtime/internal/handler/middleware"
	"chairtime/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	bookingUseCase  commands.BookingCommands
	approvalUseCase commands.ApprovalCommands
}

func NewBookingHandler(bookingUseCase commands.BookingCommands, approvalUseCase commands.ApprovalCommands) *BookingHandler {
	return &BookingHandler{
		bookingUseCase:  bookingUseCase,
		approvalUseCase: approvalUseCase,
	}
}

// @Summary Create booking request
// @Description Create a pending appointment on a chair, a free barber, or both
// @Tags appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateBookingRequest true "Booking request"
// @Success 201 {object} resdto.CreateBookingResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /appointments [post]
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.CreateBookingRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	cmd, err := req.ToCommand()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Unknown booked_by_type",
		})
		return
	}

	result, err := h.bookingUseCase.CreateBooking(c.Request.Context(), cmd, userID)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrChairNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Chair not found",
			})
		case errors.Is(err, commands.ErrStoreNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Store not found",
			})
		case errors.Is(err, commands.ErrChairInactive):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Chair is not bookable",
			})
		case errors.Is(err, commands.ErrInvalidTimeWindow):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid time window",
			})
		case errors.Is(err, commands.ErrOutsideWorkingHours):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Window is outside working hours",
			})
		case errors.Is(err, commands.ErrNoServicesSelected):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "At least one service is required",
			})
		case errors.Is(err, commands.ErrUnknownServiceOffering):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Unknown or inactive service offering",
			})
		case errors.Is(err, commands.ErrNoCounterparty):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "A chair or a free barber is required",
			})
		case errors.Is(err, commands.ErrSlotTaken):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Slot already taken",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, &resdto.CreateBookingResponse{
		AppointmentID: result.AppointmentID,
		Status:        "pending",
	})
}

// @Summary Decide on a booking request
// @Description Approve or reject a pending appointment as the store owner or the free barber
// @Tags appointments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Param request body reqdto.DecideRequest true "Decision"
// @Success 200 {object} resdto.DecideResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /appointments/{id}/decision [post]
func (h *BookingHandler) Decide(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid appointment ID format",
		})
		return
	}

	var req reqdto.DecideRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.approvalUseCase.Decide(c.Request.Context(), appointmentID, userID, *req.Approve)
	if err != nil {
		h.respondDecisionError(c, err)
		return
	}

	c.JSON(http.StatusOK, resdto.FromDecideResult(result))
}

// @Summary Complete an appointment
// @Description Mark an approved appointment as completed
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Success 204
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /appointments/{id}/complete [post]
func (h *BookingHandler) Complete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid appointment ID format",
		})
		return
	}

	if err := h.approvalUseCase.Complete(c.Request.Context(), appointmentID, userID); err != nil {
		switch {
		case errors.Is(err, commands.ErrAppointmentNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Appointment not found",
			})
		case errors.Is(err, commands.ErrNotParticipant), errors.Is(err, commands.ErrCannotDecide):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Not allowed to complete this appointment",
			})
		case errors.Is(err, commands.ErrNotCompletable):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Appointment cannot be completed",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Cancel an appointment
// @Description Cancel a pending or approved appointment as any participant
// @Tags appointments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Success 204
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /appointments/{id}/cancel [post]
func (h *BookingHandler) Cancel(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	appointmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid appointment ID format",
		})
		return
	}

	if err := h.approvalUseCase.Cancel(c.Request.Context(), appointmentID, userID); err != nil {
		switch {
		case errors.Is(err, commands.ErrAppointmentNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Appointment not found",
			})
		case errors.Is(err, commands.ErrNotParticipant):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Not a participant",
			})
		case errors.Is(err, commands.ErrNotCancellable):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Appointment cannot be cancelled",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *BookingHandler) respondDecisionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrAppointmentNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Appointment not found",
		})
	case errors.Is(err, commands.ErrNotParticipant):
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Not a participant",
		})
	case errors.Is(err, commands.ErrCannotDecide):
		c.JSON(http.StatusForbidden, gin.H{
			"error": "No decision to make on this appointment",
		})
	case errors.Is(err, commands.ErrDecisionAlreadyMade):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Decision already made",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
