package api

import (
	"errors"
	"net/http"
	"strconv"

	reqdto "chairtime/internal/handler/dto/request"
	resdto "chairtime/internal/handler/dto/response"
	"chairtime/internal/handler/middleware"
	"chairtime/internal/usecase/commands"
	"chairtime/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ChatHandler struct {
	chatUseCase commands.ChatCommands
	chatQueries queries.ChatQueries
}

func NewChatHandler(chatUseCase commands.ChatCommands, chatQueries queries.ChatQueries) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
		chatQueries: chatQueries,
	}
}

// @Summary Send chat message
// @Description Send a message on an active appointment; the first message creates the thread
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Param request body reqdto.SendMessageRequest true "Message"
// @Success 201 {object} resdto.SendMessageResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /appointments/{id}/messages [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
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

	var req reqdto.SendMessageRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.chatUseCase.SendMessage(c.Request.Context(), appointmentID, userID, req.Body)
	if err != nil {
		switch {
		case errors.Is(err, commands.ErrAppointmentNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Appointment not found",
			})
		case errors.Is(err, commands.ErrAppointmentInactive):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Chat is closed on this appointment",
			})
		case errors.Is(err, commands.ErrNotParticipant):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Not a participant",
			})
		case errors.Is(err, commands.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Message text is empty",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.FromSendMessageResult(result))
}

// @Summary List messages
// @Description Message history of one active appointment, oldest first
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Param limit query int false "Max rows to return"
// @Success 200 {array} queries.MessageView
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /appointments/{id}/messages [get]
func (h *ChatHandler) ListMessages(c *gin.Context) {
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

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	msgs, err := h.chatQueries.ListMessages(c.Request.Context(), userID, appointmentID, limit)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrThreadNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Thread not found",
			})
		case errors.Is(err, queries.ErrThreadAccess):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Not a participant",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}
	if msgs == nil {
		msgs = []*queries.MessageView{}
	}

	c.JSON(http.StatusOK, msgs)
}

// @Summary Mark thread read
// @Description Zero the caller's unread counter on the appointment's thread
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param id path string true "Appointment ID"
// @Success 204
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /appointments/{id}/messages/read [post]
func (h *ChatHandler) MarkRead(c *gin.Context) {
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

	if err := h.chatUseCase.MarkRead(c.Request.Context(), appointmentID, userID); err != nil {
		switch {
		case errors.Is(err, commands.ErrAppointmentNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Appointment not found",
			})
		case errors.Is(err, commands.ErrThreadNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Thread not found",
			})
		case errors.Is(err, commands.ErrNotParticipant):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Not a participant",
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

// @Summary List chat threads
// @Description Active threads the caller participates in, most recent first
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Success 200 {array} queries.ThreadListItem
// @Failure 401 {object} map[string]string
// @Router /chats [get]
func (h *ChatHandler) ListThreads(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	threads, err := h.chatQueries.ListThreads(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	if threads == nil {
		threads = []*queries.ThreadListItem{}
	}

	c.JSON(http.StatusOK, threads)
}
