package api

import (
	"errors"
	"net/http"
	"strconv"

	"chairtime/internal/handler/middleware"
	"chairtime/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type NotificationHandler struct {
	notificationQueries queries.NotificationQueries
}

func NewNotificationHandler(notificationQueries queries.NotificationQueries) *NotificationHandler {
	return &NotificationHandler{
		notificationQueries: notificationQueries,
	}
}

// @Summary List notifications
// @Description List the caller's notifications, newest first
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max rows to return"
// @Success 200 {array} queries.NotificationView
// @Failure 401 {object} map[string]string
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	views, err := h.notificationQueries.List(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}
	if views == nil {
		views = []*queries.NotificationView{}
	}

	c.JSON(http.StatusOK, views)
}

// @Summary Unread notification count
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]int64
// @Failure 401 {object} map[string]string
// @Router /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	count, err := h.notificationQueries.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

// @Summary Mark one notification read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 204
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid notification ID format",
		})
		return
	}

	if err := h.notificationQueries.MarkRead(c.Request.Context(), notificationID, userID); err != nil {
		switch {
		case errors.Is(err, queries.ErrNotificationAccess):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Notification belongs to another user",
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
