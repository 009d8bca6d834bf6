package api

import (
	"errors"
	"net/http"

	"chairtime/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SlotHandler struct {
	slotQueries queries.SlotQueries
}

func NewSlotHandler(slotQueries queries.SlotQueries) *SlotHandler {
	return &SlotHandler{
		slotQueries: slotQueries,
	}
}

// @Summary Weekly slot grid
// @Description Seven-day availability grid for every active chair of a store
// @Tags slots
// @Produce json
// @Security BearerAuth
// @Param id path string true "Store ID"
// @Success 200 {array} queries.DayBucketView
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /stores/{id}/slots [get]
func (h *SlotHandler) WeeklySlots(c *gin.Context) {
	storeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid store ID format",
		})
		return
	}

	buckets, err := h.slotQueries.WeeklySlots(c.Request.Context(), storeID)
	if err != nil {
		switch {
		case errors.Is(err, queries.ErrStoreNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Store not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, buckets)
}
