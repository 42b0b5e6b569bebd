package ordersapi

import (
	"errors"
	"net/http"

	"github.com/elmrakby/ai-resume-agent/internal/domain/orders"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	coordinator *orders.Coordinator
}

func NewHandler(co *orders.Coordinator) *Handler {
	return &Handler{coordinator: co}
}

// GET /orders
func (h *Handler) ListOrders(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	list, err := h.coordinator.ListUserOrders(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load orders"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /orders/:id
//
// Ownership mismatch answers 404, same as a missing row, so order ids leak
// nothing about other customers.
func (h *Handler) GetOrder(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	order, err := h.coordinator.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, orders.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load order"})
		return
	}
	if order.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	c.JSON(http.StatusOK, order)
}
