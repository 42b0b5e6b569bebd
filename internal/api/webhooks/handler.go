package webhooks

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/elmrakby/ai-resume-agent/internal/domain/orders"
	"github.com/elmrakby/ai-resume-agent/internal/gateway"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	coordinator *orders.Coordinator
	gateways    map[string]gateway.Gateway
}

func NewHandler(co *orders.Coordinator, gws ...gateway.Gateway) *Handler {
	byName := make(map[string]gateway.Gateway, len(gws))
	for _, gw := range gws {
		byName[gw.Name()] = gw
	}
	return &Handler{coordinator: co, gateways: byName}
}

// signatureFrom pulls the provider's signature out of the request. Stripe
// sends a header, Paymob a query parameter.
func signatureFrom(c *gin.Context, gatewayName string) string {
	if gatewayName == orders.GatewayPaymob {
		return c.Query("hmac")
	}
	return c.GetHeader("Stripe-Signature")
}

// POST /webhooks/:gateway
//
// 400 stops nothing on the sender side for long: gateways retry non-2xx
// deliveries, which is exactly what we want for transient failures and
// exactly wrong for forged signatures, so those are rejected without retry
// semantics ever mattering.
func (h *Handler) HandleNotification(c *gin.Context) {
	gatewayName := strings.ToUpper(c.Param("gateway"))
	gw, ok := h.gateways[gatewayName]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown gateway"})
		return
	}

	payload, err := readBody(c, 65536)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading request body"})
		return
	}

	notification, err := gw.VerifyNotification(payload, signatureFrom(c, gatewayName))
	if err != nil {
		if errors.Is(err, gateway.ErrInvalidSignature) {
			log.Printf("❌ %s signature verification failed: %v", gatewayName, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Signature verification failed"})
			return
		}
		log.Printf("%s webhook verification error: %v", gatewayName, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook processing failed"})
		return
	}

	// Recognized but outcome-free event types are acknowledged so the
	// sender stops retrying.
	if notification == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	order, err := h.coordinator.Reconcile(
		c.Request.Context(),
		notification.OrderID,
		notification.ExternalID,
		notification.Outcome,
	)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrOrderNotFound):
			log.Printf("⚠️ %s notification for unknown order %q", gatewayName, notification.OrderID)
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		case errors.Is(err, orders.ErrSessionMismatch):
			log.Printf("⚠️ %s notification session mismatch on order %q", gatewayName, notification.OrderID)
			c.JSON(http.StatusConflict, gin.H{"error": "Session mismatch"})
		default:
			log.Printf("%s reconcile failed for order %q: %v", gatewayName, notification.OrderID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook processing failed"})
		}
		return
	}

	log.Printf("✅ order %s reconciled to %s via %s", order.ID, order.Status, gatewayName)
	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

func readBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}
