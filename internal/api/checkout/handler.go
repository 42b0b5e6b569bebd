package checkout

import (
	"errors"
	"log"
	"net/http"

	"github.com/elmrakby/ai-resume-agent/internal/api/geo"
	"github.com/elmrakby/ai-resume-agent/internal/domain/catalog"
	"github.com/elmrakby/ai-resume-agent/internal/domain/orders"
	"github.com/elmrakby/ai-resume-agent/internal/gateway"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	coordinator *orders.Coordinator
	catalog     *catalog.Catalog
	gateways    map[string]gateway.Gateway
}

func NewHandler(co *orders.Coordinator, cat *catalog.Catalog, gws ...gateway.Gateway) *Handler {
	byName := make(map[string]gateway.Gateway, len(gws))
	for _, gw := range gws {
		byName[gw.Name()] = gw
	}
	return &Handler{coordinator: co, catalog: cat, gateways: byName}
}

// Stripe charges in USD, Paymob in EGP.
func currencyFor(gatewayName string) string {
	if gatewayName == orders.GatewayPaymob {
		return orders.CurrencyEGP
	}
	return orders.CurrencyUSD
}

// POST /checkout
//
// Creates the PENDING order first, then opens the gateway session, then
// attaches the session id. A gateway failure after the order exists leaves an
// auditable PENDING row the user can see on the dashboard.
func (h *Handler) CreateCheckout(c *gin.Context) {
	var body struct {
		Plan        string `json:"plan"`
		Gateway     string `json:"gateway"`
		CountryCode string `json:"countryCode"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Plan == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid plan"})
		return
	}

	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}

	gatewayName := body.Gateway
	if gatewayName == "" {
		gatewayName = geo.InferGateway(body.CountryCode)
	}
	gw, ok := h.gateways[gatewayName]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown gateway"})
		return
	}

	currency := currencyFor(gatewayName)
	pkg, ok := h.catalog.Get(body.Plan, currency)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan"})
		return
	}

	order, err := h.coordinator.CreateOrder(c.Request.Context(), orders.CreateParams{
		UserID:      userID,
		Plan:        body.Plan,
		Currency:    currency,
		Gateway:     gatewayName,
		CountryCode: body.CountryCode,
		IP:          c.ClientIP(),
	})
	if err != nil {
		if errors.Is(err, orders.ErrInvalidPlan) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan"})
			return
		}
		log.Println("checkout: create order failed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}

	session, err := gw.CreateSession(c.Request.Context(), order, pkg)
	if err != nil {
		log.Printf("checkout: %s session failed for order %s: %v", gatewayName, order.ID, err)
		if errors.Is(err, gateway.ErrUnavailable) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Payment provider unavailable, please try again"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create checkout session"})
		return
	}

	if _, err := h.coordinator.AttachExternalSession(c.Request.Context(), order.ID, session.ExternalID); err != nil {
		log.Printf("checkout: attach session %s to order %s failed: %v", session.ExternalID, order.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record checkout session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"redirectUrl": session.RedirectURL,
		"orderId":     order.ID,
	})
}
