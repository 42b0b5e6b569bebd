package geo

import (
	"net/http"

	"github.com/elmrakby/ai-resume-agent/internal/domain/orders"

	"github.com/gin-gonic/gin"
)

// InferGateway maps a country code to the default payment gateway. Advisory
// only: checkout accepts an explicit gateway choice that always wins.
func InferGateway(countryCode string) string {
	if countryCode == "EG" {
		return orders.GatewayPaymob
	}
	return orders.GatewayStripe
}

// GET /geo
func Detect(c *gin.Context) {
	countryCode := c.GetHeader("CF-IPCountry")
	if countryCode == "" {
		countryCode = c.GetHeader("X-Country-Code")
	}
	if countryCode == "" {
		countryCode = "US"
	}

	c.JSON(http.StatusOK, gin.H{
		"countryCode":     countryCode,
		"inferredGateway": InferGateway(countryCode),
		"ip":              c.ClientIP(),
	})
}
