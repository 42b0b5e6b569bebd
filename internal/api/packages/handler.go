package packages

import (
	"net/http"

	"github.com/elmrakby/ai-resume-agent/internal/domain/catalog"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	catalog *catalog.Catalog
}

func NewHandler(cat *catalog.Catalog) *Handler {
	return &Handler{catalog: cat}
}

// GET /packages/:currency
func (h *Handler) ListPackages(c *gin.Context) {
	currency := c.Param("currency")
	c.JSON(http.StatusOK, h.catalog.List(currency))
}
