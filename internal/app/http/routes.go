package routes

import (
	"github.com/elmrakby/ai-resume-agent/config"
	"github.com/elmrakby/ai-resume-agent/database"
	authapi "github.com/elmrakby/ai-resume-agent/internal/api/auth"
	"github.com/elmrakby/ai-resume-agent/internal/api/checkout"
	"github.com/elmrakby/ai-resume-agent/internal/api/geo"
	"github.com/elmrakby/ai-resume-agent/internal/api/ordersapi"
	packagesapi "github.com/elmrakby/ai-resume-agent/internal/api/packages"
	"github.com/elmrakby/ai-resume-agent/internal/api/submissionsapi"
	"github.com/elmrakby/ai-resume-agent/internal/api/uploads"
	"github.com/elmrakby/ai-resume-agent/internal/api/webhooks"
	"github.com/elmrakby/ai-resume-agent/internal/app/http/middleware"
	"github.com/elmrakby/ai-resume-agent/internal/domain/catalog"
	"github.com/elmrakby/ai-resume-agent/internal/domain/orders"
	"github.com/elmrakby/ai-resume-agent/internal/gateway"
	"github.com/elmrakby/ai-resume-agent/internal/storage"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	cat := catalog.Default()
	coordinator := orders.NewCoordinator(database.DB, cat)

	stripeGW := gateway.NewStripeGateway(config.STRIPE_SECRET_KEY, config.STRIPE_WEBHOOK_SECRET, config.SITE_URL)
	paymobGW := gateway.NewPaymobGateway(config.PAYMOB_API_KEY, config.PAYMOB_HMAC_SECRET, config.PAYMOB_INTEGRATION_ID, config.PAYMOB_IFRAME_ID)

	store := storage.NewClient(config.SUPABASE_URL, config.SUPABASE_SERVICE_KEY)

	packagesHandler := packagesapi.NewHandler(cat)
	checkoutHandler := checkout.NewHandler(coordinator, cat, stripeGW, paymobGW)
	webhookHandler := webhooks.NewHandler(coordinator, stripeGW, paymobGW)
	ordersHandler := ordersapi.NewHandler(coordinator)
	submissionsHandler := submissionsapi.NewHandler(database.DB)
	uploadsHandler := uploads.NewHandler(store)

	r.POST("/webhooks/:gateway", middleware.RateLimit(20, 40), webhookHandler.HandleNotification)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.GET("/geo", geo.Detect)
	r.GET("/packages/:currency", packagesHandler.ListPackages)
	r.GET("/storage/status", uploadsHandler.StorageStatus)

	r.GET("/auth/login", middleware.RateLimit(5, 10), authapi.LoginStart)
	r.GET("/auth/login/callback", middleware.RateLimit(5, 10), authapi.LoginCallback)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware())
	auth.GET("/me", authapi.GetCurrentUser)
	auth.GET("/orders", ordersHandler.ListOrders)
	auth.GET("/orders/:id", ordersHandler.GetOrder)
	auth.GET("/submissions", submissionsHandler.ListSubmissions)
	auth.GET("/submissions/:id", submissionsHandler.GetSubmission)
	auth.POST("/uploads", uploadsHandler.UploadFile)

	// JSON write paths get input sanitization
	writes := auth.Group("/")
	writes.Use(middleware.SanitizeAndCleanInputMiddleware())
	writes.POST("/checkout", checkoutHandler.CreateCheckout)
	writes.POST("/submissions", submissionsHandler.CreateSubmission)
}
