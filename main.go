package main

import (
	"context"
	"time"

	"github.com/elmrakby/ai-resume-agent/config"
	"github.com/elmrakby/ai-resume-agent/database"
	routes "github.com/elmrakby/ai-resume-agent/internal/app/http"
	"github.com/elmrakby/ai-resume-agent/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// gin.SetMode(gin.ReleaseMode) uncomment only in production
	config.LoadEnv()
	database.InitDB()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	storage.NewClient(config.SUPABASE_URL, config.SUPABASE_SERVICE_KEY).EnsureBucket(ctx)
	cancel()

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.CORS_ORIGIN},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r)

	r.Run(":" + config.PORT)
}
