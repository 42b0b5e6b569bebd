package database

import (
	"fmt"
	"log"
	"os"

	"github.com/elmrakby/ai-resume-agent/internal/domain/orders"
	"github.com/elmrakby/ai-resume-agent/internal/domain/submissions"
	"github.com/elmrakby/ai-resume-agent/internal/domain/users"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB() {
	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		log.Fatal("❌ DB_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("❌ Failed to connect to database:", err)
	}

	DB = db

	if err := DB.AutoMigrate(
		&users.User{},
		&orders.Order{},
		&submissions.Submission{},
	); err != nil {
		log.Fatal("❌ AutoMigrate error:", err)
	}

	fmt.Println("✅ Connected and migrated successfully")
}
