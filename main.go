// --- main.go ---
package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := InitJWT(); err != nil {
		log.Fatalf("❌ Failed to configure session tokens: %v", err)
	}

	store, err := InitStore()
	if err != nil {
		log.Fatalf("❌ Failed to configure remote store: %v", err)
	}

	app := NewApp(store)
	app.InitialLoad()

	if os.Getenv("KPM_AUTO_BACKUP") != "off" {
		go app.AutoBackupLoop(BackupInterval)
	}

	r := gin.Default()

	AuthRoutes(r, app)
	PaymentRoutes(r, app)
	MasterRoutes(r, app)
	UserRoutes(r, app)
	DashboardRoutes(r, app)
	BackupRoutes(r, app)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
