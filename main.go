package main

import (
	"log"

	api "jobtrail-backend/cmd/api"
	authdomain "jobtrail-backend/internal/auth/domain"
	trackerdomain "jobtrail-backend/internal/tracker/domain"
	"jobtrail-backend/pkg/config"
	"jobtrail-backend/pkg/database"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&authdomain.User{},
		&trackerdomain.Company{},
		&trackerdomain.Contact{},
		&trackerdomain.Application{},
		&trackerdomain.Message{},
		&trackerdomain.ApplicationEvent{},
		&trackerdomain.CalendarEvent{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Wire repositories, use cases, scheduler and HTTP handlers
	handler := api.NewHandler(db, cfg)
	defer handler.Stop()

	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
