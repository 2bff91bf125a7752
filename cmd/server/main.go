package main

import (
	"log"

	"github.com/labstack/echo/v4"

	"github.com/mirasocial/mira/backend/internal/apperrors"
	"github.com/mirasocial/mira/backend/internal/router"
	"github.com/mirasocial/mira/backend/pkg/config"
	"github.com/mirasocial/mira/backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connection
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.CloseDB() // Ensure database connection is closed when main exits

	// Create Echo instance
	e := echo.New()
	e.HTTPErrorHandler = apperrors.HTTPErrorHandler
	e.Validator = validators.NewValidator()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, db.Postgres)

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
