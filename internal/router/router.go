package router

import (
	"log"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/mirasocial/mira/backend/internal/handlers"
	"github.com/mirasocial/mira/backend/internal/middleware"
	"github.com/mirasocial/mira/backend/internal/models"
	"github.com/mirasocial/mira/backend/internal/notifications"
	"github.com/mirasocial/mira/backend/internal/repositories"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Logger())
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// Migrate runs the schema migrations for all models
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Notification{},
	)
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, db *gorm.DB) {
	if err := Migrate(db); err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("Auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize repositories ---
	userRepo := repositories.NewPostgresUserRepository(db)
	followRepo := repositories.NewPostgresFollowRepository(db)
	postRepo := repositories.NewPostgresPostRepository(db)
	commentRepo := repositories.NewPostgresCommentRepository(db)
	likeRepo := repositories.NewPostgresLikeRepository(db)
	notificationRepo := repositories.NewPostgresNotificationRepository(db)

	fanout := notifications.NewFanout(notificationRepo)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())

	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterProfileRoutes(api)

	followHandler := handlers.NewFollowHandler(followRepo, userRepo, fanout)
	followHandler.RegisterFollowRoutes(api)

	postHandler := handlers.NewPostHandler(postRepo, userRepo, commentRepo, likeRepo)
	postHandler.RegisterPostRoutes(api)

	feedHandler := handlers.NewFeedHandler(postRepo, userRepo, followRepo, likeRepo)
	feedHandler.RegisterFeedRoutes(api)

	commentHandler := handlers.NewCommentHandler(commentRepo, postRepo, userRepo, fanout)
	commentHandler.RegisterCommentRoutes(api)

	likeHandler := handlers.NewLikeHandler(likeRepo, postRepo, userRepo, fanout)
	likeHandler.RegisterLikeRoutes(api)

	notificationHandler := handlers.NewNotificationHandler(notificationRepo, userRepo)
	notificationHandler.RegisterNotificationRoutes(api)

	log.Println("All routes configured.")
}
