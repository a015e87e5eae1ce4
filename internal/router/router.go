package router

import (
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/authz"
	"github.com/anonto42/nano-social/backend/internal/cache"
	"github.com/anonto42/nano-social/backend/internal/contentanalysis"
	"github.com/anonto42/nano-social/backend/internal/handlers"
	"github.com/anonto42/nano-social/backend/internal/middleware"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/anonto42/nano-social/backend/pkg/config"
	"github.com/anonto42/nano-social/backend/pkg/firebase"
	"github.com/anonto42/nano-social/backend/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Dependencies are the connections and collaborators the routes are built from.
// Mongo, Redis, FirebaseAuth and Analyzer are optional.
type Dependencies struct {
	Config       *config.Config
	Postgres     *gorm.DB
	Mongo        *mongo.Database
	Redis        *redis.Client
	FirebaseAuth firebase.TokenVerifier
	Analyzer     contentanalysis.Analyzer
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) error {
	cfg := deps.Config

	if cfg.AutoMigrate {
		if err := deps.Postgres.AutoMigrate(models.All()...); err != nil {
			return err
		}
		logger.Info("PostgreSQL auto-migrations completed")
	}

	e.GET("/health", handlers.HealthCheck)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "nano-social api"})
	})

	// --- Services ---
	store := repositories.NewStore(deps.Postgres)
	counts := cache.NewCountCache(deps.Redis, cfg.CountCacheTTL)

	var moderationLog repositories.ModerationLogRepository
	if deps.Mongo != nil {
		moderationLog = repositories.NewMongoModerationLogRepository(deps.Mongo)
	}

	followService := services.NewFollowService(store, counts)
	groupService := services.NewGroupService(store)
	notificationService := services.NewNotificationService(store, followService, groupService)
	contentService := services.NewContentService(store, deps.Analyzer, moderationLog)
	profileService := services.NewProfileService(store, followService)

	authHandler := handlers.NewAuthHandler(store.Users, deps.FirebaseAuth, cfg.JWTSecret, cfg.JWTExpiry)
	userHandler := handlers.NewUserHandler(profileService)
	followHandler := handlers.NewFollowHandler(followService)
	groupHandler := handlers.NewGroupHandler(groupService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	postHandler := handlers.NewPostHandler(contentService)
	feedHandler := handlers.NewFeedHandler(contentService)
	moderationHandler := handlers.NewModerationHandler(moderationLog)

	// --- Unprotected routes for authentication ---
	authHandler.RegisterAuthRoutes(e.Group("/api/v1/auth"))

	// --- Public reads; a token is used when present ---
	public := e.Group("/api/v1", middleware.OptionalJWTAuth(cfg.JWTSecret))
	userHandler.RegisterPublicUserRoutes(public)
	followHandler.RegisterPublicFollowRoutes(public)
	groupHandler.RegisterPublicGroupRoutes(public)
	postHandler.RegisterPublicPostRoutes(public)
	feedHandler.RegisterFeedRoutes(public)

	// --- Protected routes ---
	api := e.Group("/api/v1", middleware.JWTAuthMiddleware(cfg.JWTSecret))
	userHandler.RegisterProfileRoutes(api)
	followHandler.RegisterFollowRoutes(api)
	groupHandler.RegisterGroupRoutes(api)
	notificationHandler.RegisterNotificationRoutes(api)
	postHandler.RegisterPostRoutes(api)

	moderationHandler.RegisterModerationRoutes(api, middleware.RequireAnyRole(authz.RoleAdmin))

	// Every group above registers its own catch-all under /api/v1 wrapped in
	// its middleware. Replace them so unknown paths are a plain 404.
	e.RouteNotFound("/api/v1", echo.NotFoundHandler)
	e.RouteNotFound("/api/v1/*", echo.NotFoundHandler)

	logger.Info("All routes configured")
	return nil
}
