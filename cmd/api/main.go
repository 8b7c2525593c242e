package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	httpSwagger "github.com/swaggo/http-swagger"
	_ "github.com/userhub/backend/docs"
	"github.com/userhub/backend/internal/auth/denylist"
	"github.com/userhub/backend/internal/auth/middleware"
	"github.com/userhub/backend/internal/auth/service"
	"github.com/userhub/backend/internal/config"
	"github.com/userhub/backend/internal/database"
	"github.com/userhub/backend/internal/handlers"
	"github.com/userhub/backend/internal/logger"
	loggerMiddleware "github.com/userhub/backend/internal/logger/middleware"
	"github.com/userhub/backend/internal/middlewares"
	"github.com/userhub/backend/internal/models"
	"github.com/userhub/backend/internal/repositories"
	"github.com/userhub/backend/internal/services"
	"github.com/userhub/backend/internal/storage"
	"github.com/userhub/backend/internal/tasks"
	"go.uber.org/zap"
)

// @title UserHub API
// @version 1.0
// @description API for user signup, profiles and user administration

// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting UserHub API")

	// Connect to database
	client, err := database.Connect(context.Background(), cfg.Mongo)
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			logger.Logger.Error("Failed to disconnect from database", zap.Error(err))
		}
	}()

	// Run migrations
	if err := database.RunMigrations(client, cfg.Mongo); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Token revocation and background tasks need Redis
	var tokenDenylist middleware.Denylist = denylist.NewNoopDenylist()
	var enqueuer services.TaskEnqueuer = tasks.NoopEnqueuer{}
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		tokenDenylist = denylist.NewRedisDenylist(redisClient)

		if cfg.Tasks.Enabled {
			taskClient := asynq.NewClient(asynq.RedisClientOpt{
				Addr:     cfg.RedisAddr(),
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			defer taskClient.Close()
			enqueuer = tasks.NewEnqueuer(taskClient)
		}
	}

	// Initialize JWT token generator
	tokenGenerator := service.NewTokenGenerator(cfg.JWT.Secret, cfg.JWT.Expiry)

	// Initialize storage and repositories
	fileStorage := storage.NewLocalStorage(cfg.Uploads.Dir)
	userRepo := repositories.NewUserRepository(client.Database(cfg.Mongo.Database), logger.Logger)
	images := services.NewImageManager(fileStorage, cfg.Uploads.MaxSize, cfg.Uploads.DefaultImage, logger.Logger)

	// Initialize services
	authService := services.NewAuthService(userRepo, tokenGenerator, tokenDenylist, enqueuer, cfg.BcryptCost, cfg.Uploads.DefaultImage, logger.Logger)
	profileService := services.NewProfileService(userRepo, images, logger.Logger)
	adminService := services.NewAdminService(userRepo, tokenGenerator, tokenDenylist, images, services.AdminCredentials{
		Email:        cfg.Admin.Email,
		PasswordHash: cfg.Admin.PasswordHash,
	}, cfg.BcryptCost, logger.Logger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, logger.Logger)
	profileHandler := handlers.NewProfileHandler(profileService, cfg.Uploads.URLPrefix, logger.Logger)
	adminHandler := handlers.NewAdminHandler(adminService, cfg.Uploads.URLPrefix, logger.Logger)
	uploadHandler := handlers.NewUploadHandler(fileStorage, cfg.Uploads.URLPrefix, logger.Logger)
	healthHandler := handlers.NewHealthHandler(database.Pinger(client), logger.Logger)

	// Initialize auth middleware
	userMiddleware := middleware.RequireRole(tokenGenerator, tokenDenylist, models.RoleUser)
	adminMiddleware := middleware.RequireRole(tokenGenerator, tokenDenylist, models.RoleAdmin)
	loginLimiter := httprate.LimitByIP(10, time.Minute)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middlewares.RequestIDMiddleware)
	r.Use(loggerMiddleware.LoggerMiddleware(logger.Logger))
	r.Use(middlewares.RecoveryMiddleware(logger.Logger))
	r.Use(middlewares.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(middlewares.RequestSizeLimitMiddleware(10 * 1024 * 1024)) // 10MB

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	// Register routes
	healthHandler.RegisterRoutes(r)
	uploadHandler.RegisterRoutes(r)
	authHandler.RegisterRoutes(r, loginLimiter, userMiddleware)
	profileHandler.RegisterRoutes(r, userMiddleware)
	adminHandler.RegisterRoutes(r, loginLimiter, adminMiddleware)

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}
