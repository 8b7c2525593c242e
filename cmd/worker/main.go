package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/userhub/backend/internal/config"
	"github.com/userhub/backend/internal/database"
	"github.com/userhub/backend/internal/logger"
	"github.com/userhub/backend/internal/repositories"
	"github.com/userhub/backend/internal/storage"
	"github.com/userhub/backend/internal/tasks"
	"go.uber.org/zap"
)

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

	logger.Logger.Info("Starting UserHub Worker")

	if !cfg.Redis.Enabled {
		logger.Logger.Fatal("Worker requires REDIS_ENABLED")
	}

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

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	// Test Redis connection
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	// Initialize repositories and storage
	userRepo := repositories.NewUserRepository(client.Database(cfg.Mongo.Database), logger.Logger)
	fileStorage := storage.NewLocalStorage(cfg.Uploads.Dir)

	// Create Asynq server
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Queues: tasks.Queues,
	})

	// Create worker instance
	worker := NewWorker(
		logger.Logger,
		NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From),
		userRepo,
		fileStorage,
		cfg.Uploads.DefaultImage,
		cfg.Tasks.SweepGrace,
	)

	// Register task handlers
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeWelcomeEmail, worker.HandleWelcomeEmail)
	mux.HandleFunc(tasks.TypeUploadSweep, worker.HandleUploadSweep)

	// Schedule periodic sweeps
	taskClient := asynq.NewClient(redisOpt)
	defer taskClient.Close()

	scheduler, err := NewScheduler(tasks.NewEnqueuer(taskClient), cfg.Tasks.SweepSchedule, logger.Logger)
	if err != nil {
		logger.Logger.Fatal("Failed to create scheduler", zap.Error(err))
	}
	scheduler.Start()

	// Start worker
	go func() {
		if err := srv.Run(mux); err != nil {
			logger.Logger.Fatal("Failed to start worker", zap.Error(err))
		}
	}()

	logger.Logger.Info("Worker started")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down worker...")
	scheduler.Stop()
	srv.Shutdown()
	logger.Logger.Info("Worker exited")
}
