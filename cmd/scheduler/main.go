package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/hibiken/asynq"
	"github.com/restaurantbooking/backend/internal/config"
	"github.com/restaurantbooking/backend/internal/logger"
	"github.com/restaurantbooking/backend/internal/repositories"
	"github.com/restaurantbooking/backend/internal/tasks"
	"go.uber.org/zap"
)

const sweepTimeout = 2 * time.Minute

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

	logger.Logger.Info("Starting Restaurant Booking Scheduler")

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	// Reminders are deduplicated in Redis, so it is required here
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	// Create Asynq client
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	reservationRepo := repositories.NewReservationRepository(db, logger.Logger)
	sweeper := tasks.NewReminderSweeper(
		reservationRepo,
		tasks.NewEnqueuer(asynqClient, logger.Logger),
		tasks.NewRedisClaimer(rdb),
		cfg.Reminder.Lead,
		logger.Logger,
	)

	scheduler, err := NewScheduler(cfg.Reminder.Cron, sweeper, sweepTimeout, logger.Logger)
	if err != nil {
		logger.Logger.Fatal("Failed to create scheduler", zap.Error(err))
	}

	// Start scheduler
	scheduler.Start()
	defer func() {
		logger.Logger.Info("Shutting down scheduler...")
		scheduler.Stop()
		logger.Logger.Info("Scheduler exited")
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
