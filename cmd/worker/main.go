package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/hibiken/asynq"
	"github.com/restaurantbooking/backend/internal/config"
	"github.com/restaurantbooking/backend/internal/logger"
	"github.com/restaurantbooking/backend/internal/repositories"
	"github.com/restaurantbooking/backend/internal/tasks"
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

	logger.Logger.Info("Starting Restaurant Booking Worker")

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	reservationRepo := repositories.NewReservationRepository(db, logger.Logger)
	mailer := tasks.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	processor := tasks.NewProcessor(reservationRepo, mailer, logger.Logger)

	// Create Asynq server
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				tasks.QueueEmails: 1,
			},
			Logger: logger.Logger.Sugar(),
		},
	)

	// Register task handlers
	mux := asynq.NewServeMux()
	processor.Register(mux)

	// Start worker
	if err := srv.Start(mux); err != nil {
		logger.Logger.Fatal("Failed to start worker", zap.Error(err))
	}

	logger.Logger.Info("Worker started")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down worker...")
	srv.Shutdown()
	logger.Logger.Info("Worker exited")
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
