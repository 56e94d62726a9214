package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/hibiken/asynq"
	authmw "github.com/restaurantbooking/backend/internal/auth/middleware"
	"github.com/restaurantbooking/backend/internal/auth/revocation"
	"github.com/restaurantbooking/backend/internal/auth/service"
	"github.com/restaurantbooking/backend/internal/config"
	"github.com/restaurantbooking/backend/internal/handlers"
	"github.com/restaurantbooking/backend/internal/logger"
	loggerMiddleware "github.com/restaurantbooking/backend/internal/logger/middleware"
	"github.com/restaurantbooking/backend/internal/middlewares"
	"github.com/restaurantbooking/backend/internal/models"
	"github.com/restaurantbooking/backend/internal/repositories"
	"github.com/restaurantbooking/backend/internal/services"
	"github.com/restaurantbooking/backend/internal/tasks"
	"go.uber.org/zap"
)

const (
	maxRequestSize = 1 << 20 // 1MB

	// login and register get a tighter per-IP budget than the rest of the API
	credentialRequests = 10
	credentialWindow   = time.Minute
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

	logger.Logger.Info("Starting Restaurant Booking API", zap.String("env", cfg.Env))

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db, cfg.MigrationsPath); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	revoker := revocation.NewRedisRevoker(rdb)
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Logger.Warn("Redis unavailable, logout will only clear the cookie", zap.Error(err))
		revoker = revocation.NewNoopRevoker()
	}
	cancelPing()

	// Create Asynq client
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	// Initialize JWT token generator
	tokenGenerator := service.NewTokenGenerator(cfg.JWT.Secret, cfg.JWT.Expiry)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db, logger.Logger)
	restaurantRepo := repositories.NewRestaurantRepository(db, logger.Logger)
	reservationRepo := repositories.NewReservationRepository(db, logger.Logger)

	// Initialize services
	enqueuer := tasks.NewEnqueuer(asynqClient, logger.Logger)
	authService := services.NewAuthService(userRepo, tokenGenerator, revoker, logger.Logger)
	userService := services.NewUserService(userRepo, logger.Logger)
	restaurantService := services.NewRestaurantService(restaurantRepo, logger.Logger)
	reservationService := services.NewReservationService(reservationRepo, restaurantRepo, enqueuer, logger.Logger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, handlers.CookieConfig{
		ExpireDays: cfg.JWT.CookieExpireDays,
		Secure:     cfg.IsProduction(),
	}, logger.Logger)
	userHandler := handlers.NewUserHandler(userService, logger.Logger)
	restaurantHandler := handlers.NewRestaurantHandler(restaurantService, logger.Logger)
	reservationHandler := handlers.NewReservationHandler(reservationService, logger.Logger)
	healthHandler := handlers.NewHealthHandler(db, logger.Logger)

	// Initialize auth middleware
	authMiddleware := authmw.AuthMiddleware(tokenGenerator, revoker, userRepo, logger.Logger)
	adminMiddleware := authmw.RoleMiddleware(models.RoleAdmin)
	credentialLimiter := middlewares.RateLimitMiddleware(credentialRequests, credentialWindow)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middlewares.RequestIDMiddleware)
	r.Use(loggerMiddleware.LoggerMiddleware(logger.Logger))
	r.Use(middlewares.RecoveryMiddleware(logger.Logger))
	r.Use(middlewares.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(middlewares.RateLimitMiddleware(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	r.Use(middlewares.RequestSizeLimitMiddleware(maxRequestSize))

	// Scope router to /api/v1
	r.Route("/api/v1", func(r chi.Router) {
		healthHandler.RegisterRoutes(r)
		authHandler.RegisterRoutes(r, authMiddleware, credentialLimiter)
		userHandler.RegisterRoutes(r, authMiddleware, adminMiddleware)
		restaurantHandler.RegisterRoutes(r, authMiddleware, adminMiddleware, reservationHandler.NestedRoutes(authMiddleware))
		reservationHandler.RegisterRoutes(r, authMiddleware)
	})

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
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// runMigrations applies all pending migrations from migrationPath
func runMigrations(db *sql.DB, migrationPath string) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(migrationPath, "mysql", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
