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
	"github.com/go-chi/httprate"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/moblog/backend/internal/auth"
	"github.com/moblog/backend/internal/config"
	"github.com/moblog/backend/internal/handlers"
	"github.com/moblog/backend/internal/logger"
	"github.com/moblog/backend/internal/middleware"
	"github.com/moblog/backend/internal/repositories"
	"github.com/moblog/backend/internal/services"
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

	logger.Logger.Info("Starting MoBlog backend")

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize token service
	tokenService := auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.TokenExpiry)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db, logger.Logger)
	postRepo := repositories.NewPostRepository(db, logger.Logger)
	tagRepo := repositories.NewTagRepository(db, logger.Logger)
	categoryRepo := repositories.NewCategoryRepository(db, logger.Logger)
	settingRepo := repositories.NewSettingRepository(db, logger.Logger)

	// Initialize services
	userService := services.NewUserService(userRepo, tokenService, logger.Logger)
	postService := services.NewPostService(postRepo, tagRepo, categoryRepo, logger.Logger)
	tagService := services.NewTagService(tagRepo, postRepo, logger.Logger)
	categoryService := services.NewCategoryService(categoryRepo, postRepo, logger.Logger)
	settingService := services.NewSettingService(settingRepo, logger.Logger)

	// Seed default settings unless already marked initialized
	if err := settingService.EnsureSeeded(context.Background()); err != nil {
		logger.Logger.Fatal("Failed to seed default settings", zap.Error(err))
	}

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService, logger.Logger)
	postHandler := handlers.NewPostHandler(postService, logger.Logger)
	tagHandler := handlers.NewTagHandler(tagService, logger.Logger)
	categoryHandler := handlers.NewCategoryHandler(categoryService, logger.Logger)
	settingHandler := handlers.NewSettingHandler(settingService, logger.Logger)

	// Initialize auth middleware
	requireAuth := middleware.RequireAuth(tokenService, userRepo, logger.Logger)
	optionalAuth := middleware.OptionalAuth(tokenService, userRepo, logger.Logger)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.LoggerMiddleware(logger.Logger))
	r.Use(middleware.RecoveryMiddleware(logger.Logger))
	r.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(middleware.RequestSizeLimitMiddleware)

	// Register routes
	r.Get("/", welcome)
	userHandler.RegisterRoutes(r, requireAuth, optionalAuth)
	postHandler.RegisterRoutes(r, requireAuth)
	tagHandler.RegisterRoutes(r, requireAuth)
	categoryHandler.RegisterRoutes(r, requireAuth)
	settingHandler.RegisterRoutes(r, requireAuth)

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

// welcome handles GET /
func welcome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"message":"welcome to moblog","success":true,"data":null,"status_code":200}`))
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

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "blog_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		// Try parent directory if running from cmd
		if _, err := os.Stat("../migrations"); err == nil {
			migrationPath = "file://../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(
		migrationPath,
		"mysql",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
