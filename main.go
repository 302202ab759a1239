// Package main provides the main entry point for the quote gateway service
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/deliverycalc/quote-gateway/app/handlers"
	"github.com/deliverycalc/quote-gateway/app/middleware"
	"github.com/deliverycalc/quote-gateway/app/router"
	"github.com/deliverycalc/quote-gateway/app/services"
	businessflow "github.com/deliverycalc/quote-gateway/business_flow"
	"github.com/deliverycalc/quote-gateway/config"
	"github.com/deliverycalc/quote-gateway/models"
	"github.com/deliverycalc/quote-gateway/repository"
)

// Application represents the main application structure
type Application struct {
	router      *router.FiberRouter
	config      *config.ProductionConfig
	server      *fiber.App
	catalogFlow businessflow.CatalogFlow
	stopFuncs   []func()
}

func main() {
	log.Println("Starting quote gateway...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg.Logging)

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Warm the catalog in the background so startup never blocks on the
	// upstream service. Requests arriving before the first load complete
	// get a CATALOG_NOT_LOADED response.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.Upstream.Timeout)
		defer cancel()
		if status, err := app.catalogFlow.Refresh(ctx); err != nil {
			log.Printf("Initial catalog load failed: %v", err)
		} else if status.Degraded {
			log.Printf("Initial catalog load degraded: %v", status.LoadMessages)
		} else {
			log.Printf("Catalog loaded: %d factories, %d tariff rows", status.Factories, status.TariffRows)
		}
	}()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// setupLogging directs the standard logger to stdout, a rotated file, or both
func setupLogging(cfg config.LoggingConfig) {
	if cfg.Output == "stdout" {
		return
	}

	fileWriter := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	if cfg.Output == "both" {
		log.SetOutput(io.MultiWriter(os.Stdout, fileWriter))
		return
	}
	log.SetOutput(fileWriter)
}

// initializeDatabase initializes the quote history database with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := db.AutoMigrate(&models.QuoteHistory{}); err != nil {
		return nil, fmt.Errorf("failed to migrate quote history: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the Redis client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s", cfg.RedisURL)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	// Initialize database (optional history store)
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		cancel := startCacheHealthMonitor(context.Background(), rc, 30*time.Second)
		stopFuncs = append(stopFuncs, cancel)
	}

	// Initialize repositories
	catalogRepo := repository.NewCatalogRepository(rc, cfg.Cache.CatalogTTL)
	var sessionRepo repository.QuoteSessionRepository
	if rc != nil {
		sessionRepo = repository.NewQuoteSessionRepository(rc, cfg.Cache.SessionTTL)
	} else {
		sessionRepo = repository.NewMemorySessionRepository(cfg.Cache.SessionTTL)
	}
	var historyRepo repository.QuoteHistoryRepository
	if db != nil {
		historyRepo = repository.NewQuoteHistoryRepository(db)
	}

	// Initialize upstream clients, each with its own timeout
	catalogClient := services.NewCatalogClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout, nil)
	quoteClient := services.NewQuoteClient(cfg.Upstream.BaseURL, cfg.Upstream.AdminToken, cfg.Upstream.SubmitTimeout, nil)

	// Initialize flows
	catalogFlow := businessflow.NewCatalogFlow(catalogClient, quoteClient, catalogRepo)
	quoteFlow := businessflow.NewQuoteFlow(quoteClient, sessionRepo, historyRepo, catalogRepo)
	exportFlow := businessflow.NewExportFlow(catalogRepo)

	// Initialize handlers
	catalogHandler := handlers.NewCatalogHandler(catalogFlow, exportFlow)
	quoteHandler := handlers.NewQuoteHandler(quoteFlow)
	adminHandler := handlers.NewAdminHandler(catalogFlow)

	// Initialize admin auth middleware
	adminAuth := middleware.NewAdminAuthMiddleware(cfg.Admin.APIKeyHash)
	if cfg.Admin.APIKeyHash == "" {
		log.Println("ADMIN_API_KEY_HASH not set, admin routes disabled")
	}

	// Initialize router
	appRouter := router.NewFiberRouter(
		catalogHandler,
		quoteHandler,
		adminHandler,
		adminAuth,
		cfg.Security,
		cfg.Metrics,
	)

	// Create application struct from FiberRouter
	fiberRouter := appRouter.(*router.FiberRouter)
	application := &Application{
		router:      fiberRouter,
		config:      cfg,
		server:      fiberRouter.GetApp(),
		catalogFlow: catalogFlow,
		stopFuncs:   stopFuncs,
	}

	return application, nil
}
