// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cache"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/deliverycalc/quote-gateway/app/dto"
	"github.com/deliverycalc/quote-gateway/app/handlers"
	"github.com/deliverycalc/quote-gateway/app/middleware"
	"github.com/deliverycalc/quote-gateway/config"
	"github.com/deliverycalc/quote-gateway/utils"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app            *fiber.App
	catalogHandler handlers.CatalogHandlerInterface
	quoteHandler   handlers.QuoteHandlerInterface
	adminHandler   handlers.AdminHandlerInterface
	adminAuth      *middleware.AdminAuthMiddleware
	security       config.SecurityConfig
	metrics        config.MetricsConfig
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(
	catalogHandler handlers.CatalogHandlerInterface,
	quoteHandler handlers.QuoteHandlerInterface,
	adminHandler handlers.AdminHandlerInterface,
	adminAuth *middleware.AdminAuthMiddleware,
	security config.SecurityConfig,
	metrics config.MetricsConfig,
) Router {
	app := fiber.New(fiber.Config{
		AppName:      "Quote Gateway API",
		ServerHeader: "quote-gateway",
		ErrorHandler: errorHandler,
		BodyLimit:    1 * 1024 * 1024, // 1MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:            app,
		catalogHandler: catalogHandler,
		quoteHandler:   quoteHandler,
		adminHandler:   adminHandler,
		adminAuth:      adminAuth,
		security:       security,
		metrics:        metrics,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	// Global middleware
	r.setupMiddleware()

	// Prometheus scrape endpoint (outside the rate-limited API group)
	if r.metrics.Enabled {
		r.app.Get(r.metrics.Path, adaptor.HTTPHandler(promhttp.Handler()))
	}

	// API routes
	api := r.app.Group("/api/v1")

	// Health check route (no rate limiting)
	api.Get("/health", r.healthCheck)

	// Apply general rate limiting to all API routes
	api.Use(limiter.New(limiter.Config{
		Max:        r.security.GlobalRateLimit,
		Expiration: r.security.RateLimitWindow,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP() // Rate limit by IP
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
		Next: func(c fiber.Ctx) bool {
			// Skip rate limiting for health checks
			return c.Path() == "/api/v1/health"
		},
	}))

	// Catalog routes
	catalog := api.Group("/catalog")
	catalog.Get("/status", r.catalogHandler.Status)
	catalog.Get("/categories", r.catalogHandler.Categories)
	catalog.Get("/factories", r.catalogHandler.Factories)
	catalog.Get("/tariffs", r.catalogHandler.Tariffs)
	catalog.Get("/special-vehicles", r.catalogHandler.SpecialVehicles)
	catalog.Get("/export", r.catalogHandler.Export)

	// Quote routes
	quotes := api.Group("/quotes")
	quotes.Get("/history", r.quoteHandler.History)
	quotes.Post("/", r.quoteHandler.SubmitQuote)
	quotes.Get("/:session_id", r.quoteHandler.GetSession)
	quotes.Post("/:session_id/select", r.quoteHandler.SelectVariant)

	// Admin routes with stricter rate limiting and key auth
	admin := api.Group("/admin")
	admin.Use(limiter.New(limiter.Config{
		Max:        r.security.AdminRateLimit,
		Expiration: r.security.RateLimitWindow,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
	}))
	admin.Use(r.adminAuth.Authenticate())
	admin.Post("/reload", r.adminHandler.Reload)

	// 404 handler for unmatched routes
	r.app.Use(func(c fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
			Success: false,
			Message: "Endpoint not found",
			Error: dto.ErrorDetail{
				Code: "NOT_FOUND",
			},
		})
	})

	log.Println("Routes setup completed")
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	// Security headers middleware
	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000, // 1 year
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		XDNSPrefetchControl:   "off",
		XDownloadOptions:      "noopen",
		XPermittedCrossDomain: "none",
	}))

	// CORS middleware with configured origins
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: r.security.AllowedOrigins,
		AllowMethods: []string{
			"GET", "POST", "HEAD", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"X-Requested-With",
			"X-Request-ID",
			"X-Admin-Key",
			"Cache-Control",
		},
		ExposeHeaders: []string{
			"X-Request-ID",
			"Content-Disposition",
		},
		AllowCredentials: false,
		MaxAge:           utils.CORSMaxAge,
	}))

	// Compression middleware for performance
	r.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
		Next: func(c fiber.Ctx) bool {
			// The Excel export is already compressed
			return strings.Contains(c.Path(), "/catalog/export")
		},
	}))

	// Cache middleware for catalog reads; quote routes must never be cached
	r.app.Use(cache.New(cache.Config{
		Next: func(c fiber.Ctx) bool {
			if c.Method() != "GET" {
				return true
			}
			return !strings.Contains(c.Path(), "/catalog/") ||
				strings.Contains(c.Path(), "/catalog/status") ||
				strings.Contains(c.Path(), "/catalog/export")
		},
		Expiration:          1 * time.Minute,
		DisableCacheControl: false,
	}))

	// Advanced logging middleware
	r.app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","pid":"${pid}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","protocol":"${protocol}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent},"referer":"${referer}"}` + "\n",
		TimeFormat: time.RFC3339,
		TimeZone:   "UTC",
		Next: func(c fiber.Ctx) bool {
			// Skip logging for health checks and metrics scrapes
			return c.Path() == "/api/v1/health" || c.Path() == r.metrics.Path
		},
	}))

	// Prometheus metrics middleware
	if r.metrics.Enabled {
		r.app.Use(middleware.Metrics())
	}

	// Recovery middleware with custom error handling
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			// Log panic with request context
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				c.Locals("requestid"),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// Health check endpoint
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":    "ok",
			"timestamp": utils.UTCNow().Unix(),
			"version":   "1.0.0",
			"service":   "quote-gateway",
		},
	})
}

func errorHandler(c fiber.Ctx, err error) error {
	// Default error code
	code := fiber.StatusInternalServerError

	// Retrieve the custom status code if it's a fiber.*Error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	// Log the error
	log.Printf("Error %d: %v", code, err)

	// Get RequestID for tracing
	requestID := c.Locals("requestid")

	// Return JSON error response
	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: "An internal server error occurred",
		Error: dto.ErrorDetail{
			Code: "INTERNAL_ERROR",
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": requestID,
			},
		},
	})
}

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
