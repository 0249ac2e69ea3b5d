package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ruralgeo/ruralgeo/internal/app/config"
	"github.com/ruralgeo/ruralgeo/internal/app/handlers"
	appservices "github.com/ruralgeo/ruralgeo/internal/app/services"
	"github.com/ruralgeo/ruralgeo/internal/infrastructure/database"
	"github.com/ruralgeo/ruralgeo/pkg/logger"
)

type Server struct {
	config   *config.Config
	logger   *logger.Logger
	router   *gin.Engine
	server   *http.Server
	db       *database.DB
	services *appservices.ServiceManager
}

// New creates a new server instance
func New(cfg *config.Config, log *logger.Logger) (*Server, error) {
	if cfg.GetDatabaseURL() == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	db, err := database.New(cfg.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	serviceManager, err := appservices.NewServiceManager(cfg, db, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	// Configure Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(cfg))
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(log))

	server := &Server{
		config:   cfg,
		logger:   log,
		router:   router,
		db:       db,
		services: serviceManager,
	}

	server.setupRoutes()

	return server, nil
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down server...")

	if err := s.services.Close(); err != nil {
		s.logger.Error().Err(err).Msg("Error closing services")
	}

	return s.server.Shutdown(ctx)
}

// setupRoutes configures all application routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/status", s.systemStatus)

		sm := s.services
		handlers.NewPropertyHandler(sm.PropertyService, sm.DocumentService, sm.AutomationService).RegisterRoutes(v1)
		handlers.NewGeometryHandler(sm.GeometryService, sm.OverlapService).RegisterRoutes(v1)
		handlers.NewTechnicalDocumentHandler(sm.DocumentService, sm.ValidationService).RegisterRoutes(v1)
		handlers.NewDeliverableHandler(sm.MemorialService, sm.SigefExportService).RegisterRoutes(v1)
		handlers.NewAuditHandler(sm.AuditService).RegisterRoutes(v1)
	}
}

// Health check handler
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": s.config.Environment,
	})
}

// System status handler
func (s *Server) systemStatus(c *gin.Context) {
	dbStatus := "healthy"
	if err := s.db.Ping(); err != nil {
		dbStatus = "unhealthy"
	}

	cacheStatus := "not_configured"
	if s.services.CacheService != nil {
		cacheStatus = "healthy"
		if err := s.services.CacheService.Ping(c.Request.Context()); err != nil {
			cacheStatus = "unhealthy"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"database":  dbStatus,
		"cache":     cacheStatus,
		"timestamp": time.Now().UTC(),
		"version":   "1.0.0",
	})
}

// corsMiddleware configures CORS
func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	return cors.New(corsConfig)
}

// requestIDMiddleware assigns each request a correlation ID
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		handlers.SetRequestID(c, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.Info().
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", handlers.GetRequestID(c)).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}
