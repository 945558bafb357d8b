// Package server HTTP API 服务。
package server

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gpcards/database"
	"gpcards/export"
	"gpcards/server/handlers"
	"gpcards/server/middleware"
	"gpcards/server/services"
)

// Config 服务配置。LicensePub 为 nil 时不校验授权。
type Config struct {
	Port       string
	ExportDir  string
	LicensePub ed25519.PublicKey
}

// Server HTTP 服务。
type Server struct {
	config     Config
	logger     *slog.Logger
	httpServer *http.Server
}

// New 组装服务依赖并构建路由。
func New(db *database.DB, config Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Port == "" {
		config.Port = "8090"
	}

	exporter, err := export.NewExporter(config.ExportDir)
	if err != nil {
		return nil, err
	}
	cardService, err := services.NewCardService(db, exporter, logger)
	if err != nil {
		return nil, err
	}
	annService, err := services.NewAnnouncementService(db, logger)
	if err != nil {
		return nil, err
	}

	h := handlers.New(cardService, annService, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.AccessLog(logger))

	router.NoRoute(h.NotFound)
	router.GET("/api/health", h.Health)

	api := router.Group("/api")
	api.Use(middleware.LicenseGate(config.LicensePub))
	{
		api.GET("/cards", h.GetCards)
		api.GET("/announcements", h.GetAnnouncements)
		api.GET("/stats", h.GetStats)
		api.POST("/export", h.ExportCards)
		api.POST("/reprocess", h.Reprocess)
	}

	return &Server{
		config: config,
		logger: logger,
		httpServer: &http.Server{
			Addr:         ":" + config.Port,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
	}, nil
}

// Start 启动监听，阻塞直到服务停止。
func (s *Server) Start() error {
	s.logger.Info("HTTP 服务启动", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown 优雅停止服务。
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP 服务停止中")
	return s.httpServer.Shutdown(ctx)
}
