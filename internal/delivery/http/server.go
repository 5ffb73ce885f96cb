package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/navigation-bridge/internal/config"
	"github.com/navigation-bridge/internal/delivery/http/handler"
	"github.com/navigation-bridge/internal/delivery/http/middleware"
	"github.com/navigation-bridge/internal/delivery/ws"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"
)

// Server - HTTP сервер на основе Fiber
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger

	// Handlers
	navigationHandler *handler.NavigationHandler
	cameraHandler     *handler.CameraHandler
	tripHandler       *handler.TripHandler
	gateway           *ws.Gateway
}

// NewServer - создание нового HTTP сервера
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	navigationHandler *handler.NavigationHandler,
	cameraHandler *handler.CameraHandler,
	tripHandler *handler.TripHandler,
	gateway *ws.Gateway,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "Navigation Bridge",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:               app,
		config:            cfg,
		logger:            logger,
		navigationHandler: navigationHandler,
		cameraHandler:     cameraHandler,
		tripHandler:       tripHandler,
		gateway:           gateway,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery())
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS())
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

// setupRoutes - настройка маршрутов
func (s *Server) setupRoutes() {
	// Swagger documentation route
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	api := s.app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// Route routes
	api.Post("/route", s.navigationHandler.BuildRoute)
	api.Delete("/route", s.navigationHandler.ClearRoute)

	// Navigation routes
	api.Post("/navigation/start", s.navigationHandler.StartNavigation)
	api.Put("/navigation", s.navigationHandler.UpdateNavigation)
	api.Delete("/navigation", s.navigationHandler.FinishNavigation)
	api.Get("/navigation/distance-remaining", s.navigationHandler.GetDistanceRemaining)
	api.Get("/navigation/duration-remaining", s.navigationHandler.GetDurationRemaining)
	api.Post("/navigation/location", s.navigationHandler.UpdateLocation)

	// Camera routes
	api.Get("/camera", s.cameraHandler.GetCamera)
	api.Put("/camera/mode", s.cameraHandler.SetCameraMode)

	// Trip log
	api.Get("/trips", s.tripHandler.ListTrips)

	// WebSocket event stream
	wsGroup := s.app.Group("/ws/v1")
	ws.RegisterRoutes(wsGroup, s.gateway, s.logger)
}

// Start - запуск HTTP сервера
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown HTTP сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler - кастомный обработчик ошибок
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		logger.Error("HTTP Error",
			zap.String("path", c.Path()),
			zap.Int("status", code),
			zap.Error(err),
		)

		return c.Status(code).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "INTERNAL_SERVER_ERROR",
				"message": err.Error(),
			},
		})
	}
}
