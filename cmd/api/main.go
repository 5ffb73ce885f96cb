package main

// @title Navigation Bridge API
// @version 1.0.0
// @description Сервис-мост между хост-приложением и навигационной поверхностью. Принимает команды построения маршрута и управления навигационной сессией, запрашивает маршруты у Mapbox Directions API и транслирует события навигации подписчику через WebSocket.
// @description
// @description Основные возможности:
// @description - Построение маршрута по списку путевых точек
// @description - Запуск, перестроение и завершение навигационной сессии
// @description - Отслеживание прогресса по маршруту и детекция прибытия
// @description - Управление режимом камеры (following / overview)
// @description - Поток событий навигации через WebSocket

// @contact.name API Support
// @contact.email support@navigation-bridge.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/navigation-bridge/docs/swagger"
	"github.com/navigation-bridge/internal/config"
	httpDelivery "github.com/navigation-bridge/internal/delivery/http"
	"github.com/navigation-bridge/internal/delivery/http/handler"
	"github.com/navigation-bridge/internal/delivery/ws"
	"github.com/navigation-bridge/internal/domain/repository"
	"github.com/navigation-bridge/internal/infrastructure/mapbox"
	"github.com/navigation-bridge/internal/pkg/logger"
	"github.com/navigation-bridge/internal/repository/postgres"
	redisRepo "github.com/navigation-bridge/internal/repository/redis"
	"github.com/navigation-bridge/internal/usecase"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Navigation Bridge")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
	)

	// 3. Connect to Redis (optional: mirrors events into a stream)
	var redisClient *redisRepo.Redis
	if cfg.Redis.Enabled {
		redisClient, err = redisRepo.NewRedis(&cfg.Redis, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Failed to close Redis connection", zap.Error(err))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Health(ctx); err != nil {
			cancel()
			log.Fatal("Redis health check failed", zap.Error(err))
		}
		cancel()
		log.Info("Redis connected")
	} else {
		log.Info("Redis disabled, events will not be mirrored to stream")
	}

	// 4. Connect to PostgreSQL (optional: serves the trip log)
	var db *postgres.DB
	if cfg.Database.Enabled {
		db, err = postgres.New(&cfg.Database, log)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Failed to close PostgreSQL connection", zap.Error(err))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := db.Health(ctx); err != nil {
			cancel()
			log.Fatal("PostgreSQL health check failed", zap.Error(err))
		}
		cancel()
		log.Info("PostgreSQL connected")
	} else {
		log.Info("PostgreSQL disabled, trip log is unavailable")
	}

	// 5. Initialize repositories
	directionsRepo := mapbox.NewDirectionsClient(&cfg.Mapbox, log)

	var eventStreamRepo repository.StreamRepository
	if redisClient != nil {
		eventStreamRepo = redisRepo.NewStreamRepository(redisClient.Client(), log)
	}

	log.Info("Repositories initialized")

	// 6. Initialize event gateway
	gateway := ws.NewGateway(eventStreamRepo, log)

	// 7. Initialize use cases
	mapViewUC := usecase.NewMapViewUseCase(&cfg.Nav, log)
	navigationUC := usecase.NewNavigationUseCase(directionsRepo, mapViewUC, gateway, &cfg.Nav, log)

	var tripUC *usecase.TripUseCase
	if db != nil {
		tripUC = usecase.NewTripUseCase(postgres.NewTripRepository(db, log), log)
	} else {
		tripUC = usecase.NewTripUseCase(nil, log)
	}

	log.Info("Use cases initialized")

	// 8. Initialize HTTP handlers
	navigationHandler := handler.NewNavigationHandler(navigationUC, log)
	cameraHandler := handler.NewCameraHandler(mapViewUC, log)
	tripHandler := handler.NewTripHandler(tripUC, log)

	log.Info("HTTP handlers initialized")

	// 9. Initialize HTTP server
	server := httpDelivery.NewServer(
		cfg,
		log,
		navigationHandler,
		cameraHandler,
		tripHandler,
		gateway,
	)

	log.Info("HTTP server initialized")

	// 10. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 11. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
