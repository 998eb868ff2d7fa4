package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/openride/dispatch/internal/pkg/config"
	"github.com/openride/dispatch/internal/pkg/database"
	"github.com/openride/dispatch/internal/pkg/lock"
	"github.com/openride/dispatch/internal/pkg/logger"
	"github.com/openride/dispatch/internal/pkg/middleware"
	"github.com/openride/dispatch/internal/pkg/nsq"
	"github.com/openride/dispatch/internal/pkg/scheduler"
	"github.com/openride/dispatch/internal/pkg/server"
	"github.com/openride/dispatch/internal/pkg/websocket"
	"github.com/openride/dispatch/services/dispatch/gateway"
	"github.com/openride/dispatch/services/dispatch/handler"
	"github.com/openride/dispatch/services/dispatch/repository"
	"github.com/openride/dispatch/services/dispatch/usecase"
)

func main() {
	configs := config.InitConfig()

	zapLogger, err := logger.InitFromConfig(configs)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Close()

	// Redis is the sole source of coordination state
	redisClient, err := database.NewRedisClient(configs.Redis)
	if err != nil {
		zapLogger.Fatal("Failed to connect to Redis", logger.Err(err))
	}
	defer redisClient.Close()

	producer, err := nsq.NewProducer(configs.NSQ.NSQDAddress)
	if err != nil {
		zapLogger.Fatal("Failed to connect to NSQ", logger.Err(err))
	}
	defer producer.Stop()

	wsManager := websocket.NewManager(configs.JWT)

	// Repositories
	statusRepo := repository.NewDriverStatusRepository(redisClient)
	queueRepo := repository.NewTripQueueRepository(redisClient)
	locationRepo := repository.NewLocationRepository(redisClient,
		time.Duration(configs.Dispatch.LocationTTLHours)*time.Hour)

	// Gateway and usecase
	dispatchGW := gateway.NewDispatchGW(producer, wsManager)
	lockMgr := lock.NewManager(redisClient)
	dispatchUC := usecase.NewDispatchUC(configs, statusRepo, queueRepo, locationRepo, lockMgr, dispatchGW)

	// Handlers
	dispatchHandler := handler.NewHandler(dispatchUC, wsManager, configs.NSQ, configs.App.Name)
	if err := dispatchHandler.InitNSQConsumers(); err != nil {
		zapLogger.Fatal("Failed to initialize NSQ consumers", logger.Err(err))
	}

	// Reaper sweeps
	sched := scheduler.New()
	registerSweep(sched, zapLogger, "@every 2m", "fast-sweep", func() error {
		_, err := dispatchUC.RunFastSweep(context.Background())
		return err
	})
	registerSweep(sched, zapLogger, "@every 5m", "medium-sweep", func() error {
		_, err := dispatchUC.RunMediumSweep(context.Background())
		return err
	})
	registerSweep(sched, zapLogger, "0 3 * * *", "daily-sweep", func() error {
		return dispatchUC.RunDailySweep(context.Background())
	})
	sched.Start()

	shutdownMgr := server.NewShutdownManager(zapLogger)
	shutdownMgr.Register(func(ctx context.Context) error {
		sched.Stop()
		return nil
	})
	shutdownMgr.Register(func(ctx context.Context) error {
		dispatchHandler.StopNSQConsumers()
		return nil
	})

	// HTTP server
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestIDMiddleware())
	e.Use(middleware.LoggerMiddleware())
	e.Use(middleware.PanicRecoveryMiddleware())

	apiKeyValidator := middleware.NewAPIKeyValidator(configs.APIKeys)
	dispatchHandler.RegisterRoutes(e, apiKeyValidator)

	srv := server.NewGracefulServer(e, zapLogger, configs.Server.Port)
	if err := srv.Start(); err != nil {
		zapLogger.Error("Server stopped with error", logger.Err(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(configs.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := shutdownMgr.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Component shutdown failed", logger.Err(err))
	}
}

func registerSweep(sched *scheduler.Scheduler, zapLogger *logger.ZapLogger, spec, name string, job func() error) {
	if err := sched.Register(spec, name, job); err != nil {
		zapLogger.Fatal("Failed to register scheduled job",
			logger.String("job", name),
			logger.Err(err))
	}
}
