// File: fixline/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fixline/config"
	"fixline/cron"
	"fixline/database"
	bookingRepoPkg "fixline/database/repository/booking"
	technicianRepoPkg "fixline/database/repository/technician"
	userRepoPkg "fixline/database/repository/user"
	"fixline/handlers"
	"fixline/middleware"
	"fixline/routes"
	"fixline/services/dispatch"
	"fixline/services/notification"
	"fixline/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitSessionClient()
	utils.FirebaseInit()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	technicianRepo := technicianRepoPkg.NewMongoTechnicianRepo()
	userRepo := userRepoPkg.NewMongoUserRepo()

	// services.
	notificationService := &notification.DefaultNotificationService{
		Rdb: utils.GetSessionClient(),
		Push: &notification.PushService{
			Users:       userRepo,
			Technicians: technicianRepo,
		},
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDispatchQueueDB,
	})
	defer asynqClient.Close()

	dispatchService := &dispatch.DefaultDispatchService{
		Bookings: bookingRepo,
		Directory: &dispatch.DefaultDirectory{
			Repo:          technicianRepo,
			MaxDistanceKm: config.AppConfig.DispatchMaxDistanceKm,
		},
		Notifier: notificationService,
		Timeouts: &dispatch.AsynqTimeoutScheduler{
			Client: asynqClient,
			Window: config.AppConfig.DispatchResponseWindow,
		},
		CandidateLimit: config.AppConfig.DispatchCandidateLimit,
	}

	// Background worker expiring response windows.
	cron.InitTimeoutWorker(dispatchService)

	bookingHandler := handlers.NewBookingHandler(dispatchService, logger)
	realtimeHandler := handlers.NewRealtimeHandler(notificationService, logger)

	routes.RegisterRoutes(router, bookingHandler, realtimeHandler)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
