package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf-popaccueil/popaccueil-backend/config"
	"github.com/spf-popaccueil/popaccueil-backend/internal/app/controller"
	"github.com/spf-popaccueil/popaccueil-backend/internal/app/repository"
	"github.com/spf-popaccueil/popaccueil-backend/internal/app/service"
	"github.com/spf-popaccueil/popaccueil-backend/internal/db"
	"github.com/spf-popaccueil/popaccueil-backend/internal/mailer"
	"github.com/spf-popaccueil/popaccueil-backend/internal/middleware"
	"github.com/spf-popaccueil/popaccueil-backend/internal/router"
	"github.com/spf-popaccueil/popaccueil-backend/internal/scheduler"
	"github.com/spf-popaccueil/popaccueil-backend/pkg/logger"
	"github.com/spf-popaccueil/popaccueil-backend/pkg/redis"
	"github.com/spf-popaccueil/popaccueil-backend/pkg/util"
)

const (
	shutdownTimeout  = 15 * time.Second
	asyncMailTimeout = 30 * time.Second
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logger.Initialize(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		EnableColor: cfg.Log.Format == "console",
	})

	logger.Info("Starting Pop Accueil Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   cfg.Log.Level,
	})

	util.SetBcryptCost(cfg.Auth.BcryptCost)

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	if err := db.Seed(&cfg.Auth); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	// Mail: through the Redis outbox when enabled, otherwise in the background.
	var (
		mail      mailer.Dispatcher
		asyncMail *mailer.AsyncDispatcher
	)
	workerDone := make(chan struct{})
	if cfg.Mail.QueueEnabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Fatal("Failed to connect to Redis", err)
		}
		defer redis.Close()

		queue := mailer.NewQueueDispatcher(redis.GetClient(), mailer.DefaultQueueKey)
		worker := mailer.NewWorker(queue, mailer.NewDispatcher(&cfg.Mail))
		go func() {
			defer close(workerDone)
			worker.Run(workerCtx)
		}()
		mail = queue
	} else {
		close(workerDone)
		asyncMail = mailer.NewAsyncDispatcher(mailer.NewDispatcher(&cfg.Mail), asyncMailTimeout)
		mail = asyncMail
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	tokenRepo := repository.NewTokenRepository(db.GetDB())
	eventRepo := repository.NewEventRepository(db.GetDB())
	postRepo := repository.NewPostRepository(db.GetDB())
	basicServiceRepo := repository.NewBasicServiceRepository(db.GetDB())

	// Initialize services
	issuer := service.NewTokenIssuer(tokenRepo)
	codec := util.NewResetTokenCodec(cfg.Auth.ResetTokenSecret, cfg.Auth.ResetTokenExpiry, nil)
	authService := service.NewAuthService(userRepo, tokenRepo, issuer)
	passwordResetService := service.NewPasswordResetService(userRepo, codec, issuer, mail)
	eventService := service.NewEventService(eventRepo)
	postService := service.NewPostService(postRepo)
	basicServiceService := service.NewBasicServiceService(basicServiceRepo)

	// Initialize controllers
	authController := controller.NewAuthController(authService, passwordResetService)
	eventController := controller.NewEventController(eventService)
	postController := controller.NewPostController(postService)
	basicServiceController := controller.NewBasicServiceController(basicServiceService)

	authMiddleware := middleware.NewAuthMiddleware(authService)

	r := router.NewRouter(
		authController,
		eventController,
		postController,
		basicServiceController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	sweeper := scheduler.NewResetTokenSweeper(userRepo, cfg.Scheduler.ResetTokenSweep)
	if err := sweeper.Start(); err != nil {
		logger.Fatal("Failed to start reset token sweeper", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	sweeper.Stop()
	stopWorkers()
	<-workerDone
	if asyncMail != nil {
		asyncMail.Wait()
	}

	logger.Info("Server stopped successfully")
}
