package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/robfig/cron/v3"

	"ourtime-api/core/cache"
	"ourtime-api/core/config"
	"ourtime-api/core/constants"
	"ourtime-api/core/database"
	"ourtime-api/core/logger"
	"ourtime-api/core/mailer"
	"ourtime-api/core/middleware"
	"ourtime-api/core/worker"
	"ourtime-api/modules/auth"
	"ourtime-api/modules/dashboard"
	"ourtime-api/modules/event"
	"ourtime-api/modules/notification"
	"ourtime-api/modules/participant"
)

// Soft-deleted events are hard-purged after this long.
const purgeRetention = 30 * 24 * time.Hour

// Run boots the whole service: config, logging, storage, queue, HTTP
// transport and the background jobs. Blocks until shutdown.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logFormat := "text"
	if cfg.Server.LogJSON {
		logFormat = "json"
	}
	logger.Init(cfg.Server.LogLevel, logFormat)

	if _, err := database.InitDB(database.DatabaseConfig{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		DBName:   cfg.Database.DBName,
		SSLMode:  cfg.Database.SSLMode,
	}); err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	db := database.GetDB()

	redisCache, err := cache.InitCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return fmt.Errorf("init cache: %w", err)
	}

	queue := worker.InitClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer queue.Close()

	mail := mailer.NewSMTPMailer(cfg.Mail)

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.RequestID())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete},
	}))
	e.Use(echoMiddleware.TimeoutWithConfig(echoMiddleware.TimeoutConfig{
		Timeout: constants.DefaultRequestTimeout,
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	mw := middleware.NewMiddleware(redisCache)
	mux := asynq.NewServeMux()

	auth.Init(e, db, redisCache, mw)
	eventService := event.Init(e, db, redisCache, mw)
	participant.Init(e, db, redisCache, mw)
	dashboard.Init(e, db, redisCache, mw)
	notification.Init(e, db, mw, queue, mail, cfg.FrontendURL, mux)

	// Nightly purge of events soft-deleted more than the retention ago.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("0 4 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultTimeout)
		defer cancel()
		purged, err := eventService.PurgeDeleted(ctx, purgeRetention)
		if err != nil {
			logger.Error("Server:PurgeJob:Error:", err)
			return
		}
		logger.Info("Server:PurgeJob:Done", "purged", purged)
	}); err != nil {
		return fmt.Errorf("schedule purge job: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	go func() {
		if err := worker.RunServer(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, mux); err != nil {
			logger.Error("Server:Worker:Error:", err)
		}
	}()

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("Server:Start:Error:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server:Shutdown:Starting")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("Server:Shutdown:Complete")
	return nil
}
