package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avishai12321/Trackera-sub000/core/cache"
	"github.com/avishai12321/Trackera-sub000/core/config"
	"github.com/avishai12321/Trackera-sub000/core/crypto"
	"github.com/avishai12321/Trackera-sub000/core/database"
	"github.com/avishai12321/Trackera-sub000/core/logger"
	"github.com/avishai12321/Trackera-sub000/core/middleware"
	"github.com/avishai12321/Trackera-sub000/modules/calendar"
	"github.com/avishai12321/Trackera-sub000/modules/calendar/provider"
	"github.com/avishai12321/Trackera-sub000/modules/timesheet"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// Run boots the full application: config, logging, storage, cache, provider
// adapters, module wiring, then the HTTP listener. It blocks until SIGINT or
// SIGTERM and drains in-flight requests before returning.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.App.LogLevel, cfg.App.Env != "development")

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer db.Close()

	c, err := cache.NewCache(cfg.Redis)
	if err != nil {
		return fmt.Errorf("init cache: %w", err)
	}
	defer c.Close()

	enc, err := crypto.NewEncryptor(cfg.Security.TokenEncryptionKey)
	if err != nil {
		return fmt.Errorf("init token encryptor: %w", err)
	}

	registry := provider.NewRegistry(cfg)
	mw := middleware.NewMiddleware(c)

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(mw.RequestIDMiddleware())

	e.GET("/health", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	employeeSvc := timesheet.Init(e, db, enc, mw)
	calendar.Init(e, db, c, enc, registry, employeeSvc, mw)

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.App.Port)
		logger.Info("Server:Run:Listening", "addr", addr, "env", cfg.App.Env)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("Server:Run:Shutdown", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(ctx)
}
