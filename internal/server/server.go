package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweetcrumb/shop/app/routes"
	"github.com/sweetcrumb/shop/config"
	"github.com/sweetcrumb/shop/pkg/app"
	"github.com/sweetcrumb/shop/pkg/cache"
	"github.com/sweetcrumb/shop/pkg/database"
	"github.com/sweetcrumb/shop/pkg/logger"
)

// Start boots the whole application: config, logging, database, cache,
// the HTTP kernel, then listens until SIGINT/SIGTERM and drains.
func Start() error {
	if err := config.Load(); err != nil {
		return err
	}

	closeLogger, err := logger.Setup()
	if err != nil {
		return err
	}
	defer closeLogger()

	if err := database.Connect(); err != nil {
		return err
	}
	if err := cache.Connect(); err != nil {
		// Redis degrades to no caching, never blocks boot.
		logger.Warn("cache unavailable, continuing without it", "error", err)
	}

	handler := app.BuildHandler(routes.RegisterAPI)

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", config.AppEnv())
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
