// cmd/server/main.go
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

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/jobboard-backend/api"
	"github.com/Annany2002/jobboard-backend/config"
	"github.com/Annany2002/jobboard-backend/internal/logger"
	"github.com/Annany2002/jobboard-backend/internal/mail"
	"github.com/Annany2002/jobboard-backend/internal/storage"
)

var (
	customLog = logger.Named("server")
)

func main() {
	customLog.Info("Starting Job Board Backend server...")

	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		customLog.Fatalf("Failed to load configuration: %v", err)
	}
	if err := logger.Configure(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		customLog.Fatalf("Failed to configure logging: %v", err)
	}
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, cfg); err != nil {
		customLog.Errorf("Server stopped: %v", err)
		stop()
		os.Exit(1)
	}
}

// serve runs the API until ctx is cancelled or the listener fails. Resources
// opened here are released before it returns.
func serve(ctx context.Context, cfg *config.Config) error {
	// 2. Initialize Database
	store, err := storage.Open(cfg)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func() {
		customLog.Info("Closing database connection...")
		if err := store.Close(); err != nil {
			customLog.Warnf("Error closing database: %v", err)
		}
	}()
	if purged, err := store.PurgeExpiredTokens(ctx, time.Now()); err != nil {
		customLog.Warnf("Failed to purge expired blacklisted tokens: %v", err)
	} else if purged > 0 {
		customLog.Infof("Purged %d expired blacklisted tokens", purged)
	}

	mailer, err := mail.New(cfg.Email)
	if err != nil {
		return fmt.Errorf("configuring mail: %w", err)
	}

	// 3. Setup Router
	router, err := api.SetupRouter(store, cfg, mailer)
	if err != nil {
		return fmt.Errorf("setting up router: %w", err)
	}

	// 4. Start Server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		customLog.Infof("Server listening on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listening on port %s: %w", cfg.Server.Port, err)
		}
		return nil
	case <-ctx.Done():
	}
	customLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		customLog.Warnf("Server forced to shutdown: %v", err)
	}
	return nil
}
