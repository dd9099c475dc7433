package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"lambda-http-adapter/internal/config"
	"lambda-http-adapter/pkg/server"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	if err := config.SetupLogging(cfg); err != nil {
		logrus.Fatalf("Failed to configure logging: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize dependencies
	container, err := server.NewContainer(ctx, cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize container: %v", err)
	}
	defer container.Close()

	if cfg.Storage.Type == "local" {
		go func() {
			if err := container.WatchStatic(ctx, cfg.Storage.BasePath); err != nil {
				logrus.WithError(err).Error("Static watcher stopped")
			}
		}()
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.NewEngine(container),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	logrus.WithFields(logrus.Fields{
		"port":     cfg.Port,
		"upstream": cfg.Upstream.URL,
		"static":   cfg.Storage.BasePath,
	}).Info("Emulator started")

	<-ctx.Done()
	logrus.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Fatalf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}
