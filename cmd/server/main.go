package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sammywachtel/hardy-align/internal/api"
	"github.com/sammywachtel/hardy-align/internal/config"
	"github.com/sammywachtel/hardy-align/internal/forcedaligner"
	"github.com/sammywachtel/hardy-align/internal/jobs"
	"github.com/sammywachtel/hardy-align/internal/progress"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	if err := config.SetupLogging(&cfg.Logging); err != nil {
		logrus.Fatalf("Failed to setup logging: %v", err)
	}

	logrus.Info("Starting HARDY alignment service")

	aligner := forcedaligner.NewClient(forcedaligner.Config{
		ServerURL: cfg.ForcedAligner.MCPURL,
		AuthToken: cfg.ForcedAligner.AuthToken,
		Timeout:   cfg.ForcedAligner.Timeout,
	})
	if cfg.ForcedAligner.MCPURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ForcedAligner.Timeout)
		if err := aligner.Connect(ctx); err != nil {
			logrus.Errorf("Failed to connect to forced-alignment backend: %v", err)
		}
		cancel()
	} else {
		logrus.Warn("No forced-alignment MCP URL configured; /align will fail until one is set")
	}

	cache := forcedaligner.NewCache(cfg.ForcedAligner.CacheSize)

	hub := progress.NewHub()
	hub.Start()

	jobManager := jobs.NewManager(hub)

	router := api.SetupRouter(cfg, jobManager, aligner, cache, hub)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logrus.Infof("Server starting on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	hub.Stop()
	if err := aligner.Close(); err != nil {
		logrus.Errorf("Failed to close forced-alignment client: %v", err)
	}

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}
