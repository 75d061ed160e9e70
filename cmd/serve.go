package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"ecommerce-datagen/internal/handlers"
	"ecommerce-datagen/internal/metrics"
	"ecommerce-datagen/internal/repository"
	"ecommerce-datagen/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve generation runs, row counts and verification over HTTP",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Error("Invalid configuration")
		return err
	}

	ctx, stop := commandContext(cmd)
	defer stop()

	db, err := connect(ctx)
	if err != nil {
		return err
	}
	defer closeDB(db)

	log := logrus.NewEntry(logger)
	repo := repository.NewDatagenRepository(db)
	lock, closeLock := newRunLock(ctx)
	defer closeLock()
	publisher, closePublisher := newPublisher(ctx, log)
	defer closePublisher()
	registry := metrics.NewRegistry()

	runs := services.NewRunService(repo, lock, publisher, registry, log)
	runHandler := handlers.NewRunHandler(runs, services.NewVerifier(repo, log), cfg.Counts, cfg.Seed, log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET is empty, API routes are unauthenticated")
	}
	router := handlers.SetupRouter(handlers.NewHealthHandler(repo), runHandler, handlers.RouterOptions{
		JWTSecret:    cfg.JWTSecret,
		RateLimitRPS: cfg.RateLimitRPS,
		Metrics:      registry.Handler(),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("Starting datagen server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			log.WithError(err).Error("Failed to start server")
			return err
		}
	case <-ctx.Done():
	}

	log.Info("Shutting down datagen server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
		return err
	}
	log.Info("✓ Server stopped")
	return nil
}
