package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"fittrack/internal/backend"
	"fittrack/internal/cli"
	"fittrack/internal/coach"
	"fittrack/internal/core"
	apphttp "fittrack/internal/http"
	applog "fittrack/internal/log"
	"fittrack/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateBackend(context.Background(), backendConfig)
	if err != nil {
		logger.Error("Failed to initialize data backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	logger.Info("Data backend initialized", "backend", cfg.DataBackend)

	tracker := services.NewTrackerService(result.Backend, core.Targets{
		Calories: cfg.DefaultCalories,
		Protein:  cfg.DefaultProtein,
	})

	// The coach is optional. Without an API key the endpoint answers 503
	// and everything else works normally.
	var coachClient apphttp.CoachClient
	c, err := coach.New(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	switch {
	case err == nil:
		coachClient = c
		logger.Info("Coach initialized", "model", cfg.GeminiModel)
	case errors.Is(err, coach.ErrNotConfigured):
		logger.Warn("Coach disabled - no GEMINI_API_KEY provided")
	default:
		logger.Error("Failed to initialize coach", "error", err)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, tracker, apphttp.Options{
		Password: cfg.AppPassword,
		Coach:    coachClient,
		CacheTTL: cfg.CacheTTL,
	})

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", "error", err)
			}
		}
	})

	logger.Info("Starting fittrack server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
