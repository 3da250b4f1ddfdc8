package main

import (
	"context"
	"net/http"
	"time"

	"costbook/internal/amqp"
	"costbook/internal/cli"
	apphttp "costbook/internal/http"
	"costbook/internal/observability/metrics"
	"costbook/internal/rates"
	"costbook/internal/report"
	"costbook/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	metrics.Init()

	store := cli.OpenStore(logger, cfg.CostsDBPath)

	// Event publishing is optional; the write path works without it.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	costService := services.NewCostService(store, amqpClient)
	provider := rates.NewProvider(cfg.RatesTimeout)
	engine := report.NewEngine(store, provider, store)

	srv := apphttp.NewServer(":"+cfg.Port, costService, engine, store)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := costService.Close(); err != nil {
			logger.Error("Service close error", "error", err)
		}
	})

	logger.Info("Starting costbook server", "port", cfg.Port, "db_path", cfg.CostsDBPath)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		return
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
