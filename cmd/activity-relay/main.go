package main

import (
	"os"
	"time"

	"livrocaixa/internal/amqp"
	"livrocaixa/internal/cli"
	"livrocaixa/internal/config"
	applog "livrocaixa/internal/log"
	"livrocaixa/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	logger.Info("Starting activity-relay")

	cfg := cli.LoadConfig(logger, (*config.Config).ValidateRelay)

	journal := cli.InitJournal(logger, cfg.SQLiteDBPath)
	defer journal.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	relay := worker.NewActivityRelay(journal, amqpClient, cfg.RelayBatchSize,
		applog.ForComponent(applog.ComponentWorker))

	// Run returns once ctx is cancelled.
	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, nil)

	logger.Info("Activity relay running",
		"interval", cfg.RelayInterval,
		"batch_size", cfg.RelayBatchSize,
		"exchange", cfg.AMQPExchange)
	if err := relay.Run(ctx, cfg.RelayInterval); err != nil {
		logger.Error("Activity relay failed", "error", err)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Activity relay stopped gracefully")
}
