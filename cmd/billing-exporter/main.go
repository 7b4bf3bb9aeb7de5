package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"billing/internal/amqp"
	"billing/internal/config"
	gsheet "billing/internal/export/google"
	applog "billing/internal/log"
	"billing/internal/storage"
	"billing/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Component: applog.ComponentExporter,
	})
	applog.SetDefault(logger)

	logger.Info("Starting billing-exporter")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the exporter")
		os.Exit(1)
	}
	if cfg.GoogleSpreadsheetID == "" {
		logger.Error("GOOGLE_SPREADSHEET_ID is required for the exporter")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", applog.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ledger, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, cfg.TransactionsSheetName, cfg.PaymentsSheetName)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	exportWorker := worker.NewExportWorker(repo, ledger)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// Consume until shutdown; broker hiccups are retried after
		// ExportInterval rather than killing the process.
		for {
			err := amqpClient.ConsumeRecordCreated(ctx, func(msg *amqp.RecordCreatedMessage) error {
				return exportWorker.HandleRecordCreated(ctx, msg)
			})
			if err == nil || errors.Is(err, context.Canceled) {
				return nil
			}

			logger.Error("Message consumption failed, retrying",
				applog.FieldError, err,
				"retry_in", cfg.ExportInterval.String())

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(cfg.ExportInterval):
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("Exporter error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Exporter stopped gracefully")
}
