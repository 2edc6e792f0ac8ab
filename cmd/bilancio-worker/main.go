// Command bilancio-worker consumes transaction sync messages and mirrors
// the ledger to Google Sheets. A periodic scan of pending rows backs up
// the queue, so lost messages delay the mirror instead of breaking it.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"bilancio/internal/amqp"
	"bilancio/internal/cli"
	"bilancio/internal/config"
	"bilancio/internal/sheets"
	gsheet "bilancio/internal/sheets/google"
	"bilancio/internal/sheets/memory"
	"bilancio/internal/worker"
)

func main() {
	cfg := cli.Bootstrap()
	slog.Info("Starting bilancio-worker")

	repo := cli.MustOpenRepository(cfg.SQLiteDBPath)
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	writer, deleter, err := buildMirror(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize sheets mirror", "error", err)
		os.Exit(1)
	}

	syncWorker := worker.NewSyncWorker(repo, writer, deleter, cfg.SyncBatchSize)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		slog.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	// Rows that went pending while the worker was down.
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		slog.Error("Startup sync check failed", "error", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeTransactionSync(ctx, syncWorker.HandleSyncMessage)
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := syncWorker.ProcessPendingTransactions(ctx); err != nil {
					slog.Error("Periodic sync failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("Worker stopped gracefully")
}

// buildMirror picks the ledger mirror target. Without a spreadsheet the
// in-memory mirror keeps the sync pipeline exercised end to end.
func buildMirror(ctx context.Context, cfg *config.Config) (sheets.LedgerWriter, sheets.LedgerDeleter, error) {
	if !cfg.SheetsMirrorEnabled() {
		slog.Info("Sheets mirror disabled - no GOOGLE_SPREADSHEET_ID provided, using in-memory mirror")
		m := memory.NewMirror()
		return m, m, nil
	}

	clientJSON, err := cfg.GoogleClientJSON()
	if err != nil {
		return nil, nil, err
	}
	tokenJSON, err := cfg.GoogleTokenJSON()
	if err != nil {
		return nil, nil, err
	}

	client, err := gsheet.NewClient(ctx, gsheet.Options{
		SpreadsheetID: cfg.GoogleSpreadsheetID,
		SheetName:     cfg.GoogleSheetName,
		ClientJSON:    clientJSON,
		TokenJSON:     tokenJSON,
	})
	if err != nil {
		return nil, nil, err
	}
	return client, client, nil
}
