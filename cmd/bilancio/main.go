// Command bilancio serves the budget tracker JSON API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/budget"
	"bilancio/internal/cli"
	apphttp "bilancio/internal/http"
	"bilancio/internal/services"
)

func main() {
	cfg := cli.Bootstrap()
	port, _ := strconv.Atoi(cfg.Port)

	repo := cli.MustOpenRepository(cfg.SQLiteDBPath)
	defer repo.Close()

	rules, err := budget.LoadRules(cfg.VirtualRulesPath)
	if err != nil {
		slog.Error("Failed to load virtual category rules", "error", err, "path", cfg.VirtualRulesPath)
		os.Exit(1)
	}
	engine := budget.NewEngine(repo, repo, repo, rules, cfg.BudgetMaxLookbackMonths)

	// The broker is optional: without it writes stay local and the worker's
	// pending scan picks them up whenever it runs.
	var publisher services.SyncPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			slog.Warn("AMQP unavailable, sync messages disabled", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
		}
	}

	srv := apphttp.NewServer(port, repo, engine, publisher)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		slog.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
	}()

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err, "port", port)
		os.Exit(1)
	}
	slog.Info("Server stopped gracefully")
}
