// The notifier consumes ledger events from the queue the server publishes
// to. It currently just logs them; delivery channels (mail, push) hang off
// the handler.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/colocash/backend/internal/config"
	"github.com/colocash/backend/internal/notify"
	"github.com/colocash/backend/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	logging.Setup()

	cfg := config.Load()
	if cfg.AMQPURL == "" {
		slog.Error("AMQP_URL must be set for the notifier")
		os.Exit(1)
	}

	dispatcher, err := notify.NewAMQPDispatcher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		slog.Error("failed to connect to AMQP", "error", err)
		os.Exit(1)
	}
	defer dispatcher.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = dispatcher.Consume(ctx, func(event *notify.Event) error {
		slog.Info("ledger event",
			"type", event.Type,
			"colocation_id", event.ColocationID,
			"entity_id", event.EntityID,
			"actor_id", event.ActorID,
			"at", event.Timestamp)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("consumer stopped", "error", err)
		os.Exit(1)
	}
}
