package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/colocash/backend/internal/auth"
	"github.com/colocash/backend/internal/config"
	"github.com/colocash/backend/internal/httpapi"
	"github.com/colocash/backend/internal/notify"
	"github.com/colocash/backend/internal/service"
	"github.com/colocash/backend/internal/storage/sqlite"
	"github.com/colocash/backend/pkg/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	logging.Setup()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("storage initialized", "database", cfg.DBPath)

	var dispatcher notify.Dispatcher = notify.Noop{}
	if cfg.AMQPURL != "" {
		amqpDispatcher, err := notify.NewAMQPDispatcher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			slog.Error("failed to connect to AMQP", "error", err)
			os.Exit(1)
		}
		dispatcher = amqpDispatcher
		slog.Info("event publishing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}
	defer dispatcher.Close()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenDuration)
	locks := service.NewLedgerLocks()

	server := httpapi.NewServer(
		":"+cfg.Port,
		jwtManager,
		service.NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager),
		service.NewColocationService(store, cfg.Currency),
		service.NewExpenseService(store, locks, dispatcher),
		service.NewPaymentService(store, locks, dispatcher),
		service.NewBalanceService(store),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
