package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Chinmaya-shah/evently-backend/internal/config"
	"github.com/Chinmaya-shah/evently-backend/internal/lib/sl"
	"github.com/Chinmaya-shah/evently-backend/internal/lib/smtp"
	"github.com/Chinmaya-shah/evently-backend/internal/rabbitmq"
	senderservice "github.com/Chinmaya-shah/evently-backend/internal/services/sender"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Info("starting notification-sender", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := rabbitmq.Connect(cfg.RabbitURL, cfg.ConnRetries, cfg.ConnRetryWait)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		_ = conn.Close()
	}()

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		logger.Error("failed to setup RabbitMQ channel", sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		_ = ch.Close()
	}()

	transport := smtp.NewTransport(cfg, logger)
	sender := senderservice.New(transport, logger)

	if err := rabbitmq.ConsumeMessages(ctx, ch, "notifications.purchase", sender.SendPurchaseConfirmation); err != nil {
		logger.Error("failed to start consumer", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("consuming purchase confirmations", slog.String("queue", "notifications.purchase"))

	<-ctx.Done()
	logger.Info("notification-sender shutting down gracefully")
}
