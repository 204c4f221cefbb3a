package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/flightledger/config"
	"github.com/Domenick1991/flightledger/internal/email"
	"github.com/Domenick1991/flightledger/internal/kafka"
	"github.com/joho/godotenv"
)

// The worker turns ledger notifications into customer emails.
func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("load .env: %v", err)
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.NotificationsTopic == "" {
		log.Fatalf("worker needs kafka.brokers and kafka.notifications_topic")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)

	sender := email.NewSender(cfg.Mail)
	notify := sender.Handler(cfg.Worker.SendAttempts, time.Duration(cfg.Worker.SendRetryMillis)*time.Millisecond)

	log.Printf("consuming %s", cfg.Kafka.NotificationsTopic)
	err = consumer.Consume(ctx, kafka.EventHandler(notify))
	if cerr := consumer.Close(); cerr != nil {
		log.Printf("close consumer: %v", cerr)
	}
	// The failed message is still uncommitted; exit non-zero so the
	// supervisor restarts the worker and it is fetched again.
	if err != nil && ctx.Err() == nil {
		log.Fatalf("consumer stopped: %v", err)
	}
	log.Printf("shutting down")
}
