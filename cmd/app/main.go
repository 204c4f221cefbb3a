package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Domenick1991/flightledger/config"
	"github.com/Domenick1991/flightledger/internal/bootstrap"
	"github.com/Domenick1991/flightledger/internal/cache"
	"github.com/Domenick1991/flightledger/internal/kafka"
	"github.com/Domenick1991/flightledger/internal/ledger"
	"github.com/Domenick1991/flightledger/internal/repository"
	"github.com/Domenick1991/flightledger/internal/service/booking"
	"github.com/Domenick1991/flightledger/internal/service/customers"
	"github.com/Domenick1991/flightledger/internal/service/flights"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("load .env: %v", err)
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer closeStore()

	today, err := cfg.Ledger.ReferenceDate(time.Now())
	if err != nil {
		log.Fatalf("reference date: %v", err)
	}

	// log.Printf output goes through the same handler from here on.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	l := ledger.New(today, ledger.WithLogger(logger))

	state, err := store.Load(ctx)
	if err != nil {
		log.Fatalf("load ledger: %v", err)
	}
	if err := l.Load(state); err != nil {
		log.Fatalf("load ledger: %v", err)
	}

	var flightCache flights.FlightCache
	if cfg.Redis.Addr != "" && cfg.Redis.FlightsCacheTTL > 0 {
		redisCache := cache.NewRedisCache(cfg.Redis)
		defer redisCache.Close()
		flightCache = redisCache
	}

	var producer booking.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer kafkaProducer.Close()
		if err := kafkaProducer.CheckConnection(ctx); err != nil {
			log.Printf("WARNING: kafka unavailable, events will be dropped: %v", err)
		}
		producer = kafkaProducer
	}
	notifier := booking.NewNotifier(producer, cfg.Kafka.LedgerTopic,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic))

	flightService := flights.NewFlightService(l, flightCache, notifier)
	flightService.ResetCache(ctx)

	router := bootstrap.NewRouter(cfg, bootstrap.Services{
		Flights:   flightService,
		Customers: customers.NewCustomerService(l, notifier),
		Bookings:  booking.NewBookingService(l, notifier),
	})
	snapshotter := bootstrap.NewSnapshotter(l, store,
		time.Duration(cfg.Worker.SnapshotIntervalSeconds)*time.Second)

	if err := bootstrap.Run(ctx, cfg, router, snapshotter); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (repository.SnapshotStore, func(), error) {
	switch cfg.Ledger.Storage {
	case config.StoragePostgres:
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, nil, err
		}
		store := repository.NewPGSnapshotStore(pool)
		if err := store.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil
	case config.StorageSQLite:
		path := cfg.Ledger.SQLitePath
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.Ledger.DataDir, path)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, err
		}
		store, err := repository.OpenSQLiteSnapshotStore(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		return store, closer(store), nil
	default:
		if err := os.MkdirAll(cfg.Ledger.DataDir, 0o755); err != nil {
			return nil, nil, err
		}
		return repository.NewFileStore(cfg.Ledger.DataDir), func() {}, nil
	}
}

func closer(c io.Closer) func() {
	return func() {
		if err := c.Close(); err != nil {
			log.Printf("close store: %v", err)
		}
	}
}
