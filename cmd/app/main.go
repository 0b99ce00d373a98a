package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avelichko/tourbooking/config"
	"github.com/avelichko/tourbooking/internal/bootstrap"
	"github.com/avelichko/tourbooking/internal/cache"
	"github.com/avelichko/tourbooking/internal/kafka"
	"github.com/avelichko/tourbooking/internal/repository"
	"github.com/avelichko/tourbooking/internal/service/booking"
	"github.com/avelichko/tourbooking/internal/service/catalog"
	"github.com/avelichko/tourbooking/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Error("connect postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := migrations.Apply(ctx, pool); err != nil {
		logger.Error("apply migrations", "error", err)
		os.Exit(1)
	}

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.CatalogCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	catalogRepo := repository.NewCatalogRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)

	catalogService := catalog.NewCatalogService(catalogRepo, redisCache)
	reservationService := booking.NewReservationService(
		bookingRepo,
		catalogRepo,
		redisCache,
		producer,
		cfg.Kafka.BookingTopic,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithConfirmationTTL(time.Duration(cfg.Booking.ConfirmationTTLMinutes)*time.Minute),
		booking.WithRetryPolicy(cfg.Booking.MaxConflictRetries, time.Duration(cfg.Booking.RetryBackoffMillis)*time.Millisecond),
		booking.WithLogger(logger),
	)

	if err := bootstrap.Run(ctx, cfg, logger, catalogService, reservationService); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
