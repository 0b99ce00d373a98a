package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avelichko/tourbooking/config"
	"github.com/avelichko/tourbooking/internal/email"
	"github.com/avelichko/tourbooking/internal/kafka"
	"github.com/avelichko/tourbooking/internal/repository"
	"github.com/avelichko/tourbooking/internal/service/booking"
	"github.com/jackc/pgx/v5/pgxpool"
	kafkaGo "github.com/segmentio/kafka-go"
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

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	catalogRepo := repository.NewCatalogRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	reservationService := booking.NewReservationService(
		bookingRepo,
		catalogRepo,
		nil,
		producer,
		cfg.Kafka.BookingTopic,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithLogger(logger),
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	emailSender := email.NewSender(logger)

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.BookingEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				logger.Warn("decode event", "error", err)
				return nil
			}
			return emailSender.Send(ctx, event)
		}); err != nil {
			logger.Warn("consumer stopped", "error", err)
		}
	}()

	sweepEvery := time.Duration(cfg.Worker.ExpirationSweepMinutes) * time.Minute
	if sweepEvery <= 0 {
		sweepEvery = time.Minute
	}
	expireTicker := time.NewTicker(sweepEvery)
	defer expireTicker.Stop()

	for {
		select {
		case <-expireTicker.C:
			cancelled, err := reservationService.CancelExpiredBookings(ctx)
			if err != nil {
				logger.Error("cancel expired bookings", "error", err)
				continue
			}
			if len(cancelled) > 0 {
				logger.Info("cancelled expired bookings", "count", len(cancelled))
			}
		case <-ctx.Done():
			logger.Info("shutting down")
			return
		}
	}
}
