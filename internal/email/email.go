package email

import (
	"context"
	"log/slog"

	"github.com/avelichko/tourbooking/internal/kafka"
	"github.com/avelichko/tourbooking/internal/money"
)

// Sender delivers booking confirmations. The transport is a stub; the
// worker consumes notification events and hands them here.
type Sender struct {
	logger *slog.Logger
}

func NewSender(logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{logger: logger}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	s.logger.Info("send booking email",
		"to", event.ContactEmail,
		"type", event.Type,
		"booking_id", event.BookingID,
		"slot_id", event.SlotID,
		"total", money.FormatCents(event.TotalCents),
	)
	return nil
}
