package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avelichko/tourbooking/internal/clock"
	"github.com/avelichko/tourbooking/internal/domain"
	"github.com/avelichko/tourbooking/internal/kafka"
	"github.com/avelichko/tourbooking/internal/pricing"
	"github.com/avelichko/tourbooking/internal/repository"
	"github.com/google/uuid"
)

type ReservationUseCase interface {
	Reserve(ctx context.Context, input ReserveInput) (*domain.Booking, error)
	GetBooking(ctx context.Context, id string) (*domain.Booking, error)
	CancelBooking(ctx context.Context, id string) (*domain.Booking, error)
	Availability(ctx context.Context, slotID string) (SlotAvailability, error)
	CancelExpiredBookings(ctx context.Context) ([]domain.Booking, error)
}

type Cache interface {
	InvalidateSlots(ctx context.Context, activityID string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type ReserveInput struct {
	SlotID     string
	ActivityID string
	Items      []pricing.RequestedItem
	Contact    domain.Contact
	UserID     string
}

// SlotAvailability reports remaining seats for one slot.
type SlotAvailability struct {
	SlotID    string `json:"slot_id"`
	Capacity  int    `json:"capacity"`
	Occupied  int    `json:"occupied"`
	Remaining int    `json:"remaining"`
}

const (
	defaultMaxRetries   = 3
	defaultRetryBackoff = 50 * time.Millisecond
)

// ReservationService is the only code path allowed to create line
// items. Reserve runs the capacity check and the booking insert in one
// transaction holding a row lock on the slot, so concurrent requests
// against the same slot serialize while unrelated slots proceed in
// parallel.
type ReservationService struct {
	bookings           repository.BookingRepository
	catalog            repository.CatalogRepository
	cache              Cache
	producer           Producer
	logger             *slog.Logger
	clock              clock.Clock
	bookingTopic       string
	notificationsTopic string
	confirmationTTL    time.Duration
	maxRetries         int
	retryBackoff       time.Duration
}

type ReservationServiceOption func(*ReservationService)

func WithNotificationsTopic(topic string) ReservationServiceOption {
	return func(s *ReservationService) {
		s.notificationsTopic = topic
	}
}

// WithConfirmationTTL makes new bookings start PENDING with an expiry
// deadline instead of CONFIRMED; the worker sweep cancels them once the
// deadline passes. Zero keeps immediate confirmation.
func WithConfirmationTTL(d time.Duration) ReservationServiceOption {
	return func(s *ReservationService) {
		s.confirmationTTL = d
	}
}

// WithRetryPolicy bounds the internal retries on transient transaction
// conflicts. Backoff grows linearly per attempt.
func WithRetryPolicy(maxRetries int, backoff time.Duration) ReservationServiceOption {
	return func(s *ReservationService) {
		if maxRetries >= 0 {
			s.maxRetries = maxRetries
		}
		if backoff > 0 {
			s.retryBackoff = backoff
		}
	}
}

func WithClock(clk clock.Clock) ReservationServiceOption {
	return func(s *ReservationService) {
		s.clock = clk
	}
}

func WithLogger(logger *slog.Logger) ReservationServiceOption {
	return func(s *ReservationService) {
		s.logger = logger
	}
}

func NewReservationService(
	bookings repository.BookingRepository,
	catalog repository.CatalogRepository,
	cache Cache,
	producer Producer,
	bookingTopic string,
	opts ...ReservationServiceOption,
) *ReservationService {
	service := &ReservationService{
		bookings:     bookings,
		catalog:      catalog,
		cache:        cache,
		producer:     producer,
		logger:       slog.Default(),
		clock:        clock.NewSystem(),
		bookingTopic: bookingTopic,
		maxRetries:   defaultMaxRetries,
		retryBackoff: defaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Reserve atomically checks capacity and commits the booking with its
// priced line items. Under contention the winner is whichever
// transaction takes the slot lock first; admission order is not
// guaranteed to match arrival order. Transient conflicts are retried up
// to the configured budget, then surfaced as ErrRetryExhausted.
func (s *ReservationService) Reserve(ctx context.Context, input ReserveInput) (*domain.Booking, error) {
	if input.Contact.Email == "" {
		return nil, errors.New("contact email is required")
	}

	var booking *domain.Booking
	var activityID string
	for attempt := 0; ; attempt++ {
		b, actID, err := s.tryReserve(ctx, input)
		if err == nil {
			booking, activityID = b, actID
			break
		}
		if !errors.Is(err, domain.ErrConflictRetry) {
			return nil, err
		}
		if attempt >= s.maxRetries {
			return nil, fmt.Errorf("%w after %d attempts: %v", domain.ErrRetryExhausted, attempt+1, err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt+1) * s.retryBackoff):
		}
	}

	// Booking is durable at this point. Notifications and cache
	// invalidation are best-effort and must not undo the commit.
	s.publish(ctx, "booking_confirmed", booking)
	s.invalidateSlots(ctx, activityID)
	return booking, nil
}

func (s *ReservationService) tryReserve(ctx context.Context, input ReserveInput) (*domain.Booking, string, error) {
	var booking *domain.Booking
	var activityID string

	err := s.bookings.WithTx(ctx, func(txCtx context.Context) error {
		slot, err := s.catalog.GetSlotForUpdate(txCtx, input.SlotID)
		if err != nil {
			return err
		}
		if input.ActivityID != "" && slot.ActivityID != input.ActivityID {
			return fmt.Errorf("slot %s does not belong to activity %s: %w", slot.ID, input.ActivityID, domain.ErrSlotNotFound)
		}
		activityID = slot.ActivityID

		categories, err := s.catalog.ListCategories(txCtx, slot.ActivityID)
		if err != nil {
			return err
		}
		quote, err := pricing.Price(slot.ActivityID, categories, input.Items)
		if err != nil {
			return err
		}

		requested := 0
		for _, item := range quote.Items {
			requested += item.Quantity
		}

		occupied, err := s.bookings.SumOccupancy(txCtx, slot.ID)
		if err != nil {
			return err
		}
		if occupied+requested > slot.Capacity {
			return &domain.CapacityError{
				SlotID:    slot.ID,
				Requested: requested,
				Remaining: slot.Capacity - occupied,
			}
		}

		booking = s.newBooking(slot.ID, input, quote)
		return s.bookings.Create(txCtx, booking)
	})
	if err != nil {
		return nil, "", err
	}
	return booking, activityID, nil
}

func (s *ReservationService) newBooking(slotID string, input ReserveInput, quote pricing.Quote) *domain.Booking {
	booking := &domain.Booking{
		ID:         uuid.NewString(),
		Status:     domain.BookingStatusConfirmed,
		Contact:    input.Contact,
		TotalCents: quote.TotalCents,
		UserID:     input.UserID,
		Items:      quote.Items,
	}
	if s.confirmationTTL > 0 {
		booking.Status = domain.BookingStatusPending
		booking.ExpiresAt = s.clock.Now().Add(s.confirmationTTL)
	}
	for i := range booking.Items {
		booking.Items[i].ID = uuid.NewString()
		booking.Items[i].BookingID = booking.ID
		booking.Items[i].SlotID = slotID
	}
	return booking
}

func (s *ReservationService) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	return s.bookings.Get(ctx, id)
}

// CancelBooking frees the booking's seats. Cancelling an already
// cancelled booking is a no-op.
func (s *ReservationService) CancelBooking(ctx context.Context, id string) (*domain.Booking, error) {
	current, err := s.bookings.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.BookingStatusCancelled {
		return current, nil
	}

	updated, err := s.bookings.UpdateStatus(ctx, id, domain.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "booking_cancelled", updated)
	s.invalidateSlotsForBooking(ctx, updated)
	return updated, nil
}

// Availability computes remaining seats outside the reservation guard;
// it is a plain read and may be stale by the time the caller acts on it.
func (s *ReservationService) Availability(ctx context.Context, slotID string) (SlotAvailability, error) {
	slot, err := s.catalog.GetSlot(ctx, slotID)
	if err != nil {
		return SlotAvailability{}, err
	}
	occupied, err := s.bookings.SumOccupancy(ctx, slotID)
	if err != nil {
		return SlotAvailability{}, err
	}
	return SlotAvailability{
		SlotID:    slot.ID,
		Capacity:  slot.Capacity,
		Occupied:  occupied,
		Remaining: slot.Capacity - occupied,
	}, nil
}

// CancelExpiredBookings sweeps PENDING bookings past their deadline.
// Called periodically by the worker.
func (s *ReservationService) CancelExpiredBookings(ctx context.Context) ([]domain.Booking, error) {
	cancelled, err := s.bookings.CancelExpiredBefore(ctx, s.clock.Now())
	if err != nil {
		return nil, err
	}
	for i := range cancelled {
		s.publish(ctx, "booking_expired", &cancelled[i])
		s.invalidateSlotsForBooking(ctx, &cancelled[i])
	}
	return cancelled, nil
}

func (s *ReservationService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:         eventType,
		BookingID:    booking.ID,
		ContactEmail: booking.Contact.Email,
		Status:       string(booking.Status),
		TotalCents:   booking.TotalCents,
	}
	for _, item := range booking.Items {
		event.SlotID = item.SlotID
		event.Items = append(event.Items, kafka.BookingEventItem{
			CategoryID:     item.CategoryID,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
	}

	if err := s.producer.Publish(ctx, s.bookingTopic, booking.ID, event); err != nil {
		s.logger.Warn("publish booking event failed", "type", eventType, "booking_id", booking.ID, "error", err)
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, booking.ID, event); err != nil {
			s.logger.Warn("publish notification failed", "booking_id", booking.ID, "error", err)
		}
	}
}

func (s *ReservationService) invalidateSlotsForBooking(ctx context.Context, booking *domain.Booking) {
	if len(booking.Items) == 0 {
		return
	}
	slot, err := s.catalog.GetSlot(ctx, booking.Items[0].SlotID)
	if err != nil {
		return
	}
	s.invalidateSlots(ctx, slot.ActivityID)
}

func (s *ReservationService) invalidateSlots(ctx context.Context, activityID string) {
	if s.cache == nil || activityID == "" {
		return
	}
	if err := s.cache.InvalidateSlots(ctx, activityID); err != nil {
		s.logger.Warn("invalidate slot cache failed", "activity_id", activityID, "error", err)
	}
}

var _ ReservationUseCase = (*ReservationService)(nil)
