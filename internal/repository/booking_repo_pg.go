package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/avelichko/tourbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	// WithTx runs fn inside one transaction; every repository call made
	// with the passed context joins it. The reservation path wraps the
	// slot lock, the occupancy read and the insert in one WithTx.
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	// SumOccupancy returns the seats held against a slot by bookings in
	// a non-cancelled status.
	SumOccupancy(ctx context.Context, slotID string) (int, error)
	Create(ctx context.Context, booking *domain.Booking) error
	Get(ctx context.Context, id string) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) (*domain.Booking, error)
	// CancelExpiredBefore cancels PENDING bookings whose expiry deadline
	// has passed, freeing their seats.
	CancelExpiredBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

func (r *PGBookingRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.db, fn)
}

func (r *PGBookingRepository) SumOccupancy(ctx context.Context, slotID string) (int, error) {
	var total int
	err := r.queryRow(ctx, `
		SELECT COALESCE(SUM(li.quantity), 0)
		FROM line_items li
		JOIN bookings b ON b.id = li.booking_id
		WHERE li.slot_id = $1 AND b.status <> $2`, slotID, domain.BookingStatusCancelled).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum occupancy: %w", err)
	}
	return total, nil
}

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	var expiresAt *time.Time
	if !booking.ExpiresAt.IsZero() {
		expiresAt = &booking.ExpiresAt
	}
	err := r.queryRow(ctx, `
		INSERT INTO bookings (id, status, contact_name, contact_email, contact_phone, total_cents, user_id, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8)
		RETURNING created_at, updated_at`,
		booking.ID, booking.Status, booking.Contact.Name, booking.Contact.Email,
		booking.Contact.Phone, booking.TotalCents, booking.UserID, expiresAt).
		Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	for i := range booking.Items {
		item := &booking.Items[i]
		item.BookingID = booking.ID
		if _, err := r.exec(ctx, `
			INSERT INTO line_items (id, booking_id, slot_id, category_id, quantity, unit_price_cents)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			item.ID, item.BookingID, item.SlotID, item.CategoryID, item.Quantity, item.UnitPriceCents); err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrSlotNotFound
			}
			return fmt.Errorf("insert line item: %w", err)
		}
	}
	return nil
}

func (r *PGBookingRepository) Get(ctx context.Context, id string) (*domain.Booking, error) {
	row := r.queryRow(ctx, `
		SELECT id, status, contact_name, contact_email, contact_phone, total_cents,
		       COALESCE(user_id, ''), expires_at, created_at, updated_at
		FROM bookings WHERE id = $1`, id)
	b, err := scanBooking(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}

	items, err := r.listItems(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Items = items
	return b, nil
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus) (*domain.Booking, error) {
	row := r.queryRow(ctx, `
		UPDATE bookings SET status = $1, updated_at = now()
		WHERE id = $2
		RETURNING id, status, contact_name, contact_email, contact_phone, total_cents,
		          COALESCE(user_id, ''), expires_at, created_at, updated_at`,
		status, id)
	b, err := scanBooking(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("update booking status: %w", err)
	}

	items, err := r.listItems(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Items = items
	return b, nil
}

func (r *PGBookingRepository) CancelExpiredBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	rows, err := r.query(ctx, `
		UPDATE bookings SET status = $1, updated_at = now()
		WHERE status = $2 AND expires_at IS NOT NULL AND expires_at <= $3
		RETURNING id, status, contact_name, contact_email, contact_phone, total_cents,
		          COALESCE(user_id, ''), expires_at, created_at, updated_at`,
		domain.BookingStatusCancelled, domain.BookingStatusPending, deadline)
	if err != nil {
		return nil, fmt.Errorf("cancel expired bookings: %w", err)
	}
	defer rows.Close()

	var cancelled []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		cancelled = append(cancelled, *b)
	}
	return cancelled, rows.Err()
}

func (r *PGBookingRepository) listItems(ctx context.Context, bookingID string) ([]domain.LineItem, error) {
	rows, err := r.query(ctx, `
		SELECT id, booking_id, slot_id, category_id, quantity, unit_price_cents
		FROM line_items WHERE booking_id = $1 ORDER BY id`, bookingID)
	if err != nil {
		return nil, fmt.Errorf("list line items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.LineItem, 0)
	for rows.Next() {
		var li domain.LineItem
		if err := rows.Scan(&li.ID, &li.BookingID, &li.SlotID, &li.CategoryID, &li.Quantity, &li.UnitPriceCents); err != nil {
			return nil, err
		}
		items = append(items, li)
	}
	return items, rows.Err()
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	var expiresAt *time.Time
	if err := row.Scan(&b.ID, &b.Status, &b.Contact.Name, &b.Contact.Email, &b.Contact.Phone,
		&b.TotalCents, &b.UserID, &expiresAt, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	if expiresAt != nil {
		b.ExpiresAt = *expiresAt
	}
	return &b, nil
}

func (r *PGBookingRepository) exec(ctx context.Context, sql string, args ...any) (int64, error) {
	if tx := txFromContext(ctx); tx != nil {
		tag, err := tx.Exec(ctx, sql, args...)
		return tag.RowsAffected(), err
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	return tag.RowsAffected(), err
}

func (r *PGBookingRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.db.Query(ctx, sql, args...)
}

func (r *PGBookingRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.db.QueryRow(ctx, sql, args...)
}

var _ BookingRepository = (*PGBookingRepository)(nil)
