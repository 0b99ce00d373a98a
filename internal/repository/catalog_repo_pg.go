package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/avelichko/tourbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CatalogRepository interface {
	ListActivities(ctx context.Context) ([]domain.Activity, error)
	GetActivity(ctx context.Context, id string) (*domain.Activity, error)
	ListSlots(ctx context.Context, activityID string) ([]domain.Slot, error)
	GetSlot(ctx context.Context, id string) (*domain.Slot, error)
	// GetSlotForUpdate takes a row-level exclusive lock on the slot and
	// must be called inside a transaction. Concurrent reservations on
	// the same slot queue here.
	GetSlotForUpdate(ctx context.Context, id string) (*domain.Slot, error)
	ListCategories(ctx context.Context, activityID string) ([]domain.TicketCategory, error)
}

type PGCatalogRepository struct {
	db *pgxpool.Pool
}

func NewCatalogRepository(db *pgxpool.Pool) CatalogRepository {
	return &PGCatalogRepository{db: db}
}

const slotColumns = `s.id, s.schedule_id, sch.activity_id, s.weekday, s.start_time, s.capacity, s.created_at`

func (r *PGCatalogRepository) ListActivities(ctx context.Context) ([]domain.Activity, error) {
	rows, err := r.query(ctx, `SELECT id, name, created_at FROM activities ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	activities := make([]domain.Activity, 0)
	for rows.Next() {
		var a domain.Activity
		if err := rows.Scan(&a.ID, &a.Name, &a.CreatedAt); err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

func (r *PGCatalogRepository) GetActivity(ctx context.Context, id string) (*domain.Activity, error) {
	row := r.queryRow(ctx, `SELECT id, name, created_at FROM activities WHERE id=$1`, id)
	var a domain.Activity
	if err := row.Scan(&a.ID, &a.Name, &a.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrActivityNotFound
		}
		return nil, fmt.Errorf("get activity: %w", err)
	}
	return &a, nil
}

func (r *PGCatalogRepository) ListSlots(ctx context.Context, activityID string) ([]domain.Slot, error) {
	rows, err := r.query(ctx, `SELECT `+slotColumns+`
		FROM slots s JOIN schedules sch ON sch.id = s.schedule_id
		WHERE sch.activity_id = $1
		ORDER BY s.weekday, s.start_time`, activityID)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	slots := make([]domain.Slot, 0)
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

func (r *PGCatalogRepository) GetSlot(ctx context.Context, id string) (*domain.Slot, error) {
	return r.getSlot(ctx, id, "")
}

func (r *PGCatalogRepository) GetSlotForUpdate(ctx context.Context, id string) (*domain.Slot, error) {
	return r.getSlot(ctx, id, " FOR UPDATE OF s")
}

func (r *PGCatalogRepository) getSlot(ctx context.Context, id, suffix string) (*domain.Slot, error) {
	row := r.queryRow(ctx, `SELECT `+slotColumns+`
		FROM slots s JOIN schedules sch ON sch.id = s.schedule_id
		WHERE s.id = $1`+suffix, id)
	s, err := scanSlot(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrSlotNotFound
		}
		return nil, fmt.Errorf("get slot: %w", err)
	}
	return &s, nil
}

func (r *PGCatalogRepository) ListCategories(ctx context.Context, activityID string) ([]domain.TicketCategory, error) {
	rows, err := r.query(ctx, `SELECT id, activity_id, name, price_cents, created_at
		FROM ticket_categories WHERE activity_id = $1 ORDER BY name`, activityID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.TicketCategory, 0)
	for rows.Next() {
		var c domain.TicketCategory
		if err := rows.Scan(&c.ID, &c.ActivityID, &c.Name, &c.PriceCents, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func scanSlot(row pgx.Row) (domain.Slot, error) {
	var s domain.Slot
	var weekday int
	if err := row.Scan(&s.ID, &s.ScheduleID, &s.ActivityID, &weekday, &s.StartTime, &s.Capacity, &s.CreatedAt); err != nil {
		return domain.Slot{}, err
	}
	s.Weekday = time.Weekday(weekday)
	return s, nil
}

func (r *PGCatalogRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.db.Query(ctx, sql, args...)
}

func (r *PGCatalogRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.db.QueryRow(ctx, sql, args...)
}

var _ CatalogRepository = (*PGCatalogRepository)(nil)
