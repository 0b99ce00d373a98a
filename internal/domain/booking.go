package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// CountsTowardOccupancy reports whether a booking in this status still
// holds seats. Cancelled bookings free their capacity immediately.
func (s BookingStatus) CountsTowardOccupancy() bool {
	return s != BookingStatusCancelled
}

type Contact struct {
	Name  string
	Email string
	Phone string
}

type Booking struct {
	ID         string
	Status     BookingStatus
	Contact    Contact
	TotalCents int64
	UserID     string
	Items      []LineItem
	// ExpiresAt is set only for PENDING bookings; the worker cancels
	// them once the deadline passes.
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LineItem is one priced request for Quantity seats of one ticket
// category against one slot. UnitPriceCents is a snapshot taken at
// booking time and is never re-read from the category.
type LineItem struct {
	ID             string
	BookingID      string
	SlotID         string
	CategoryID     string
	Quantity       int
	UnitPriceCents int64
}

// SubtotalCents is Quantity * UnitPriceCents; integer minor units, so
// the sum over items is exact.
func (li LineItem) SubtotalCents() int64 {
	return int64(li.Quantity) * li.UnitPriceCents
}
