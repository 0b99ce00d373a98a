package domain

import "time"

type Activity struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Slot is one bookable occurrence of an activity with a fixed seat ceiling.
// ActivityID is resolved through the owning schedule.
type Slot struct {
	ID         string
	ScheduleID string
	ActivityID string
	Weekday    time.Weekday
	StartTime  string // "15:04"
	Capacity   int
	CreatedAt  time.Time
}

// TicketCategory is a named price point belonging to one activity.
// Prices are in currency minor units and are copied into line items at
// booking time, so later edits never touch past bookings.
type TicketCategory struct {
	ID         string
	ActivityID string
	Name       string
	PriceCents int64
	CreatedAt  time.Time
}
