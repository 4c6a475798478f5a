package entity

import (
	"time"

	"github.com/google/uuid"
)

type Booking struct {
	Base
	UserID          uuid.UUID    `db:"user_id"`
	Customer        Customer     `db:"-"`
	BookingDate     time.Time    `db:"booking_date"`
	BookingTime     string       `db:"booking_time"` // HH:MM
	Amount          float64      `db:"amount"`
	Description     string       `db:"description"`
	Status          RecordStatus `db:"status"`
	CalendarEventID *string      `db:"calendar_event_id"`
	MeetingLink     *string      `db:"meeting_link"`
}

// HasCalendarEvent reports whether a meeting was already created for this
// booking. A stored event id is the idempotency guard for the calendar
// trigger.
func (b *Booking) HasCalendarEvent() bool {
	return b.CalendarEventID != nil && *b.CalendarEventID != ""
}
