package entity

import (
	"encoding/json"

	"github.com/google/uuid"
)

type LegalCase struct {
	Base
	UserID          uuid.UUID       `db:"user_id"`
	Customer        Customer        `db:"-"`
	CaseType        string          `db:"case_type"`
	Amount          float64         `db:"amount"`
	Description     string          `db:"description"`
	ServiceMetadata json.RawMessage `db:"service_metadata"`
	Status          RecordStatus    `db:"status"`
	CalendarEventID *string         `db:"calendar_event_id"`
	MeetingLink     *string         `db:"meeting_link"`
}

func (c *LegalCase) HasCalendarEvent() bool {
	return c.CalendarEventID != nil && *c.CalendarEventID != ""
}
