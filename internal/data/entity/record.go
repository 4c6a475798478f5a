package entity

// RecordStatus is the lifecycle shared by bookings and cases.
// pending -> confirmed and pending -> cancelled; both terminal.
type RecordStatus string

const (
	RecordStatusPending   RecordStatus = "pending"
	RecordStatusConfirmed RecordStatus = "confirmed"
	RecordStatusCancelled RecordStatus = "cancelled"
)

// EntityKind discriminates which table a payment's entity reference points at.
type EntityKind string

const (
	EntityKindBooking EntityKind = "booking"
	EntityKindCase    EntityKind = "case"
)
