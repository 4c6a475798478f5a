package entity

import "time"

type WebhookEventStatus string

const (
	WebhookEventStatusReceived  WebhookEventStatus = "received"
	WebhookEventStatusProcessed WebhookEventStatus = "processed"
	WebhookEventStatusError     WebhookEventStatus = "error"
)

// WebhookEvent is the append-only log of gateway deliveries. A row is
// written before any processing side effect; a prior processed row for the
// same (gateway payment id, event type) makes redelivery a no-op.
type WebhookEvent struct {
	BaseSimple
	EventType        string             `db:"event_type"`
	GatewayPaymentID string             `db:"gateway_payment_id"`
	Payload          []byte             `db:"payload"`
	Status           WebhookEventStatus `db:"status"`
	ProcessedAt      *time.Time         `db:"processed_at"`
}
