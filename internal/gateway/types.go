package gateway

import (
	"fmt"
	"time"
)

// Payer identifies the paying customer at the gateway. TaxID is the
// idempotency key for payer creation: the gateway profile is reused when
// one already exists for it.
type Payer struct {
	Name  string
	Email string
	TaxID string
	Phone string
}

// ChargeRequest asks the gateway for a new payable charge. ReferenceID is
// the domain entity id, echoed back by the gateway for correlation.
type ChargeRequest struct {
	Payer       Payer
	Amount      float64
	Description string
	ReferenceID string
}

// Charge is the renderable result of a successful charge creation.
type Charge struct {
	GatewayPaymentID string
	Status           string
	QRImage          string // base64 PNG
	CopyPasteCode    string
	ExpiresAt        time.Time
}

// Error is a definitive gateway rejection. Transient failures (5xx,
// timeouts) are retried inside the client and only surface after the retry
// budget is spent.
type Error struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gateway error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("gateway error %d: %s", e.StatusCode, e.Message)
}

// Retryable reports whether the gateway failure is worth retrying.
func (e *Error) Retryable() bool {
	return e.StatusCode >= 500
}
