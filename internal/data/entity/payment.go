package entity

import (
	"github.com/google/uuid"
)

// Payment is the ledger row linking a gateway charge back to the domain
// record it pays for. The (EntityKind, EntityID) pair is written once at
// creation; reconciliation never has to guess which table to probe.
type Payment struct {
	Base
	GatewayPaymentID string     `db:"gateway_payment_id"`
	UserID           uuid.UUID  `db:"user_id"`
	Amount           float64    `db:"amount"`
	Status           string     `db:"status"` // gateway-native status string
	EntityKind       EntityKind `db:"entity_kind"`
	EntityID         uuid.UUID  `db:"entity_id"`
}
