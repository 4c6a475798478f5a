package response

import (
	"time"

	"legal-booking/internal/data/entity"
)

type CheckoutResponse struct {
	EntityID      string    `json:"entity_id"`
	EntityKind    string    `json:"entity_kind"`
	PaymentID     string    `json:"payment_id"`
	QRImage       string    `json:"qr_image"`
	CopyPasteCode string    `json:"copy_paste_code"`
	Expiry        time.Time `json:"expiry"`
	// Reused is true when the duplicate-submission guard matched an existing
	// record instead of creating a new one.
	Reused bool `json:"reused,omitempty"`
}

type PaymentStatusResponse struct {
	PaymentID        string    `json:"payment_id"`
	GatewayPaymentID string    `json:"gateway_payment_id"`
	Status           string    `json:"status"`
	Amount           float64   `json:"amount"`
	EntityKind       string    `json:"entity_kind"`
	EntityID         string    `json:"entity_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func PaymentToStatusResponse(payment *entity.Payment) PaymentStatusResponse {
	return PaymentStatusResponse{
		PaymentID:        payment.ID.String(),
		GatewayPaymentID: payment.GatewayPaymentID,
		Status:           payment.Status,
		Amount:           payment.Amount,
		EntityKind:       string(payment.EntityKind),
		EntityID:         payment.EntityID.String(),
		CreatedAt:        payment.CreatedAt,
		UpdatedAt:        payment.UpdatedAt,
	}
}

type OrphanRecord struct {
	EntityID   string    `json:"entity_id"`
	EntityKind string    `json:"entity_kind"`
	UserID     string    `json:"user_id"`
	Amount     float64   `json:"amount"`
	CreatedAt  time.Time `json:"created_at"`
}

type OrphanReport struct {
	Orphans []OrphanRecord `json:"orphans"`
	Count   int            `json:"count"`
}
