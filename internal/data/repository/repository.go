package repository

import (
	"legal-booking/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Session      SessionRepository
	Booking      BookingRepository
	Case         CaseRepository
	Payment      PaymentRepository
	WebhookEvent WebhookEventRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Session:      NewSessionRepository(db, log),
		Booking:      NewBookingRepository(db, log),
		Case:         NewCaseRepository(db, log),
		Payment:      NewPaymentRepository(db, log),
		WebhookEvent: NewWebhookEventRepository(db, log),
	}
}
