package wire

import (
	"legal-booking/internal/adaptor"
	"legal-booking/internal/data/repository"
	"legal-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wirePayment(
	r chi.Router,
	paymentHandler *adaptor.PaymentHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))

		// GET /api/payments/{paymentId} - Current payment record status
		r.Get("/api/payments/{paymentId}", paymentHandler.GetPaymentStatus)
	})

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/orphans", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))
		r.Use(middleware.Admin(log))

		// GET /api/admin/orphans - Pending records with no linked payment
		r.Get("/", paymentHandler.GetOrphans)
	})
}
