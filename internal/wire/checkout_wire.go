package wire

import (
	"legal-booking/internal/adaptor"
	"legal-booking/internal/data/repository"
	"legal-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireCheckout(
	r chi.Router,
	checkoutHandler *adaptor.CheckoutHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, log))

		// POST /api/checkout - Start a booking or case checkout
		r.Post("/api/checkout", checkoutHandler.ProcessCheckout)
	})
}
