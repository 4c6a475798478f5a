package adaptor

import (
	"legal-booking/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Checkout *CheckoutHandler
	Webhook  *WebhookHandler
	Payment  *PaymentHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Checkout: NewCheckoutHandler(service.Checkout, log),
		Webhook:  NewWebhookHandler(service.Webhook, log),
		Payment:  NewPaymentHandler(service.Payment, log),
	}
}
