package usecase

import (
	"legal-booking/internal/data/repository"
	"legal-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Checkout CheckoutService
	Webhook  WebhookService
	Payment  PaymentService
}

func NewService(repo *repository.Repository, gw PaymentGateway, cal MeetingScheduler, config *utils.Config, log *zap.Logger) *Service {
	return &Service{
		Checkout: NewCheckoutService(repo, gw, config, log),
		Webhook:  NewWebhookService(repo, cal, DefaultStatusMapping(), config, log),
		Payment:  NewPaymentService(repo, log),
	}
}
