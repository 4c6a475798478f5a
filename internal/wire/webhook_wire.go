package wire

import (
	"legal-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireWebhook(r chi.Router, webhookHandler *adaptor.WebhookHandler) {
	// ==================== PUBLIC ROUTES ====================
	// POST /api/webhooks/gateway - Gateway payment status events.
	// Sender authenticity (shared secret / IP allowlist) is enforced at the
	// edge, outside this service.
	r.Post("/api/webhooks/gateway", webhookHandler.HandleGatewayEvent)
}
