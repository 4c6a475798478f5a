package adaptor

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"legal-booking/internal/dto/request"
	"legal-booking/internal/usecase"
	"legal-booking/pkg/utils"

	"go.uber.org/zap"
)

type WebhookHandler struct {
	service usecase.WebhookService
	log     *zap.Logger
}

func NewWebhookHandler(service usecase.WebhookService, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		log:     log.With(zap.String("handler", "webhook")),
	}
}

// HandleGatewayEvent handles POST /api/webhooks/gateway (public).
// Responds 400 only when the payload is missing its payment id or event
// type; every other outcome is acknowledged with 200 so the gateway never
// enters a redelivery storm over a condition we cannot fix by retrying.
func (h *WebhookHandler) HandleGatewayEvent(w http.ResponseWriter, r *http.Request) {
	rawPayload, err := io.ReadAll(r.Body)
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	var req request.WebhookRequest
	if err := json.Unmarshal(rawPayload, &req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.service.HandleEvent(r.Context(), &req, rawPayload); err != nil {
		if errors.Is(err, usecase.ErrMalformedEvent) {
			utils.ResponseBadRequest(w, "Event and payment id are required", nil)
			return
		}
		// Absorbed by the service; kept as a safety net.
		h.log.Error("Webhook processing error", zap.Error(err))
	}

	utils.ResponseSuccess(w, "event received", nil)
}
