package adaptor

import (
	"net/http"
	"strings"

	"legal-booking/internal/usecase"
	"legal-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	service usecase.PaymentService
	log     *zap.Logger
}

func NewPaymentHandler(service usecase.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log.With(zap.String("handler", "payment")),
	}
}

// GetPaymentStatus handles GET /api/payments/{paymentId} (protected)
func (h *PaymentHandler) GetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "paymentId")
	if paymentID == "" {
		utils.ResponseBadRequest(w, "Payment ID is required", nil)
		return
	}

	status, err := h.service.GetPaymentStatus(r.Context(), paymentID)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.ResponseNotFound(w, err.Error())
			return
		}
		h.log.Error("Failed to get payment status",
			zap.Error(err),
			zap.String("payment_id", paymentID))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	utils.ResponseSuccess(w, "success", status)
}

// GetOrphans handles GET /api/admin/orphans (admin only)
func (h *PaymentHandler) GetOrphans(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.FindOrphans(r.Context())
	if err != nil {
		h.log.Error("Failed to build orphan report", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	utils.ResponseSuccess(w, "success", report)
}
