package adaptor

import (
	"encoding/json"
	"net/http"
	"strings"

	"legal-booking/internal/dto/request"
	"legal-booking/internal/usecase"
	"legal-booking/pkg/utils"

	"go.uber.org/zap"
)

type CheckoutHandler struct {
	service usecase.CheckoutService
	log     *zap.Logger
}

func NewCheckoutHandler(service usecase.CheckoutService, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		log:     log.With(zap.String("handler", "checkout")),
	}
}

// ProcessCheckout handles POST /api/checkout (protected)
func (h *CheckoutHandler) ProcessCheckout(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	checkout, err := h.service.ProcessCheckout(r.Context(), userID.String(), &req)
	if err != nil {
		h.handleServiceError(w, err, "process checkout")
		return
	}

	utils.ResponseCreated(w, "success", checkout)
}

// handleServiceError maps checkout errors to HTTP responses
func (h *CheckoutHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	errMsg := err.Error()

	switch {
	case strings.Contains(errMsg, "validation failed"):
		h.log.Warn(operation+" validation failed",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseBadRequest(w, errMsg, nil)

	case strings.Contains(errMsg, "invalid"):
		h.log.Warn("Invalid input for "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseBadRequest(w, errMsg, nil)

	case strings.Contains(errMsg, "cannot book"):
		h.log.Warn(operation+" failed - slot taken",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseBadRequest(w, errMsg, nil)

	case strings.Contains(errMsg, "gateway"):
		h.log.Error(operation+" failed at payment gateway",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseJSON(w, http.StatusBadGateway, false, "Payment gateway unavailable, please retry", nil, nil)

	default:
		h.log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
