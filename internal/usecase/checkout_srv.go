package usecase

import (
	"context"
	"fmt"
	"time"

	"legal-booking/internal/data/entity"
	"legal-booking/internal/data/repository"
	"legal-booking/internal/dto/request"
	"legal-booking/internal/dto/response"
	"legal-booking/internal/gateway"
	"legal-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentGateway is the slice of the gateway client the orchestrator needs.
type PaymentGateway interface {
	CreateCharge(ctx context.Context, req gateway.ChargeRequest) (*gateway.Charge, error)
}

type CheckoutService interface {
	ProcessCheckout(ctx context.Context, userID string, req *request.CheckoutRequest) (*response.CheckoutResponse, error)
}

type checkoutService struct {
	repo    *repository.Repository
	gateway PaymentGateway
	config  *utils.Config
	log     *zap.Logger
}

func NewCheckoutService(repo *repository.Repository, gw PaymentGateway, config *utils.Config, log *zap.Logger) CheckoutService {
	return &checkoutService{
		repo:    repo,
		gateway: gw,
		config:  config,
		log:     log.With(zap.String("service", "checkout")),
	}
}

// ProcessCheckout runs the checkout saga: create (or reuse) the domain
// record, create the gateway charge tagged with the record id, write the
// payment ledger row, return the payable payload. Stages are not rolled
// back; a failure after record creation leaves a pending orphan that the
// orphan report surfaces.
func (s *checkoutService) ProcessCheckout(ctx context.Context, userID string, req *request.CheckoutRequest) (*response.CheckoutResponse, error) {
	// Validate request
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Checkout validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	if req.Amount < s.config.Checkout.MinAmount {
		return nil, fmt.Errorf("validation failed: amount %.2f is below the minimum %.2f", req.Amount, s.config.Checkout.MinAmount)
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	customer := entity.Customer{
		Name:  req.Customer.Name,
		Email: req.Customer.Email,
		TaxID: req.Customer.TaxID,
		Phone: req.Customer.Phone,
	}

	// Stage 1: domain record, with the per-kind duplicate guard.
	var (
		entityID   uuid.UUID
		entityKind entity.EntityKind
		reused     bool
	)

	switch req.ServiceKind {
	case "booking":
		entityKind = entity.EntityKindBooking
		entityID, reused, err = s.createBooking(ctx, userUUID, customer, req)
	case "case":
		entityKind = entity.EntityKindCase
		entityID, reused, err = s.createCase(ctx, userUUID, customer, req)
	default:
		return nil, fmt.Errorf("validation failed: unknown service kind %s", req.ServiceKind)
	}
	if err != nil {
		return nil, err
	}

	// Stage 2: gateway charge, tagged with the record id.
	charge, err := s.gateway.CreateCharge(ctx, gateway.ChargeRequest{
		Payer: gateway.Payer{
			Name:  customer.Name,
			Email: customer.Email,
			TaxID: customer.TaxID,
			Phone: customer.Phone,
		},
		Amount:      req.Amount,
		Description: req.Description,
		ReferenceID: entityID.String(),
	})
	if err != nil {
		// The record stays pending with no ledger row: an orphan, recoverable
		// by retrying the checkout with the same idempotency hints.
		s.log.Warn("Gateway charge failed, record left pending without payment",
			zap.Error(err),
			zap.String("entity_kind", string(entityKind)),
			zap.String("entity_id", entityID.String()),
		)
		return nil, fmt.Errorf("gateway charge: %w", err)
	}

	// Stage 3: ledger row with the explicit entity reference.
	now := time.Now()
	payment := &entity.Payment{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		GatewayPaymentID: charge.GatewayPaymentID,
		UserID:           userUUID,
		Amount:           req.Amount,
		Status:           charge.Status,
		EntityKind:       entityKind,
		EntityID:         entityID,
	}

	if err := s.repo.Payment.Create(ctx, payment); err != nil {
		s.log.Warn("Ledger write failed, record left pending without payment",
			zap.Error(err),
			zap.String("entity_kind", string(entityKind)),
			zap.String("entity_id", entityID.String()),
			zap.String("gateway_payment_id", charge.GatewayPaymentID),
		)
		return nil, fmt.Errorf("create payment record: %w", err)
	}

	s.log.Info("Checkout processed",
		zap.String("user_id", userID),
		zap.String("entity_kind", string(entityKind)),
		zap.String("entity_id", entityID.String()),
		zap.String("gateway_payment_id", charge.GatewayPaymentID),
		zap.Float64("amount", req.Amount),
		zap.Bool("reused", reused),
	)

	return &response.CheckoutResponse{
		EntityID:      entityID.String(),
		EntityKind:    string(entityKind),
		PaymentID:     charge.GatewayPaymentID,
		QRImage:       charge.QRImage,
		CopyPasteCode: charge.CopyPasteCode,
		Expiry:        charge.ExpiresAt,
		Reused:        reused,
	}, nil
}

// createBooking applies the single-active-booking guard: at most one
// non-cancelled booking per owner/date/time. On a hit the existing id is
// reused (configurable policy) instead of erroring.
func (s *checkoutService) createBooking(ctx context.Context, userID uuid.UUID, customer entity.Customer, req *request.CheckoutRequest) (uuid.UUID, bool, error) {
	if req.Date == "" || req.Time == "" {
		return uuid.Nil, false, fmt.Errorf("validation failed: date and time are required for bookings")
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("invalid booking date %s: %w", req.Date, err)
	}

	existing, err := s.repo.Booking.FindActiveSlot(ctx, userID, date, req.Time)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("check booking slot: %w", err)
	}

	if existing != nil {
		if !s.config.Checkout.BookingReuseExisting {
			return uuid.Nil, false, fmt.Errorf("cannot book: slot %s %s is already taken", req.Date, req.Time)
		}
		s.log.Info("Duplicate booking checkout, reusing existing record",
			zap.String("booking_id", existing.ID.String()),
			zap.String("user_id", userID.String()),
			zap.String("date", req.Date),
			zap.String("time", req.Time),
		)
		return existing.ID, true, nil
	}

	now := time.Now()
	booking := &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:      userID,
		Customer:    customer,
		BookingDate: date,
		BookingTime: req.Time,
		Amount:      req.Amount,
		Description: req.Description,
		Status:      entity.RecordStatusPending,
	}

	if err := s.repo.Booking.Create(ctx, booking); err != nil {
		return uuid.Nil, false, fmt.Errorf("create booking: %w", err)
	}

	return booking.ID, false, nil
}

// createCase applies the trailing-window dedup guard: a case for the same
// owner, payer email and amount inside the window is the same logical
// submission and its id is reused.
func (s *checkoutService) createCase(ctx context.Context, userID uuid.UUID, customer entity.Customer, req *request.CheckoutRequest) (uuid.UUID, bool, error) {
	since := time.Now().Add(-s.config.Checkout.CaseDedupWindow)

	existing, err := s.repo.Case.FindRecentDuplicate(ctx, userID, customer.Email, req.Amount, since)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("check duplicate case: %w", err)
	}

	if existing != nil {
		s.log.Info("Duplicate case checkout inside dedup window, reusing existing record",
			zap.String("case_id", existing.ID.String()),
			zap.String("user_id", userID.String()),
			zap.Float64("amount", req.Amount),
		)
		return existing.ID, true, nil
	}

	now := time.Now()
	legalCase := &entity.LegalCase{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:          userID,
		Customer:        customer,
		CaseType:        req.CaseType,
		Amount:          req.Amount,
		Description:     req.Description,
		ServiceMetadata: req.ServiceMetadata,
		Status:          entity.RecordStatusPending,
	}

	if err := s.repo.Case.Create(ctx, legalCase); err != nil {
		return uuid.Nil, false, fmt.Errorf("create case: %w", err)
	}

	return legalCase.ID, false, nil
}
