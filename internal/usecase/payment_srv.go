package usecase

import (
	"context"
	"fmt"
	"time"

	"legal-booking/internal/data/entity"
	"legal-booking/internal/data/repository"
	"legal-booking/internal/dto/response"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// orphanGracePeriod keeps records from a checkout still in flight out of
// the orphan report.
const orphanGracePeriod = 15 * time.Minute

type PaymentService interface {
	GetPaymentStatus(ctx context.Context, gatewayPaymentID string) (*response.PaymentStatusResponse, error)
	FindOrphans(ctx context.Context) (*response.OrphanReport, error)
}

type paymentService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewPaymentService(repo *repository.Repository, log *zap.Logger) PaymentService {
	return &paymentService{
		repo: repo,
		log:  log.With(zap.String("service", "payment")),
	}
}

func (s *paymentService) GetPaymentStatus(ctx context.Context, gatewayPaymentID string) (*response.PaymentStatusResponse, error) {
	payment, err := s.repo.Payment.FindByGatewayPaymentID(ctx, gatewayPaymentID)
	if err != nil {
		s.log.Error("Failed to get payment status",
			zap.Error(err),
			zap.String("gateway_payment_id", gatewayPaymentID),
		)
		return nil, fmt.Errorf("get payment status: %w", err)
	}
	if payment == nil {
		return nil, fmt.Errorf("payment %s not found", gatewayPaymentID)
	}

	resp := response.PaymentToStatusResponse(payment)
	return &resp, nil
}

// FindOrphans lists pending records past the grace period with no ledger
// row: the trace left by a checkout that failed between the record write
// and the payment write. Detection only, no auto-repair.
func (s *paymentService) FindOrphans(ctx context.Context) (*response.OrphanReport, error) {
	olderThan := time.Now().Add(-orphanGracePeriod)

	var (
		bookings []*entity.Booking
		cases    []*entity.LegalCase
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bookings, err = s.repo.Booking.FindPendingWithoutPayment(gctx, olderThan)
		return err
	})
	g.Go(func() error {
		var err error
		cases, err = s.repo.Case.FindPendingWithoutPayment(gctx, olderThan)
		return err
	})

	if err := g.Wait(); err != nil {
		s.log.Error("Failed to scan for orphaned records", zap.Error(err))
		return nil, fmt.Errorf("scan for orphans: %w", err)
	}

	report := &response.OrphanReport{Orphans: []response.OrphanRecord{}}
	for _, b := range bookings {
		report.Orphans = append(report.Orphans, response.OrphanRecord{
			EntityID:   b.ID.String(),
			EntityKind: string(entity.EntityKindBooking),
			UserID:     b.UserID.String(),
			Amount:     b.Amount,
			CreatedAt:  b.CreatedAt,
		})
	}
	for _, c := range cases {
		report.Orphans = append(report.Orphans, response.OrphanRecord{
			EntityID:   c.ID.String(),
			EntityKind: string(entity.EntityKindCase),
			UserID:     c.UserID.String(),
			Amount:     c.Amount,
			CreatedAt:  c.CreatedAt,
		})
	}
	report.Count = len(report.Orphans)

	s.log.Info("Orphan scan completed", zap.Int("count", report.Count))
	return report, nil
}
