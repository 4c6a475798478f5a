package repository

import (
	"context"
	"fmt"

	"legal-booking/internal/data/entity"
	"legal-booking/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	FindByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*entity.Payment, error)

	// Business queries
	UpdateStatusByGatewayID(ctx context.Context, gatewayPaymentID, status string) error
}

type paymentRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPaymentRepository(db database.PgxIface, log *zap.Logger) PaymentRepository {
	return &paymentRepository{
		db:  db,
		log: log.With(zap.String("repository", "payment")),
	}
}

const paymentColumns = `id, gateway_payment_id, user_id, amount, status, entity_kind, entity_id, created_at, updated_at`

func scanPayment(row pgx.Row) (*entity.Payment, error) {
	var payment entity.Payment
	err := row.Scan(
		&payment.ID,
		&payment.GatewayPaymentID,
		&payment.UserID,
		&payment.Amount,
		&payment.Status,
		&payment.EntityKind,
		&payment.EntityID,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	query := `
		INSERT INTO payments (id, gateway_payment_id, user_id, amount, status, entity_kind, entity_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		payment.ID,
		payment.GatewayPaymentID,
		payment.UserID,
		payment.Amount,
		payment.Status,
		payment.EntityKind,
		payment.EntityID,
		payment.CreatedAt,
		payment.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create payment",
			zap.Error(err),
			zap.String("gateway_payment_id", payment.GatewayPaymentID),
			zap.String("entity_id", payment.EntityID.String()),
		)
		return fmt.Errorf("create payment %s: %w", payment.GatewayPaymentID, err)
	}

	return nil
}

func (r *paymentRepository) FindByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*entity.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE gateway_payment_id = $1`, paymentColumns)

	payment, err := scanPayment(r.db.QueryRow(ctx, query, gatewayPaymentID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment by gateway payment ID",
			zap.Error(err),
			zap.String("gateway_payment_id", gatewayPaymentID),
		)
		return nil, fmt.Errorf("find payment by gateway payment ID %s: %w", gatewayPaymentID, err)
	}

	return payment, nil
}

func (r *paymentRepository) UpdateStatusByGatewayID(ctx context.Context, gatewayPaymentID, status string) error {
	query := `UPDATE payments SET status = $2, updated_at = NOW() WHERE gateway_payment_id = $1`

	result, err := r.db.Exec(ctx, query, gatewayPaymentID, status)
	if err != nil {
		r.log.Error("Failed to update payment status",
			zap.Error(err),
			zap.String("gateway_payment_id", gatewayPaymentID),
			zap.String("status", status),
		)
		return fmt.Errorf("update payment %s status to %s: %w", gatewayPaymentID, status, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("payment %s not found", gatewayPaymentID)
	}

	return nil
}
