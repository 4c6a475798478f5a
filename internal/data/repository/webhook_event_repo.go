package repository

import (
	"context"
	"fmt"

	"legal-booking/internal/data/entity"
	"legal-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type WebhookEventRepository interface {
	Create(ctx context.Context, event *entity.WebhookEvent) error
	FindProcessed(ctx context.Context, gatewayPaymentID, eventType string) (*entity.WebhookEvent, error)
	MarkProcessed(ctx context.Context, eventID uuid.UUID) error
	MarkError(ctx context.Context, eventID uuid.UUID) error
}

type webhookEventRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewWebhookEventRepository(db database.PgxIface, log *zap.Logger) WebhookEventRepository {
	return &webhookEventRepository{
		db:  db,
		log: log.With(zap.String("repository", "webhook_event")),
	}
}

func (r *webhookEventRepository) Create(ctx context.Context, event *entity.WebhookEvent) error {
	query := `
		INSERT INTO webhook_events (id, event_type, gateway_payment_id, payload, status, processed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		event.ID,
		event.EventType,
		event.GatewayPaymentID,
		event.Payload,
		event.Status,
		event.ProcessedAt,
		event.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create webhook event",
			zap.Error(err),
			zap.String("gateway_payment_id", event.GatewayPaymentID),
			zap.String("event_type", event.EventType),
		)
		return fmt.Errorf("create webhook event for payment %s: %w", event.GatewayPaymentID, err)
	}

	return nil
}

// FindProcessed returns a prior processed log entry for the same
// (gateway payment id, event type), the replay-detection key. The partial
// unique index on the same pair is the backstop under concurrent delivery.
func (r *webhookEventRepository) FindProcessed(ctx context.Context, gatewayPaymentID, eventType string) (*entity.WebhookEvent, error) {
	query := `
		SELECT id, event_type, gateway_payment_id, payload, status, processed_at, created_at
		FROM webhook_events
		WHERE gateway_payment_id = $1 AND event_type = $2 AND status = 'processed'
		LIMIT 1
	`

	var event entity.WebhookEvent
	err := r.db.QueryRow(ctx, query, gatewayPaymentID, eventType).Scan(
		&event.ID,
		&event.EventType,
		&event.GatewayPaymentID,
		&event.Payload,
		&event.Status,
		&event.ProcessedAt,
		&event.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find processed webhook event",
			zap.Error(err),
			zap.String("gateway_payment_id", gatewayPaymentID),
			zap.String("event_type", eventType),
		)
		return nil, fmt.Errorf("find processed webhook event %s/%s: %w", gatewayPaymentID, eventType, err)
	}

	return &event, nil
}

func (r *webhookEventRepository) MarkProcessed(ctx context.Context, eventID uuid.UUID) error {
	return r.setStatus(ctx, eventID, entity.WebhookEventStatusProcessed)
}

func (r *webhookEventRepository) MarkError(ctx context.Context, eventID uuid.UUID) error {
	return r.setStatus(ctx, eventID, entity.WebhookEventStatusError)
}

func (r *webhookEventRepository) setStatus(ctx context.Context, eventID uuid.UUID, status entity.WebhookEventStatus) error {
	query := `UPDATE webhook_events SET status = $2, processed_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, eventID, status)
	if err != nil {
		r.log.Error("Failed to update webhook event status",
			zap.Error(err),
			zap.String("event_id", eventID.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update webhook event %s status to %s: %w", eventID.String(), string(status), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("webhook event %s not found", eventID.String())
	}

	return nil
}
