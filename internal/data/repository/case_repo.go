package repository

import (
	"context"
	"fmt"
	"time"

	"legal-booking/internal/data/entity"
	"legal-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type CaseRepository interface {
	Create(ctx context.Context, legalCase *entity.LegalCase) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.LegalCase, error)

	// Business queries
	FindRecentDuplicate(ctx context.Context, userID uuid.UUID, customerEmail string, amount float64, since time.Time) (*entity.LegalCase, error)
	UpdateStatus(ctx context.Context, caseID uuid.UUID, status entity.RecordStatus) error
	SetCalendarEvent(ctx context.Context, caseID uuid.UUID, eventID, meetingLink string) error
	FindPendingWithoutPayment(ctx context.Context, olderThan time.Time) ([]*entity.LegalCase, error)
}

type caseRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCaseRepository(db database.PgxIface, log *zap.Logger) CaseRepository {
	return &caseRepository{
		db:  db,
		log: log.With(zap.String("repository", "case")),
	}
}

const caseColumns = `id, user_id, customer_name, customer_email, customer_tax_id, customer_phone,
	       case_type, amount, description, service_metadata, status,
	       calendar_event_id, meeting_link, created_at, updated_at`

func scanCase(row pgx.Row) (*entity.LegalCase, error) {
	var legalCase entity.LegalCase
	err := row.Scan(
		&legalCase.ID,
		&legalCase.UserID,
		&legalCase.Customer.Name,
		&legalCase.Customer.Email,
		&legalCase.Customer.TaxID,
		&legalCase.Customer.Phone,
		&legalCase.CaseType,
		&legalCase.Amount,
		&legalCase.Description,
		&legalCase.ServiceMetadata,
		&legalCase.Status,
		&legalCase.CalendarEventID,
		&legalCase.MeetingLink,
		&legalCase.CreatedAt,
		&legalCase.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &legalCase, nil
}

func (r *caseRepository) Create(ctx context.Context, legalCase *entity.LegalCase) error {
	query := `
		INSERT INTO cases (id, user_id, customer_name, customer_email, customer_tax_id, customer_phone,
		                   case_type, amount, description, service_metadata, status,
		                   calendar_event_id, meeting_link, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.Exec(ctx, query,
		legalCase.ID,
		legalCase.UserID,
		legalCase.Customer.Name,
		legalCase.Customer.Email,
		legalCase.Customer.TaxID,
		legalCase.Customer.Phone,
		legalCase.CaseType,
		legalCase.Amount,
		legalCase.Description,
		legalCase.ServiceMetadata,
		legalCase.Status,
		legalCase.CalendarEventID,
		legalCase.MeetingLink,
		legalCase.CreatedAt,
		legalCase.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create case",
			zap.Error(err),
			zap.String("case_id", legalCase.ID.String()),
			zap.String("user_id", legalCase.UserID.String()),
		)
		return fmt.Errorf("create case %s: %w", legalCase.ID.String(), err)
	}

	return nil
}

func (r *caseRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.LegalCase, error) {
	query := fmt.Sprintf(`SELECT %s FROM cases WHERE id = $1`, caseColumns)

	legalCase, err := scanCase(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find case by ID",
			zap.Error(err),
			zap.String("case_id", id.String()),
		)
		return nil, fmt.Errorf("find case by ID %s: %w", id.String(), err)
	}

	return legalCase, nil
}

// FindRecentDuplicate returns the newest case created since the given time
// for the same owner, payer email and amount. Used by the trailing-window
// dedup policy: such a submission is treated as the same logical checkout.
func (r *caseRepository) FindRecentDuplicate(ctx context.Context, userID uuid.UUID, customerEmail string, amount float64, since time.Time) (*entity.LegalCase, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM cases
		WHERE user_id = $1 AND customer_email = $2 AND amount = $3
		  AND created_at >= $4
		ORDER BY created_at DESC
		LIMIT 1
	`, caseColumns)

	legalCase, err := scanCase(r.db.QueryRow(ctx, query, userID, customerEmail, amount, since))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find recent duplicate case",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find recent duplicate case for user %s: %w", userID.String(), err)
	}

	return legalCase, nil
}

func (r *caseRepository) UpdateStatus(ctx context.Context, caseID uuid.UUID, status entity.RecordStatus) error {
	query := `UPDATE cases SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, caseID, status)
	if err != nil {
		r.log.Error("Failed to update case status",
			zap.Error(err),
			zap.String("case_id", caseID.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update case %s status to %s: %w", caseID.String(), string(status), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("case %s not found", caseID.String())
	}

	return nil
}

func (r *caseRepository) SetCalendarEvent(ctx context.Context, caseID uuid.UUID, eventID, meetingLink string) error {
	query := `
		UPDATE cases
		SET calendar_event_id = $2, meeting_link = $3, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, caseID, eventID, meetingLink)
	if err != nil {
		r.log.Error("Failed to set case calendar event",
			zap.Error(err),
			zap.String("case_id", caseID.String()),
			zap.String("event_id", eventID),
		)
		return fmt.Errorf("set calendar event on case %s: %w", caseID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("case %s not found", caseID.String())
	}

	return nil
}

func (r *caseRepository) FindPendingWithoutPayment(ctx context.Context, olderThan time.Time) ([]*entity.LegalCase, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM cases c
		WHERE c.status = 'pending'
		  AND c.created_at < $1
		  AND NOT EXISTS (
		      SELECT 1 FROM payments p
		      WHERE p.entity_kind = 'case' AND p.entity_id = c.id
		  )
		ORDER BY c.created_at
	`, caseColumns)

	rows, err := r.db.Query(ctx, query, olderThan)
	if err != nil {
		r.log.Error("Failed to find orphaned cases", zap.Error(err))
		return nil, fmt.Errorf("find orphaned cases: %w", err)
	}
	defer rows.Close()

	var cases []*entity.LegalCase
	for rows.Next() {
		legalCase, err := scanCase(rows)
		if err != nil {
			r.log.Error("Failed to scan case row", zap.Error(err))
			return nil, fmt.Errorf("scan case row: %w", err)
		}
		cases = append(cases, legalCase)
	}

	return cases, nil
}
