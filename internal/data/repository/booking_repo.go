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

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)

	// Business queries
	FindActiveSlot(ctx context.Context, userID uuid.UUID, date time.Time, bookingTime string) (*entity.Booking, error)
	UpdateStatus(ctx context.Context, bookingID uuid.UUID, status entity.RecordStatus) error
	SetCalendarEvent(ctx context.Context, bookingID uuid.UUID, eventID, meetingLink string) error
	FindPendingWithoutPayment(ctx context.Context, olderThan time.Time) ([]*entity.Booking, error)
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, user_id, customer_name, customer_email, customer_tax_id, customer_phone,
	       booking_date, booking_time, amount, description, status,
	       calendar_event_id, meeting_link, created_at, updated_at`

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.Customer.Name,
		&booking.Customer.Email,
		&booking.Customer.TaxID,
		&booking.Customer.Phone,
		&booking.BookingDate,
		&booking.BookingTime,
		&booking.Amount,
		&booking.Description,
		&booking.Status,
		&booking.CalendarEventID,
		&booking.MeetingLink,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (id, user_id, customer_name, customer_email, customer_tax_id, customer_phone,
		                      booking_date, booking_time, amount, description, status,
		                      calendar_event_id, meeting_link, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.UserID,
		booking.Customer.Name,
		booking.Customer.Email,
		booking.Customer.TaxID,
		booking.Customer.Phone,
		booking.BookingDate,
		booking.BookingTime,
		booking.Amount,
		booking.Description,
		booking.Status,
		booking.CalendarEventID,
		booking.MeetingLink,
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
			zap.String("user_id", booking.UserID.String()),
		)
		return fmt.Errorf("create booking %s: %w", booking.ID.String(), err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE id = $1`, bookingColumns)

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

// FindActiveSlot returns the non-cancelled booking occupying the exact
// owner/date/time slot, if any. The partial unique index on the same key is
// the race backstop; this read enables the reuse-existing-id behavior.
func (r *bookingRepository) FindActiveSlot(ctx context.Context, userID uuid.UUID, date time.Time, bookingTime string) (*entity.Booking, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM bookings
		WHERE user_id = $1 AND booking_date = $2 AND booking_time = $3
		  AND status <> 'cancelled'
		LIMIT 1
	`, bookingColumns)

	booking, err := scanBooking(r.db.QueryRow(ctx, query, userID, date, bookingTime))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking slot",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("booking_time", bookingTime),
		)
		return nil, fmt.Errorf("find booking slot for user %s: %w", userID.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, bookingID uuid.UUID, status entity.RecordStatus) error {
	query := `UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, bookingID, status)
	if err != nil {
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update booking %s status to %s: %w", bookingID.String(), string(status), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not found", bookingID.String())
	}

	return nil
}

func (r *bookingRepository) SetCalendarEvent(ctx context.Context, bookingID uuid.UUID, eventID, meetingLink string) error {
	query := `
		UPDATE bookings
		SET calendar_event_id = $2, meeting_link = $3, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, bookingID, eventID, meetingLink)
	if err != nil {
		r.log.Error("Failed to set booking calendar event",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
			zap.String("event_id", eventID),
		)
		return fmt.Errorf("set calendar event on booking %s: %w", bookingID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not found", bookingID.String())
	}

	return nil
}

// FindPendingWithoutPayment lists pending bookings past the grace period
// that never got a ledger row: the orphan signal left by a checkout that
// failed after the record write.
func (r *bookingRepository) FindPendingWithoutPayment(ctx context.Context, olderThan time.Time) ([]*entity.Booking, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM bookings b
		WHERE b.status = 'pending'
		  AND b.created_at < $1
		  AND NOT EXISTS (
		      SELECT 1 FROM payments p
		      WHERE p.entity_kind = 'booking' AND p.entity_id = b.id
		  )
		ORDER BY b.created_at
	`, bookingColumns)

	rows, err := r.db.Query(ctx, query, olderThan)
	if err != nil {
		r.log.Error("Failed to find orphaned bookings", zap.Error(err))
		return nil, fmt.Errorf("find orphaned bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, nil
}
