package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"legal-booking/internal/calendar"
	"legal-booking/internal/data/entity"
	"legal-booking/internal/data/repository"
	"legal-booking/internal/dto/request"
	"legal-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrMalformedEvent marks a webhook payload missing its payment id or
// event type. It is the only condition the receiver answers with 400;
// everything else is acknowledged to keep the gateway from redelivering.
var ErrMalformedEvent = errors.New("malformed webhook event")

// MeetingScheduler is the slice of the calendar client the reconciler needs.
type MeetingScheduler interface {
	EnsureMeeting(ctx context.Context, req calendar.MeetingRequest) (*calendar.Meeting, error)
}

type WebhookService interface {
	HandleEvent(ctx context.Context, req *request.WebhookRequest, rawPayload []byte) error
}

type webhookService struct {
	repo     *repository.Repository
	calendar MeetingScheduler
	mapping  StatusMapping
	config   *utils.Config
	log      *zap.Logger
}

func NewWebhookService(repo *repository.Repository, cal MeetingScheduler, mapping StatusMapping, config *utils.Config, log *zap.Logger) WebhookService {
	return &webhookService{
		repo:     repo,
		calendar: cal,
		mapping:  mapping,
		config:   config,
		log:      log.With(zap.String("service", "webhook")),
	}
}

// HandleEvent reconciles one gateway delivery. Apart from ErrMalformedEvent
// it always returns nil: internal failures are logged and recorded on the
// event row, never surfaced to the sender.
func (s *webhookService) HandleEvent(ctx context.Context, req *request.WebhookRequest, rawPayload []byte) error {
	if req.Payment.ID == "" || req.Event == "" {
		return ErrMalformedEvent
	}

	log := s.log.With(
		zap.String("gateway_payment_id", req.Payment.ID),
		zap.String("event_type", req.Event),
	)

	// Replay check: a processed entry for the same (payment, event) makes
	// this delivery a no-op.
	prior, err := s.repo.WebhookEvent.FindProcessed(ctx, req.Payment.ID, req.Event)
	if err != nil {
		log.Error("Failed to check for prior webhook event", zap.Error(err))
		return nil
	}
	if prior != nil {
		log.Info("Duplicate webhook delivery, already processed")
		return nil
	}

	// Log the event before any side effect.
	event := &entity.WebhookEvent{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		EventType:        req.Event,
		GatewayPaymentID: req.Payment.ID,
		Payload:          rawPayload,
		Status:           entity.WebhookEventStatusReceived,
	}
	if err := s.repo.WebhookEvent.Create(ctx, event); err != nil {
		log.Error("Failed to log webhook event", zap.Error(err))
		return nil
	}

	if err := s.reconcile(ctx, req, log); err != nil {
		log.Error("Webhook reconciliation failed", zap.Error(err))
		if markErr := s.repo.WebhookEvent.MarkError(ctx, event.ID); markErr != nil {
			log.Error("Failed to mark webhook event as error", zap.Error(markErr))
		}
		return nil
	}

	if err := s.repo.WebhookEvent.MarkProcessed(ctx, event.ID); err != nil {
		log.Error("Failed to mark webhook event as processed", zap.Error(err))
	}

	return nil
}

func (s *webhookService) reconcile(ctx context.Context, req *request.WebhookRequest, log *zap.Logger) error {
	// Resolve the ledger row; the tagged entity reference on it is the only
	// linkage path back to the domain record.
	payment, err := s.repo.Payment.FindByGatewayPaymentID(ctx, req.Payment.ID)
	if err != nil {
		return fmt.Errorf("resolve payment: %w", err)
	}
	if payment == nil {
		// Retrying cannot fix an unknown payment id, so the event is recorded
		// as an error and the delivery still acknowledged.
		return fmt.Errorf("no payment record for gateway payment %s", req.Payment.ID)
	}

	if err := s.repo.Payment.UpdateStatusByGatewayID(ctx, req.Payment.ID, req.Payment.Status); err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}

	target, ok := s.mapping.Target(req.Payment.Status)
	if !ok {
		log.Info("Gateway status causes no record transition",
			zap.String("gateway_status", req.Payment.Status))
		return nil
	}

	record, err := s.resolveRecord(ctx, payment)
	if err != nil {
		return err
	}

	if record.status != target {
		if err := record.setStatus(ctx, target); err != nil {
			return fmt.Errorf("update record status: %w", err)
		}
		log.Info("Record status updated",
			zap.String("entity_kind", string(payment.EntityKind)),
			zap.String("entity_id", payment.EntityID.String()),
			zap.String("from", string(record.status)),
			zap.String("to", string(target)),
		)
	}

	// First confirmation books the meeting; the stored calendar event id is
	// the idempotency guard against duplicate confirmed deliveries.
	if target == entity.RecordStatusConfirmed && !record.hasCalendar {
		s.ensureMeeting(ctx, payment, record, log)
	}

	return nil
}

// recordHandle presents the two entity kinds to the reconciler uniformly.
type recordHandle struct {
	status      entity.RecordStatus
	hasCalendar bool
	summary     string
	email       string
	start       time.Time
	setStatus   func(ctx context.Context, status entity.RecordStatus) error
	setCalendar func(ctx context.Context, eventID, link string) error
}

func (s *webhookService) resolveRecord(ctx context.Context, payment *entity.Payment) (*recordHandle, error) {
	switch payment.EntityKind {
	case entity.EntityKindBooking:
		booking, err := s.repo.Booking.FindByID(ctx, payment.EntityID)
		if err != nil {
			return nil, fmt.Errorf("resolve booking: %w", err)
		}
		if booking == nil {
			return nil, fmt.Errorf("payment %s references missing booking %s", payment.GatewayPaymentID, payment.EntityID)
		}
		return &recordHandle{
			status:      booking.Status,
			hasCalendar: booking.HasCalendarEvent(),
			summary:     "Consultation: " + booking.Customer.Name,
			email:       booking.Customer.Email,
			start:       meetingStartForBooking(booking),
			setStatus: func(ctx context.Context, status entity.RecordStatus) error {
				return s.repo.Booking.UpdateStatus(ctx, booking.ID, status)
			},
			setCalendar: func(ctx context.Context, eventID, link string) error {
				return s.repo.Booking.SetCalendarEvent(ctx, booking.ID, eventID, link)
			},
		}, nil

	case entity.EntityKindCase:
		legalCase, err := s.repo.Case.FindByID(ctx, payment.EntityID)
		if err != nil {
			return nil, fmt.Errorf("resolve case: %w", err)
		}
		if legalCase == nil {
			return nil, fmt.Errorf("payment %s references missing case %s", payment.GatewayPaymentID, payment.EntityID)
		}
		// Cases carry no date; the intake meeting is scheduled a configured
		// lead time out, on the hour.
		start := time.Now().Add(s.config.Meeting.CaseLeadTime).Truncate(time.Hour)
		return &recordHandle{
			status:      legalCase.Status,
			hasCalendar: legalCase.HasCalendarEvent(),
			summary:     "Case intake: " + legalCase.Customer.Name,
			email:       legalCase.Customer.Email,
			start:       start,
			setStatus: func(ctx context.Context, status entity.RecordStatus) error {
				return s.repo.Case.UpdateStatus(ctx, legalCase.ID, status)
			},
			setCalendar: func(ctx context.Context, eventID, link string) error {
				return s.repo.Case.SetCalendarEvent(ctx, legalCase.ID, eventID, link)
			},
		}, nil

	default:
		return nil, fmt.Errorf("payment %s has unknown entity kind %s", payment.GatewayPaymentID, payment.EntityKind)
	}
}

// ensureMeeting is best-effort: calendar failures are logged and never fail
// the reconciliation.
func (s *webhookService) ensureMeeting(ctx context.Context, payment *entity.Payment, record *recordHandle, log *zap.Logger) {
	meeting, err := s.calendar.EnsureMeeting(ctx, calendar.MeetingRequest{
		Summary:         record.summary,
		Description:     fmt.Sprintf("Payment %s confirmed", payment.GatewayPaymentID),
		InviteeEmail:    record.email,
		Start:           record.start,
		DurationMinutes: s.config.Meeting.DurationMinutes,
	})
	if err != nil {
		log.Warn("Calendar meeting creation failed, continuing without link",
			zap.Error(err),
			zap.String("entity_id", payment.EntityID.String()),
		)
		return
	}

	if err := record.setCalendar(ctx, meeting.EventID, meeting.MeetingLink); err != nil {
		log.Warn("Failed to persist calendar linkage",
			zap.Error(err),
			zap.String("entity_id", payment.EntityID.String()),
			zap.String("event_id", meeting.EventID),
		)
	}
}

func meetingStartForBooking(booking *entity.Booking) time.Time {
	start := booking.BookingDate
	if t, err := time.Parse("15:04", booking.BookingTime); err == nil {
		start = start.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
	}
	return start
}
