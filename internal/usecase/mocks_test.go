package usecase

import (
	"context"
	"errors"
	"time"

	"legal-booking/internal/calendar"
	"legal-booking/internal/data/entity"
	"legal-booking/internal/data/repository"
	"legal-booking/internal/gateway"
	"legal-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ---------- repository fakes ----------

type fakeBookingRepo struct {
	bookings map[uuid.UUID]*entity.Booking
	payments *fakePaymentRepo
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*entity.Booking)}
}

func (f *fakeBookingRepo) Create(_ context.Context, booking *entity.Booking) error {
	copied := *booking
	f.bookings[booking.ID] = &copied
	return nil
}

func (f *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	booking, ok := f.bookings[id]
	if !ok {
		return nil, nil
	}
	copied := *booking
	return &copied, nil
}

func (f *fakeBookingRepo) FindActiveSlot(_ context.Context, userID uuid.UUID, date time.Time, bookingTime string) (*entity.Booking, error) {
	for _, b := range f.bookings {
		if b.UserID == userID && b.BookingDate.Equal(date) && b.BookingTime == bookingTime && b.Status != entity.RecordStatusCancelled {
			copied := *b
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeBookingRepo) UpdateStatus(_ context.Context, bookingID uuid.UUID, status entity.RecordStatus) error {
	booking, ok := f.bookings[bookingID]
	if !ok {
		return errors.New("booking not found")
	}
	booking.Status = status
	return nil
}

func (f *fakeBookingRepo) SetCalendarEvent(_ context.Context, bookingID uuid.UUID, eventID, meetingLink string) error {
	booking, ok := f.bookings[bookingID]
	if !ok {
		return errors.New("booking not found")
	}
	booking.CalendarEventID = &eventID
	booking.MeetingLink = &meetingLink
	return nil
}

func (f *fakeBookingRepo) FindPendingWithoutPayment(_ context.Context, olderThan time.Time) ([]*entity.Booking, error) {
	var out []*entity.Booking
	for _, b := range f.bookings {
		if b.Status == entity.RecordStatusPending && b.CreatedAt.Before(olderThan) && !f.payments.hasEntity(b.ID) {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakeCaseRepo struct {
	cases    map[uuid.UUID]*entity.LegalCase
	payments *fakePaymentRepo
}

func newFakeCaseRepo() *fakeCaseRepo {
	return &fakeCaseRepo{cases: make(map[uuid.UUID]*entity.LegalCase)}
}

func (f *fakeCaseRepo) Create(_ context.Context, legalCase *entity.LegalCase) error {
	copied := *legalCase
	f.cases[legalCase.ID] = &copied
	return nil
}

func (f *fakeCaseRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.LegalCase, error) {
	legalCase, ok := f.cases[id]
	if !ok {
		return nil, nil
	}
	copied := *legalCase
	return &copied, nil
}

func (f *fakeCaseRepo) FindRecentDuplicate(_ context.Context, userID uuid.UUID, customerEmail string, amount float64, since time.Time) (*entity.LegalCase, error) {
	var newest *entity.LegalCase
	for _, c := range f.cases {
		if c.UserID == userID && c.Customer.Email == customerEmail && c.Amount == amount && !c.CreatedAt.Before(since) {
			if newest == nil || c.CreatedAt.After(newest.CreatedAt) {
				newest = c
			}
		}
	}
	if newest == nil {
		return nil, nil
	}
	copied := *newest
	return &copied, nil
}

func (f *fakeCaseRepo) UpdateStatus(_ context.Context, caseID uuid.UUID, status entity.RecordStatus) error {
	legalCase, ok := f.cases[caseID]
	if !ok {
		return errors.New("case not found")
	}
	legalCase.Status = status
	return nil
}

func (f *fakeCaseRepo) SetCalendarEvent(_ context.Context, caseID uuid.UUID, eventID, meetingLink string) error {
	legalCase, ok := f.cases[caseID]
	if !ok {
		return errors.New("case not found")
	}
	legalCase.CalendarEventID = &eventID
	legalCase.MeetingLink = &meetingLink
	return nil
}

func (f *fakeCaseRepo) FindPendingWithoutPayment(_ context.Context, olderThan time.Time) ([]*entity.LegalCase, error) {
	var out []*entity.LegalCase
	for _, c := range f.cases {
		if c.Status == entity.RecordStatusPending && c.CreatedAt.Before(olderThan) && !f.payments.hasEntity(c.ID) {
			copied := *c
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakePaymentRepo struct {
	payments map[string]*entity.Payment // keyed by gateway payment id
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[string]*entity.Payment)}
}

func (f *fakePaymentRepo) Create(_ context.Context, payment *entity.Payment) error {
	if _, exists := f.payments[payment.GatewayPaymentID]; exists {
		return errors.New("duplicate gateway payment id")
	}
	copied := *payment
	f.payments[payment.GatewayPaymentID] = &copied
	return nil
}

func (f *fakePaymentRepo) FindByGatewayPaymentID(_ context.Context, gatewayPaymentID string) (*entity.Payment, error) {
	payment, ok := f.payments[gatewayPaymentID]
	if !ok {
		return nil, nil
	}
	copied := *payment
	return &copied, nil
}

func (f *fakePaymentRepo) hasEntity(entityID uuid.UUID) bool {
	for _, p := range f.payments {
		if p.EntityID == entityID {
			return true
		}
	}
	return false
}

func (f *fakePaymentRepo) UpdateStatusByGatewayID(_ context.Context, gatewayPaymentID, status string) error {
	payment, ok := f.payments[gatewayPaymentID]
	if !ok {
		return errors.New("payment not found")
	}
	payment.Status = status
	return nil
}

type fakeWebhookEventRepo struct {
	events []*entity.WebhookEvent
}

func newFakeWebhookEventRepo() *fakeWebhookEventRepo {
	return &fakeWebhookEventRepo{}
}

func (f *fakeWebhookEventRepo) Create(_ context.Context, event *entity.WebhookEvent) error {
	copied := *event
	f.events = append(f.events, &copied)
	return nil
}

func (f *fakeWebhookEventRepo) FindProcessed(_ context.Context, gatewayPaymentID, eventType string) (*entity.WebhookEvent, error) {
	for _, e := range f.events {
		if e.GatewayPaymentID == gatewayPaymentID && e.EventType == eventType && e.Status == entity.WebhookEventStatusProcessed {
			copied := *e
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeWebhookEventRepo) MarkProcessed(_ context.Context, eventID uuid.UUID) error {
	return f.setStatus(eventID, entity.WebhookEventStatusProcessed)
}

func (f *fakeWebhookEventRepo) MarkError(_ context.Context, eventID uuid.UUID) error {
	return f.setStatus(eventID, entity.WebhookEventStatusError)
}

func (f *fakeWebhookEventRepo) setStatus(eventID uuid.UUID, status entity.WebhookEventStatus) error {
	for _, e := range f.events {
		if e.ID == eventID {
			e.Status = status
			now := time.Now()
			e.ProcessedAt = &now
			return nil
		}
	}
	return errors.New("webhook event not found")
}

func (f *fakeWebhookEventRepo) countByStatus(status entity.WebhookEventStatus) int {
	n := 0
	for _, e := range f.events {
		if e.Status == status {
			n++
		}
	}
	return n
}

// ---------- external client fakes ----------

type fakeGateway struct {
	charge *gateway.Charge
	err    error
	calls  int
}

func (f *fakeGateway) CreateCharge(_ context.Context, req gateway.ChargeRequest) (*gateway.Charge, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	charge := *f.charge
	return &charge, nil
}

type fakeCalendar struct {
	meeting *calendar.Meeting
	err     error
	calls   int
}

func (f *fakeCalendar) EnsureMeeting(_ context.Context, req calendar.MeetingRequest) (*calendar.Meeting, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	meeting := *f.meeting
	return &meeting, nil
}

// ---------- wiring helpers ----------

type testEnv struct {
	repo     *repository.Repository
	bookings *fakeBookingRepo
	cases    *fakeCaseRepo
	payments *fakePaymentRepo
	events   *fakeWebhookEventRepo
	gateway  *fakeGateway
	calendar *fakeCalendar
	config   *utils.Config
}

func newTestEnv() *testEnv {
	bookings := newFakeBookingRepo()
	cases := newFakeCaseRepo()
	payments := newFakePaymentRepo()
	events := newFakeWebhookEventRepo()
	bookings.payments = payments
	cases.payments = payments

	return &testEnv{
		repo: &repository.Repository{
			Booking:      bookings,
			Case:         cases,
			Payment:      payments,
			WebhookEvent: events,
		},
		bookings: bookings,
		cases:    cases,
		payments: payments,
		events:   events,
		gateway: &fakeGateway{
			charge: &gateway.Charge{
				GatewayPaymentID: "pay_1",
				Status:           "PENDING",
				QRImage:          "aW1hZ2U=",
				CopyPasteCode:    "00020126pixcode",
				ExpiresAt:        time.Now().Add(30 * time.Minute),
			},
		},
		calendar: &fakeCalendar{
			meeting: &calendar.Meeting{
				EventID:     "evt_1",
				MeetingLink: "https://meet.example.com/abc",
			},
		},
		config: &utils.Config{
			Checkout: utils.CheckoutConfig{
				MinAmount:            1,
				BookingReuseExisting: true,
				CaseDedupWindow:      5 * time.Minute,
			},
			Meeting: utils.MeetingConfig{
				DurationMinutes: 60,
				CaseLeadTime:    24 * time.Hour,
			},
		},
	}
}

func (e *testEnv) checkoutService() CheckoutService {
	return NewCheckoutService(e.repo, e.gateway, e.config, zap.NewNop())
}

func (e *testEnv) webhookService() WebhookService {
	return NewWebhookService(e.repo, e.calendar, DefaultStatusMapping(), e.config, zap.NewNop())
}
