package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"legal-booking/pkg/utils"

	"go.uber.org/zap"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(utils.CalendarConfig{
		BaseURL: server.URL,
		APIKey:  "cal-key",
		Timeout: 5 * time.Second,
	}, zap.NewNop())
}

func meetingRequest() MeetingRequest {
	return MeetingRequest{
		Summary:         "Consultation: Jane Doe",
		Description:     "Payment pay_1 confirmed",
		InviteeEmail:    "jane@example.com",
		Start:           time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
	}
}

func TestEnsureMeeting(t *testing.T) {
	var gotEvent map[string]any
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/events" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer cal-key" {
			t.Errorf("Authorization = %q, want Bearer cal-key", auth)
		}
		json.NewDecoder(r.Body).Decode(&gotEvent)
		json.NewEncoder(w).Encode(map[string]string{
			"id":          "evt_1",
			"meetingLink": "https://meet.example.com/abc",
		})
	})

	client := testClient(t, handler)

	meeting, err := client.EnsureMeeting(context.Background(), meetingRequest())
	if err != nil {
		t.Fatalf("EnsureMeeting() error = %v", err)
	}

	if meeting.EventID != "evt_1" {
		t.Errorf("EventID = %s, want evt_1", meeting.EventID)
	}
	if meeting.MeetingLink != "https://meet.example.com/abc" {
		t.Errorf("MeetingLink = %s, want https://meet.example.com/abc", meeting.MeetingLink)
	}

	if gotEvent["start"] != "2025-09-01T10:00:00Z" {
		t.Errorf("event start = %v, want 2025-09-01T10:00:00Z", gotEvent["start"])
	}
	if gotEvent["end"] != "2025-09-01T11:00:00Z" {
		t.Errorf("event end = %v, want slot start plus duration", gotEvent["end"])
	}
	if gotEvent["invitee"] != "jane@example.com" {
		t.Errorf("event invitee = %v, want jane@example.com", gotEvent["invitee"])
	}
}

func TestEnsureMeetingRefetchesLateLink(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /events", func(w http.ResponseWriter, r *http.Request) {
		// Provider attaches the link asynchronously: create returns none.
		json.NewEncoder(w).Encode(map[string]string{"id": "evt_1"})
	})
	mux.HandleFunc("GET /events/evt_1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"id":          "evt_1",
			"meetingLink": "https://meet.example.com/late",
		})
	})

	client := testClient(t, mux)

	meeting, err := client.EnsureMeeting(context.Background(), meetingRequest())
	if err != nil {
		t.Fatalf("EnsureMeeting() error = %v", err)
	}
	if meeting.MeetingLink != "https://meet.example.com/late" {
		t.Errorf("MeetingLink = %s, want the re-fetched link", meeting.MeetingLink)
	}
}

func TestEnsureMeetingKeepsEmptyLinkOnRefetchFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /events", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "evt_1"})
	})
	mux.HandleFunc("GET /events/evt_1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	client := testClient(t, mux)

	meeting, err := client.EnsureMeeting(context.Background(), meetingRequest())
	if err != nil {
		t.Fatalf("EnsureMeeting() error = %v: re-fetch failure is soft", err)
	}
	if meeting.EventID != "evt_1" {
		t.Errorf("EventID = %s, want evt_1", meeting.EventID)
	}
	if meeting.MeetingLink != "" {
		t.Errorf("MeetingLink = %q, want empty when the re-fetch fails", meeting.MeetingLink)
	}
}

func TestEnsureMeetingCreateFailure(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	client := testClient(t, handler)

	if _, err := client.EnsureMeeting(context.Background(), meetingRequest()); err == nil {
		t.Fatal("expected error when event creation fails")
	}
}
