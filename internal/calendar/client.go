package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"legal-booking/pkg/utils"

	"go.uber.org/zap"
)

// linkRecheckDelay gives the provider a moment to populate the meeting
// link, which some calendars attach asynchronously after event creation.
const linkRecheckDelay = 2 * time.Second

// MeetingRequest describes the video meeting to schedule.
type MeetingRequest struct {
	Summary         string
	Description     string
	InviteeEmail    string
	Start           time.Time
	DurationMinutes int
}

// Meeting is the scheduled event with its join link.
type Meeting struct {
	EventID     string
	MeetingLink string
}

// Client books video meetings on the external calendar. All failures are
// soft: callers log and continue, never failing the surrounding state
// transition.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(config utils.CalendarConfig, log *zap.Logger) *Client {
	return &Client{
		baseURL:    config.BaseURL,
		apiKey:     config.APIKey,
		httpClient: &http.Client{Timeout: config.Timeout},
		log:        log.With(zap.String("client", "calendar")),
	}
}

type eventPayload struct {
	ID          string `json:"id,omitempty"`
	Summary     string `json:"summary"`
	Description string `json:"description,omitempty"`
	Invitee     string `json:"invitee,omitempty"`
	Start       string `json:"start"`
	End         string `json:"end"`
	MeetingLink string `json:"meetingLink,omitempty"`
}

// EnsureMeeting creates the calendar event and returns its join link. If
// the create response carries no link yet, the event is fetched once more
// after a short delay; beyond that the link stays empty and the caller
// keeps whatever it got.
func (c *Client) EnsureMeeting(ctx context.Context, req MeetingRequest) (*Meeting, error) {
	end := req.Start.Add(time.Duration(req.DurationMinutes) * time.Minute)

	event := eventPayload{
		Summary:     req.Summary,
		Description: req.Description,
		Invitee:     req.InviteeEmail,
		Start:       req.Start.Format(time.RFC3339),
		End:         end.Format(time.RFC3339),
	}

	var created eventPayload
	if err := c.doJSON(ctx, http.MethodPost, "/events", event, &created); err != nil {
		return nil, fmt.Errorf("create calendar event: %w", err)
	}

	link := created.MeetingLink
	if link == "" {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(linkRecheckDelay):
		}

		var fetched eventPayload
		if err := c.doJSON(ctx, http.MethodGet, "/events/"+created.ID, nil, &fetched); err != nil {
			c.log.Warn("Failed to re-fetch calendar event for meeting link",
				zap.Error(err),
				zap.String("event_id", created.ID),
			)
		} else {
			link = fetched.MeetingLink
		}
	}

	c.log.Info("Calendar event created",
		zap.String("event_id", created.ID),
		zap.Bool("has_meeting_link", link != ""),
	)

	return &Meeting{EventID: created.ID, MeetingLink: link}, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calendar request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("calendar responded %d for %s %s", resp.StatusCode, method, path)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode calendar response: %w", err)
		}
	}

	return nil
}
