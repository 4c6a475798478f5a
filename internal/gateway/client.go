package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"legal-booking/pkg/utils"

	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

const retryBaseDelay = 200 * time.Millisecond

// Client talks to the instant bank-transfer payment gateway: payer
// profiles, charges and their renderable QR payloads.
type Client struct {
	baseURL    string
	apiKey     string
	maxRetries int
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(config utils.GatewayConfig, log *zap.Logger) *Client {
	return &Client{
		baseURL:    config.BaseURL,
		apiKey:     config.APIKey,
		maxRetries: config.MaxRetries,
		httpClient: &http.Client{Timeout: config.Timeout},
		log:        log.With(zap.String("client", "gateway")),
	}
}

// ---------- wire types ----------

type payerPayload struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
	TaxID string `json:"taxId"`
	Phone string `json:"phone,omitempty"`
}

type payerListPayload struct {
	Data []payerPayload `json:"data"`
}

type chargePayload struct {
	ID                string  `json:"id"`
	CustomerID        string  `json:"customer,omitempty"`
	Value             float64 `json:"value"`
	Description       string  `json:"description,omitempty"`
	ExternalReference string  `json:"externalReference,omitempty"`
	Status            string  `json:"status,omitempty"`
}

type qrPayload struct {
	EncodedImage string    `json:"encodedImage"`
	Payload      string    `json:"payload"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CreateCharge drives the three gateway calls of the checkout saga:
// ensure the payer profile, create the charge tagged with referenceID,
// fetch the payable QR payload.
func (c *Client) CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	payerID, err := c.ensurePayer(ctx, req.Payer)
	if err != nil {
		return nil, fmt.Errorf("ensure payer: %w", err)
	}

	charge := chargePayload{
		CustomerID:        payerID,
		Value:             req.Amount,
		Description:       req.Description,
		ExternalReference: req.ReferenceID,
	}

	var created chargePayload
	if err := c.doJSON(ctx, http.MethodPost, "/payments", charge, &created); err != nil {
		return nil, fmt.Errorf("create charge: %w", err)
	}

	var qr qrPayload
	if err := c.doJSON(ctx, http.MethodGet, "/payments/"+created.ID+"/qrcode", nil, &qr); err != nil {
		return nil, fmt.Errorf("fetch charge payload %s: %w", created.ID, err)
	}

	image := qr.EncodedImage
	if image == "" && qr.Payload != "" {
		// Some gateway environments return only the copy-paste code; render
		// the QR locally so callers always get both.
		png, err := qrcode.Encode(qr.Payload, qrcode.Medium, 256)
		if err != nil {
			c.log.Warn("Failed to render QR locally",
				zap.Error(err),
				zap.String("gateway_payment_id", created.ID),
			)
		} else {
			image = base64.StdEncoding.EncodeToString(png)
		}
	}

	c.log.Info("Gateway charge created",
		zap.String("gateway_payment_id", created.ID),
		zap.String("payer_id", payerID),
		zap.Float64("amount", req.Amount),
	)

	return &Charge{
		GatewayPaymentID: created.ID,
		Status:           created.Status,
		QRImage:          image,
		CopyPasteCode:    qr.Payload,
		ExpiresAt:        qr.ExpiresAt,
	}, nil
}

// ensurePayer looks the payer up by tax id and creates the profile only
// when missing, so repeated checkouts reuse one gateway customer.
func (c *Client) ensurePayer(ctx context.Context, payer Payer) (string, error) {
	var list payerListPayload
	path := "/customers?taxId=" + url.QueryEscape(payer.TaxID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &list); err != nil {
		return "", err
	}

	if len(list.Data) > 0 {
		return list.Data[0].ID, nil
	}

	created := payerPayload{
		Name:  payer.Name,
		Email: payer.Email,
		TaxID: payer.TaxID,
		Phone: payer.Phone,
	}

	var out payerPayload
	if err := c.doJSON(ctx, http.MethodPost, "/customers", created, &out); err != nil {
		return "", err
	}

	return out.ID, nil
}

// doJSON performs one gateway request with the bounded retry policy:
// transient failures (network errors, 5xx) are retried with backoff up to
// maxRetries, definitive rejections surface immediately as *Error.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay << (attempt - 1)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			c.log.Debug("Retrying gateway request",
				zap.String("path", path),
				zap.Int("attempt", attempt),
			)
		}

		lastErr = c.doOnce(ctx, method, path, body, out)
		if lastErr == nil {
			return nil
		}

		var gwErr *Error
		if errors.As(lastErr, &gwErr) && !gwErr.Retryable() {
			return lastErr
		}
		if ctx.Err() != nil {
			return lastErr
		}
	}

	return lastErr
}

func (c *Client) doOnce(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("access_token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		gwErr := &Error{StatusCode: resp.StatusCode, Message: resp.Status}
		var ep errorPayload
		if decodeErr := json.NewDecoder(resp.Body).Decode(&ep); decodeErr == nil && ep.Message != "" {
			gwErr.Code = ep.Code
			gwErr.Message = ep.Message
		}
		return gwErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode gateway response: %w", err)
		}
	}

	return nil
}
