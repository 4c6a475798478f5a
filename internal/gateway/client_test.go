package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"legal-booking/pkg/utils"

	"go.uber.org/zap"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(utils.GatewayConfig{
		BaseURL:    server.URL,
		APIKey:     "test-key",
		Timeout:    5 * time.Second,
		MaxRetries: 2,
	}, zap.NewNop())

	return client, server
}

func chargeRequest() ChargeRequest {
	return ChargeRequest{
		Payer: Payer{
			Name:  "Jane Doe",
			Email: "jane@example.com",
			TaxID: "12345678901",
		},
		Amount:      150.00,
		Description: "Initial consultation",
		ReferenceID: "booking-1",
	}
}

// gatewayStub is a minimal in-memory gateway: payer lookup and creation,
// charge creation, QR payload fetch.
type gatewayStub struct {
	existingPayers []map[string]string
	qrImage        string
	qrCode         string

	payerLookups  int
	payerCreates  int
	chargeCreates int
}

func (g *gatewayStub) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /customers", func(w http.ResponseWriter, r *http.Request) {
		g.payerLookups++
		json.NewEncoder(w).Encode(map[string]any{"data": g.existingPayers})
	})

	mux.HandleFunc("POST /customers", func(w http.ResponseWriter, r *http.Request) {
		g.payerCreates++
		var in map[string]any
		json.NewDecoder(r.Body).Decode(&in)
		in["id"] = "cus_new"
		json.NewEncoder(w).Encode(in)
	})

	mux.HandleFunc("POST /payments", func(w http.ResponseWriter, r *http.Request) {
		g.chargeCreates++
		var in map[string]any
		json.NewDecoder(r.Body).Decode(&in)
		in["id"] = "pay_1"
		in["status"] = "PENDING"
		json.NewEncoder(w).Encode(in)
	})

	mux.HandleFunc("GET /payments/pay_1/qrcode", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"encodedImage": g.qrImage,
			"payload":      g.qrCode,
			"expiresAt":    time.Now().Add(30 * time.Minute).Format(time.RFC3339),
		})
	})

	return mux
}

func TestCreateChargeNewPayer(t *testing.T) {
	stub := &gatewayStub{qrImage: "aW1hZ2U=", qrCode: "00020126pixcode"}
	client, _ := testClient(t, stub.handler())

	charge, err := client.CreateCharge(context.Background(), chargeRequest())
	if err != nil {
		t.Fatalf("CreateCharge() error = %v", err)
	}

	if charge.GatewayPaymentID != "pay_1" {
		t.Errorf("GatewayPaymentID = %s, want pay_1", charge.GatewayPaymentID)
	}
	if charge.Status != "PENDING" {
		t.Errorf("Status = %s, want PENDING", charge.Status)
	}
	if charge.QRImage != "aW1hZ2U=" {
		t.Errorf("QRImage = %s, want gateway-provided image", charge.QRImage)
	}
	if charge.CopyPasteCode != "00020126pixcode" {
		t.Errorf("CopyPasteCode = %s, want 00020126pixcode", charge.CopyPasteCode)
	}
	if stub.payerCreates != 1 {
		t.Errorf("payer creates = %d, want 1", stub.payerCreates)
	}
}

func TestCreateChargeReusesExistingPayer(t *testing.T) {
	stub := &gatewayStub{
		existingPayers: []map[string]string{{"id": "cus_existing", "taxId": "12345678901"}},
		qrImage:        "aW1hZ2U=",
		qrCode:         "00020126pixcode",
	}
	client, _ := testClient(t, stub.handler())

	if _, err := client.CreateCharge(context.Background(), chargeRequest()); err != nil {
		t.Fatalf("CreateCharge() error = %v", err)
	}

	if stub.payerCreates != 0 {
		t.Errorf("payer creates = %d, want 0 when the profile exists", stub.payerCreates)
	}
	if stub.payerLookups != 1 {
		t.Errorf("payer lookups = %d, want 1", stub.payerLookups)
	}
}

func TestCreateChargeRendersQRLocally(t *testing.T) {
	stub := &gatewayStub{qrImage: "", qrCode: "00020126pixcode"}
	client, _ := testClient(t, stub.handler())

	charge, err := client.CreateCharge(context.Background(), chargeRequest())
	if err != nil {
		t.Fatalf("CreateCharge() error = %v", err)
	}

	if charge.QRImage == "" {
		t.Fatal("QRImage empty, want locally rendered fallback")
	}
	png, err := base64.StdEncoding.DecodeString(charge.QRImage)
	if err != nil {
		t.Fatalf("QRImage is not valid base64: %v", err)
	}
	if len(png) < 8 || string(png[1:4]) != "PNG" {
		t.Error("locally rendered QR is not a PNG")
	}
}

func TestCreateChargeRetriesTransientFailures(t *testing.T) {
	var attempts int
	stub := &gatewayStub{qrImage: "aW1hZ2U=", qrCode: "code"}
	inner := stub.handler()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		inner.ServeHTTP(w, r)
	})

	client, _ := testClient(t, handler)

	if _, err := client.CreateCharge(context.Background(), chargeRequest()); err != nil {
		t.Fatalf("CreateCharge() error = %v, want success after retries", err)
	}
	if attempts < 3 {
		t.Errorf("attempts = %d, want the first call retried past two 503s", attempts)
	}
}

func TestCreateChargeExhaustsRetries(t *testing.T) {
	var attempts int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	})

	client, _ := testClient(t, handler)

	_, err := client.CreateCharge(context.Background(), chargeRequest())
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}

	var gwErr *Error
	if !errors.As(err, &gwErr) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if !gwErr.Retryable() {
		t.Error("5xx must be classified retryable")
	}
	// initial attempt + MaxRetries
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestCreateChargeRejectionNotRetried(t *testing.T) {
	var attempts int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"code":    "invalid_tax_id",
			"message": "taxId is not valid",
		})
	})

	client, _ := testClient(t, handler)

	_, err := client.CreateCharge(context.Background(), chargeRequest())
	if err == nil {
		t.Fatal("expected error for a definitive rejection")
	}

	var gwErr *Error
	if !errors.As(err, &gwErr) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if gwErr.Retryable() {
		t.Error("4xx must not be classified retryable")
	}
	if gwErr.Code != "invalid_tax_id" {
		t.Errorf("Code = %s, want invalid_tax_id", gwErr.Code)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1: rejections surface immediately", attempts)
	}
}

func TestCreateChargeSendsAPIKey(t *testing.T) {
	var gotKey string
	stub := &gatewayStub{qrImage: "aW1hZ2U=", qrCode: "code"}
	inner := stub.handler()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("access_token")
		inner.ServeHTTP(w, r)
	})

	client, _ := testClient(t, handler)

	if _, err := client.CreateCharge(context.Background(), chargeRequest()); err != nil {
		t.Fatalf("CreateCharge() error = %v", err)
	}
	if gotKey != "test-key" {
		t.Errorf("access_token header = %q, want test-key", gotKey)
	}
}

func TestCreateChargeContextCancellation(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	client, _ := testClient(t, handler)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.CreateCharge(ctx, chargeRequest()); err == nil {
		t.Fatal("expected error with a cancelled context")
	}
}
