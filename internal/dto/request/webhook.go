package request

// WebhookRequest is the gateway-pushed payment status event.
type WebhookRequest struct {
	Event   string         `json:"event"`
	Payment WebhookPayment `json:"payment"`
}

type WebhookPayment struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}
