package request

import "encoding/json"

type CustomerInput struct {
	Name  string `json:"name" validate:"required,min=2,max=255"`
	Email string `json:"email" validate:"required,email"`
	TaxID string `json:"tax_id" validate:"required,min=11,max=18"`
	Phone string `json:"phone,omitempty" validate:"omitempty,max=32"`
}

type CheckoutRequest struct {
	Customer        CustomerInput   `json:"customer" validate:"required"`
	Amount          float64         `json:"amount" validate:"required,gt=0"`
	Description     string          `json:"description" validate:"required,max=500"`
	ServiceKind     string          `json:"service_kind" validate:"required,oneof=booking case"`
	ServiceMetadata json.RawMessage `json:"service_metadata,omitempty"`
	CaseType        string          `json:"case_type,omitempty" validate:"omitempty,max=100"`
	Date            string          `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Time            string          `json:"time,omitempty" validate:"omitempty,datetime=15:04"`
}
