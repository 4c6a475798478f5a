package entity

// Customer is the payer snapshot stored on the record at checkout time.
// It is frozen data, not a reference: later profile edits must not change
// what was billed.
type Customer struct {
	Name  string `db:"customer_name"`
	Email string `db:"customer_email"`
	TaxID string `db:"customer_tax_id"`
	Phone string `db:"customer_phone"`
}
