package models

import "time"

// Payment statuses.
const (
	PaymentStatusSucceeded = "Succeeded"
	PaymentStatusDeclined  = "Declined"
	PaymentStatusFailed    = "Failed"
)

// Payment records one gateway charge attempt against a posted charge.
type Payment struct {
	ID         string    `db:"id" json:"id"`
	ChargeID   string    `db:"charge_id" json:"charge_id"`
	FamilyID   string    `db:"family_id" json:"family_id"`
	Amount     float64   `db:"amount" json:"amount"`
	Status     string    `db:"status" json:"status"`
	GatewayRef *string   `db:"gateway_ref" json:"gateway_ref,omitempty"`
	ErrorText  *string   `db:"error_text" json:"error_text,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// AutoPayRunResult summarizes one auto-pay sweep.
type AutoPayRunResult struct {
	Attempted int      `json:"attempted"`
	Succeeded int      `json:"succeeded"`
	Declined  int      `json:"declined"`
	Failed    int      `json:"failed"`
	Failures  []string `json:"failures,omitempty"`
}
