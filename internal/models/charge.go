package models

import "time"

// Charge statuses.
const (
	ChargeStatusUnpaid = "Unpaid"
	ChargeStatusPaid   = "Paid"
	ChargeStatusFailed = "Failed"
)

// Line item kinds on a posted charge.
const (
	LineItemTuition  = "TuitionRate"
	LineItemFee      = "Fee"
	LineItemDiscount = "Discount"
)

// Charge is a posted bill for one family and billing period.
type Charge struct {
	ID            string     `db:"id" json:"id"`
	FamilyID      string     `db:"family_id" json:"family_id"`
	FamilyName    string     `db:"family_name" json:"family_name"`
	Month         int        `db:"month" json:"month"`
	Year          int        `db:"year" json:"year"`
	Status        string     `db:"status" json:"status"`
	TotalTuition  float64    `db:"total_tuition" json:"total_tuition"`
	TotalFees     float64    `db:"total_fees" json:"total_fees"`
	TotalDiscount float64    `db:"total_discount" json:"total_discount"`
	CapReduction  float64    `db:"cap_reduction" json:"cap_reduction"`
	FinalTotal    float64    `db:"final_total" json:"final_total"`
	AmountPaid    float64    `db:"amount_paid" json:"amount_paid"`
	PaidAt        *time.Time `db:"paid_at" json:"paid_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// ChargeLineItem is one line on a posted charge.
type ChargeLineItem struct {
	ID          string  `db:"id" json:"id"`
	ChargeID    string  `db:"charge_id" json:"charge_id"`
	StudentID   *string `db:"student_id" json:"student_id,omitempty"`
	StudentName *string `db:"student_name" json:"student_name,omitempty"`
	Kind        string  `db:"kind" json:"kind"`
	Description string  `db:"description" json:"description"`
	Amount      float64 `db:"amount" json:"amount"`
}

// ChargeDetail is a charge with its line items.
type ChargeDetail struct {
	Charge
	LineItems []ChargeLineItem `json:"line_items"`
}

// ChargeError records a family whose posting run failed, for later review.
type ChargeError struct {
	ID        string    `db:"id" json:"id"`
	FamilyID  string    `db:"family_id" json:"family_id"`
	Month     int       `db:"month" json:"month"`
	Year      int       `db:"year" json:"year"`
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ChargeFilter encapsulates list parameters for charges.
type ChargeFilter struct {
	FamilyID string
	Month    int
	Year     int
	Status   string
	Page     int
	PageSize int
}

// ChargeSummary aggregates a billing period.
type ChargeSummary struct {
	Month            int     `db:"month" json:"month"`
	Year             int     `db:"year" json:"year"`
	ChargeCount      int     `db:"charge_count" json:"charge_count"`
	PaidCount        int     `db:"paid_count" json:"paid_count"`
	UnpaidCount      int     `db:"unpaid_count" json:"unpaid_count"`
	TotalBilled      float64 `db:"total_billed" json:"total_billed"`
	TotalCollected   float64 `db:"total_collected" json:"total_collected"`
	TotalOutstanding float64 `db:"total_outstanding" json:"total_outstanding"`
	TotalDiscount    float64 `db:"total_discount" json:"total_discount"`
}

// PostingRunResult summarizes one posting sweep.
type PostingRunResult struct {
	Month    int      `json:"month"`
	Year     int      `json:"year"`
	Posted   int      `json:"posted"`
	Skipped  int      `json:"skipped"`
	Failed   int      `json:"failed"`
	Failures []string `json:"failures,omitempty"`
}
