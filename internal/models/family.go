package models

import (
	"time"

	"github.com/lib/pq"
)

// Family represents a billing account grouping one or more students.
type Family struct {
	ID              string         `db:"id" json:"id"`
	Name            string         `db:"name" json:"name"`
	Email           string         `db:"email" json:"email"`
	Balance         float64        `db:"balance" json:"balance"`
	PromoCodes      pq.StringArray `db:"promo_codes" json:"promo_codes"`
	AutoPayEnabled  bool           `db:"auto_pay_enabled" json:"auto_pay_enabled"`
	PaymentMethodID *string        `db:"payment_method_id" json:"payment_method_id,omitempty"`
	Active          bool           `db:"active" json:"active"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// Student represents a dancer enrolled under a family account.
type Student struct {
	ID         string         `db:"id" json:"id"`
	FamilyID   string         `db:"family_id" json:"family_id"`
	FullName   string         `db:"full_name" json:"full_name"`
	PromoCodes pq.StringArray `db:"promo_codes" json:"promo_codes"`
	Active     bool           `db:"active" json:"active"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
}

// FamilyFilter encapsulates allowed search parameters for listing families.
type FamilyFilter struct {
	Search   string
	Active   *bool
	Page     int
	PageSize int
}
