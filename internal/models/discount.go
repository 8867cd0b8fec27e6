package models

import "time"

// Discount represents one configured discount row.
type Discount struct {
	ID                string    `db:"id" json:"id"`
	Name              string    `db:"name" json:"name"`
	AssociationType   string    `db:"association_type" json:"association_type"`
	AssociationItemID *string   `db:"association_item_id" json:"association_item_id,omitempty"`
	DiscountType      string    `db:"discount_type" json:"discount_type"`
	Amount            float64   `db:"amount" json:"amount"`
	DiscountCode      *string   `db:"discount_code" json:"discount_code,omitempty"`
	Active            bool      `db:"active" json:"active"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}
