package models

import "time"

// BillingSettings holds the studio-wide billing configuration row. Zero cap
// values mean the cap is disabled.
type BillingSettings struct {
	ID                string    `db:"id" json:"id"`
	StudentMax        float64   `db:"student_max" json:"student_max"`
	FamilyMax         float64   `db:"family_max" json:"family_max"`
	DefaultRatePlanID *string   `db:"default_rate_plan_id" json:"default_rate_plan_id,omitempty"`
	PostChargesDay    int       `db:"post_charges_day" json:"post_charges_day"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}
