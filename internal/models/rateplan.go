package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// RatePlan stores a named pricing policy. HourRates and FamilyDiscount are
// JSONB documents; the service layer decodes them into billing types.
type RatePlan struct {
	ID             string         `db:"id" json:"id"`
	Name           string         `db:"name" json:"name"`
	HourRates      types.JSONText `db:"hour_rates" json:"hour_rates"`
	FamilyDiscount types.JSONText `db:"family_discount" json:"family_discount,omitempty"`
	IsDefault      bool           `db:"is_default" json:"is_default"`
	Active         bool           `db:"active" json:"active"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}
