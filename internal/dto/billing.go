package dto

import "github.com/studiosync/billing-api/internal/models"

// CalculateChargeRequest captures POST /charges/calculate payload.
type CalculateChargeRequest struct {
	FamilyID string `json:"family_id" binding:"required"`
	AsOf     string `json:"as_of,omitempty"`
}

// PostChargesRequest captures POST /charges/post payload. Zero month and
// year default to the current billing period.
type PostChargesRequest struct {
	Month int `json:"month" binding:"omitempty,min=1,max=12"`
	Year  int `json:"year" binding:"omitempty,min=2000"`
}

// PostChargesResponse is returned after a posting sweep.
type PostChargesResponse struct {
	Result models.PostingRunResult `json:"result"`
}

// AutoPayRequest captures POST /payments/autopay payload.
type AutoPayRequest struct {
	Month int `json:"month" binding:"omitempty,min=1,max=12"`
	Year  int `json:"year" binding:"omitempty,min=2000"`
}
