package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/studiosync/billing-api/internal/models"
)

// SettingsRepository manages the studio-wide billing settings row.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository constructs a SettingsRepository.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get fetches the billing settings. A missing row is not an error; callers
// receive nil and fall back to configuration defaults.
func (r *SettingsRepository) Get(ctx context.Context) (*models.BillingSettings, error) {
	query := `SELECT id, student_max, family_max, default_rate_plan_id, post_charges_day, updated_at
        FROM billing_settings ORDER BY updated_at DESC LIMIT 1`
	var settings models.BillingSettings
	if err := r.db.GetContext(ctx, &settings, query); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &settings, nil
}
