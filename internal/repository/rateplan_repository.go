package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/studiosync/billing-api/internal/models"
)

// RatePlanRepository manages persistence for rate plans.
type RatePlanRepository struct {
	db *sqlx.DB
}

// NewRatePlanRepository constructs a RatePlanRepository.
func NewRatePlanRepository(db *sqlx.DB) *RatePlanRepository {
	return &RatePlanRepository{db: db}
}

// ListActive returns every active rate plan.
func (r *RatePlanRepository) ListActive(ctx context.Context) ([]models.RatePlan, error) {
	query := `SELECT id, name, hour_rates, family_discount, is_default, active, created_at, updated_at
        FROM rate_plans WHERE active = TRUE ORDER BY id ASC`
	var plans []models.RatePlan
	if err := r.db.SelectContext(ctx, &plans, query); err != nil {
		return nil, fmt.Errorf("list rate plans: %w", err)
	}
	return plans, nil
}

// FindDefault fetches the studio's default rate plan, if one is flagged.
func (r *RatePlanRepository) FindDefault(ctx context.Context) (*models.RatePlan, error) {
	query := `SELECT id, name, hour_rates, family_discount, is_default, active, created_at, updated_at
        FROM rate_plans WHERE is_default = TRUE AND active = TRUE LIMIT 1`
	var plan models.RatePlan
	if err := r.db.GetContext(ctx, &plan, query); err != nil {
		return nil, err
	}
	return &plan, nil
}
