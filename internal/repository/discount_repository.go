package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/studiosync/billing-api/internal/models"
)

// DiscountRepository manages persistence for discounts.
type DiscountRepository struct {
	db *sqlx.DB
}

// NewDiscountRepository constructs a DiscountRepository.
func NewDiscountRepository(db *sqlx.DB) *DiscountRepository {
	return &DiscountRepository{db: db}
}

// ListActive returns every active discount.
func (r *DiscountRepository) ListActive(ctx context.Context) ([]models.Discount, error) {
	query := `SELECT id, name, association_type, association_item_id, discount_type, amount, discount_code, active, created_at, updated_at
        FROM discounts WHERE active = TRUE ORDER BY id ASC`
	var discounts []models.Discount
	if err := r.db.SelectContext(ctx, &discounts, query); err != nil {
		return nil, fmt.Errorf("list discounts: %w", err)
	}
	return discounts, nil
}
