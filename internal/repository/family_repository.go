package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/studiosync/billing-api/internal/models"
)

// FamilyRepository manages persistence for family accounts.
type FamilyRepository struct {
	db *sqlx.DB
}

// NewFamilyRepository constructs a FamilyRepository.
func NewFamilyRepository(db *sqlx.DB) *FamilyRepository {
	return &FamilyRepository{db: db}
}

// List returns families matching the provided filters.
func (r *FamilyRepository) List(ctx context.Context, filter models.FamilyFilter) ([]models.Family, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(email) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	where := strings.Join(conditions, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, name, email, balance, promo_codes, auto_pay_enabled, payment_method_id, active, created_at, updated_at
        FROM families WHERE %s ORDER BY name ASC LIMIT %d OFFSET %d`, where, size, offset)

	var families []models.Family
	if err := r.db.SelectContext(ctx, &families, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list families: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM families WHERE %s", where), args...); err != nil {
		return nil, 0, fmt.Errorf("count families: %w", err)
	}
	return families, total, nil
}

// FindByID fetches a family by ID.
func (r *FamilyRepository) FindByID(ctx context.Context, id string) (*models.Family, error) {
	query := `SELECT id, name, email, balance, promo_codes, auto_pay_enabled, payment_method_id, active, created_at, updated_at
        FROM families WHERE id = $1`
	var family models.Family
	if err := r.db.GetContext(ctx, &family, query, id); err != nil {
		return nil, err
	}
	return &family, nil
}

// ListActive returns every active family, in stable ID order so posting
// sweeps process deterministically.
func (r *FamilyRepository) ListActive(ctx context.Context) ([]models.Family, error) {
	query := `SELECT id, name, email, balance, promo_codes, auto_pay_enabled, payment_method_id, active, created_at, updated_at
        FROM families WHERE active = TRUE ORDER BY id ASC`
	var families []models.Family
	if err := r.db.SelectContext(ctx, &families, query); err != nil {
		return nil, fmt.Errorf("list active families: %w", err)
	}
	return families, nil
}

// AddToBalance increments a family's balance by the given amount.
func (r *FamilyRepository) AddToBalance(ctx context.Context, id string, amount float64) error {
	result, err := r.db.ExecContext(ctx, "UPDATE families SET balance = balance + $2, updated_at = NOW() WHERE id = $1", id, amount)
	if err != nil {
		return fmt.Errorf("update family balance: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update family balance: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
