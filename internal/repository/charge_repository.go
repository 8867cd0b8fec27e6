package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/studiosync/billing-api/internal/models"
)

// ChargeRepository manages posted charges and their line items.
type ChargeRepository struct {
	db *sqlx.DB
}

// NewChargeRepository constructs a ChargeRepository.
func NewChargeRepository(db *sqlx.DB) *ChargeRepository {
	return &ChargeRepository{db: db}
}

// ExistsForPeriod reports whether a family already has a charge for the
// billing period. Posting sweeps use this to dedupe re-runs.
func (r *ChargeRepository) ExistsForPeriod(ctx context.Context, familyID string, month, year int) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists,
		"SELECT 1 FROM charges WHERE family_id = $1 AND month = $2 AND year = $3 LIMIT 1",
		familyID, month, year)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check charge exists: %w", err)
	}
	return true, nil
}

// Create inserts a charge header and its line items in one transaction and
// returns the generated charge ID.
func (r *ChargeRepository) Create(ctx context.Context, charge models.Charge, items []models.ChargeLineItem) (string, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin create charge tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	chargeID := charge.ID
	if chargeID == "" {
		chargeID = uuid.NewString()
	}
	now := time.Now().UTC()

	_, err = tx.ExecContext(ctx, `INSERT INTO charges
        (id, family_id, family_name, month, year, status, total_tuition, total_fees, total_discount, cap_reduction, final_total, amount_paid, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)`,
		chargeID, charge.FamilyID, charge.FamilyName, charge.Month, charge.Year, charge.Status,
		charge.TotalTuition, charge.TotalFees, charge.TotalDiscount, charge.CapReduction, charge.FinalTotal, charge.AmountPaid, now)
	if err != nil {
		return "", fmt.Errorf("insert charge: %w", err)
	}

	for _, item := range items {
		itemID := item.ID
		if itemID == "" {
			itemID = uuid.NewString()
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO charge_line_items
            (id, charge_id, student_id, student_name, kind, description, amount)
            VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			itemID, chargeID, item.StudentID, item.StudentName, item.Kind, item.Description, item.Amount)
		if err != nil {
			return "", fmt.Errorf("insert charge line item: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("commit create charge tx: %w", err)
	}
	return chargeID, nil
}

// FindByID fetches a charge with its line items.
func (r *ChargeRepository) FindByID(ctx context.Context, id string) (*models.ChargeDetail, error) {
	query := `SELECT id, family_id, family_name, month, year, status, total_tuition, total_fees, total_discount, cap_reduction, final_total, amount_paid, paid_at, created_at, updated_at
        FROM charges WHERE id = $1`
	var detail models.ChargeDetail
	if err := r.db.GetContext(ctx, &detail.Charge, query, id); err != nil {
		return nil, err
	}

	itemsQuery := `SELECT id, charge_id, student_id, student_name, kind, description, amount
        FROM charge_line_items WHERE charge_id = $1 ORDER BY id ASC`
	if err := r.db.SelectContext(ctx, &detail.LineItems, itemsQuery, id); err != nil {
		return nil, fmt.Errorf("list charge line items: %w", err)
	}
	return &detail, nil
}

// List returns charges matching the provided filters.
func (r *ChargeRepository) List(ctx context.Context, filter models.ChargeFilter) ([]models.Charge, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.FamilyID != "" {
		conditions = append(conditions, fmt.Sprintf("family_id = $%d", len(args)+1))
		args = append(args, filter.FamilyID)
	}
	if filter.Month > 0 {
		conditions = append(conditions, fmt.Sprintf("month = $%d", len(args)+1))
		args = append(args, filter.Month)
	}
	if filter.Year > 0 {
		conditions = append(conditions, fmt.Sprintf("year = $%d", len(args)+1))
		args = append(args, filter.Year)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
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

	query := fmt.Sprintf(`SELECT id, family_id, family_name, month, year, status, total_tuition, total_fees, total_discount, cap_reduction, final_total, amount_paid, paid_at, created_at, updated_at
        FROM charges WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`, where, size, offset)

	var charges []models.Charge
	if err := r.db.SelectContext(ctx, &charges, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list charges: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM charges WHERE %s", where), args...); err != nil {
		return nil, 0, fmt.Errorf("count charges: %w", err)
	}
	return charges, total, nil
}

// Summary aggregates the billing period.
func (r *ChargeRepository) Summary(ctx context.Context, month, year int) (*models.ChargeSummary, error) {
	query := `SELECT
            $1::int AS month,
            $2::int AS year,
            COUNT(*) AS charge_count,
            COUNT(*) FILTER (WHERE status = 'Paid') AS paid_count,
            COUNT(*) FILTER (WHERE status <> 'Paid') AS unpaid_count,
            COALESCE(SUM(final_total), 0) AS total_billed,
            COALESCE(SUM(final_total) FILTER (WHERE status = 'Paid'), 0) AS total_collected,
            COALESCE(SUM(final_total) FILTER (WHERE status <> 'Paid'), 0) AS total_outstanding,
            COALESCE(SUM(total_discount), 0) AS total_discount
        FROM charges WHERE month = $1 AND year = $2`
	var summary models.ChargeSummary
	if err := r.db.GetContext(ctx, &summary, query, month, year); err != nil {
		return nil, fmt.Errorf("charge summary: %w", err)
	}
	return &summary, nil
}

// ListUnpaidForPeriod returns the unpaid charges of one billing period,
// ordered by ID for a deterministic auto-pay sweep.
func (r *ChargeRepository) ListUnpaidForPeriod(ctx context.Context, month, year int) ([]models.Charge, error) {
	query := `SELECT id, family_id, family_name, month, year, status, total_tuition, total_fees, total_discount, cap_reduction, final_total, amount_paid, paid_at, created_at, updated_at
        FROM charges WHERE month = $1 AND year = $2 AND status = 'Unpaid' ORDER BY id ASC`
	var charges []models.Charge
	if err := r.db.SelectContext(ctx, &charges, query, month, year); err != nil {
		return nil, fmt.Errorf("list unpaid charges: %w", err)
	}
	return charges, nil
}

// MarkPaid transitions a charge to paid.
func (r *ChargeRepository) MarkPaid(ctx context.Context, id string, paidAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE charges SET status = 'Paid', amount_paid = final_total, paid_at = $2, updated_at = NOW() WHERE id = $1",
		id, paidAt)
	if err != nil {
		return fmt.Errorf("mark charge paid: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark charge paid: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// RecordError stores a posting failure for later review.
func (r *ChargeRepository) RecordError(ctx context.Context, chargeErr models.ChargeError) error {
	id := chargeErr.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO charge_errors (id, family_id, month, year, message, created_at)
        VALUES ($1, $2, $3, $4, $5, NOW())`,
		id, chargeErr.FamilyID, chargeErr.Month, chargeErr.Year, chargeErr.Message)
	if err != nil {
		return fmt.Errorf("record charge error: %w", err)
	}
	return nil
}
