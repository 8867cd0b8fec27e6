package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/studiosync/billing-api/internal/models"
)

// FeeRepository manages persistence for fees.
type FeeRepository struct {
	db *sqlx.DB
}

// NewFeeRepository constructs a FeeRepository.
func NewFeeRepository(db *sqlx.DB) *FeeRepository {
	return &FeeRepository{db: db}
}

// ListActiveForFamily returns the active fees touching a family: fees bound
// to the family itself, to any of its students, or to any of the classes
// those students are enrolled in.
func (r *FeeRepository) ListActiveForFamily(ctx context.Context, familyID string, studentIDs, classIDs []string) ([]models.Fee, error) {
	query := `SELECT id, name, recurring, schedule, class_id, student_id, family_id, active, created_at, updated_at
        FROM fees
        WHERE active = TRUE
          AND (family_id = $1 OR student_id = ANY($2) OR class_id = ANY($3))
        ORDER BY id ASC`
	var fees []models.Fee
	if err := r.db.SelectContext(ctx, &fees, query, familyID, pq.Array(studentIDs), pq.Array(classIDs)); err != nil {
		return nil, fmt.Errorf("list fees for family %s: %w", familyID, err)
	}
	return fees, nil
}
