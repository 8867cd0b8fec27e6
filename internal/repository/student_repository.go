package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/studiosync/billing-api/internal/models"
)

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// ListActiveByFamily returns the active students for one family, ordered by
// ID so charge breakdowns come out in a stable order.
func (r *StudentRepository) ListActiveByFamily(ctx context.Context, familyID string) ([]models.Student, error) {
	query := `SELECT id, family_id, full_name, promo_codes, active, created_at, updated_at
        FROM students WHERE family_id = $1 AND active = TRUE ORDER BY id ASC`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, familyID); err != nil {
		return nil, fmt.Errorf("list students for family %s: %w", familyID, err)
	}
	return students, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := `SELECT id, family_id, full_name, promo_codes, active, created_at, updated_at
        FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}
