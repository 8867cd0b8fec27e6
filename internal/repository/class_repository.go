package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/studiosync/billing-api/internal/models"
)

// ClassRepository manages persistence for classes and enrollments.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a ClassRepository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// ListActiveByStudent returns the active classes a student is enrolled in,
// ordered by class ID.
func (r *ClassRepository) ListActiveByStudent(ctx context.Context, studentID string) ([]models.Class, error) {
	query := `SELECT c.id, c.name, c.duration_minutes, c.tuition, c.rate_plan_id, c.season_id, c.active, c.created_at, c.updated_at
        FROM classes c
        JOIN enrollments e ON e.class_id = c.id
        WHERE e.student_id = $1 AND c.active = TRUE
        ORDER BY c.id ASC`
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query, studentID); err != nil {
		return nil, fmt.Errorf("list classes for student %s: %w", studentID, err)
	}
	return classes, nil
}

// FindByID fetches a class by ID.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	query := `SELECT id, name, duration_minutes, tuition, rate_plan_id, season_id, active, created_at, updated_at
        FROM classes WHERE id = $1`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}
