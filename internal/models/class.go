package models

import "time"

// Class represents a scheduled dance class offering.
type Class struct {
	ID              string    `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	DurationMinutes float64   `db:"duration_minutes" json:"duration_minutes"`
	Tuition         float64   `db:"tuition" json:"tuition"`
	RatePlanID      *string   `db:"rate_plan_id" json:"rate_plan_id,omitempty"`
	SeasonID        *string   `db:"season_id" json:"season_id,omitempty"`
	Active          bool      `db:"active" json:"active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Enrollment links a student to a class.
type Enrollment struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	ClassID   string    `db:"class_id" json:"class_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
