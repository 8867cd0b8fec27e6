package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Fee stores a configured fee with its installment schedule as a JSONB
// document. Schedules originate from studio imports and are decoded
// defensively by the service layer.
type Fee struct {
	ID        string         `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	Recurring bool           `db:"recurring" json:"recurring"`
	Schedule  types.JSONText `db:"schedule" json:"schedule"`
	ClassID   *string        `db:"class_id" json:"class_id,omitempty"`
	StudentID *string        `db:"student_id" json:"student_id,omitempty"`
	FamilyID  *string        `db:"family_id" json:"family_id,omitempty"`
	Active    bool           `db:"active" json:"active"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}
