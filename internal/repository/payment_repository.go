package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/studiosync/billing-api/internal/models"
)

// PaymentRepository manages records of gateway charge attempts.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs a PaymentRepository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts a payment record and returns its ID.
func (r *PaymentRepository) Create(ctx context.Context, payment models.Payment) (string, error) {
	id := payment.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO payments (id, charge_id, family_id, amount, status, gateway_ref, error_text, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`,
		id, payment.ChargeID, payment.FamilyID, payment.Amount, payment.Status, payment.GatewayRef, payment.ErrorText)
	if err != nil {
		return "", fmt.Errorf("insert payment: %w", err)
	}
	return id, nil
}

// ListByCharge returns the payment attempts against one charge.
func (r *PaymentRepository) ListByCharge(ctx context.Context, chargeID string) ([]models.Payment, error) {
	query := `SELECT id, charge_id, family_id, amount, status, gateway_ref, error_text, created_at
        FROM payments WHERE charge_id = $1 ORDER BY created_at ASC`
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, chargeID); err != nil {
		return nil, fmt.Errorf("list payments for charge %s: %w", chargeID, err)
	}
	return payments, nil
}
