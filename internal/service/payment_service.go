package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/studiosync/billing-api/internal/gateway"
	"github.com/studiosync/billing-api/internal/models"
	appErrors "github.com/studiosync/billing-api/pkg/errors"
)

// GatewayClient abstracts the card processor.
type GatewayClient interface {
	Charge(ctx context.Context, req gateway.ChargeRequest) (*gateway.ChargeResponse, error)
}

// PaymentRepository describes payment persistence required by PaymentService.
type PaymentRepository interface {
	Create(ctx context.Context, payment models.Payment) (string, error)
	ListByCharge(ctx context.Context, chargeID string) ([]models.Payment, error)
}

// PaymentService runs auto-pay sweeps over unpaid charges.
type PaymentService struct {
	gateway    GatewayClient
	payments   PaymentRepository
	charges    ChargeRepository
	families   FamilyRepository
	calculator ChargeCalculator
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewPaymentService constructs a payment service.
func NewPaymentService(gatewayClient GatewayClient, payments PaymentRepository, charges ChargeRepository, families FamilyRepository, calculator ChargeCalculator, metrics *MetricsService, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		gateway:    gatewayClient,
		payments:   payments,
		charges:    charges,
		families:   families,
		calculator: calculator,
		metrics:    metrics,
		logger:     logger,
	}
}

// RunAutoPay charges every unpaid charge of the period whose family has
// auto-pay enabled and a stored payment method. Declines and gateway
// failures are recorded per charge and never abort the sweep.
func (s *PaymentService) RunAutoPay(ctx context.Context, month, year int) (*models.AutoPayRunResult, error) {
	if month < 1 || month > 12 || year < 2000 {
		now := time.Now().UTC()
		month = int(now.Month())
		year = now.Year()
	}

	unpaid, err := s.charges.ListUnpaidForPeriod(ctx, month, year)
	if err != nil {
		return nil, fmt.Errorf("list unpaid charges: %w", err)
	}

	result := &models.AutoPayRunResult{}
	for _, charge := range unpaid {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		family, err := s.families.FindByID(ctx, charge.FamilyID)
		if err != nil {
			result.Failed++
			result.Failures = append(result.Failures, fmt.Sprintf("%s: load family: %v", charge.ID, err))
			continue
		}
		if !family.AutoPayEnabled || family.PaymentMethodID == nil {
			continue
		}
		if charge.FinalTotal-charge.AmountPaid <= 0 {
			continue
		}

		result.Attempted++
		switch s.chargeOne(ctx, charge, *family.PaymentMethodID) {
		case models.PaymentStatusSucceeded:
			result.Succeeded++
		case models.PaymentStatusDeclined:
			result.Declined++
		default:
			result.Failed++
			result.Failures = append(result.Failures, charge.ID)
		}
	}

	s.calculator.InvalidateSummaries(ctx)
	s.logger.Info("auto-pay run complete",
		zap.Int("month", month),
		zap.Int("year", year),
		zap.Int("attempted", result.Attempted),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("declined", result.Declined),
		zap.Int("failed", result.Failed))
	return result, nil
}

// chargeOne attempts one gateway charge and records the outcome. It returns
// the resulting payment status.
func (s *PaymentService) chargeOne(ctx context.Context, charge models.Charge, paymentMethodID string) string {
	outstanding := charge.FinalTotal - charge.AmountPaid
	resp, err := s.gateway.Charge(ctx, gateway.ChargeRequest{
		PaymentMethodID: paymentMethodID,
		AmountCents:     int64(math.Round(outstanding * 100)),
		Currency:        "usd",
		Description:     fmt.Sprintf("Tuition %d/%d", charge.Month, charge.Year),
		IdempotencyKey:  charge.ID,
	})

	payment := models.Payment{
		ChargeID: charge.ID,
		FamilyID: charge.FamilyID,
		Amount:   outstanding,
	}
	if resp != nil && resp.ID != "" {
		ref := resp.ID
		payment.GatewayRef = &ref
	}

	switch {
	case err == nil:
		payment.Status = models.PaymentStatusSucceeded
	case errors.Is(err, appErrors.ErrPaymentDeclined):
		payment.Status = models.PaymentStatusDeclined
		msg := err.Error()
		if resp != nil && resp.Message != "" {
			msg = resp.Message
		}
		payment.ErrorText = &msg
	default:
		payment.Status = models.PaymentStatusFailed
		msg := err.Error()
		payment.ErrorText = &msg
	}

	if s.metrics != nil {
		s.metrics.RecordGatewayAttempt(payment.Status)
	}
	if _, recErr := s.payments.Create(ctx, payment); recErr != nil {
		s.logger.Error("record payment", zap.String("charge_id", charge.ID), zap.Error(recErr))
	}

	if payment.Status != models.PaymentStatusSucceeded {
		s.logger.Warn("auto-pay attempt did not settle",
			zap.String("charge_id", charge.ID),
			zap.String("status", payment.Status))
		return payment.Status
	}

	paidAt := time.Now().UTC()
	if err := s.charges.MarkPaid(ctx, charge.ID, paidAt); err != nil {
		s.logger.Error("mark charge paid", zap.String("charge_id", charge.ID), zap.Error(err))
		return models.PaymentStatusFailed
	}
	if err := s.families.AddToBalance(ctx, charge.FamilyID, -outstanding); err != nil {
		s.logger.Error("reduce family balance", zap.String("family_id", charge.FamilyID), zap.Error(err))
	}
	return models.PaymentStatusSucceeded
}
