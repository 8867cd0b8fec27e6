package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studiosync/billing-api/internal/gateway"
	"github.com/studiosync/billing-api/internal/models"
	appErrors "github.com/studiosync/billing-api/pkg/errors"
)

type stubGateway struct {
	responses map[string]*gateway.ChargeResponse
	errs      map[string]error
	requests  []gateway.ChargeRequest
}

func (s *stubGateway) Charge(_ context.Context, req gateway.ChargeRequest) (*gateway.ChargeResponse, error) {
	s.requests = append(s.requests, req)
	if err, ok := s.errs[req.IdempotencyKey]; ok {
		return s.responses[req.IdempotencyKey], err
	}
	resp, ok := s.responses[req.IdempotencyKey]
	if !ok {
		resp = &gateway.ChargeResponse{ID: "ref-" + req.IdempotencyKey, Status: "succeeded"}
	}
	return resp, nil
}

type mockPaymentRepo struct {
	payments []models.Payment
}

func (m *mockPaymentRepo) Create(_ context.Context, payment models.Payment) (string, error) {
	m.payments = append(m.payments, payment)
	return "pay-1", nil
}

func (m *mockPaymentRepo) ListByCharge(_ context.Context, _ string) ([]models.Payment, error) {
	return m.payments, nil
}

func autoPayFixture() (*stubGateway, *mockPaymentRepo, *mockChargeRepo, *mockFamilyRepo, *stubCalculator) {
	gw := &stubGateway{responses: map[string]*gateway.ChargeResponse{}, errs: map[string]error{}}
	payments := &mockPaymentRepo{}
	charges := &mockChargeRepo{unpaid: []models.Charge{
		{ID: "chg-1", FamilyID: "fam-1", Month: 1, Year: 2026, Status: models.ChargeStatusUnpaid, FinalTotal: 152},
		{ID: "chg-2", FamilyID: "fam-2", Month: 1, Year: 2026, Status: models.ChargeStatusUnpaid, FinalTotal: 90},
	}}
	families := &mockFamilyRepo{families: map[string]*models.Family{
		"fam-1": {ID: "fam-1", Name: "Lovelace", AutoPayEnabled: true, PaymentMethodID: strPtr("pm-1")},
		"fam-2": {ID: "fam-2", Name: "Hopper", AutoPayEnabled: false},
	}}
	return gw, payments, charges, families, &stubCalculator{}
}

func TestAutoPayChargesEnabledFamilies(t *testing.T) {
	gw, payments, charges, families, calc := autoPayFixture()

	svc := NewPaymentService(gw, payments, charges, families, calc, nil, zap.NewNop())
	result, err := svc.RunAutoPay(context.Background(), 1, 2026)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Attempted)
	assert.Equal(t, 1, result.Succeeded)

	// Amount converts to cents with the charge ID as idempotency key.
	require.Len(t, gw.requests, 1)
	assert.Equal(t, int64(15200), gw.requests[0].AmountCents)
	assert.Equal(t, "chg-1", gw.requests[0].IdempotencyKey)

	require.Len(t, payments.payments, 1)
	assert.Equal(t, models.PaymentStatusSucceeded, payments.payments[0].Status)
	assert.Equal(t, []string{"chg-1"}, charges.paid)
	assert.Equal(t, -152.0, families.balances["fam-1"])
	assert.Equal(t, 1, calc.invalidated)
}

func TestAutoPayChargesOnlyOutstandingBalance(t *testing.T) {
	gw, payments, charges, families, calc := autoPayFixture()
	charges.unpaid[0].AmountPaid = 52

	svc := NewPaymentService(gw, payments, charges, families, calc, nil, zap.NewNop())
	result, err := svc.RunAutoPay(context.Background(), 1, 2026)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
	require.Len(t, gw.requests, 1)
	assert.Equal(t, int64(10000), gw.requests[0].AmountCents)
	assert.Equal(t, -100.0, families.balances["fam-1"])
}

func TestAutoPaySkipsSettledCharges(t *testing.T) {
	gw, payments, charges, families, calc := autoPayFixture()
	charges.unpaid[0].AmountPaid = 152

	svc := NewPaymentService(gw, payments, charges, families, calc, nil, zap.NewNop())
	result, err := svc.RunAutoPay(context.Background(), 1, 2026)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Attempted)
	assert.Empty(t, gw.requests)
	assert.Empty(t, payments.payments)
}

func TestAutoPayRecordsDeclineWithoutMarkingPaid(t *testing.T) {
	gw, payments, charges, families, calc := autoPayFixture()
	gw.errs["chg-1"] = appErrors.ErrPaymentDeclined
	gw.responses["chg-1"] = &gateway.ChargeResponse{ID: "ref-1", Declined: true, Message: "insufficient funds"}

	svc := NewPaymentService(gw, payments, charges, families, calc, nil, zap.NewNop())
	result, err := svc.RunAutoPay(context.Background(), 1, 2026)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Declined)
	assert.Equal(t, 0, result.Succeeded)

	require.Len(t, payments.payments, 1)
	payment := payments.payments[0]
	assert.Equal(t, models.PaymentStatusDeclined, payment.Status)
	require.NotNil(t, payment.ErrorText)
	assert.Equal(t, "insufficient funds", *payment.ErrorText)
	require.NotNil(t, payment.GatewayRef)
	assert.Equal(t, "ref-1", *payment.GatewayRef)
	assert.Empty(t, charges.paid)
}

func TestAutoPayGatewayFailureDoesNotAbortSweep(t *testing.T) {
	gw, payments, charges, families, calc := autoPayFixture()
	charges.unpaid = append(charges.unpaid, models.Charge{
		ID: "chg-3", FamilyID: "fam-3", Month: 1, Year: 2026, Status: models.ChargeStatusUnpaid, FinalTotal: 60,
	})
	families.families["fam-3"] = &models.Family{ID: "fam-3", AutoPayEnabled: true, PaymentMethodID: strPtr("pm-3")}
	gw.errs["chg-1"] = errors.New("connection reset")

	svc := NewPaymentService(gw, payments, charges, families, calc, nil, zap.NewNop())
	result, err := svc.RunAutoPay(context.Background(), 1, 2026)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Attempted)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Succeeded)
	require.Len(t, payments.payments, 2)
	assert.Equal(t, models.PaymentStatusFailed, payments.payments[0].Status)
}

func TestAutoPaySkipsFamiliesWithoutPaymentMethod(t *testing.T) {
	gw, payments, charges, families, calc := autoPayFixture()
	families.families["fam-1"].PaymentMethodID = nil

	svc := NewPaymentService(gw, payments, charges, families, calc, nil, zap.NewNop())
	result, err := svc.RunAutoPay(context.Background(), 1, 2026)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Attempted)
	assert.Empty(t, payments.payments)
}
