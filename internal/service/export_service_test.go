package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studiosync/billing-api/internal/models"
	appErrors "github.com/studiosync/billing-api/pkg/errors"
)

type stubChargeReader struct {
	detail *models.ChargeDetail
	err    error
}

func (s *stubChargeReader) GetCharge(_ context.Context, _ string) (*models.ChargeDetail, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.detail, nil
}

func statementFixture() *models.ChargeDetail {
	ada := "Ada"
	return &models.ChargeDetail{
		Charge: models.Charge{
			ID:         "chg-1",
			FamilyID:   "fam-1",
			FamilyName: "Lovelace",
			Month:      1,
			Year:       2026,
			Status:     models.ChargeStatusUnpaid,
			FinalTotal: 152,
		},
		LineItems: []models.ChargeLineItem{
			{StudentName: &ada, Kind: models.LineItemTuition, Description: "Tuition", Amount: 140},
			{StudentName: &ada, Kind: models.LineItemFee, Description: "Registration", Amount: 35},
			{Kind: models.LineItemDiscount, Description: "Multi-Student Discount", Amount: -23},
		},
	}
}

func TestStatementCSV(t *testing.T) {
	svc := NewExportService(&stubChargeReader{detail: statementFixture()}, zap.NewNop())

	payload, contentType, filename, err := svc.Statement(context.Background(), "chg-1", "csv")
	require.NoError(t, err)

	assert.Equal(t, "text/csv", contentType)
	assert.Equal(t, "statement-fam-1-2026-01.csv", filename)

	body := string(payload)
	assert.Contains(t, body, "Family: Lovelace")
	assert.Contains(t, body, "Registration")
	assert.Contains(t, body, "Total Due")
	assert.Contains(t, body, "152.00")
}

func TestStatementPDF(t *testing.T) {
	svc := NewExportService(&stubChargeReader{detail: statementFixture()}, zap.NewNop())

	payload, contentType, filename, err := svc.Statement(context.Background(), "chg-1", "pdf")
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", contentType)
	assert.True(t, strings.HasSuffix(filename, ".pdf"))
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")))
}

func TestStatementDefaultsToPDF(t *testing.T) {
	svc := NewExportService(&stubChargeReader{detail: statementFixture()}, zap.NewNop())

	_, contentType, _, err := svc.Statement(context.Background(), "chg-1", "")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
}

func TestStatementRejectsUnknownFormat(t *testing.T) {
	svc := NewExportService(&stubChargeReader{detail: statementFixture()}, zap.NewNop())

	_, _, _, err := svc.Statement(context.Background(), "chg-1", "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStatementPropagatesNotFound(t *testing.T) {
	svc := NewExportService(&stubChargeReader{err: appErrors.Clone(appErrors.ErrNotFound, "charge not found")}, zap.NewNop())

	_, _, _, err := svc.Statement(context.Background(), "ghost", "csv")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
