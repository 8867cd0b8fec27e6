package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiosync/billing-api/internal/billing"
	"github.com/studiosync/billing-api/internal/models"
	appErrors "github.com/studiosync/billing-api/pkg/errors"
	"github.com/studiosync/billing-api/pkg/response"
)

type fakeChargeSrv struct {
	result     *billing.Result
	calcErr    error
	lastFamily string
	lastAsOf   time.Time
	detail     *models.ChargeDetail
	summary    *models.ChargeSummary
	summaryHit bool
}

func (f *fakeChargeSrv) Calculate(_ context.Context, familyID string, asOf time.Time) (*billing.Result, error) {
	f.lastFamily = familyID
	f.lastAsOf = asOf
	return f.result, f.calcErr
}

func (f *fakeChargeSrv) GetCharge(_ context.Context, id string) (*models.ChargeDetail, error) {
	if f.detail == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "charge not found")
	}
	return f.detail, nil
}

func (f *fakeChargeSrv) ListCharges(_ context.Context, filter models.ChargeFilter) ([]models.Charge, *models.Pagination, error) {
	return []models.Charge{}, &models.Pagination{Page: 1, PageSize: 20}, nil
}

func (f *fakeChargeSrv) Summary(_ context.Context, month, year int) (*models.ChargeSummary, bool, error) {
	if f.summary == nil {
		return &models.ChargeSummary{Month: month, Year: year}, f.summaryHit, nil
	}
	return f.summary, f.summaryHit, nil
}

type fakeExporter struct {
	payload []byte
	err     error
}

func (f *fakeExporter) Statement(_ context.Context, chargeID, format string) ([]byte, string, string, error) {
	if f.err != nil {
		return nil, "", "", f.err
	}
	return f.payload, "text/csv", "statement.csv", nil
}

func postJSON(handler gin.HandlerFunc, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/charges/calculate", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	handler(c)
	return rec
}

func TestChargeHandlerCalculateRequiresFamilyID(t *testing.T) {
	handler := NewChargeHandler(&fakeChargeSrv{}, nil)
	rec := postJSON(handler.Calculate, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChargeHandlerCalculateRejectsBadDate(t *testing.T) {
	handler := NewChargeHandler(&fakeChargeSrv{}, nil)
	rec := postJSON(handler.Calculate, `{"family_id": "fam-1", "as_of": "tomorrow"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChargeHandlerCalculateSuccess(t *testing.T) {
	srv := &fakeChargeSrv{result: &billing.Result{
		Success:    true,
		ChargeData: &billing.ChargeData{FinalTotal: 152},
	}}
	handler := NewChargeHandler(srv, nil)

	rec := postJSON(handler.Calculate, `{"family_id": "fam-1", "as_of": "2026-01-15"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fam-1", srv.lastFamily)
	assert.Equal(t, 2026, srv.lastAsOf.Year())

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Data)
}

func TestChargeHandlerCalculateEngineFailureStillOK(t *testing.T) {
	// Engine failures ride inside the envelope with HTTP 200; transport
	// errors are reserved for persistence problems.
	srv := &fakeChargeSrv{result: &billing.Result{Success: false, Error: "no students supplied"}}
	handler := NewChargeHandler(srv, nil)

	rec := postJSON(handler.Calculate, `{"family_id": "fam-1"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "no students supplied")
}

func TestChargeHandlerGetNotFound(t *testing.T) {
	handler := NewChargeHandler(&fakeChargeSrv{}, nil)

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/charges/ghost", nil)
	c.Params = gin.Params{{Key: "id", Value: "ghost"}}

	handler.Get(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChargeHandlerSummaryRequiresPeriod(t *testing.T) {
	handler := NewChargeHandler(&fakeChargeSrv{}, nil)

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/charges/summary", nil)

	handler.Summary(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChargeHandlerSummarySuccess(t *testing.T) {
	handler := NewChargeHandler(&fakeChargeSrv{summary: &models.ChargeSummary{Month: 1, Year: 2026, ChargeCount: 4}}, nil)

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/charges/summary?month=1&year=2026", nil)

	handler.Summary(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"charge_count":4`)
}

func TestChargeHandlerStatementDownload(t *testing.T) {
	handler := NewChargeHandler(&fakeChargeSrv{}, &fakeExporter{payload: []byte("Student,Amount\n")})

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/charges/chg-1/statement?format=csv", nil)
	c.Params = gin.Params{{Key: "id", Value: "chg-1"}}

	handler.Statement(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "statement.csv")
}
