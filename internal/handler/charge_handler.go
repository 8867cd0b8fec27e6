package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/studiosync/billing-api/internal/billing"
	"github.com/studiosync/billing-api/internal/dto"
	"github.com/studiosync/billing-api/internal/middleware"
	"github.com/studiosync/billing-api/internal/models"
	appErrors "github.com/studiosync/billing-api/pkg/errors"
	"github.com/studiosync/billing-api/pkg/response"
)

// chargeService mirrors the ChargeService methods the handler consumes.
type chargeService interface {
	Calculate(ctx context.Context, familyID string, asOf time.Time) (*billing.Result, error)
	GetCharge(ctx context.Context, id string) (*models.ChargeDetail, error)
	ListCharges(ctx context.Context, filter models.ChargeFilter) ([]models.Charge, *models.Pagination, error)
	Summary(ctx context.Context, month, year int) (*models.ChargeSummary, bool, error)
}

// statementExporter renders charge statements.
type statementExporter interface {
	Statement(ctx context.Context, chargeID, format string) ([]byte, string, string, error)
}

// ChargeHandler exposes charge calculation and reporting endpoints.
type ChargeHandler struct {
	charges  chargeService
	exporter statementExporter
}

// NewChargeHandler constructs the charge handler.
func NewChargeHandler(charges chargeService, exporter statementExporter) *ChargeHandler {
	return &ChargeHandler{charges: charges, exporter: exporter}
}

// Calculate godoc
// @Summary Calculate a family's current charges
// @Tags Charges
// @Accept json
// @Produce json
// @Param payload body dto.CalculateChargeRequest true "Calculation request"
// @Success 200 {object} response.Envelope
// @Router /charges/calculate [post]
func (h *ChargeHandler) Calculate(c *gin.Context) {
	if h.charges == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "charge service not configured"))
		return
	}
	var req dto.CalculateChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "family_id is required"))
		return
	}

	asOf := time.Time{}
	if req.AsOf != "" {
		parsed, err := time.Parse("2006-01-02", req.AsOf)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "as_of must be YYYY-MM-DD"))
			return
		}
		asOf = parsed
	}

	result, err := h.charges.Calculate(c.Request.Context(), req.FamilyID, asOf)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Get godoc
// @Summary Get a posted charge with line items
// @Tags Charges
// @Produce json
// @Param id path string true "Charge ID"
// @Success 200 {object} response.Envelope
// @Router /charges/{id} [get]
func (h *ChargeHandler) Get(c *gin.Context) {
	if h.charges == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "charge service not configured"))
		return
	}
	detail, err := h.charges.GetCharge(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// List godoc
// @Summary List posted charges
// @Tags Charges
// @Produce json
// @Param family_id query string false "Family filter"
// @Param month query int false "Billing month"
// @Param year query int false "Billing year"
// @Param status query string false "Charge status"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /charges [get]
func (h *ChargeHandler) List(c *gin.Context) {
	if h.charges == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "charge service not configured"))
		return
	}
	filter := models.ChargeFilter{
		FamilyID: c.Query("family_id"),
		Status:   c.Query("status"),
		Month:    queryInt(c, "month"),
		Year:     queryInt(c, "year"),
		Page:     queryInt(c, "page"),
		PageSize: queryInt(c, "page_size"),
	}

	charges, pagination, err := h.charges.ListCharges(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, charges, pagination)
}

// Summary godoc
// @Summary Aggregate one billing period
// @Tags Charges
// @Produce json
// @Param month query int true "Billing month"
// @Param year query int true "Billing year"
// @Success 200 {object} response.Envelope
// @Router /charges/summary [get]
func (h *ChargeHandler) Summary(c *gin.Context) {
	if h.charges == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "charge service not configured"))
		return
	}
	month := queryInt(c, "month")
	year := queryInt(c, "year")
	if month < 1 || month > 12 || year < 2000 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "month and year are required"))
		return
	}

	summary, cacheHit, err := h.charges.Summary(c.Request.Context(), month, year)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, summary, nil, middleware.ExtractMeta(c))
}

// Statement godoc
// @Summary Download a charge statement
// @Tags Charges
// @Produce application/pdf
// @Param id path string true "Charge ID"
// @Param format query string false "pdf or csv" default(pdf)
// @Success 200 {file} binary
// @Router /charges/{id}/statement [get]
func (h *ChargeHandler) Statement(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export service not configured"))
		return
	}
	payload, contentType, filename, err := h.exporter.Statement(c.Request.Context(), c.Param("id"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, payload)
}

func queryInt(c *gin.Context, key string) int {
	raw := c.Query(key)
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}
