package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studiosync/billing-api/internal/dto"
	"github.com/studiosync/billing-api/internal/models"
	appErrors "github.com/studiosync/billing-api/pkg/errors"
	"github.com/studiosync/billing-api/pkg/response"
)

// paymentService mirrors the PaymentService methods the handler consumes.
type paymentService interface {
	RunAutoPay(ctx context.Context, month, year int) (*models.AutoPayRunResult, error)
}

// PaymentHandler exposes the auto-pay sweep.
type PaymentHandler struct {
	payments paymentService
}

// NewPaymentHandler constructs the payment handler.
func NewPaymentHandler(payments paymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// AutoPay godoc
// @Summary Run the auto-pay sweep for a billing period
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body dto.AutoPayRequest false "Billing period, defaults to the current month"
// @Success 200 {object} response.Envelope
// @Router /payments/autopay [post]
func (h *PaymentHandler) AutoPay(c *gin.Context) {
	if h.payments == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "payment service not configured"))
		return
	}
	var req dto.AutoPayRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid auto-pay payload"))
			return
		}
	}

	result, err := h.payments.RunAutoPay(c.Request.Context(), req.Month, req.Year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
