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

// postingService mirrors the PostingService methods the handler consumes.
type postingService interface {
	Run(ctx context.Context, month, year int) (*models.PostingRunResult, error)
}

// PostingHandler exposes the charge posting sweep.
type PostingHandler struct {
	posting postingService
}

// NewPostingHandler constructs the posting handler.
func NewPostingHandler(posting postingService) *PostingHandler {
	return &PostingHandler{posting: posting}
}

// Post godoc
// @Summary Post charges for a billing period
// @Tags Posting
// @Accept json
// @Produce json
// @Param payload body dto.PostChargesRequest false "Billing period, defaults to the current month"
// @Success 200 {object} response.Envelope
// @Router /charges/post [post]
func (h *PostingHandler) Post(c *gin.Context) {
	if h.posting == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "posting service not configured"))
		return
	}
	var req dto.PostChargesRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid posting payload"))
			return
		}
	}

	result, err := h.posting.Run(c.Request.Context(), req.Month, req.Year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.PostChargesResponse{Result: *result}, nil)
}
