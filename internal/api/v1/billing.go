package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vastahq/vasta/internal/api/dto"
	ierr "github.com/vastahq/vasta/internal/errors"
	"github.com/vastahq/vasta/internal/logger"
	"github.com/vastahq/vasta/internal/service"
	"github.com/vastahq/vasta/internal/types"
)

type BillingHandler struct {
	service service.BillingService
	log     *logger.Logger
}

func NewBillingHandler(service service.BillingService, log *logger.Logger) *BillingHandler {
	return &BillingHandler{
		service: service,
		log:     log,
	}
}

// @Summary Downgrade the caller's plan
// @Description Schedule a downgrade of the authenticated account's subscription, effective at the end of the paid period
// @Tags Billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.DowngradeRequest true "Target plan"
// @Success 200 {object} dto.DowngradeResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 401 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /billing/downgrade [post]
func (h *BillingHandler) Downgrade(c *gin.Context) {
	accountID := types.GetAccountID(c.Request.Context())
	if accountID == "" {
		c.Error(ierr.NewError("missing account in request context").
			WithHint("Unauthorized").
			Mark(ierr.ErrPermissionDenied))
		return
	}

	var req dto.DowngradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid plan code").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.Downgrade(c.Request.Context(), accountID, req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Get the caller's billing status
// @Description Get the authenticated account's current plan and subscription status
// @Tags Billing
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.BillingStatusResponse
// @Failure 401 {object} ierr.ErrorResponse
// @Failure 500 {object} ierr.ErrorResponse
// @Router /billing [get]
func (h *BillingHandler) GetBillingStatus(c *gin.Context) {
	accountID := types.GetAccountID(c.Request.Context())
	if accountID == "" {
		c.Error(ierr.NewError("missing account in request context").
			WithHint("Unauthorized").
			Mark(ierr.ErrPermissionDenied))
		return
	}

	resp, err := h.service.GetBillingStatus(c.Request.Context(), accountID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
