package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/givingprint/payment-service/internal/domain/dto"
	domainErrors "github.com/givingprint/payment-service/internal/domain/errors"
	"github.com/givingprint/payment-service/internal/usecase"
)

// DonationHandler exposes the public donation endpoints: starting a
// checkout and polling its status. Neither requires authentication;
// donors are anonymous by default.
type DonationHandler struct {
	donationService *usecase.DonationService
	logger          *zap.Logger
}

// NewDonationHandler creates a new donation handler
func NewDonationHandler(donationService *usecase.DonationService, logger *zap.Logger) *DonationHandler {
	return &DonationHandler{
		donationService: donationService,
		logger:          logger,
	}
}

// CreateDonation handles POST /api/v1/donations
func (h *DonationHandler) CreateDonation(c echo.Context) error {
	var req dto.CreateDonationRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request body",
		})
	}

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": err.Error(),
		})
	}

	resp, err := h.donationService.CreateDonation(c.Request().Context(), &req)
	if err != nil {
		var recipientErr *domainErrors.RecipientError
		if errors.As(err, &recipientErr) {
			switch recipientErr.Type {
			case domainErrors.ErrTypeRecipientNotFound:
				return c.JSON(http.StatusNotFound, echo.Map{
					"error": "Recipient not found",
					"code":  recipientErr.Type,
				})
			case domainErrors.ErrTypeProfileNotPublished:
				return c.JSON(http.StatusUnprocessableEntity, echo.Map{
					"error": "Recipient is not accepting donations",
					"code":  recipientErr.Type,
				})
			default:
				return c.JSON(http.StatusBadGateway, echo.Map{
					"error": "Recipient verification unavailable",
					"code":  recipientErr.Type,
				})
			}
		}

		h.logger.Error("Failed to create donation", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create donation",
		})
	}

	return c.JSON(http.StatusCreated, resp)
}

// GetDonationStatus handles GET /api/v1/donations/:id/status
func (h *DonationHandler) GetDonationStatus(c echo.Context) error {
	paymentID := c.Param("id")
	if paymentID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Payment ID is required",
		})
	}

	resp, err := h.donationService.GetDonationStatus(c.Request().Context(), paymentID)
	if err != nil {
		h.logger.Error("Failed to get donation status",
			zap.String("payment_id", paymentID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to get donation status",
		})
	}
	if resp == nil {
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Donation not found",
		})
	}

	return c.JSON(http.StatusOK, resp)
}

// GetCampaignFeed handles GET /api/v1/campaigns/:id/donations
func (h *DonationHandler) GetCampaignFeed(c echo.Context) error {
	campaignID := c.Param("id")
	if campaignID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Campaign ID is required",
		})
	}

	limit := intQueryParam(c, "limit", 0)

	resp, err := h.donationService.GetCampaignFeed(c.Request().Context(), campaignID, limit)
	if err != nil {
		h.logger.Error("Failed to get campaign feed",
			zap.String("campaign_id", campaignID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to get campaign feed",
		})
	}

	return c.JSON(http.StatusOK, resp)
}

// GetFingerprintAllocations handles GET /api/v1/fingerprints/:id/allocations
func (h *DonationHandler) GetFingerprintAllocations(c echo.Context) error {
	fingerprintID := c.Param("id")
	if fingerprintID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Fingerprint ID is required",
		})
	}

	resp, err := h.donationService.GetFingerprintAllocations(c.Request().Context(), fingerprintID)
	if err != nil {
		h.logger.Error("Failed to get fingerprint allocations",
			zap.String("fingerprint_id", fingerprintID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to get fingerprint allocations",
		})
	}

	return c.JSON(http.StatusOK, resp)
}
