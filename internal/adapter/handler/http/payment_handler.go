package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/givingprint/payment-service/internal/middleware/auth"
	"github.com/givingprint/payment-service/internal/usecase"
)

// PaymentHandler exposes the authenticated recipient-facing payment views.
type PaymentHandler struct {
	donationService *usecase.DonationService
	logger          *zap.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(donationService *usecase.DonationService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		donationService: donationService,
		logger:          logger,
	}
}

// ListMyPayments handles GET /api/v1/payments. Recipients only ever see
// donations addressed to themselves.
func (h *PaymentHandler) ListMyPayments(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	limit := intQueryParam(c, "limit", 0)
	offset := intQueryParam(c, "offset", 0)

	resp, err := h.donationService.ListRecipientPayments(c.Request().Context(), user.UserID, limit, offset)
	if err != nil {
		h.logger.Error("Failed to list payments",
			zap.String("user_id", user.UserID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to list payments",
		})
	}

	return c.JSON(http.StatusOK, resp)
}

// GetPaymentLogs handles GET /api/v1/payments/:id/logs. The record must
// belong to the authenticated recipient.
func (h *PaymentHandler) GetPaymentLogs(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	paymentID := c.Param("id")
	if paymentID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Payment ID is required",
		})
	}

	payment, err := h.donationService.GetPayment(c.Request().Context(), paymentID)
	if err != nil {
		h.logger.Error("Failed to load payment",
			zap.String("payment_id", paymentID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to load payment",
		})
	}
	if payment == nil {
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Payment not found",
		})
	}
	if payment.RecipientUserID != user.UserID {
		return c.JSON(http.StatusForbidden, echo.Map{
			"error": "Payment belongs to another recipient",
		})
	}

	logs, err := h.donationService.ListPaymentLogs(c.Request().Context(), paymentID, intQueryParam(c, "limit", 0))
	if err != nil {
		h.logger.Error("Failed to list payment logs",
			zap.String("payment_id", paymentID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to list payment logs",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"payment_id": paymentID,
		"logs":       logs,
	})
}

func intQueryParam(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
