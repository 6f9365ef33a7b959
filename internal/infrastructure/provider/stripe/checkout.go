package stripe

import (
	"context"
	"strings"

	stripe "github.com/stripe/stripe-go/v79"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"
	"go.uber.org/zap"

	"github.com/givingprint/payment-service/internal/domain/provider"
)

// CheckoutClient implements the CheckoutProvider interface for Stripe
type CheckoutClient struct {
	clientURL string
	logger    *zap.Logger
}

// NewCheckoutClient creates a new Stripe checkout client. The secret key is
// set process-wide, matching how the stripe-go bindings are initialized.
func NewCheckoutClient(secretKey, clientURL string, logger *zap.Logger) *CheckoutClient {
	stripe.Key = secretKey
	return &CheckoutClient{
		clientURL: clientURL,
		logger:    logger,
	}
}

// CreateDonationSession opens a hosted checkout session for a one-time
// donation. The payment record ID is attached as metadata on both the
// session and the payment intent so every later webhook event carries it.
func (c *CheckoutClient) CreateDonationSession(ctx context.Context, p *provider.CheckoutParams) (*provider.CheckoutSession, error) {
	metadata := map[string]string{
		"payment_id":        p.PaymentID,
		"recipient_user_id": p.RecipientUserID,
	}
	if p.CampaignID != "" {
		metadata["campaign_id"] = p.CampaignID
	}
	if p.FingerprintID != "" {
		metadata["fingerprint_id"] = p.FingerprintID
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(p.Currency)),
					UnitAmount: stripe.Int64(p.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(p.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(c.clientURL + "/donation/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(c.clientURL + "/donation/cancel"),
		Metadata:   metadata,
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: metadata,
		},
	}
	if p.DonorEmail != "" {
		params.CustomerEmail = stripe.String(p.DonorEmail)
	}
	params.Context = ctx

	s, err := checkoutsession.New(params)
	if err != nil {
		c.logger.Error("Error creating checkout session",
			zap.String("payment_id", p.PaymentID),
			zap.Error(err))
		return nil, &provider.ProviderError{
			Code:    "CHECKOUT_SESSION_FAILED",
			Message: "failed to create checkout session",
			Cause:   err,
		}
	}

	c.logger.Info("Checkout session created",
		zap.String("payment_id", p.PaymentID),
		zap.String("session_id", s.ID))

	return &provider.CheckoutSession{
		SessionID:   s.ID,
		CheckoutURL: s.URL,
	}, nil
}
