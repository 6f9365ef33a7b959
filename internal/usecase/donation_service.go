package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/givingprint/payment-service/internal/domain/dto"
	domainErrors "github.com/givingprint/payment-service/internal/domain/errors"
	"github.com/givingprint/payment-service/internal/domain/model"
	"github.com/givingprint/payment-service/internal/domain/provider"
	domainRepo "github.com/givingprint/payment-service/internal/domain/repository"
)

const (
	defaultCurrency  = "usd"
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// DonationService creates donation payment records and opens provider
// checkout sessions for them. The record is written before the provider is
// called, so every checkout session carries the record's ID in metadata.
type DonationService struct {
	paymentRepo     domainRepo.PaymentRepository
	logRepo         domainRepo.PaymentLogRepository
	campaignRepo    domainRepo.CampaignPaymentRepository
	recipientRepo   domainRepo.RecipientRepository
	fingerprintRepo domainRepo.FingerprintRepository
	checkout        provider.CheckoutProvider
	logger          *zap.Logger
}

// NewDonationService creates a new donation service
func NewDonationService(
	paymentRepo domainRepo.PaymentRepository,
	logRepo domainRepo.PaymentLogRepository,
	campaignRepo domainRepo.CampaignPaymentRepository,
	recipientRepo domainRepo.RecipientRepository,
	fingerprintRepo domainRepo.FingerprintRepository,
	checkout provider.CheckoutProvider,
	logger *zap.Logger,
) *DonationService {
	return &DonationService{
		paymentRepo:     paymentRepo,
		logRepo:         logRepo,
		campaignRepo:    campaignRepo,
		recipientRepo:   recipientRepo,
		fingerprintRepo: fingerprintRepo,
		checkout:        checkout,
		logger:          logger,
	}
}

// CreateDonation validates the recipient, writes a pending payment record
// and opens a hosted checkout session for it
func (s *DonationService) CreateDonation(ctx context.Context, req *dto.CreateDonationRequest) (*dto.CreateDonationResponse, error) {
	profile, err := s.recipientRepo.GetProfile(ctx, req.RecipientUserID)
	if err != nil {
		return nil, err
	}
	if !profile.Published {
		return nil, domainErrors.NewProfileNotPublishedError(req.RecipientUserID)
	}

	fingerprintID := req.FingerprintID
	if fingerprintID == "" {
		fingerprintID = profile.DefaultFingerprintID
	}
	if fingerprintID != "" {
		allocations, err := s.fingerprintRepo.GetAllocations(ctx, fingerprintID)
		if err != nil {
			return nil, err
		}
		if err := model.ValidateAllocationWeights(allocations); err != nil {
			return nil, fmt.Errorf("invalid fingerprint %s: %w", fingerprintID, err)
		}
	}

	currency := strings.ToLower(req.Currency)
	if currency == "" {
		currency = defaultCurrency
	}

	payment := &model.Payment{
		ID:              uuid.New().String(),
		AmountCents:     req.AmountCents,
		Currency:        currency,
		Status:          model.PaymentStatusPending,
		RecipientUserID: req.RecipientUserID,
		Source:          model.PaymentSourceDonor,
	}
	if req.DonorEmail != "" {
		payment.DonorEmail = &req.DonorEmail
	}
	if req.DonorName != "" {
		payment.DonorName = &req.DonorName
	}
	if req.Message != "" {
		payment.Message = &req.Message
	}
	if req.CampaignID != "" {
		payment.CampaignID = &req.CampaignID
	}
	if fingerprintID != "" {
		payment.FingerprintID = &fingerprintID
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	s.appendLog(ctx, &model.PaymentLog{
		PaymentID: &payment.ID,
		Status:    model.LogPaymentCreated,
		Message:   "donation payment record created",
		Metadata: model.JSONB{
			"recipient_user_id": req.RecipientUserID,
			"amount_cents":      req.AmountCents,
		},
	})

	session, err := s.checkout.CreateDonationSession(ctx, &provider.CheckoutParams{
		PaymentID:       payment.ID,
		AmountCents:     payment.AmountCents,
		Currency:        currency,
		Description:     fmt.Sprintf("Donation to %s", profile.DisplayName),
		DonorEmail:      req.DonorEmail,
		RecipientUserID: req.RecipientUserID,
		CampaignID:      req.CampaignID,
		FingerprintID:   fingerprintID,
	})
	if err != nil {
		// No session exists at the provider, so the record can never settle;
		// mark it failed rather than leave a pending row the resolver could
		// match against a later email fallback.
		s.logger.Error("Failed to open checkout session",
			zap.String("payment_id", payment.ID),
			zap.Error(err))

		if moved, terr := s.paymentRepo.TransitionStatus(ctx, payment.ID, model.PaymentStatusFailed); terr != nil {
			s.logger.Error("Failed to fail payment after checkout error",
				zap.String("payment_id", payment.ID),
				zap.Error(terr))
		} else if !moved {
			s.logger.Warn("Payment left checkout state before it could be failed",
				zap.String("payment_id", payment.ID))
		}
		return nil, err
	}

	if err := s.paymentRepo.UpdateFields(ctx, payment.ID, map[string]interface{}{
		"provider_session_id": session.SessionID,
	}); err != nil {
		return nil, err
	}

	s.logger.Info("Donation created",
		zap.String("payment_id", payment.ID),
		zap.String("session_id", session.SessionID),
		zap.String("recipient_user_id", req.RecipientUserID),
		zap.Int64("amount_cents", req.AmountCents))

	return &dto.CreateDonationResponse{
		PaymentID:   payment.ID,
		Status:      string(model.PaymentStatusPending),
		CheckoutURL: session.CheckoutURL,
		SessionID:   session.SessionID,
	}, nil
}

// GetDonationStatus returns the polling view of a payment record, or
// (nil, nil) when no such record exists
func (s *DonationService) GetDonationStatus(ctx context.Context, paymentID string) (*dto.DonationStatusResponse, error) {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, nil
	}

	return &dto.DonationStatusResponse{
		PaymentID:      payment.ID,
		Status:         string(payment.Status),
		AmountCents:    payment.AmountCents,
		Currency:       payment.Currency,
		CampaignID:     payment.CampaignID,
		FailureMessage: payment.FailureMessage,
	}, nil
}

// ListRecipientPayments returns a page of a recipient's payment history
func (s *DonationService) ListRecipientPayments(ctx context.Context, recipientUserID string, limit, offset int) (*dto.PaymentListResponse, error) {
	limit = clampLimit(limit)
	if offset < 0 {
		offset = 0
	}

	payments, err := s.paymentRepo.ListByRecipient(ctx, recipientUserID, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]dto.PaymentListItem, 0, len(payments))
	for _, p := range payments {
		items = append(items, toListItem(p))
	}

	return &dto.PaymentListResponse{
		Payments: items,
		Limit:    limit,
		Offset:   offset,
	}, nil
}

// GetCampaignFeed returns completed donations for a campaign. Donor emails
// never appear in the feed.
func (s *DonationService) GetCampaignFeed(ctx context.Context, campaignID string, limit int) (*dto.CampaignFeedResponse, error) {
	limit = clampLimit(limit)

	payments, err := s.paymentRepo.ListCompletedByCampaign(ctx, campaignID, limit)
	if err != nil {
		return nil, err
	}

	total, err := s.campaignRepo.CountByCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	items := make([]dto.PaymentListItem, 0, len(payments))
	for _, p := range payments {
		items = append(items, toListItem(p))
	}

	return &dto.CampaignFeedResponse{
		CampaignID: campaignID,
		TotalCount: total,
		Payments:   items,
	}, nil
}

// GetFingerprintAllocations returns the allocation weights of a fingerprint
func (s *DonationService) GetFingerprintAllocations(ctx context.Context, fingerprintID string) (*dto.FingerprintAllocationsResponse, error) {
	allocations, err := s.fingerprintRepo.GetAllocations(ctx, fingerprintID)
	if err != nil {
		return nil, err
	}

	items := make([]dto.AllocationItem, 0, len(allocations))
	for _, a := range allocations {
		items = append(items, dto.AllocationItem{
			Category: string(a.Category),
			TargetID: a.TargetID,
			Label:    a.TargetName,
			Weight:   a.Weight.String(),
		})
	}

	return &dto.FingerprintAllocationsResponse{
		FingerprintID: fingerprintID,
		Allocations:   items,
	}, nil
}

// GetPayment returns the raw payment record, or (nil, nil) when no such
// record exists
func (s *DonationService) GetPayment(ctx context.Context, paymentID string) (*model.Payment, error) {
	return s.paymentRepo.GetByID(ctx, paymentID)
}

// ListPaymentLogs returns diagnostic entries for a payment
func (s *DonationService) ListPaymentLogs(ctx context.Context, paymentID string, limit int) ([]*model.PaymentLog, error) {
	return s.logRepo.ListByPayment(ctx, paymentID, clampLimit(limit))
}

func (s *DonationService) appendLog(ctx context.Context, entry *model.PaymentLog) {
	if err := s.logRepo.Append(ctx, entry); err != nil {
		s.logger.Warn("Failed to append payment log entry",
			zap.String("status", entry.Status),
			zap.Error(err))
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultPageLimit
	}
	if limit > maxPageLimit {
		return maxPageLimit
	}
	return limit
}

func toListItem(p *model.Payment) dto.PaymentListItem {
	return dto.PaymentListItem{
		PaymentID:   p.ID,
		Status:      string(p.Status),
		AmountCents: p.AmountCents,
		Currency:    p.Currency,
		DonorName:   p.DonorName,
		Message:     p.Message,
		CampaignID:  p.CampaignID,
		CreatedAt:   p.CreatedAt,
	}
}
