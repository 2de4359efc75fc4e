package services

import (
	"context"

	"github.com/fundhive/backend/internal/config"
	"github.com/fundhive/backend/internal/db"
	"github.com/fundhive/backend/internal/events"
	"github.com/fundhive/backend/internal/models"
	"github.com/fundhive/backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// donationStore is the slice of DonationRepo the service needs.
type donationStore interface {
	CreateTx(ctx context.Context, q db.Querier, d *models.Donation) error
	CreateFeeTx(ctx context.Context, q db.Querier, f *models.PlatformFee) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Donation, error)
	ConfirmTx(ctx context.Context, q db.Querier, id uuid.UUID) (bool, error)
	MarkFailedTx(ctx context.Context, q db.Querier, id uuid.UUID) (bool, error)
	List(ctx context.Context, f repositories.DonationFilter) ([]models.Donation, error)
}

// campaignLedger is the slice of CampaignRepo the ledger writes need.
type campaignLedger interface {
	GetForUpdate(ctx context.Context, q db.Querier, id uuid.UUID) (*models.Campaign, error)
	RecomputeAggregates(ctx context.Context, q db.Querier, campaignID uuid.UUID) (*models.CampaignTotals, error)
}

type auditLogger interface {
	Log(ctx context.Context, entry models.AuditLog) error
}

type DonationService struct {
	tx           db.TxRunner
	donationRepo donationStore
	campaignRepo campaignLedger
	auditRepo    auditLogger
	publisher    events.Publisher
	cfg          *config.Config
	log          *zap.Logger
}

func NewDonationService(
	tx db.TxRunner,
	donationRepo donationStore,
	campaignRepo campaignLedger,
	auditRepo auditLogger,
	publisher events.Publisher,
	cfg *config.Config,
	log *zap.Logger,
) *DonationService {
	return &DonationService{
		tx:           tx,
		donationRepo: donationRepo,
		campaignRepo: campaignRepo,
		auditRepo:    auditRepo,
		publisher:    publisher,
		cfg:          cfg,
		log:          log,
	}
}

type RecordDonationInput struct {
	CampaignID    uuid.UUID
	UserID        uuid.UUID
	Amount        decimal.Decimal
	Message       *string
	Anonymous     bool
	PaymentMethod string
}

type RecordDonationResult struct {
	Donation *models.Donation       `json:"donation"`
	Fee      *models.PlatformFee    `json:"fee"`
	Totals   *models.CampaignTotals `json:"totals"`
}

// Record validates and writes a donation: donation row, fee row and the
// aggregate recompute all land in one transaction, so no caller can ever
// observe a donation without its fee or a stale campaign total. Returned
// totals come from the recompute, not a client-side increment.
func (s *DonationService) Record(ctx context.Context, in RecordDonationInput) (*RecordDonationResult, error) {
	if err := models.ValidateAmount(in.Amount); err != nil {
		return nil, err
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = models.PaymentMethodDirect
	}
	if !models.IsValidPaymentMethod(in.PaymentMethod) {
		return nil, models.Validation("payment_method must be %q or %q", models.PaymentMethodDirect, models.PaymentMethodGateway)
	}

	status := models.PaymentStatusCompleted
	if in.PaymentMethod == models.PaymentMethodGateway {
		// Gateway donations stay pending until the provider confirms.
		status = models.PaymentStatusPending
	}

	donation := &models.Donation{
		CampaignID:    in.CampaignID,
		UserID:        in.UserID,
		Amount:        in.Amount,
		PaymentStatus: status,
		PaymentMethod: in.PaymentMethod,
		Anonymous:     in.Anonymous,
		Message:       in.Message,
	}
	fee := &models.PlatformFee{
		Amount: models.PlatformFeeFor(in.Amount, s.cfg.PlatformFeePercent),
	}
	var totals *models.CampaignTotals

	err := s.tx.InTx(ctx, func(q db.Querier) error {
		// Row lock first: concurrent donations to one campaign serialize
		// here, and the recompute below sees every committed donation.
		campaign, err := s.campaignRepo.GetForUpdate(ctx, q, in.CampaignID)
		if err != nil {
			return err
		}
		if campaign.Status != models.CampaignStatusActive {
			return models.ErrCampaignNotAcceptingDonations
		}

		if err := s.donationRepo.CreateTx(ctx, q, donation); err != nil {
			return err
		}
		fee.DonationID = donation.ID
		if err := s.donationRepo.CreateFeeTx(ctx, q, fee); err != nil {
			return err
		}

		totals, err = s.campaignRepo.RecomputeAggregates(ctx, q, in.CampaignID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.auditDonation(ctx, donation, "donation_recorded")
	s.publishDonation(ctx, donation, totals, events.EventDonationRecorded)

	return &RecordDonationResult{Donation: donation, Fee: fee, Totals: totals}, nil
}

// ConfirmPayment applies a "payment succeeded" callback from the gateway.
// The guarded pending->completed flip and the aggregate recompute share a
// transaction, and re-delivery of a confirmation for an already-completed
// donation is absorbed as a no-op rather than double-counted.
func (s *DonationService) ConfirmPayment(ctx context.Context, donationID uuid.UUID, amount decimal.Decimal) (*models.CampaignTotals, error) {
	donation, err := s.donationRepo.GetByID(ctx, donationID)
	if err != nil {
		return nil, err
	}
	if !donation.Amount.Equal(amount) {
		return nil, models.Validation("callback amount does not match the recorded donation")
	}

	var totals *models.CampaignTotals
	confirmed := false

	err = s.tx.InTx(ctx, func(q db.Querier) error {
		if _, err := s.campaignRepo.GetForUpdate(ctx, q, donation.CampaignID); err != nil {
			return err
		}

		ok, err := s.donationRepo.ConfirmTx(ctx, q, donationID)
		if err != nil {
			return err
		}
		if !ok {
			// Already completed (or failed): duplicate delivery, absorb it.
			return nil
		}
		confirmed = true

		totals, err = s.campaignRepo.RecomputeAggregates(ctx, q, donation.CampaignID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if !confirmed {
		s.log.Debug("duplicate payment confirmation ignored",
			zap.String("donation_id", donationID.String()))
		return nil, nil
	}

	donation.PaymentStatus = models.PaymentStatusCompleted
	s.auditDonation(ctx, donation, "donation_payment_confirmed")
	s.publishDonation(ctx, donation, totals, events.EventPaymentConfirmed)

	return totals, nil
}

// FailPayment applies a "payment failed" callback. Terminal and idempotent
// the same way confirmation is.
func (s *DonationService) FailPayment(ctx context.Context, donationID uuid.UUID) error {
	donation, err := s.donationRepo.GetByID(ctx, donationID)
	if err != nil {
		return err
	}

	var failed bool
	err = s.tx.InTx(ctx, func(q db.Querier) error {
		ok, err := s.donationRepo.MarkFailedTx(ctx, q, donationID)
		failed = ok
		return err
	})
	if err != nil {
		return err
	}
	if failed {
		s.auditDonation(ctx, donation, "donation_payment_failed")
	}
	return nil
}

func (s *DonationService) GetByID(ctx context.Context, id uuid.UUID) (*models.Donation, error) {
	return s.donationRepo.GetByID(ctx, id)
}

func (s *DonationService) ListByCampaign(ctx context.Context, campaignID uuid.UUID, limit, offset int) ([]models.Donation, error) {
	status := models.PaymentStatusCompleted
	return s.donationRepo.List(ctx, repositories.DonationFilter{
		CampaignID: &campaignID,
		Status:     &status,
		Limit:      limit,
		Offset:     offset,
	})
}

func (s *DonationService) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Donation, error) {
	return s.donationRepo.List(ctx, repositories.DonationFilter{
		UserID: &userID,
		Limit:  limit,
		Offset: offset,
	})
}

func (s *DonationService) auditDonation(ctx context.Context, d *models.Donation, action string) {
	if err := s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: &d.UserID,
		ActorType:   "user",
		Action:      action,
		EntityType:  "donation",
		EntityID:    &d.ID,
		Meta: map[string]any{
			"campaign_id": d.CampaignID.String(),
			"amount":      d.Amount.String(),
		},
	}); err != nil {
		s.log.Warn("audit log failed", zap.String("action", action), zap.Error(err))
	}
}

func (s *DonationService) publishDonation(ctx context.Context, d *models.Donation, totals *models.CampaignTotals, eventType string) {
	payload := map[string]any{
		"donation_id": d.ID.String(),
		"campaign_id": d.CampaignID.String(),
		"amount":      d.Amount.String(),
		"status":      d.PaymentStatus,
	}
	if totals != nil {
		payload["current_amount"] = totals.CurrentAmount.String()
		payload["backers_count"] = totals.BackersCount
	}
	if err := s.publisher.Publish(ctx, events.StreamDonation, events.Event{Type: eventType, Payload: payload}); err != nil {
		s.log.Warn("donation event publish failed", zap.String("donation_id", d.ID.String()), zap.Error(err))
	}
}
