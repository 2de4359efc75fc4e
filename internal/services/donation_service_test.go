package services

import (
	"context"
	"testing"
	"time"

	"github.com/fundhive/backend/internal/config"
	"github.com/fundhive/backend/internal/db"
	"github.com/fundhive/backend/internal/events"
	"github.com/fundhive/backend/internal/models"
	"github.com/fundhive/backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// passthroughTx satisfies db.TxRunner without a database. The in-memory
// stores below ignore the Querier, so every callback runs against shared
// state the way a committed transaction would.
type passthroughTx struct{}

func (passthroughTx) InTx(_ context.Context, fn func(q db.Querier) error) error {
	return fn(nil)
}

type memPublisher struct {
	published []events.Event
}

func (p *memPublisher) Publish(_ context.Context, _ string, e events.Event) error {
	p.published = append(p.published, e)
	return nil
}

type memAudit struct {
	entries []models.AuditLog
}

func (a *memAudit) Log(_ context.Context, entry models.AuditLog) error {
	a.entries = append(a.entries, entry)
	return nil
}

type memDonationStore struct {
	donations map[uuid.UUID]*models.Donation
	fees      []models.PlatformFee
}

func newMemDonationStore() *memDonationStore {
	return &memDonationStore{donations: make(map[uuid.UUID]*models.Donation)}
}

func (s *memDonationStore) CreateTx(_ context.Context, _ db.Querier, d *models.Donation) error {
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	stored := *d
	s.donations[d.ID] = &stored
	return nil
}

func (s *memDonationStore) CreateFeeTx(_ context.Context, _ db.Querier, f *models.PlatformFee) error {
	f.ID = uuid.New()
	s.fees = append(s.fees, *f)
	return nil
}

func (s *memDonationStore) GetByID(_ context.Context, id uuid.UUID) (*models.Donation, error) {
	d, ok := s.donations[id]
	if !ok {
		return nil, models.ErrDonationNotFound
	}
	copied := *d
	return &copied, nil
}

func (s *memDonationStore) ConfirmTx(_ context.Context, _ db.Querier, id uuid.UUID) (bool, error) {
	d, ok := s.donations[id]
	if !ok || d.PaymentStatus != models.PaymentStatusPending {
		return false, nil
	}
	d.PaymentStatus = models.PaymentStatusCompleted
	return true, nil
}

func (s *memDonationStore) MarkFailedTx(_ context.Context, _ db.Querier, id uuid.UUID) (bool, error) {
	d, ok := s.donations[id]
	if !ok || d.PaymentStatus != models.PaymentStatusPending {
		return false, nil
	}
	d.PaymentStatus = models.PaymentStatusFailed
	return true, nil
}

func (s *memDonationStore) List(_ context.Context, f repositories.DonationFilter) ([]models.Donation, error) {
	var out []models.Donation
	for _, d := range s.donations {
		if f.CampaignID != nil && d.CampaignID != *f.CampaignID {
			continue
		}
		if f.UserID != nil && d.UserID != *f.UserID {
			continue
		}
		if f.Status != nil && d.PaymentStatus != *f.Status {
			continue
		}
		out = append(out, *d)
	}
	return out, nil
}

// memLedger recomputes campaign totals from the donation store the same way
// the SQL recompute does: sum of completed amounts, distinct donor count.
type memLedger struct {
	campaign *models.Campaign
	store    *memDonationStore
}

func (l *memLedger) GetForUpdate(_ context.Context, _ db.Querier, id uuid.UUID) (*models.Campaign, error) {
	if l.campaign == nil || l.campaign.ID != id {
		return nil, models.ErrCampaignNotFound
	}
	copied := *l.campaign
	return &copied, nil
}

func (l *memLedger) RecomputeAggregates(_ context.Context, _ db.Querier, campaignID uuid.UUID) (*models.CampaignTotals, error) {
	if l.campaign == nil || l.campaign.ID != campaignID {
		return nil, models.ErrCampaignNotFound
	}
	total := decimal.Zero
	donors := make(map[uuid.UUID]struct{})
	for _, d := range l.store.donations {
		if d.CampaignID != campaignID || d.PaymentStatus != models.PaymentStatusCompleted {
			continue
		}
		total = total.Add(d.Amount)
		donors[d.UserID] = struct{}{}
	}
	l.campaign.CurrentAmount = total
	l.campaign.BackersCount = len(donors)
	return &models.CampaignTotals{CurrentAmount: total, BackersCount: len(donors)}, nil
}

func activeCampaign() *models.Campaign {
	return &models.Campaign{
		ID:            uuid.New(),
		CreatorUserID: uuid.New(),
		Title:         "Community Garden",
		GoalAmount:    decimal.NewFromInt(1000),
		CurrentAmount: decimal.Zero,
		Status:        models.CampaignStatusActive,
	}
}

func newDonationFixture(campaign *models.Campaign) (*DonationService, *memDonationStore, *memLedger, *memPublisher) {
	store := newMemDonationStore()
	ledger := &memLedger{campaign: campaign, store: store}
	publisher := &memPublisher{}
	cfg := &config.Config{PlatformFeePercent: decimal.NewFromInt(5)}
	svc := NewDonationService(passthroughTx{}, store, ledger, &memAudit{}, publisher, cfg, zap.NewNop())
	return svc, store, ledger, publisher
}

func TestRecordDirectDonationUpdatesTotals(t *testing.T) {
	campaign := activeCampaign()
	svc, store, _, publisher := newDonationFixture(campaign)

	res, err := svc.Record(context.Background(), RecordDonationInput{
		CampaignID:    campaign.ID,
		UserID:        uuid.New(),
		Amount:        decimal.RequireFromString("25.50"),
		PaymentMethod: models.PaymentMethodDirect,
	})
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusCompleted, res.Donation.PaymentStatus)
	assert.True(t, res.Fee.Amount.Equal(decimal.RequireFromString("1.28")), "fee rounds up to the cent, got %s", res.Fee.Amount)
	assert.True(t, res.Totals.CurrentAmount.Equal(decimal.RequireFromString("25.50")))
	assert.Equal(t, 1, res.Totals.BackersCount)
	assert.Len(t, store.fees, 1)
	require.Len(t, publisher.published, 1)
	assert.Equal(t, events.EventDonationRecorded, publisher.published[0].Type)
}

func TestRecordGatewayDonationStaysPending(t *testing.T) {
	campaign := activeCampaign()
	svc, _, ledger, _ := newDonationFixture(campaign)

	res, err := svc.Record(context.Background(), RecordDonationInput{
		CampaignID:    campaign.ID,
		UserID:        uuid.New(),
		Amount:        decimal.NewFromInt(100),
		PaymentMethod: models.PaymentMethodGateway,
	})
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusPending, res.Donation.PaymentStatus)
	// Pending money is not part of the ledger yet.
	assert.True(t, res.Totals.CurrentAmount.IsZero())
	assert.Equal(t, 0, ledger.campaign.BackersCount)
}

func TestRecordRejectsNonActiveCampaign(t *testing.T) {
	campaign := activeCampaign()
	campaign.Status = models.CampaignStatusSuccessful
	svc, store, _, _ := newDonationFixture(campaign)

	_, err := svc.Record(context.Background(), RecordDonationInput{
		CampaignID: campaign.ID,
		UserID:     uuid.New(),
		Amount:     decimal.NewFromInt(10),
	})
	require.ErrorIs(t, err, models.ErrCampaignNotAcceptingDonations)
	assert.Empty(t, store.donations)
}

func TestConfirmPaymentIsIdempotent(t *testing.T) {
	campaign := activeCampaign()
	svc, _, ledger, publisher := newDonationFixture(campaign)

	amount := decimal.RequireFromString("40.00")
	res, err := svc.Record(context.Background(), RecordDonationInput{
		CampaignID:    campaign.ID,
		UserID:        uuid.New(),
		Amount:        amount,
		PaymentMethod: models.PaymentMethodGateway,
	})
	require.NoError(t, err)

	totals, err := svc.ConfirmPayment(context.Background(), res.Donation.ID, amount)
	require.NoError(t, err)
	require.NotNil(t, totals)
	assert.True(t, totals.CurrentAmount.Equal(amount))
	assert.Equal(t, 1, totals.BackersCount)

	// The gateway re-delivers the same callback. Nothing may move.
	again, err := svc.ConfirmPayment(context.Background(), res.Donation.ID, amount)
	require.NoError(t, err)
	assert.Nil(t, again)
	assert.True(t, ledger.campaign.CurrentAmount.Equal(amount), "duplicate confirmation must not double-count")
	assert.Equal(t, 1, ledger.campaign.BackersCount)

	confirmedEvents := 0
	for _, e := range publisher.published {
		if e.Type == events.EventPaymentConfirmed {
			confirmedEvents++
		}
	}
	assert.Equal(t, 1, confirmedEvents)
}

func TestConfirmPaymentRejectsAmountMismatch(t *testing.T) {
	campaign := activeCampaign()
	svc, _, ledger, _ := newDonationFixture(campaign)

	res, err := svc.Record(context.Background(), RecordDonationInput{
		CampaignID:    campaign.ID,
		UserID:        uuid.New(),
		Amount:        decimal.NewFromInt(40),
		PaymentMethod: models.PaymentMethodGateway,
	})
	require.NoError(t, err)

	_, err = svc.ConfirmPayment(context.Background(), res.Donation.ID, decimal.NewFromInt(4000))
	require.Error(t, err)
	assert.True(t, models.IsValidation(err))
	assert.True(t, ledger.campaign.CurrentAmount.IsZero())
}

func TestFailPaymentThenConfirmIsNoOp(t *testing.T) {
	campaign := activeCampaign()
	svc, store, ledger, _ := newDonationFixture(campaign)

	amount := decimal.NewFromInt(15)
	res, err := svc.Record(context.Background(), RecordDonationInput{
		CampaignID:    campaign.ID,
		UserID:        uuid.New(),
		Amount:        amount,
		PaymentMethod: models.PaymentMethodGateway,
	})
	require.NoError(t, err)

	require.NoError(t, svc.FailPayment(context.Background(), res.Donation.ID))
	assert.Equal(t, models.PaymentStatusFailed, store.donations[res.Donation.ID].PaymentStatus)

	// A late confirmation for a failed donation is absorbed.
	totals, err := svc.ConfirmPayment(context.Background(), res.Donation.ID, amount)
	require.NoError(t, err)
	assert.Nil(t, totals)
	assert.True(t, ledger.campaign.CurrentAmount.IsZero())
}

func TestRecordAggregateCountsDistinctDonors(t *testing.T) {
	campaign := activeCampaign()
	svc, _, _, _ := newDonationFixture(campaign)

	donor := uuid.New()
	for i := 0; i < 2; i++ {
		_, err := svc.Record(context.Background(), RecordDonationInput{
			CampaignID: campaign.ID,
			UserID:     donor,
			Amount:     decimal.NewFromInt(10),
		})
		require.NoError(t, err)
	}
	res, err := svc.Record(context.Background(), RecordDonationInput{
		CampaignID: campaign.ID,
		UserID:     uuid.New(),
		Amount:     decimal.NewFromInt(5),
	})
	require.NoError(t, err)

	assert.True(t, res.Totals.CurrentAmount.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, 2, res.Totals.BackersCount, "repeat donor counts once")
}
