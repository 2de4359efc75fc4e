package services

import (
	"context"
	"testing"
	"time"

	"github.com/fundhive/backend/internal/events"
	"github.com/fundhive/backend/internal/models"
	"github.com/fundhive/backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memLifecycleStore mimics the bulk reconciliation updates: each method only
// moves rows whose current status matches the guard, so a second pass over
// the same data finds nothing to do.
type memLifecycleStore struct {
	campaigns []*models.Campaign
}

func (s *memLifecycleStore) activationDue(today time.Time) []*models.Campaign {
	day := models.DateOnly(today)
	var due []*models.Campaign
	for _, c := range s.campaigns {
		if c.Status == models.CampaignStatusApproved && !models.DateOnly(c.StartDate).After(day) {
			due = append(due, c)
		}
	}
	return due
}

func (s *memLifecycleStore) completionDue(today time.Time, goalMet bool) []*models.Campaign {
	day := models.DateOnly(today)
	var due []*models.Campaign
	for _, c := range s.campaigns {
		if c.Status != models.CampaignStatusActive || !models.DateOnly(c.EndDate).Before(day) {
			continue
		}
		if c.CurrentAmount.GreaterThanOrEqual(c.GoalAmount) == goalMet {
			due = append(due, c)
		}
	}
	return due
}

func changesFor(campaigns []*models.Campaign) []repositories.StatusChange {
	var changes []repositories.StatusChange
	for _, c := range campaigns {
		changes = append(changes, repositories.StatusChange{
			ID:            c.ID,
			CreatorUserID: c.CreatorUserID,
			Title:         c.Title,
		})
	}
	return changes
}

func (s *memLifecycleStore) ActivateDue(_ context.Context, today time.Time) ([]repositories.StatusChange, error) {
	due := s.activationDue(today)
	for _, c := range due {
		c.Status = models.CampaignStatusActive
	}
	return changesFor(due), nil
}

func (s *memLifecycleStore) CompleteDue(_ context.Context, today time.Time, goalMet bool) ([]repositories.StatusChange, error) {
	due := s.completionDue(today, goalMet)
	to := models.CampaignStatusFailed
	if goalMet {
		to = models.CampaignStatusSuccessful
	}
	for _, c := range due {
		c.Status = to
	}
	return changesFor(due), nil
}

func (s *memLifecycleStore) ListActivationDue(_ context.Context, today time.Time) ([]repositories.StatusChange, error) {
	return changesFor(s.activationDue(today)), nil
}

func (s *memLifecycleStore) ListCompletionDue(_ context.Context, today time.Time, goalMet bool) ([]repositories.StatusChange, error) {
	return changesFor(s.completionDue(today, goalMet)), nil
}

func lifecycleCampaign(status string, start, end time.Time, current, goal int64) *models.Campaign {
	return &models.Campaign{
		ID:            uuid.New(),
		CreatorUserID: uuid.New(),
		Title:         "Test Campaign",
		Status:        status,
		StartDate:     start,
		EndDate:       end,
		CurrentAmount: decimal.NewFromInt(current),
		GoalAmount:    decimal.NewFromInt(goal),
	}
}

func TestRunPassTransitionsDueCampaigns(t *testing.T) {
	today := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)
	lastWeek := today.AddDate(0, 0, -7)
	tomorrow := today.AddDate(0, 0, 1)

	starting := lifecycleCampaign(models.CampaignStatusApproved, today, tomorrow.AddDate(0, 1, 0), 0, 500)
	notYet := lifecycleCampaign(models.CampaignStatusApproved, tomorrow, tomorrow.AddDate(0, 1, 0), 0, 500)
	winner := lifecycleCampaign(models.CampaignStatusActive, lastWeek, yesterday, 750, 500)
	loser := lifecycleCampaign(models.CampaignStatusActive, lastWeek, yesterday, 100, 500)
	running := lifecycleCampaign(models.CampaignStatusActive, lastWeek, tomorrow, 100, 500)

	store := &memLifecycleStore{campaigns: []*models.Campaign{starting, notYet, winner, loser, running}}
	publisher := &memPublisher{}
	svc := NewReconcileService(store, &memAudit{}, publisher, zap.NewNop())

	result, err := svc.RunPass(context.Background(), today)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Activated)
	assert.Equal(t, 1, result.Successful)
	assert.Equal(t, 1, result.Failed)

	assert.Equal(t, models.CampaignStatusActive, starting.Status)
	assert.Equal(t, models.CampaignStatusApproved, notYet.Status)
	assert.Equal(t, models.CampaignStatusSuccessful, winner.Status)
	assert.Equal(t, models.CampaignStatusFailed, loser.Status)
	assert.Equal(t, models.CampaignStatusActive, running.Status, "campaign still inside its window stays active")

	assert.Len(t, publisher.published, 3)
	for _, e := range publisher.published {
		assert.Equal(t, events.EventCampaignStatusChanged, e.Type)
	}
}

func TestRunPassTwiceIsIdempotent(t *testing.T) {
	today := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)
	lastWeek := today.AddDate(0, 0, -7)

	store := &memLifecycleStore{campaigns: []*models.Campaign{
		lifecycleCampaign(models.CampaignStatusApproved, today, today.AddDate(0, 1, 0), 0, 500),
		lifecycleCampaign(models.CampaignStatusActive, lastWeek, yesterday, 750, 500),
		lifecycleCampaign(models.CampaignStatusActive, lastWeek, yesterday, 100, 500),
	}}
	publisher := &memPublisher{}
	svc := NewReconcileService(store, &memAudit{}, publisher, zap.NewNop())

	first, err := svc.RunPass(context.Background(), today)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Activated)
	assert.Equal(t, 1, first.Successful)
	assert.Equal(t, 1, first.Failed)

	// A crashed scheduler restarting mid-window reruns the pass. The
	// status guards must make the second run a no-op.
	second, err := svc.RunPass(context.Background(), today)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Activated)
	assert.Equal(t, 0, second.Successful)
	assert.Equal(t, 0, second.Failed)
	assert.Len(t, publisher.published, 3, "re-run must not re-notify")
}

func TestRunPassGivesEndDateGraceDay(t *testing.T) {
	// end_date itself still accepts donations; completion happens the
	// day after.
	endDate := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	campaign := lifecycleCampaign(models.CampaignStatusActive, endDate.AddDate(0, -1, 0), endDate, 750, 500)

	store := &memLifecycleStore{campaigns: []*models.Campaign{campaign}}
	svc := NewReconcileService(store, &memAudit{}, &memPublisher{}, zap.NewNop())

	onEndDate, err := svc.RunPass(context.Background(), endDate)
	require.NoError(t, err)
	assert.Equal(t, 0, onEndDate.Successful)
	assert.Equal(t, models.CampaignStatusActive, campaign.Status)

	dayAfter, err := svc.RunPass(context.Background(), endDate.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, dayAfter.Successful)
	assert.Equal(t, models.CampaignStatusSuccessful, campaign.Status)
}

func TestPreviewDoesNotMutate(t *testing.T) {
	today := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	campaign := lifecycleCampaign(models.CampaignStatusApproved, today, today.AddDate(0, 1, 0), 0, 500)

	store := &memLifecycleStore{campaigns: []*models.Campaign{campaign}}
	svc := NewReconcileService(store, &memAudit{}, &memPublisher{}, zap.NewNop())

	preview, err := svc.Preview(context.Background(), today)
	require.NoError(t, err)
	assert.Len(t, preview.ToActivate, 1)
	assert.Empty(t, preview.ToSuccessful)
	assert.Empty(t, preview.ToFailed)
	assert.Equal(t, models.CampaignStatusApproved, campaign.Status)
}
