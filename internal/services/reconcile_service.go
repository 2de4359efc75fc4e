package services

import (
	"context"
	"time"

	"github.com/fundhive/backend/internal/events"
	"github.com/fundhive/backend/internal/models"
	"github.com/fundhive/backend/internal/repositories"
	"go.uber.org/zap"
)

// ReconcileService runs the scheduled lifecycle pass: activate approved
// campaigns whose start date arrived, then close out ended active
// campaigns as successful or failed depending on funding. Each predicate
// is a guarded bulk update against current stored state, so the pass is
// idempotent within a day and safe to run concurrently with donations and
// admin decisions.
// lifecycleStore is the slice of CampaignRepo the pass drives: guarded
// bulk transitions plus their read-only preview counterparts.
type lifecycleStore interface {
	ActivateDue(ctx context.Context, today time.Time) ([]repositories.StatusChange, error)
	CompleteDue(ctx context.Context, today time.Time, goalMet bool) ([]repositories.StatusChange, error)
	ListActivationDue(ctx context.Context, today time.Time) ([]repositories.StatusChange, error)
	ListCompletionDue(ctx context.Context, today time.Time, goalMet bool) ([]repositories.StatusChange, error)
}

type ReconcileService struct {
	campaignRepo lifecycleStore
	auditRepo    auditLogger
	publisher    events.Publisher
	log          *zap.Logger
}

func NewReconcileService(
	campaignRepo lifecycleStore,
	auditRepo auditLogger,
	publisher events.Publisher,
	log *zap.Logger,
) *ReconcileService {
	return &ReconcileService{
		campaignRepo: campaignRepo,
		auditRepo:    auditRepo,
		publisher:    publisher,
		log:          log,
	}
}

type ReconcileResult struct {
	Activated  int `json:"activated"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// RunPass applies the three transition predicates in fixed order. The
// successful/failed split reads current_amount at evaluation time, so a
// completed donation that lands between end_date and the pass still pushes
// its campaign to successful.
func (s *ReconcileService) RunPass(ctx context.Context, today time.Time) (*ReconcileResult, error) {
	activated, err := s.campaignRepo.ActivateDue(ctx, today)
	if err != nil {
		return nil, err
	}
	s.recordTransitions(ctx, activated, models.CampaignStatusApproved, models.CampaignStatusActive)

	successful, err := s.campaignRepo.CompleteDue(ctx, today, true)
	if err != nil {
		return nil, err
	}
	s.recordTransitions(ctx, successful, models.CampaignStatusActive, models.CampaignStatusSuccessful)

	failed, err := s.campaignRepo.CompleteDue(ctx, today, false)
	if err != nil {
		return nil, err
	}
	s.recordTransitions(ctx, failed, models.CampaignStatusActive, models.CampaignStatusFailed)

	result := &ReconcileResult{
		Activated:  len(activated),
		Successful: len(successful),
		Failed:     len(failed),
	}
	s.log.Info("reconciliation pass complete",
		zap.Int("activated", result.Activated),
		zap.Int("successful", result.Successful),
		zap.Int("failed", result.Failed))
	return result, nil
}

type ReconcilePreview struct {
	ToActivate   []repositories.StatusChange `json:"to_activate"`
	ToSuccessful []repositories.StatusChange `json:"to_successful"`
	ToFailed     []repositories.StatusChange `json:"to_failed"`
}

// Preview returns the candidate sets RunPass would transition, without
// mutating anything. Operational visibility for the admin dashboard.
func (s *ReconcileService) Preview(ctx context.Context, today time.Time) (*ReconcilePreview, error) {
	toActivate, err := s.campaignRepo.ListActivationDue(ctx, today)
	if err != nil {
		return nil, err
	}
	toSuccessful, err := s.campaignRepo.ListCompletionDue(ctx, today, true)
	if err != nil {
		return nil, err
	}
	toFailed, err := s.campaignRepo.ListCompletionDue(ctx, today, false)
	if err != nil {
		return nil, err
	}
	return &ReconcilePreview{
		ToActivate:   toActivate,
		ToSuccessful: toSuccessful,
		ToFailed:     toFailed,
	}, nil
}

// recordTransitions audits and publishes each bulk transition after the
// update committed. Failures here are logged and swallowed: the state
// change is already durable.
func (s *ReconcileService) recordTransitions(ctx context.Context, changes []repositories.StatusChange, from, to string) {
	for _, ch := range changes {
		id := ch.ID
		if err := s.auditRepo.Log(ctx, models.AuditLog{
			ActorType:  "system",
			Action:     "campaign_status_" + from + "_to_" + to,
			EntityType: "campaign",
			EntityID:   &id,
			Meta:       map[string]any{"old_status": from, "new_status": to},
		}); err != nil {
			s.log.Warn("audit log failed", zap.String("campaign_id", id.String()), zap.Error(err))
		}

		if err := s.publisher.Publish(ctx, events.StreamCampaign, events.Event{
			Type: events.EventCampaignStatusChanged,
			Payload: map[string]any{
				"campaign_id":     ch.ID.String(),
				"campaign_title":  ch.Title,
				"creator_user_id": ch.CreatorUserID.String(),
				"old_status":      from,
				"new_status":      to,
			},
		}); err != nil {
			s.log.Warn("campaign event publish failed", zap.String("campaign_id", id.String()), zap.Error(err))
		}
	}
}
