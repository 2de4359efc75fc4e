package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fundhive/backend/internal/config"
	"github.com/fundhive/backend/internal/events"
	"github.com/fundhive/backend/internal/linkpreview"
	"github.com/fundhive/backend/internal/models"
	"github.com/fundhive/backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CampaignService struct {
	campaignRepo *repositories.CampaignRepo
	questionRepo *repositories.QuestionRepo
	auditRepo    *repositories.AuditRepo
	previews     *linkpreview.Fetcher
	publisher    events.Publisher
	cfg          *config.Config
	log          *zap.Logger
}

func NewCampaignService(
	campaignRepo *repositories.CampaignRepo,
	questionRepo *repositories.QuestionRepo,
	auditRepo *repositories.AuditRepo,
	previews *linkpreview.Fetcher,
	publisher events.Publisher,
	cfg *config.Config,
	log *zap.Logger,
) *CampaignService {
	return &CampaignService{
		campaignRepo: campaignRepo,
		questionRepo: questionRepo,
		auditRepo:    auditRepo,
		previews:     previews,
		publisher:    publisher,
		cfg:          cfg,
		log:          log,
	}
}

// transition applies a guarded status change with audit logging and an
// after-commit event. The event publish is best-effort: the status change
// is already durable and must not be rolled back by notification trouble.
func (s *CampaignService) transition(ctx context.Context, c *models.Campaign, to string, actorID *uuid.UUID, actorType string) error {
	if !models.IsValidTransition(c.Status, to) {
		return &models.ConflictError{Entity: "campaign", From: c.Status, To: to}
	}

	ok, err := s.campaignRepo.UpdateStatus(ctx, c.ID, c.Status, to)
	if err != nil {
		return err
	}
	if !ok {
		// A concurrent writer moved the campaign between our read and the
		// guarded update.
		return &models.ConflictError{Entity: "campaign", From: c.Status, To: to}
	}

	oldStatus := c.Status
	c.Status = to

	s.audit(ctx, actorID, actorType, fmt.Sprintf("campaign_status_%s_to_%s", oldStatus, to), c.ID,
		map[string]any{"old_status": oldStatus, "new_status": to})
	s.publishStatusChange(ctx, c, oldStatus)

	return nil
}

func (s *CampaignService) audit(ctx context.Context, actorID *uuid.UUID, actorType, action string, entityID uuid.UUID, meta map[string]any) {
	if err := s.auditRepo.Log(ctx, models.AuditLog{
		ActorUserID: actorID,
		ActorType:   actorType,
		Action:      action,
		EntityType:  "campaign",
		EntityID:    &entityID,
		Meta:        meta,
	}); err != nil {
		s.log.Warn("audit log failed", zap.String("action", action), zap.Error(err))
	}
}

func (s *CampaignService) publishStatusChange(ctx context.Context, c *models.Campaign, oldStatus string) {
	payload := map[string]any{
		"campaign_id":     c.ID.String(),
		"campaign_title":  c.Title,
		"creator_user_id": c.CreatorUserID.String(),
		"old_status":      oldStatus,
		"new_status":      c.Status,
	}
	if c.Reason != nil {
		payload["reason"] = *c.Reason
	}
	if err := s.publisher.Publish(ctx, events.StreamCampaign, events.Event{
		Type:    events.EventCampaignStatusChanged,
		Payload: payload,
	}); err != nil {
		s.log.Warn("campaign event publish failed",
			zap.String("campaign_id", c.ID.String()),
			zap.String("new_status", c.Status),
			zap.Error(err))
	}
}

type SubmitCampaignInput struct {
	Title       string
	Description string
	Category    string
	ImageURL    *string
	VideoURL    *string
	GoalAmount  decimal.Decimal
	StartDate   time.Time
	EndDate     time.Time
}

func (in *SubmitCampaignInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return models.Validation("title is required")
	}
	if err := models.ValidateAmount(in.GoalAmount); err != nil {
		return fmt.Errorf("goal amount: %w", err)
	}
	if models.DateOnly(in.EndDate).Before(models.DateOnly(in.StartDate)) {
		return models.Validation("end_date must not be before start_date")
	}
	return nil
}

// Submit creates a new campaign in pending, awaiting admin review.
func (s *CampaignService) Submit(ctx context.Context, creatorID uuid.UUID, in SubmitCampaignInput) (*models.Campaign, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	c := &models.Campaign{
		CreatorUserID: creatorID,
		Title:         in.Title,
		Description:   in.Description,
		Category:      in.Category,
		ImageURL:      in.ImageURL,
		VideoURL:      in.VideoURL,
		GoalAmount:    in.GoalAmount,
		StartDate:     models.DateOnly(in.StartDate),
		EndDate:       models.DateOnly(in.EndDate),
		Status:        models.CampaignStatusPending,
	}
	s.fillImageFromVideoLink(ctx, c)

	if err := s.campaignRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.audit(ctx, &creatorID, "user", "campaign_submitted", c.ID, map[string]any{
		"goal_amount": c.GoalAmount.String(),
	})
	return c, nil
}

// fillImageFromVideoLink pulls an OpenGraph thumbnail for the campaign's
// video link when the creator gave no image. Best effort; a fetch failure
// never blocks submission.
func (s *CampaignService) fillImageFromVideoLink(ctx context.Context, c *models.Campaign) {
	if c.ImageURL != nil || c.VideoURL == nil || *c.VideoURL == "" {
		return
	}
	preview, err := s.previews.Fetch(ctx, *c.VideoURL)
	if err != nil {
		s.log.Warn("link preview fetch failed", zap.String("url", *c.VideoURL), zap.Error(err))
		return
	}
	if preview.ImageURL != "" {
		c.ImageURL = &preview.ImageURL
	}
}

type UpdateCampaignInput struct {
	Title       string
	Description string
	Category    string
	ImageURL    *string
	VideoURL    *string
	GoalAmount  decimal.Decimal
	StartDate   time.Time
	EndDate     time.Time
}

// UpdateContent edits a pending or rejected campaign. Editing a rejected
// campaign resubmits it: status returns to pending and the rejection reason
// is cleared. It never auto-approves.
func (s *CampaignService) UpdateContent(ctx context.Context, id, actorID uuid.UUID, in UpdateCampaignInput) (*models.Campaign, error) {
	sub := SubmitCampaignInput{Title: in.Title, GoalAmount: in.GoalAmount, StartDate: in.StartDate, EndDate: in.EndDate}
	if err := sub.validate(); err != nil {
		return nil, err
	}

	c, err := s.campaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.CreatorUserID != actorID {
		return nil, models.ErrCampaignNotFound
	}
	if !models.IsEditableStatus(c.Status) {
		return nil, models.ErrNotEditable
	}

	resubmitted := c.Status == models.CampaignStatusRejected

	c.Title = in.Title
	c.Description = in.Description
	c.Category = in.Category
	c.ImageURL = in.ImageURL
	c.VideoURL = in.VideoURL
	c.GoalAmount = in.GoalAmount
	c.StartDate = models.DateOnly(in.StartDate)
	c.EndDate = models.DateOnly(in.EndDate)
	c.Status = models.CampaignStatusPending
	c.Reason = nil
	s.fillImageFromVideoLink(ctx, c)

	ok, err := s.campaignRepo.UpdateContent(ctx, c)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &models.ConflictError{Entity: "campaign", From: "editable", To: models.CampaignStatusPending}
	}

	action := "campaign_updated"
	if resubmitted {
		action = "campaign_resubmitted"
	}
	s.audit(ctx, &actorID, "user", action, c.ID, nil)
	return c, nil
}

// Decide applies an admin approval or rejection to a pending campaign.
// Rejection requires a non-empty reason; approval clears any prior one.
func (s *CampaignService) Decide(ctx context.Context, id, adminID uuid.UUID, decision string, reason string) (*models.Campaign, error) {
	reason = strings.TrimSpace(reason)

	var reasonPtr *string
	switch decision {
	case models.CampaignStatusApproved:
	case models.CampaignStatusRejected:
		if reason == "" {
			return nil, models.ErrReasonRequired
		}
		reasonPtr = &reason
	default:
		return nil, models.Validation("decision must be %q or %q", models.CampaignStatusApproved, models.CampaignStatusRejected)
	}

	c, err := s.campaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ok, err := s.campaignRepo.UpdateDecision(ctx, c.ID, decision, reasonPtr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &models.ConflictError{Entity: "campaign", From: c.Status, To: decision}
	}

	oldStatus := c.Status
	c.Status = decision
	c.Reason = reasonPtr

	s.audit(ctx, &adminID, "admin", "campaign_"+decision, c.ID, map[string]any{"reason": reason})
	s.publishStatusChange(ctx, c, oldStatus)

	return c, nil
}

// Cancel closes a campaign early. Creators may cancel their own campaign
// while it is pending, approved, rejected or active; admins only pull
// active campaigns.
func (s *CampaignService) Cancel(ctx context.Context, id, actorID uuid.UUID, actorRole string) (*models.Campaign, error) {
	c, err := s.campaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var actorType string
	switch actorRole {
	case models.RoleAdmin:
		actorType = "admin"
		if !models.AdminCanCancelFrom(c.Status) {
			return nil, &models.ConflictError{Entity: "campaign", From: c.Status, To: models.CampaignStatusCancelled}
		}
	default:
		actorType = "user"
		if c.CreatorUserID != actorID {
			return nil, models.ErrCampaignNotFound
		}
		if !models.CreatorCanCancelFrom(c.Status) {
			return nil, &models.ConflictError{Entity: "campaign", From: c.Status, To: models.CampaignStatusCancelled}
		}
	}

	if err := s.transition(ctx, c, models.CampaignStatusCancelled, &actorID, actorType); err != nil {
		return nil, err
	}
	return c, nil
}

// Feature marks a campaign featured, holding the system-wide cap
// transactionally so concurrent requests cannot overshoot it.
func (s *CampaignService) Feature(ctx context.Context, id, adminID uuid.UUID) error {
	if err := s.campaignRepo.SetFeatured(ctx, id, s.cfg.FeaturedCampaignCap); err != nil {
		return err
	}
	s.audit(ctx, &adminID, "admin", "campaign_featured", id, nil)
	return nil
}

func (s *CampaignService) Unfeature(ctx context.Context, id, adminID uuid.UUID) error {
	if err := s.campaignRepo.ClearFeatured(ctx, id); err != nil {
		return err
	}
	s.audit(ctx, &adminID, "admin", "campaign_unfeatured", id, nil)
	return nil
}

func (s *CampaignService) GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	return s.campaignRepo.GetByID(ctx, id)
}

func (s *CampaignService) List(ctx context.Context, f repositories.CampaignFilter) ([]models.Campaign, error) {
	return s.campaignRepo.List(ctx, f)
}

func (s *CampaignService) GetEvents(ctx context.Context, id uuid.UUID) ([]models.AuditLog, error) {
	return s.auditRepo.GetByEntity(ctx, "campaign", id, 100, 0)
}

// AskQuestion records a donor question on a campaign page.
func (s *CampaignService) AskQuestion(ctx context.Context, campaignID, userID uuid.UUID, question string) (*models.CampaignQuestion, error) {
	if strings.TrimSpace(question) == "" {
		return nil, models.Validation("question text is required")
	}
	if _, err := s.campaignRepo.GetByID(ctx, campaignID); err != nil {
		return nil, err
	}

	q := &models.CampaignQuestion{
		CampaignID: campaignID,
		UserID:     userID,
		Question:   question,
	}
	if err := s.questionRepo.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// AnswerQuestion records the creator's reply and notifies the asker.
func (s *CampaignService) AnswerQuestion(ctx context.Context, questionID, actorID uuid.UUID, answer string) (*models.CampaignQuestion, error) {
	if strings.TrimSpace(answer) == "" {
		return nil, models.Validation("answer text is required")
	}

	q, err := s.questionRepo.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	c, err := s.campaignRepo.GetByID(ctx, q.CampaignID)
	if err != nil {
		return nil, err
	}
	if c.CreatorUserID != actorID {
		return nil, models.ErrQuestionNotFound
	}

	ok, err := s.questionRepo.Answer(ctx, questionID, answer)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &models.ConflictError{Entity: "question", From: "answered", To: "answered"}
	}
	q.Answer = &answer
	now := time.Now()
	q.AnsweredAt = &now

	if err := s.publisher.Publish(ctx, events.StreamCampaign, events.Event{
		Type: events.EventQuestionAnswered,
		Payload: map[string]any{
			"question_id":       q.ID.String(),
			"campaign_id":       c.ID.String(),
			"campaign_title":    c.Title,
			"recipient_user_id": q.UserID.String(),
		},
	}); err != nil {
		s.log.Warn("question event publish failed", zap.String("question_id", q.ID.String()), zap.Error(err))
	}
	return q, nil
}

func (s *CampaignService) ListQuestions(ctx context.Context, campaignID uuid.UUID, limit, offset int) ([]models.CampaignQuestion, error) {
	return s.questionRepo.ListByCampaign(ctx, campaignID, limit, offset)
}
