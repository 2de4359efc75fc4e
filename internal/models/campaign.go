package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Campaign statuses
const (
	CampaignStatusPending    = "pending"
	CampaignStatusApproved   = "approved"
	CampaignStatusRejected   = "rejected"
	CampaignStatusActive     = "active"
	CampaignStatusSuccessful = "successful"
	CampaignStatusFailed     = "failed"
	CampaignStatusCancelled  = "cancelled"
)

// Valid state transitions: from -> []to
var ValidCampaignTransitions = map[string][]string{
	CampaignStatusPending:    {CampaignStatusApproved, CampaignStatusRejected, CampaignStatusCancelled},
	CampaignStatusApproved:   {CampaignStatusActive, CampaignStatusCancelled},
	CampaignStatusRejected:   {CampaignStatusPending, CampaignStatusCancelled},
	CampaignStatusActive:     {CampaignStatusSuccessful, CampaignStatusFailed, CampaignStatusCancelled},
	CampaignStatusSuccessful: {},
	CampaignStatusFailed:     {},
	CampaignStatusCancelled:  {},
}

func IsValidTransition(from, to string) bool {
	allowed, ok := ValidCampaignTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// IsEditableStatus reports whether campaign content may be changed.
// Editing a rejected campaign is a resubmission: it clears the rejection
// reason and moves the campaign back to pending.
func IsEditableStatus(status string) bool {
	return status == CampaignStatusPending || status == CampaignStatusRejected
}

// CreatorCanCancelFrom lists the statuses an owning creator may cancel out of.
func CreatorCanCancelFrom(status string) bool {
	switch status {
	case CampaignStatusPending, CampaignStatusApproved, CampaignStatusRejected, CampaignStatusActive:
		return true
	}
	return false
}

// AdminCanCancelFrom: admins only pull running campaigns.
func AdminCanCancelFrom(status string) bool {
	return status == CampaignStatusActive
}

// CanFeature enforces the system-wide featured cap. Re-featuring an
// already-featured campaign is an idempotent no-op, never a cap violation.
func CanFeature(alreadyFeatured bool, featuredCount, cap int) error {
	if alreadyFeatured {
		return nil
	}
	if featuredCount >= cap {
		return ErrFeaturedCapReached
	}
	return nil
}

type Campaign struct {
	ID            uuid.UUID       `json:"id"`
	CreatorUserID uuid.UUID       `json:"creator_user_id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	ImageURL      *string         `json:"image_url,omitempty"`
	VideoURL      *string         `json:"video_url,omitempty"`
	GoalAmount    decimal.Decimal `json:"goal_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	StartDate     time.Time       `json:"start_date"`
	EndDate       time.Time       `json:"end_date"`
	Status        string          `json:"status"`
	BackersCount  int             `json:"backers_count"`
	IsFeatured    bool            `json:"is_featured"`
	Reason        *string         `json:"reason,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// DateOnly strips the clock component. All campaign date comparisons are
// calendar-day comparisons, never instant comparisons.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ActivationDue reports whether an approved campaign should go active:
// start_date <= today.
func (c *Campaign) ActivationDue(today time.Time) bool {
	return !DateOnly(c.StartDate).After(DateOnly(today))
}

// CompletionDue reports whether a running campaign has ended. A campaign
// with end_date D runs through the whole of day D and becomes eligible for
// completion starting day D+1.
func (c *Campaign) CompletionDue(today time.Time) bool {
	return DateOnly(c.EndDate).Before(DateOnly(today))
}

// GoalReached compares the materialized total against the goal. Evaluated
// at reconciliation time, so completed donations that arrive between the
// end date and the pass still count.
func (c *Campaign) GoalReached() bool {
	return c.CurrentAmount.GreaterThanOrEqual(c.GoalAmount)
}

// CampaignQuestion is a donor question on a campaign page. Answering one
// notifies the asker.
type CampaignQuestion struct {
	ID         uuid.UUID  `json:"id"`
	CampaignID uuid.UUID  `json:"campaign_id"`
	UserID     uuid.UUID  `json:"user_id"`
	Question   string     `json:"question"`
	Answer     *string    `json:"answer,omitempty"`
	AnsweredAt *time.Time `json:"answered_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
