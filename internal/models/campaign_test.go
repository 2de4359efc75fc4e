package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestIsValidTransition(t *testing.T) {
	tests := []struct {
		from     string
		to       string
		expected bool
	}{
		// Happy path
		{CampaignStatusPending, CampaignStatusApproved, true},
		{CampaignStatusPending, CampaignStatusRejected, true},
		{CampaignStatusApproved, CampaignStatusActive, true},
		{CampaignStatusActive, CampaignStatusSuccessful, true},
		{CampaignStatusActive, CampaignStatusFailed, true},

		// Resubmission after rejection
		{CampaignStatusRejected, CampaignStatusPending, true},

		// Cancellation paths
		{CampaignStatusPending, CampaignStatusCancelled, true},
		{CampaignStatusApproved, CampaignStatusCancelled, true},
		{CampaignStatusRejected, CampaignStatusCancelled, true},
		{CampaignStatusActive, CampaignStatusCancelled, true},

		// Invalid transitions
		{CampaignStatusPending, CampaignStatusActive, false},
		{CampaignStatusPending, CampaignStatusSuccessful, false},
		{CampaignStatusApproved, CampaignStatusSuccessful, false},
		{CampaignStatusApproved, CampaignStatusRejected, false},
		{CampaignStatusRejected, CampaignStatusApproved, false},
		{CampaignStatusActive, CampaignStatusPending, false},
		{CampaignStatusSuccessful, CampaignStatusFailed, false},
		{CampaignStatusSuccessful, CampaignStatusCancelled, false},
		{CampaignStatusFailed, CampaignStatusActive, false},
		{CampaignStatusCancelled, CampaignStatusPending, false},
		{"nonexistent", CampaignStatusApproved, false},
		{CampaignStatusPending, "nonexistent", false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			result := IsValidTransition(tt.from, tt.to)
			if result != tt.expected {
				t.Errorf("IsValidTransition(%q, %q) = %v, want %v", tt.from, tt.to, result, tt.expected)
			}
		})
	}
}

func TestAllStatusesHaveTransitionEntry(t *testing.T) {
	allStatuses := []string{
		CampaignStatusPending, CampaignStatusApproved, CampaignStatusRejected,
		CampaignStatusActive, CampaignStatusSuccessful, CampaignStatusFailed,
		CampaignStatusCancelled,
	}

	for _, status := range allStatuses {
		if _, ok := ValidCampaignTransitions[status]; !ok {
			t.Errorf("status %q missing from ValidCampaignTransitions map", status)
		}
	}
}

func TestTerminalStatusesHaveNoTransitions(t *testing.T) {
	terminal := []string{CampaignStatusSuccessful, CampaignStatusFailed, CampaignStatusCancelled}
	for _, status := range terminal {
		transitions := ValidCampaignTransitions[status]
		if len(transitions) != 0 {
			t.Errorf("terminal status %q should have no transitions, got %v", status, transitions)
		}
	}
}

func TestCancelPermissions(t *testing.T) {
	creatorOK := []string{CampaignStatusPending, CampaignStatusApproved, CampaignStatusRejected, CampaignStatusActive}
	for _, status := range creatorOK {
		if !CreatorCanCancelFrom(status) {
			t.Errorf("creator should be able to cancel from %q", status)
		}
	}
	for _, status := range []string{CampaignStatusSuccessful, CampaignStatusFailed, CampaignStatusCancelled} {
		if CreatorCanCancelFrom(status) {
			t.Errorf("creator should not be able to cancel from %q", status)
		}
	}

	if !AdminCanCancelFrom(CampaignStatusActive) {
		t.Error("admin should be able to cancel an active campaign")
	}
	for _, status := range []string{CampaignStatusPending, CampaignStatusApproved, CampaignStatusRejected, CampaignStatusSuccessful} {
		if AdminCanCancelFrom(status) {
			t.Errorf("admin should not be able to cancel from %q", status)
		}
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestActivationDue(t *testing.T) {
	c := &Campaign{StartDate: date(2026, 3, 10)}

	if c.ActivationDue(date(2026, 3, 9)) {
		t.Error("campaign must not activate before start_date")
	}
	if !c.ActivationDue(date(2026, 3, 10)) {
		t.Error("campaign must activate on start_date")
	}
	if !c.ActivationDue(date(2026, 3, 11)) {
		t.Error("campaign must activate after start_date")
	}

	// Clock components on either side must not matter.
	c.StartDate = time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)
	if !c.ActivationDue(time.Date(2026, 3, 10, 0, 1, 0, 0, time.UTC)) {
		t.Error("date comparison must ignore time of day")
	}
}

func TestCompletionDueDayAfterEndDate(t *testing.T) {
	c := &Campaign{EndDate: date(2026, 3, 20)}

	// Still running through the whole of the end date.
	if c.CompletionDue(date(2026, 3, 19)) {
		t.Error("campaign must not complete before end_date")
	}
	if c.CompletionDue(date(2026, 3, 20)) {
		t.Error("campaign with end_date D is still active on day D")
	}
	// Eligible starting the day after.
	if !c.CompletionDue(date(2026, 3, 21)) {
		t.Error("campaign must complete on the day after end_date")
	}
}

func TestGoalReached(t *testing.T) {
	c := &Campaign{
		GoalAmount:    decimal.RequireFromString("1000.00"),
		CurrentAmount: decimal.RequireFromString("999.99"),
	}
	if c.GoalReached() {
		t.Error("999.99 must not reach a 1000.00 goal")
	}

	c.CurrentAmount = decimal.RequireFromString("1000.00")
	if !c.GoalReached() {
		t.Error("exact goal amount counts as reached")
	}

	c.CurrentAmount = decimal.RequireFromString("1000.01")
	if !c.GoalReached() {
		t.Error("overfunded campaign counts as reached")
	}
}

func TestCanFeature(t *testing.T) {
	const limit = 3

	if err := CanFeature(false, 2, limit); err != nil {
		t.Errorf("featuring under the cap should succeed, got %v", err)
	}
	if err := CanFeature(false, limit, limit); err != ErrFeaturedCapReached {
		t.Errorf("featuring a 4th campaign should hit the cap, got %v", err)
	}
	// Re-featuring one of the 3 already featured is a no-op, not a
	// cap violation.
	if err := CanFeature(true, limit, limit); err != nil {
		t.Errorf("re-featuring an already-featured campaign should be a no-op, got %v", err)
	}
}

func TestDateOnlyNormalizesZoneAndClock(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)
	late := time.Date(2026, 3, 20, 23, 45, 0, 0, jakarta)

	got := DateOnly(late)
	want := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DateOnly(%v) = %v, want %v", late, got, want)
	}

	// The calendar day is taken from the wall clock, not from the UTC
	// instant, so a campaign's schedule never shifts with the server zone.
	c := &Campaign{StartDate: time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)}
	if !c.ActivationDue(late) {
		t.Error("activation must trigger on the local calendar day")
	}
}
