package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Donation payment statuses
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// Payment methods. Direct donations complete immediately; gateway donations
// stay pending until the payment provider confirms via webhook.
const (
	PaymentMethodDirect  = "direct"
	PaymentMethodGateway = "gateway"
)

func IsValidPaymentMethod(m string) bool {
	return m == PaymentMethodDirect || m == PaymentMethodGateway
}

type Donation struct {
	ID            uuid.UUID       `json:"id"`
	CampaignID    uuid.UUID       `json:"campaign_id"`
	UserID        uuid.UUID       `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentStatus string          `json:"payment_status"`
	PaymentMethod string          `json:"payment_method"`
	Anonymous     bool            `json:"anonymous"`
	Message       *string         `json:"message,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// PlatformFee is created atomically with its donation, one-to-one.
type PlatformFee struct {
	ID         uuid.UUID       `json:"id"`
	DonationID uuid.UUID       `json:"donation_id"`
	Amount     decimal.Decimal `json:"amount"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ValidateAmount accepts positive monetary values with at most two decimal
// places.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if !amount.Equal(amount.Round(2)) {
		return ErrInvalidAmount
	}
	return nil
}

// PlatformFeeFor computes the platform cut, rounded up to the nearest cent.
// A 10.001 donation at 5% yields 0.51, never 0.50.
func PlatformFeeFor(amount decimal.Decimal, percent decimal.Decimal) decimal.Decimal {
	fee := amount.Mul(percent).Div(decimal.NewFromInt(100))
	return fee.Shift(2).Ceil().Shift(-2)
}

// CampaignTotals is the ledger-consistent aggregate pair returned by every
// recompute.
type CampaignTotals struct {
	CurrentAmount decimal.Decimal `json:"current_amount"`
	BackersCount  int             `json:"backers_count"`
}
