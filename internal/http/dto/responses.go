package dto

import (
	"time"

	"github.com/fundhive/backend/internal/models"
)

type AuthResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

// DonationView hides the donor for anonymous donations.
type DonationView struct {
	ID            string    `json:"id"`
	CampaignID    string    `json:"campaign_id"`
	DonorUserID   *string   `json:"donor_user_id,omitempty"`
	Amount        string    `json:"amount"`
	PaymentStatus string    `json:"payment_status"`
	PaymentMethod string    `json:"payment_method"`
	Anonymous     bool      `json:"anonymous"`
	Message       *string   `json:"message,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func NewDonationView(d *models.Donation) DonationView {
	v := DonationView{
		ID:            d.ID.String(),
		CampaignID:    d.CampaignID.String(),
		Amount:        d.Amount.StringFixed(2),
		PaymentStatus: d.PaymentStatus,
		PaymentMethod: d.PaymentMethod,
		Anonymous:     d.Anonymous,
		Message:       d.Message,
		CreatedAt:     d.CreatedAt,
	}
	if !d.Anonymous {
		id := d.UserID.String()
		v.DonorUserID = &id
	}
	return v
}

func NewDonationViews(donations []models.Donation) []DonationView {
	views := make([]DonationView, 0, len(donations))
	for i := range donations {
		views = append(views, NewDonationView(&donations[i]))
	}
	return views
}

type ReconcileRunResponse struct {
	Activated  int `json:"activated"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}
