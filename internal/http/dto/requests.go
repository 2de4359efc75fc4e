package dto

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role,omitempty"` // donor / creator
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Campaigns

type SubmitCampaignRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Goal        string  `json:"goal"`
	StartDate   string  `json:"start_date"` // YYYY-MM-DD
	EndDate     string  `json:"end_date"`   // YYYY-MM-DD
	Category    string  `json:"category"`
	ImageURL    *string `json:"image_url,omitempty"`
	VideoURL    *string `json:"video_url,omitempty"`
}

type UpdateCampaignRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Goal        string  `json:"goal"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	Category    string  `json:"category"`
	ImageURL    *string `json:"image_url,omitempty"`
	VideoURL    *string `json:"video_url,omitempty"`
}

type DecideCampaignRequest struct {
	Approve bool    `json:"approve"`
	Reason  *string `json:"reason,omitempty"` // required on reject
}

type CancelCampaignRequest struct {
	Reason string `json:"reason"`
}

// Donations

type RecordDonationRequest struct {
	Amount        string  `json:"amount"`
	PaymentMethod string  `json:"payment_method"`
	Anonymous     bool    `json:"anonymous,omitempty"`
	Message       *string `json:"message,omitempty"`
}

// PaymentCallbackRequest is the gateway webhook payload.
type PaymentCallbackRequest struct {
	DonationID string `json:"donation_id"`
	Status     string `json:"status"` // completed / failed
	Amount     string `json:"amount"`
}

// Questions

type AskQuestionRequest struct {
	Question string `json:"question"`
}

type AnswerQuestionRequest struct {
	Answer string `json:"answer"`
}
