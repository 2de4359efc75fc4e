package events

import "context"

// Streams
const (
	StreamCampaign = "events:campaign"
	StreamDonation = "events:donation"
)

// Event types
const (
	EventCampaignStatusChanged = "campaign_status_changed"
	EventDonationRecorded      = "donation_recorded"
	EventPaymentConfirmed      = "payment_confirmed"
	EventQuestionAnswered      = "question_answered"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}
