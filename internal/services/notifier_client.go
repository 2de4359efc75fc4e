package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Notification event names understood by the notification service.
const (
	NotifyCampaignApproved   = "approved"
	NotifyCampaignRejected   = "rejected"
	NotifyCampaignCancelled  = "cancelled"
	NotifyCampaignSuccessful = "successful"
	NotifyCampaignFailed     = "failed"
	NotifyQuestionAnswered   = "questionAnswered"
)

// NotifierClient talks to the internal notification service, which owns
// delivery (email, push). Callers treat every send as best effort.
type NotifierClient struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

func NewNotifierClient(baseURL string, log *zap.Logger) *NotifierClient {
	return &NotifierClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: log,
	}
}

type NotifyRequest struct {
	Event           string `json:"event"`
	RecipientUserID string `json:"recipient_user_id"`
	CampaignID      string `json:"campaign_id,omitempty"`
	CampaignTitle   string `json:"campaign_title,omitempty"`
	Reason          string `json:"reason,omitempty"`
}

func (c *NotifierClient) Notify(ctx context.Context, req NotifyRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/internal/notify", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(body)))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Warn("notification send failed", zap.String("event", req.Event), zap.Error(err))
		return fmt.Errorf("notification service unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		c.log.Warn("notification service returned non-200",
			zap.Int("status", resp.StatusCode),
			zap.String("event", req.Event))
		return fmt.Errorf("notification service returned %d: %s", resp.StatusCode, string(b))
	}
	return nil
}
