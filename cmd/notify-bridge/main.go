package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fundhive/backend/internal/config"
	"github.com/fundhive/backend/internal/db"
	"github.com/fundhive/backend/internal/events"
	"github.com/fundhive/backend/internal/models"
	"github.com/fundhive/backend/internal/services"
	"go.uber.org/zap"
)

// Notify bridge subscribes to campaign events on Redis and forwards the
// ones users care about to the notification service. Delivery is best
// effort: a failed send is logged and dropped, never retried here.

// statusToEvent maps a new campaign status to its notification event.
var statusToEvent = map[string]string{
	models.CampaignStatusApproved:   services.NotifyCampaignApproved,
	models.CampaignStatusRejected:   services.NotifyCampaignRejected,
	models.CampaignStatusCancelled:  services.NotifyCampaignCancelled,
	models.CampaignStatusSuccessful: services.NotifyCampaignSuccessful,
	models.CampaignStatusFailed:     services.NotifyCampaignFailed,
}

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	subscriber := events.NewRedisSubscriber(rdb, log)
	notifier := services.NewNotifierClient(cfg.NotifierInternalURL, log)

	log.Info("notify-bridge started")

	_ = subscriber.Subscribe(ctx, events.StreamCampaign, func(event events.Event) {
		req, ok := toNotification(event)
		if !ok {
			return
		}
		if err := notifier.Notify(ctx, req); err != nil {
			log.Warn("notification delivery failed",
				zap.String("event", req.Event),
				zap.String("recipient", req.RecipientUserID),
				zap.Error(err))
		}
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down notify-bridge")
	cancel()
}

func toNotification(event events.Event) (services.NotifyRequest, bool) {
	campaignID, _ := event.Payload["campaign_id"].(string)
	title, _ := event.Payload["campaign_title"].(string)

	switch event.Type {
	case events.EventCampaignStatusChanged:
		newStatus, _ := event.Payload["new_status"].(string)
		notifyEvent, ok := statusToEvent[newStatus]
		if !ok {
			// Activation and resubmission are not user-facing.
			return services.NotifyRequest{}, false
		}
		recipient, _ := event.Payload["creator_user_id"].(string)
		reason, _ := event.Payload["reason"].(string)
		return services.NotifyRequest{
			Event:           notifyEvent,
			RecipientUserID: recipient,
			CampaignID:      campaignID,
			CampaignTitle:   title,
			Reason:          reason,
		}, recipient != ""

	case events.EventQuestionAnswered:
		recipient, _ := event.Payload["recipient_user_id"].(string)
		return services.NotifyRequest{
			Event:           services.NotifyQuestionAnswered,
			RecipientUserID: recipient,
			CampaignID:      campaignID,
			CampaignTitle:   title,
		}, recipient != ""
	}

	return services.NotifyRequest{}, false
}
