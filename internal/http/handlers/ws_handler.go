package handlers

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/fundhive/backend/internal/events"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type wsWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// wsClient serializes writes to one connection. The campaign and donation
// subscriptions run on separate goroutines, and the underlying websocket
// does not allow concurrent writers.
type wsClient struct {
	mu sync.Mutex
	w  wsWriter
}

func (c *wsClient) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.w.WriteMessage(websocket.TextMessage, data)
}

// WSHub streams live campaign updates (donation totals, status changes,
// answered questions) to clients watching a campaign page. Connections are
// keyed by campaign, so each event only fans out to its watchers.
type WSHub struct {
	subscriber events.Subscriber
	log        *zap.Logger
	mu         sync.RWMutex
	watchers   map[uuid.UUID][]*wsClient
}

func NewWSHub(subscriber events.Subscriber, log *zap.Logger) *WSHub {
	return &WSHub{
		subscriber: subscriber,
		log:        log,
		watchers:   make(map[uuid.UUID][]*wsClient),
	}
}

func (h *WSHub) Start(ctx context.Context) {
	_ = h.subscriber.Subscribe(ctx, events.StreamCampaign, h.route)
	_ = h.subscriber.Subscribe(ctx, events.StreamDonation, h.route)
}

// route fans an event out to the watchers of its campaign.
func (h *WSHub) route(event events.Event) {
	raw, ok := event.Payload["campaign_id"].(string)
	if !ok {
		return
	}
	campaignID, err := uuid.Parse(raw)
	if err != nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.watchers[campaignID] {
		_ = client.write(data)
	}
}

func (h *WSHub) addWatcher(campaignID uuid.UUID, client *wsClient) {
	h.mu.Lock()
	h.watchers[campaignID] = append(h.watchers[campaignID], client)
	h.mu.Unlock()
}

func (h *WSHub) removeWatcher(campaignID uuid.UUID, client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients := h.watchers[campaignID]
	for i, c := range clients {
		if c == client {
			h.watchers[campaignID] = append(clients[:i], clients[i+1:]...)
			break
		}
	}
	if len(h.watchers[campaignID]) == 0 {
		delete(h.watchers, campaignID)
	}
}

// WSUpgradeMiddleware checks for websocket upgrade
func WSUpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

func (h *WSHub) HandleWS(conn *websocket.Conn) {
	campaignID, err := uuid.Parse(conn.Params("id"))
	if err != nil {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"invalid campaign id"}`))
		conn.Close()
		return
	}

	client := &wsClient{w: conn}
	h.addWatcher(campaignID, client)

	defer func() {
		h.removeWatcher(campaignID, client)
		conn.Close()
	}()

	// Read loop (keep alive / pings)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
