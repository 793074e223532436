package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ninthwaka_backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Notification event types published to users.
const (
	NotifyOrderAccepted  = "order_accepted"
	NotifyOrderStatus    = "order_status"
	NotifyDeliveryOTP    = "delivery_otp"
	NotifyOrderDelivered = "order_delivered"
	NotifyChatMessage    = "chat_message"
	NotifyPayoutReady    = "payout_ready"
	NotifyPayoutPaid     = "payout_paid"
)

// Notification is a single user-facing event. Delivery is best-effort: the
// transport (per-user WebSocket rooms, push, email) lives outside this
// service and may drop events.
type Notification struct {
	EventID   string    `json:"event_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier publishes events to a user. Implementations must be fire-and-forget
// from the caller's point of view: core operations log and swallow publish
// errors, they never fail because a notification could not be delivered.
type Notifier interface {
	Publish(userID int64, notification Notification) error
}

// notify is the shared best-effort wrapper used by all services.
func notify(n Notifier, userID int64, eventType, title, message string) {
	if n == nil {
		return
	}
	notification := Notification{
		EventID:   uuid.NewString(),
		Type:      eventType,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	}
	if err := n.Publish(userID, notification); err != nil {
		utils.LogError(err, fmt.Sprintf("failed to publish %s notification to user %d", eventType, userID))
	}
}

// redisNotifier publishes notifications to the per-user Redis channel that the
// WebSocket gateway fans out to connected clients.
type redisNotifier struct {
	client *redis.Client
}

// NewRedisNotifier creates a Notifier backed by Redis pub/sub.
func NewRedisNotifier(client *redis.Client) Notifier {
	return &redisNotifier{client: client}
}

func (n *redisNotifier) Publish(userID int64, notification Notification) error {
	payload, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("marshalling notification: %w", err)
	}
	channel := fmt.Sprintf("user:%d:events", userID)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := n.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publishing to %s: %w", channel, err)
	}
	return nil
}

// nopNotifier drops everything; used when Redis is not configured.
type nopNotifier struct{}

// NewNopNotifier creates a Notifier that discards all events.
func NewNopNotifier() Notifier {
	return nopNotifier{}
}

func (nopNotifier) Publish(int64, Notification) error {
	return nil
}
