package models

import "time"

// ChatMessage is one message in an order-scoped chat thread. The thread is
// keyed by order ID; access is gated by the same authorization boundary as
// every other order-scoped operation, and no thread exists before a rider
// is assigned.
type ChatMessage struct {
	ID         int64     `json:"id"`
	MessageUID string    `json:"message_uid"`
	OrderID    int64     `json:"order_id"`
	SenderID   int64     `json:"sender_id"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}
