package models

import "time"

// Order status values. Enforced enumeration; no other values permitted.
const (
	OrderStatusPending    = "pending"
	OrderStatusAssigned   = "assigned"
	OrderStatusPickedUp   = "picked_up"
	OrderStatusDelivering = "delivering"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Location is an address string plus optional coordinates. Coordinates are
// filled best-effort by the geocoder at order creation and may stay nil.
type Location struct {
	Address string   `json:"address"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
}

// TimelineEntry is one row of the append-only order audit trail. Every status
// change appends exactly one entry; entries are never mutated or removed.
type TimelineEntry struct {
	Status string    `json:"status"`
	Note   string    `json:"note,omitempty"`
	At     time.Time `json:"at"`
}

// Delivery holds the mutable delivery sub-record: the transient OTP exchange
// and the proof fields a rider may attach. The OTP code itself is never
// serialized in API responses; it reaches the customer out-of-band.
type Delivery struct {
	OTPCode        *string    `json:"-"`
	OTPExpiresAt   *time.Time `json:"otp_expires_at,omitempty"`
	OTPVerifiedAt  *time.Time `json:"otp_verified_at,omitempty"`
	DeliveredAt    *time.Time `json:"delivered_at,omitempty"`
	PhotoURL       *string    `json:"photo_url,omitempty"`
	RecipientName  *string    `json:"recipient_name,omitempty"`
	RecipientPhone *string    `json:"recipient_phone,omitempty"`
	Note           *string    `json:"note,omitempty"`
}

// Financial is the gross/commission/rider-net split, frozen exactly once at
// delivery time. Nil before delivery, immutable after.
type Financial struct {
	GrossAmount       float64 `json:"gross_amount"`
	CommissionRatePct float64 `json:"commission_rate_pct"`
	CommissionAmount  float64 `json:"commission_amount"`
	RiderNetAmount    float64 `json:"rider_net_amount"`
}

// Order is a delivery request moving through the lifecycle
// pending -> assigned -> picked_up -> delivering -> delivered, with cancel
// reachable from any non-terminal state. Orders are never physically deleted.
type Order struct {
	ID         int64           `json:"id"`
	CustomerID int64           `json:"customer_id"`
	RiderID    *int64          `json:"rider_id,omitempty"`
	Pickup     Location        `json:"pickup"`
	Dropoff    Location        `json:"dropoff"`
	Items      string          `json:"items"`
	Price      float64         `json:"price"`
	Status     string          `json:"status"`
	Timeline   []TimelineEntry `json:"timeline"`
	Delivery   Delivery        `json:"delivery"`
	Financial  *Financial      `json:"financial,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// IsTerminal reports whether the order can no longer change status.
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusDelivered || o.Status == OrderStatusCancelled
}

// OrderFilters defines the available filters for querying orders.
// This struct is used by both the service and repository layers.
type OrderFilters struct {
	CustomerID *int64
	RiderID    *int64
	Status     *string
	Unassigned bool
	Page       int
	PageSize   int
}
