package models

import "time"

// RiderPayout status values. The only transition is pending -> paid.
const (
	PayoutStatusPending = "pending"
	PayoutStatusPaid    = "paid"
)

// PayoutOrderSnapshot is a denormalized copy of one contributing order's
// frozen financial split, taken at aggregation time. It is not a live
// reference: later changes to the order never flow back into it.
type PayoutOrderSnapshot struct {
	OrderID          int64     `json:"order_id"`
	DeliveredAt      time.Time `json:"delivered_at"`
	GrossAmount      float64   `json:"gross_amount"`
	CommissionAmount float64   `json:"commission_amount"`
	RiderNetAmount   float64   `json:"rider_net_amount"`
}

// PayoutTotals must always equal the sum/count of the snapshot list.
type PayoutTotals struct {
	Gross      float64 `json:"gross"`
	Commission float64 `json:"commission"`
	RiderNet   float64 `json:"rider_net"`
	Count      int     `json:"count"`
}

// RiderPayout is one rider's weekly earnings rollup. The natural key is
// (rider_id, week_start); re-running aggregation for the same week upserts
// rather than duplicating.
type RiderPayout struct {
	ID        int64                 `json:"id"`
	RiderID   int64                 `json:"rider_id"`
	WeekStart time.Time             `json:"week_start"`
	WeekEnd   time.Time             `json:"week_end"`
	Orders    []PayoutOrderSnapshot `json:"orders"`
	Totals    PayoutTotals          `json:"totals"`
	Status    string                `json:"status"`
	PaidAt    *time.Time            `json:"paid_at,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// PayoutFilters defines the available filters for querying rider payouts.
type PayoutFilters struct {
	RiderID   *int64
	Status    *string
	WeekStart *time.Time
}
