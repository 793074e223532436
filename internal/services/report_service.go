package services

import (
	"fmt"
	"time"

	"ninthwaka_backend/internal/models"
	"ninthwaka_backend/internal/repositories"
)

// --- Data Transfer Objects (DTOs) ---

// DeliverySummary is the admin dashboard aggregate for a date range.
type DeliverySummary struct {
	From            time.Time      `json:"from"`
	To              time.Time      `json:"to"`
	OrdersByStatus  map[string]int `json:"orders_by_status"`
	DeliveredCount  int            `json:"delivered_count"`
	TotalGross      float64        `json:"total_gross"`
	TotalCommission float64        `json:"total_commission"`
	TotalRiderNet   float64        `json:"total_rider_net"`
}

// --- ReportService Interface ---

type ReportService interface {
	GetDeliverySummary(actor Actor, from, to string) (*DeliverySummary, error)
}

// --- reportService Implementation ---

type reportService struct {
	orderRepo repositories.OrderRepository
}

// NewReportService creates a new instance of ReportService.
func NewReportService(orderRepo repositories.OrderRepository) ReportService {
	return &reportService{orderRepo: orderRepo}
}

// GetDeliverySummary aggregates order activity between two dates (inclusive
// from, exclusive to+1d). Financial totals come from the frozen per-order
// snapshots, the same source settlement uses.
func (s *reportService) GetDeliverySummary(actor Actor, from, to string) (*DeliverySummary, error) {
	if actor.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: reports are admin-only", ErrAuthorization)
	}

	start, err := time.ParseInLocation("2006-01-02", from, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: from must be YYYY-MM-DD", ErrValidation)
	}
	endDay, err := time.ParseInLocation("2006-01-02", to, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: to must be YYYY-MM-DD", ErrValidation)
	}
	end := endDay.AddDate(0, 0, 1)
	if !start.Before(end) {
		return nil, fmt.Errorf("%w: from must not be after to", ErrValidation)
	}

	byStatus, err := s.orderRepo.CountOrdersByStatus(start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}

	delivered, err := s.orderRepo.ListDeliveredBetween(start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list delivered orders: %w", err)
	}

	summary := &DeliverySummary{
		From:           start,
		To:             end,
		OrdersByStatus: byStatus,
		DeliveredCount: len(delivered),
	}
	for _, order := range delivered {
		if order.Financial == nil {
			continue
		}
		summary.TotalGross += order.Financial.GrossAmount
		summary.TotalCommission += order.Financial.CommissionAmount
		summary.TotalRiderNet += order.Financial.RiderNetAmount
	}
	summary.TotalGross = Round2(summary.TotalGross)
	summary.TotalCommission = Round2(summary.TotalCommission)
	summary.TotalRiderNet = Round2(summary.TotalRiderNet)
	return summary, nil
}
