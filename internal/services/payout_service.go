package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"ninthwaka_backend/internal/models"
	"ninthwaka_backend/internal/repositories"
)

// --- Data Transfer Objects (DTOs) ---

// GeneratePayoutsRequest selects the settlement week. Any date inside the week
// works; it is floored to the week boundary. Omitting it settles the current week.
type GeneratePayoutsRequest struct {
	WeekStart string `json:"week_start"` // YYYY-MM-DD, optional
}

// PayoutRunResult summarizes a settlement run.
type PayoutRunResult struct {
	WeekStart      time.Time            `json:"week_start"`
	WeekEnd        time.Time            `json:"week_end"`
	Payouts        []models.RiderPayout `json:"payouts"`
	SkippedPaid    []int64              `json:"skipped_paid_rider_ids"`
	OrdersSettled  int                  `json:"orders_settled"`
	RidersAffected int                  `json:"riders_affected"`
}

// --- PayoutService Interface ---

type PayoutService interface {
	GenerateForWeek(actor Actor, req GeneratePayoutsRequest) (*PayoutRunResult, error)
	GetPayoutByID(actor Actor, payoutID int64) (*models.RiderPayout, error)
	GetPayouts(actor Actor, filters models.PayoutFilters) ([]models.RiderPayout, error)
	MarkPaid(actor Actor, payoutID int64) (*models.RiderPayout, error)
}

// --- payoutService Implementation ---

type payoutService struct {
	payoutRepo repositories.PayoutRepository
	orderRepo  repositories.OrderRepository
	notifier   Notifier
}

// NewPayoutService creates a new instance of PayoutService.
func NewPayoutService(
	payoutRepo repositories.PayoutRepository,
	orderRepo repositories.OrderRepository,
	notifier Notifier,
) PayoutService {
	return &payoutService{
		payoutRepo: payoutRepo,
		orderRepo:  orderRepo,
		notifier:   notifier,
	}
}

// WeekRange floors t to the most recent Sunday midnight in t's location and
// returns the half-open interval [start, start+7d). An order delivered at the
// exact boundary belongs to the week it starts.
func WeekRange(t time.Time) (start, end time.Time) {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	start = midnight.AddDate(0, 0, -int(midnight.Weekday()))
	return start, start.AddDate(0, 0, 7)
}

func (s *payoutService) GenerateForWeek(actor Actor, req GeneratePayoutsRequest) (*PayoutRunResult, error) {
	if actor.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins may run settlement", ErrAuthorization)
	}
	day := time.Now()
	if req.WeekStart != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.WeekStart, time.Local)
		if err != nil {
			return nil, fmt.Errorf("%w: week_start must be YYYY-MM-DD", ErrValidation)
		}
		day = parsed
	}
	weekStart, weekEnd := WeekRange(day)

	delivered, err := s.orderRepo.ListDeliveredBetween(weekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list delivered orders for week of %s: %w",
			weekStart.Format("2006-01-02"), err)
	}

	// Group the week's delivered orders per rider from their frozen financial
	// snapshots. Recomputing from the current commission rate here would be a
	// correctness bug.
	byRider := make(map[int64][]models.PayoutOrderSnapshot)
	for _, order := range delivered {
		if order.RiderID == nil || order.Financial == nil {
			continue
		}
		snapshot := models.PayoutOrderSnapshot{
			OrderID:          order.ID,
			DeliveredAt:      *order.Delivery.DeliveredAt,
			GrossAmount:      order.Financial.GrossAmount,
			CommissionAmount: order.Financial.CommissionAmount,
			RiderNetAmount:   order.Financial.RiderNetAmount,
		}
		byRider[*order.RiderID] = append(byRider[*order.RiderID], snapshot)
	}

	riderIDs := make([]int64, 0, len(byRider))
	for riderID := range byRider {
		riderIDs = append(riderIDs, riderID)
	}
	sort.Slice(riderIDs, func(i, j int) bool { return riderIDs[i] < riderIDs[j] })

	result := &PayoutRunResult{
		WeekStart: weekStart,
		WeekEnd:   weekEnd,
		Payouts:   []models.RiderPayout{},
	}
	for _, riderID := range riderIDs {
		snapshots := byRider[riderID]
		payout := &models.RiderPayout{
			RiderID:   riderID,
			WeekStart: weekStart,
			WeekEnd:   weekEnd,
			Orders:    snapshots,
			Status:    models.PayoutStatusPending,
		}
		for _, snap := range snapshots {
			payout.Totals.Gross += snap.GrossAmount
			payout.Totals.Commission += snap.CommissionAmount
			payout.Totals.RiderNet += snap.RiderNetAmount
		}
		payout.Totals.Gross = Round2(payout.Totals.Gross)
		payout.Totals.Commission = Round2(payout.Totals.Commission)
		payout.Totals.RiderNet = Round2(payout.Totals.RiderNet)
		payout.Totals.Count = len(snapshots)

		saved, updated, err := s.payoutRepo.Upsert(payout)
		if err != nil {
			return nil, fmt.Errorf("failed to upsert payout for rider %d: %w", riderID, err)
		}
		if !updated {
			result.SkippedPaid = append(result.SkippedPaid, riderID)
			continue
		}
		result.Payouts = append(result.Payouts, *saved)
		result.OrdersSettled += saved.Totals.Count

		notify(s.notifier, riderID, NotifyPayoutReady,
			"Weekly payout ready",
			fmt.Sprintf("Your payout for the week of %s is %.2f across %d deliveries",
				weekStart.Format("Jan 2"), saved.Totals.RiderNet, saved.Totals.Count))
	}
	result.RidersAffected = len(result.Payouts)
	return result, nil
}

func (s *payoutService) GetPayoutByID(actor Actor, payoutID int64) (*models.RiderPayout, error) {
	payout, err := s.getPayout(payoutID)
	if err != nil {
		return nil, err
	}
	if err := authorizePayoutParty(actor, payout); err != nil {
		return nil, err
	}
	return payout, nil
}

func (s *payoutService) GetPayouts(actor Actor, filters models.PayoutFilters) ([]models.RiderPayout, error) {
	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleRider:
		// Riders only ever see their own payouts, whatever they asked for.
		filters.RiderID = &actor.UserID
	default:
		return nil, fmt.Errorf("%w: payouts are visible to riders and admins", ErrAuthorization)
	}
	return s.payoutRepo.GetPayouts(filters)
}

func (s *payoutService) MarkPaid(actor Actor, payoutID int64) (*models.RiderPayout, error) {
	if actor.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins may mark payouts paid", ErrAuthorization)
	}
	payout, err := s.getPayout(payoutID)
	if err != nil {
		return nil, err
	}
	if payout.Status == models.PayoutStatusPaid {
		return nil, ErrPayoutAlreadyPaid
	}

	paidAt := time.Now()
	ok, err := s.payoutRepo.MarkPaid(payoutID, paidAt)
	if err != nil {
		return nil, fmt.Errorf("failed to mark payout %d paid: %w", payoutID, err)
	}
	if !ok {
		// Raced with another admin between the read and the guarded update.
		return nil, ErrPayoutAlreadyPaid
	}

	notify(s.notifier, payout.RiderID, NotifyPayoutPaid,
		"Payout paid",
		fmt.Sprintf("Your payout of %.2f for the week of %s has been paid",
			payout.Totals.RiderNet, payout.WeekStart.Format("Jan 2")))
	return s.getPayout(payoutID)
}

func authorizePayoutParty(actor Actor, payout *models.RiderPayout) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleRider:
		if payout.RiderID == actor.UserID {
			return nil
		}
		return ErrForbidden
	default:
		return ErrAuthorization
	}
}

func (s *payoutService) getPayout(payoutID int64) (*models.RiderPayout, error) {
	payout, err := s.payoutRepo.GetPayoutByID(payoutID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPayoutNotFound
		}
		return nil, fmt.Errorf("failed to fetch payout %d: %w", payoutID, err)
	}
	return payout, nil
}
