package services

import (
	"testing"
	"time"

	"ninthwaka_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekRange(t *testing.T) {
	loc := time.Local
	cases := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "sunday floors to itself",
			in:   time.Date(2025, 6, 8, 15, 30, 0, 0, loc), // Sunday
			want: time.Date(2025, 6, 8, 0, 0, 0, 0, loc),
		},
		{
			name: "monday floors to previous sunday",
			in:   time.Date(2025, 6, 9, 0, 0, 1, 0, loc),
			want: time.Date(2025, 6, 8, 0, 0, 0, 0, loc),
		},
		{
			name: "saturday floors to previous sunday",
			in:   time.Date(2025, 6, 14, 23, 59, 59, 0, loc),
			want: time.Date(2025, 6, 8, 0, 0, 0, 0, loc),
		},
		{
			name: "sunday midnight boundary starts a new week",
			in:   time.Date(2025, 6, 15, 0, 0, 0, 0, loc),
			want: time.Date(2025, 6, 15, 0, 0, 0, 0, loc),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end := WeekRange(tc.in)
			assert.True(t, start.Equal(tc.want), "start = %v, want %v", start, tc.want)
			assert.True(t, end.Equal(tc.want.AddDate(0, 0, 7)))
		})
	}
}

type payoutFixture struct {
	orders   *orderServiceFixture
	payouts  PayoutService
	repo     *fakePayoutRepo
	notifier *recordingNotifier
}

func newPayoutFixture() *payoutFixture {
	orders := newOrderServiceFixture()
	repo := newFakePayoutRepo()
	return &payoutFixture{
		orders:   orders,
		payouts:  NewPayoutService(repo, orders.orderRepo, orders.notifier),
		repo:     repo,
		notifier: orders.notifier,
	}
}

// deliverOrder walks an order through the full lifecycle for the given rider.
func (f *payoutFixture) deliverOrder(t *testing.T, r Actor, price float64) *models.Order {
	t.Helper()
	order := f.orders.createOrder(price)
	_, err := f.orders.svc.AcceptOrder(r, order.ID)
	require.NoError(t, err)
	delivered, err := f.orders.svc.AdvanceOrder(r, order.ID, AdvanceOrderRequest{Action: ActionDeliver})
	require.NoError(t, err)
	return delivered
}

func thisWeekDate() string {
	return time.Now().Format("2006-01-02")
}

func TestGenerateForWeek(t *testing.T) {
	f := newPayoutFixture()
	riderA := riderActor(10)
	riderB := riderActor(11)

	f.deliverOrder(t, riderA, 2000)
	f.deliverOrder(t, riderA, 1000)
	f.deliverOrder(t, riderB, 500)

	// Cancelled orders never settle.
	cancelled := f.orders.createOrder(900)
	_, err := f.orders.svc.AcceptOrder(riderB, cancelled.ID)
	require.NoError(t, err)
	_, err = f.orders.svc.AdvanceOrder(riderB, cancelled.ID, AdvanceOrderRequest{Action: ActionCancel})
	require.NoError(t, err)

	result, err := f.payouts.GenerateForWeek(admin, GeneratePayoutsRequest{WeekStart: thisWeekDate()})
	require.NoError(t, err)
	require.Len(t, result.Payouts, 2)
	assert.Equal(t, 3, result.OrdersSettled)
	assert.Equal(t, 2, result.RidersAffected)
	assert.Empty(t, result.SkippedPaid)

	// Rider A: 2000 + 1000 gross at 10% commission.
	payoutA := result.Payouts[0]
	assert.Equal(t, int64(10), payoutA.RiderID)
	assert.Equal(t, 3000.0, payoutA.Totals.Gross)
	assert.Equal(t, 300.0, payoutA.Totals.Commission)
	assert.Equal(t, 2700.0, payoutA.Totals.RiderNet)
	assert.Equal(t, 2, payoutA.Totals.Count)
	assert.Equal(t, models.PayoutStatusPending, payoutA.Status)
	require.Len(t, payoutA.Orders, 2)

	// Totals always equal the sum of the snapshots.
	var net float64
	for _, snap := range payoutA.Orders {
		net += snap.RiderNetAmount
	}
	assert.Equal(t, payoutA.Totals.RiderNet, Round2(net))

	assert.Contains(t, f.notifier.eventsFor(10), NotifyPayoutReady)
	assert.Contains(t, f.notifier.eventsFor(11), NotifyPayoutReady)
}

func TestGenerateForWeekIdempotent(t *testing.T) {
	f := newPayoutFixture()
	r := riderActor(10)
	f.deliverOrder(t, r, 1000)

	first, err := f.payouts.GenerateForWeek(admin, GeneratePayoutsRequest{WeekStart: thisWeekDate()})
	require.NoError(t, err)
	require.Len(t, first.Payouts, 1)

	// A new delivery lands, the rerun replaces the pending payout in place.
	f.deliverOrder(t, r, 500)
	second, err := f.payouts.GenerateForWeek(admin, GeneratePayoutsRequest{WeekStart: thisWeekDate()})
	require.NoError(t, err)
	require.Len(t, second.Payouts, 1)

	assert.Equal(t, first.Payouts[0].ID, second.Payouts[0].ID, "rerun must update, not duplicate")
	assert.Equal(t, 1500.0, second.Payouts[0].Totals.Gross)
	assert.Equal(t, 2, second.Payouts[0].Totals.Count)

	all, err := f.payouts.GetPayouts(admin, models.PayoutFilters{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGenerateForWeekSkipsPaid(t *testing.T) {
	f := newPayoutFixture()
	r := riderActor(10)
	f.deliverOrder(t, r, 1000)

	first, err := f.payouts.GenerateForWeek(admin, GeneratePayoutsRequest{WeekStart: thisWeekDate()})
	require.NoError(t, err)
	require.Len(t, first.Payouts, 1)
	payoutID := first.Payouts[0].ID

	_, err = f.payouts.MarkPaid(admin, payoutID)
	require.NoError(t, err)

	// Another delivery in the same week must not reopen the paid payout.
	f.deliverOrder(t, r, 700)
	rerun, err := f.payouts.GenerateForWeek(admin, GeneratePayoutsRequest{WeekStart: thisWeekDate()})
	require.NoError(t, err)
	assert.Empty(t, rerun.Payouts)
	assert.Equal(t, []int64{10}, rerun.SkippedPaid)

	paid, err := f.payouts.GetPayoutByID(admin, payoutID)
	require.NoError(t, err)
	assert.Equal(t, models.PayoutStatusPaid, paid.Status)
	assert.Equal(t, 1000.0, paid.Totals.Gross, "paid totals stay frozen")
}

func TestGenerateForWeekDefaultsToCurrentWeek(t *testing.T) {
	f := newPayoutFixture()
	f.deliverOrder(t, riderActor(10), 1000)

	result, err := f.payouts.GenerateForWeek(admin, GeneratePayoutsRequest{})
	require.NoError(t, err)
	require.Len(t, result.Payouts, 1)

	start, end := WeekRange(time.Now())
	assert.True(t, result.WeekStart.Equal(start))
	assert.True(t, result.WeekEnd.Equal(end))
}

func TestGenerateForWeekAuthorization(t *testing.T) {
	f := newPayoutFixture()

	_, err := f.payouts.GenerateForWeek(rider, GeneratePayoutsRequest{WeekStart: thisWeekDate()})
	assert.ErrorIs(t, err, ErrAuthorization)

	_, err = f.payouts.GenerateForWeek(admin, GeneratePayoutsRequest{WeekStart: "June 8"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMarkPaid(t *testing.T) {
	f := newPayoutFixture()
	r := riderActor(10)
	f.deliverOrder(t, r, 1000)

	result, err := f.payouts.GenerateForWeek(admin, GeneratePayoutsRequest{WeekStart: thisWeekDate()})
	require.NoError(t, err)
	payoutID := result.Payouts[0].ID

	paid, err := f.payouts.MarkPaid(admin, payoutID)
	require.NoError(t, err)
	assert.Equal(t, models.PayoutStatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	assert.Contains(t, f.notifier.eventsFor(10), NotifyPayoutPaid)

	// Paid is final.
	_, err = f.payouts.MarkPaid(admin, payoutID)
	assert.ErrorIs(t, err, ErrPayoutAlreadyPaid)

	_, err = f.payouts.MarkPaid(admin, 404)
	assert.ErrorIs(t, err, ErrPayoutNotFound)

	_, err = f.payouts.MarkPaid(r, payoutID)
	assert.ErrorIs(t, err, ErrAuthorization)
}

func TestGetPayoutsVisibility(t *testing.T) {
	f := newPayoutFixture()
	riderA := riderActor(10)
	riderB := riderActor(11)
	f.deliverOrder(t, riderA, 1000)
	f.deliverOrder(t, riderB, 500)

	_, err := f.payouts.GenerateForWeek(admin, GeneratePayoutsRequest{WeekStart: thisWeekDate()})
	require.NoError(t, err)

	all, err := f.payouts.GetPayouts(admin, models.PayoutFilters{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// A rider only ever sees their own payouts, even when filtering for others.
	other := int64(11)
	mine, err := f.payouts.GetPayouts(riderA, models.PayoutFilters{RiderID: &other})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, int64(10), mine[0].RiderID)

	_, err = f.payouts.GetPayouts(customer, models.PayoutFilters{})
	assert.ErrorIs(t, err, ErrAuthorization)

	// Per-payout access follows the same rule.
	_, err = f.payouts.GetPayoutByID(riderB, mine[0].ID)
	assert.ErrorIs(t, err, ErrForbidden)
}
