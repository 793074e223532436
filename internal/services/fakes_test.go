package services

import (
	"sync"
	"time"

	"ninthwaka_backend/internal/models"
	"ninthwaka_backend/internal/repositories"
)

// In-memory fakes backing the service tests. The conditional methods copy the
// real repositories' guarded-update semantics so race and idempotence tests
// exercise the same contract the SQL implementations provide.

type fakeOrderRepo struct {
	mu     sync.Mutex
	nextID int64
	orders map[int64]*models.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{nextID: 1, orders: make(map[int64]*models.Order)}
}

func copyOrder(o *models.Order) *models.Order {
	clone := *o
	clone.Timeline = append([]models.TimelineEntry(nil), o.Timeline...)
	if o.Financial != nil {
		fin := *o.Financial
		clone.Financial = &fin
	}
	return &clone
}

func (r *fakeOrderRepo) CreateOrder(order *models.Order, entry models.TimelineEntry) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := copyOrder(order)
	clone.ID = r.nextID
	r.nextID++
	clone.Timeline = append(clone.Timeline, entry)
	clone.UpdatedAt = entry.At
	r.orders[clone.ID] = clone
	return clone.ID, nil
}

func (r *fakeOrderRepo) GetOrderByID(orderID int64) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return copyOrder(order), nil
}

func (r *fakeOrderRepo) GetOrders(filters models.OrderFilters) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.Order
	for id := int64(1); id < r.nextID; id++ {
		order, ok := r.orders[id]
		if !ok {
			continue
		}
		if filters.CustomerID != nil && order.CustomerID != *filters.CustomerID {
			continue
		}
		if filters.RiderID != nil && (order.RiderID == nil || *order.RiderID != *filters.RiderID) {
			continue
		}
		if filters.Status != nil && order.Status != *filters.Status {
			continue
		}
		if filters.Unassigned && order.RiderID != nil {
			continue
		}
		result = append(result, *copyOrder(order))
	}
	return result, nil
}

func (r *fakeOrderRepo) AcceptOrder(orderID, riderID int64, entry models.TimelineEntry) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return false, nil
	}
	if order.Status != models.OrderStatusPending || order.RiderID != nil {
		return false, nil
	}
	rid := riderID
	order.RiderID = &rid
	order.Status = models.OrderStatusAssigned
	order.Timeline = append(order.Timeline, entry)
	order.UpdatedAt = entry.At
	return true, nil
}

func (r *fakeOrderRepo) UpdateOrderStatus(orderID int64, fromStatus, toStatus string, entry models.TimelineEntry) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok || order.Status != fromStatus {
		return false, nil
	}
	order.Status = toStatus
	order.Timeline = append(order.Timeline, entry)
	order.UpdatedAt = entry.At
	return true, nil
}

func (r *fakeOrderRepo) SetDeliveryOTP(orderID int64, code string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return repositories.ErrNotFound
	}
	order.Delivery.OTPCode = &code
	order.Delivery.OTPExpiresAt = &expiresAt
	return nil
}

func (r *fakeOrderRepo) FinalizeDelivery(orderID int64, fin models.Financial, verifiedAt *time.Time, deliveredAt time.Time, entry models.TimelineEntry) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return false, nil
	}
	switch order.Status {
	case models.OrderStatusAssigned, models.OrderStatusPickedUp, models.OrderStatusDelivering:
	default:
		return false, nil
	}
	order.Status = models.OrderStatusDelivered
	finCopy := fin
	order.Financial = &finCopy
	order.Delivery.DeliveredAt = &deliveredAt
	order.Delivery.OTPVerifiedAt = verifiedAt
	order.Timeline = append(order.Timeline, entry)
	order.UpdatedAt = entry.At
	return true, nil
}

func (r *fakeOrderRepo) UpdateDeliveryProof(orderID int64, delivery models.Delivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return repositories.ErrNotFound
	}
	if delivery.PhotoURL != nil {
		order.Delivery.PhotoURL = delivery.PhotoURL
	}
	if delivery.RecipientName != nil {
		order.Delivery.RecipientName = delivery.RecipientName
	}
	if delivery.RecipientPhone != nil {
		order.Delivery.RecipientPhone = delivery.RecipientPhone
	}
	if delivery.Note != nil {
		order.Delivery.Note = delivery.Note
	}
	return nil
}

func (r *fakeOrderRepo) ListDeliveredBetween(start, end time.Time) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.Order
	for id := int64(1); id < r.nextID; id++ {
		order, ok := r.orders[id]
		if !ok || order.Status != models.OrderStatusDelivered || order.RiderID == nil {
			continue
		}
		at := order.Delivery.DeliveredAt
		if at == nil || at.Before(start) || !at.Before(end) {
			continue
		}
		result = append(result, *copyOrder(order))
	}
	return result, nil
}

func (r *fakeOrderRepo) CountOrdersByStatus(start, end time.Time) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int)
	for _, order := range r.orders {
		if order.CreatedAt.Before(start) || !order.CreatedAt.Before(end) {
			continue
		}
		counts[order.Status]++
	}
	return counts, nil
}

type fakePayoutRepo struct {
	mu      sync.Mutex
	nextID  int64
	payouts map[int64]*models.RiderPayout
}

func newFakePayoutRepo() *fakePayoutRepo {
	return &fakePayoutRepo{nextID: 1, payouts: make(map[int64]*models.RiderPayout)}
}

func copyPayout(p *models.RiderPayout) *models.RiderPayout {
	clone := *p
	clone.Orders = append([]models.PayoutOrderSnapshot(nil), p.Orders...)
	if p.PaidAt != nil {
		at := *p.PaidAt
		clone.PaidAt = &at
	}
	return &clone
}

func (r *fakePayoutRepo) Upsert(payout *models.RiderPayout) (*models.RiderPayout, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.payouts {
		if existing.RiderID == payout.RiderID && existing.WeekStart.Equal(payout.WeekStart) {
			if existing.Status == models.PayoutStatusPaid {
				return nil, false, nil
			}
			existing.WeekEnd = payout.WeekEnd
			existing.Orders = append([]models.PayoutOrderSnapshot(nil), payout.Orders...)
			existing.Totals = payout.Totals
			existing.UpdatedAt = time.Now()
			return copyPayout(existing), true, nil
		}
	}
	clone := copyPayout(payout)
	clone.ID = r.nextID
	r.nextID++
	clone.Status = models.PayoutStatusPending
	clone.CreatedAt = time.Now()
	clone.UpdatedAt = clone.CreatedAt
	r.payouts[clone.ID] = clone
	return copyPayout(clone), true, nil
}

func (r *fakePayoutRepo) GetPayoutByID(payoutID int64) (*models.RiderPayout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	payout, ok := r.payouts[payoutID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return copyPayout(payout), nil
}

func (r *fakePayoutRepo) GetPayouts(filters models.PayoutFilters) ([]models.RiderPayout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.RiderPayout
	for id := int64(1); id < r.nextID; id++ {
		payout, ok := r.payouts[id]
		if !ok {
			continue
		}
		if filters.RiderID != nil && payout.RiderID != *filters.RiderID {
			continue
		}
		if filters.Status != nil && payout.Status != *filters.Status {
			continue
		}
		if filters.WeekStart != nil && !payout.WeekStart.Equal(*filters.WeekStart) {
			continue
		}
		result = append(result, *copyPayout(payout))
	}
	return result, nil
}

func (r *fakePayoutRepo) MarkPaid(payoutID int64, paidAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	payout, ok := r.payouts[payoutID]
	if !ok || payout.Status != models.PayoutStatusPending {
		return false, nil
	}
	payout.Status = models.PayoutStatusPaid
	payout.PaidAt = &paidAt
	payout.UpdatedAt = paidAt
	return true, nil
}

type fakeChatRepo struct {
	mu       sync.Mutex
	nextID   int64
	messages []models.ChatMessage
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{nextID: 1}
}

func (r *fakeChatRepo) CreateMessage(message *models.ChatMessage) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	message.ID = r.nextID
	r.nextID++
	r.messages = append(r.messages, *message)
	return message.ID, nil
}

func (r *fakeChatRepo) GetMessagesByOrderID(orderID int64) ([]models.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []models.ChatMessage
	for _, m := range r.messages {
		if m.OrderID == orderID {
			result = append(result, m)
		}
	}
	return result, nil
}

type fakeSettingRepo struct {
	mu       sync.Mutex
	settings map[string]*models.ApplicationSetting
}

func newFakeSettingRepo() *fakeSettingRepo {
	return &fakeSettingRepo{settings: make(map[string]*models.ApplicationSetting)}
}

func (r *fakeSettingRepo) GetSettingByKey(key string) (*models.ApplicationSetting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	setting, ok := r.settings[key]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *setting
	return &clone, nil
}

func (r *fakeSettingRepo) UpsertSetting(key, value string, description *string) (*models.ApplicationSetting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	setting, ok := r.settings[key]
	if !ok {
		setting = &models.ApplicationSetting{
			ID:         int64(len(r.settings) + 1),
			SettingKey: key,
			CreatedAt:  time.Now(),
		}
		r.settings[key] = setting
	}
	setting.SettingValue = value
	if description != nil {
		setting.Description = description
	}
	setting.UpdatedAt = time.Now()
	clone := *setting
	return &clone, nil
}

// recordingNotifier captures published notifications for assertions.
type recordingNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	UserID int64
	Type   string
}

func (n *recordingNotifier) Publish(userID int64, notification Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{UserID: userID, Type: notification.Type})
	return nil
}

func (n *recordingNotifier) eventsFor(userID int64) []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var types []string
	for _, e := range n.events {
		if e.UserID == userID {
			types = append(types, e.Type)
		}
	}
	return types
}

// fixedGeocoder returns the same coordinates for every address.
type fixedGeocoder struct {
	lat, lng float64
}

func (g fixedGeocoder) Geocode(string) (float64, float64, error) {
	return g.lat, g.lng, nil
}

// Shared test setup helpers.

type orderServiceFixture struct {
	svc       OrderService
	orderRepo *fakeOrderRepo
	notifier  *recordingNotifier
	settings  SettingsService
}

func newOrderServiceFixture() *orderServiceFixture {
	orderRepo := newFakeOrderRepo()
	notifier := &recordingNotifier{}
	settings := NewSettingsService(newFakeSettingRepo(), 10)
	svc := NewOrderService(orderRepo, settings, notifier, fixedGeocoder{lat: 6.5244, lng: 3.3792}, OrderServiceConfig{
		OTPLength: 4,
		OTPTTL:    15 * time.Minute,
	})
	return &orderServiceFixture{svc: svc, orderRepo: orderRepo, notifier: notifier, settings: settings}
}

var (
	customer = Actor{UserID: 1, Role: models.RoleCustomer}
	rider    = Actor{UserID: 2, Role: models.RoleRider}
	admin    = Actor{UserID: 3, Role: models.RoleAdmin}
)

func (f *orderServiceFixture) createOrder(price float64) *models.Order {
	order, err := f.svc.CreateOrder(customer, CreateOrderRequest{
		PickupAddress:  "12 Allen Avenue, Ikeja",
		DropoffAddress: "4 Marina Road, Lagos Island",
		Items:          "Documents",
		Price:          price,
	})
	if err != nil {
		panic("fixture createOrder: " + err.Error())
	}
	return order
}

func (f *orderServiceFixture) acceptedOrder(price float64) *models.Order {
	order := f.createOrder(price)
	accepted, err := f.svc.AcceptOrder(rider, order.ID)
	if err != nil {
		panic("fixture acceptedOrder: " + err.Error())
	}
	return accepted
}

func riderActor(id int64) Actor {
	return Actor{UserID: id, Role: models.RoleRider}
}

func strPtr(s string) *string { return &s }
