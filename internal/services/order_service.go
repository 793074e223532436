package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"ninthwaka_backend/internal/models"
	"ninthwaka_backend/internal/repositories"
	"ninthwaka_backend/pkg/utils"
)

// Rider/admin actions accepted by AdvanceOrder.
const (
	ActionPickup  = "pickup"
	ActionStart   = "start"
	ActionDeliver = "deliver"
	ActionCancel  = "cancel"
)

// actionTargets maps an advance action to its target status.
var actionTargets = map[string]string{
	ActionPickup:  models.OrderStatusPickedUp,
	ActionStart:   models.OrderStatusDelivering,
	ActionDeliver: models.OrderStatusDelivered,
	ActionCancel:  models.OrderStatusCancelled,
}

// allowedTransitions represents the order state flow as code. Forward jumps
// are legal (an order may go straight from assigned to delivered via the
// manual override or OTP verification); moving backwards never is, and
// cancel is reachable from every non-terminal state.
var allowedTransitions = map[string][]string{
	models.OrderStatusPending:    {models.OrderStatusAssigned, models.OrderStatusCancelled},
	models.OrderStatusAssigned:   {models.OrderStatusPickedUp, models.OrderStatusDelivering, models.OrderStatusDelivered, models.OrderStatusCancelled},
	models.OrderStatusPickedUp:   {models.OrderStatusDelivering, models.OrderStatusDelivered, models.OrderStatusCancelled},
	models.OrderStatusDelivering: {models.OrderStatusDelivered, models.OrderStatusCancelled},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// --- Data Transfer Objects (DTOs) ---

// CreateOrderRequest is used by customers to request a delivery.
type CreateOrderRequest struct {
	PickupAddress  string  `json:"pickup_address" binding:"required"`
	DropoffAddress string  `json:"dropoff_address" binding:"required"`
	Items          string  `json:"items" binding:"required"`
	Price          float64 `json:"price" binding:"required,gte=0"`
}

// AdvanceOrderRequest carries a status action (pickup/start/deliver/cancel).
type AdvanceOrderRequest struct {
	Action string `json:"action" binding:"required"`
	Note   string `json:"note"`
}

// VerifyOTPRequest carries the delivery code the customer relayed to the rider.
type VerifyOTPRequest struct {
	Code string `json:"code" binding:"required"`
}

// DeliveryProofRequest updates the optional proof-of-delivery fields.
type DeliveryProofRequest struct {
	PhotoURL       *string `json:"photo_url"`
	RecipientName  *string `json:"recipient_name"`
	RecipientPhone *string `json:"recipient_phone"`
	Note           *string `json:"note"`
}

// --- OrderService Interface ---

type OrderService interface {
	CreateOrder(actor Actor, req CreateOrderRequest) (*models.Order, error)
	GetOrderByID(actor Actor, orderID int64) (*models.Order, error)
	GetMyOrders(actor Actor, page, pageSize int) ([]models.Order, error)
	GetAvailableOrders(actor Actor) ([]models.Order, error)
	AcceptOrder(actor Actor, orderID int64) (*models.Order, error)
	AdvanceOrder(actor Actor, orderID int64, req AdvanceOrderRequest) (*models.Order, error)
	IssueDeliveryOTP(actor Actor, orderID int64) (*models.Order, error)
	VerifyDeliveryOTP(actor Actor, orderID int64, req VerifyOTPRequest) (*models.Order, error)
	UpdateDeliveryProof(actor Actor, orderID int64, req DeliveryProofRequest) (*models.Order, error)
}

// OrderServiceConfig carries the OTP tuning knobs, loaded from env by the caller.
type OrderServiceConfig struct {
	OTPLength int           // number of digits, 4-6
	OTPTTL    time.Duration // validity window of an issued code
}

// --- orderService Implementation ---

type orderService struct {
	orderRepo repositories.OrderRepository
	settings  SettingsService
	notifier  Notifier
	geocoder  Geocoder
	cfg       OrderServiceConfig
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	settings SettingsService,
	notifier Notifier,
	geocoder Geocoder,
	cfg OrderServiceConfig,
) OrderService {
	if cfg.OTPLength < 4 || cfg.OTPLength > 6 {
		cfg.OTPLength = 4
	}
	if cfg.OTPTTL <= 0 {
		cfg.OTPTTL = 15 * time.Minute
	}
	return &orderService{
		orderRepo: orderRepo,
		settings:  settings,
		notifier:  notifier,
		geocoder:  geocoder,
		cfg:       cfg,
	}
}

// authorizeOrderParty checks the single authorization boundary shared by every
// order-scoped operation: the caller must be the order's customer, the order's
// assigned rider, or an admin.
func authorizeOrderParty(actor Actor, order *models.Order) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleCustomer:
		if order.CustomerID == actor.UserID {
			return nil
		}
		return ErrForbidden
	case models.RoleRider:
		if order.RiderID != nil && *order.RiderID == actor.UserID {
			return nil
		}
		return ErrForbidden
	default:
		return ErrAuthorization
	}
}

// requireAssignedRiderOrAdmin gates rider-initiated mutations: a rider may
// only act on their own assigned order, never merely by virtue of being a rider.
func requireAssignedRiderOrAdmin(actor Actor, order *models.Order) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleRider:
		if order.RiderID != nil && *order.RiderID == actor.UserID {
			return nil
		}
		return ErrForbidden
	default:
		return ErrAuthorization
	}
}

func (s *orderService) CreateOrder(actor Actor, req CreateOrderRequest) (*models.Order, error) {
	if actor.Role != models.RoleCustomer {
		return nil, fmt.Errorf("%w: only customers may create orders", ErrAuthorization)
	}
	if req.PickupAddress == "" || req.DropoffAddress == "" {
		return nil, fmt.Errorf("%w: pickup and dropoff addresses are required", ErrValidation)
	}
	if req.Items == "" {
		return nil, fmt.Errorf("%w: items description is required", ErrValidation)
	}
	if req.Price < 0 {
		return nil, fmt.Errorf("%w: price must be non-negative", ErrValidation)
	}

	now := time.Now()
	order := &models.Order{
		CustomerID: actor.UserID,
		Pickup:     models.Location{Address: req.PickupAddress},
		Dropoff:    models.Location{Address: req.DropoffAddress},
		Items:      req.Items,
		Price:      req.Price,
		Status:     models.OrderStatusPending,
		CreatedAt:  now,
	}
	s.geocodeLocation(&order.Pickup)
	s.geocodeLocation(&order.Dropoff)

	entry := models.TimelineEntry{Status: models.OrderStatusPending, Note: "Order created", At: now}
	orderID, err := s.orderRepo.CreateOrder(order, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return s.orderRepo.GetOrderByID(orderID)
}

// geocodeLocation enriches an address with coordinates, best-effort.
func (s *orderService) geocodeLocation(loc *models.Location) {
	if s.geocoder == nil {
		return
	}
	lat, lng, err := s.geocoder.Geocode(loc.Address)
	if err != nil {
		if !errors.Is(err, ErrNoGeocodeResult) {
			utils.LogError(err, "geocoding failed for order location")
		}
		return
	}
	loc.Lat = &lat
	loc.Lng = &lng
}

func (s *orderService) GetOrderByID(actor Actor, orderID int64) (*models.Order, error) {
	order, err := s.getOrder(orderID)
	if err != nil {
		return nil, err
	}
	if err := authorizeOrderParty(actor, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) GetMyOrders(actor Actor, page, pageSize int) ([]models.Order, error) {
	filters := models.OrderFilters{Page: page, PageSize: pageSize}
	switch actor.Role {
	case models.RoleCustomer:
		filters.CustomerID = &actor.UserID
	case models.RoleRider:
		filters.RiderID = &actor.UserID
	case models.RoleAdmin:
		// admins see everything
	default:
		return nil, ErrAuthorization
	}
	return s.orderRepo.GetOrders(filters)
}

func (s *orderService) GetAvailableOrders(actor Actor) ([]models.Order, error) {
	if actor.Role != models.RoleRider {
		return nil, fmt.Errorf("%w: only riders may browse available orders", ErrAuthorization)
	}
	status := models.OrderStatusPending
	return s.orderRepo.GetOrders(models.OrderFilters{Status: &status, Unassigned: true})
}

func (s *orderService) AcceptOrder(actor Actor, orderID int64) (*models.Order, error) {
	if actor.Role != models.RoleRider {
		return nil, fmt.Errorf("%w: only riders may accept orders", ErrAuthorization)
	}
	order, err := s.getOrder(orderID)
	if err != nil {
		return nil, err
	}

	entry := models.TimelineEntry{Status: models.OrderStatusAssigned, Note: "Rider accepted the order", At: time.Now()}
	ok, err := s.orderRepo.AcceptOrder(orderID, actor.UserID, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to accept order %d: %w", orderID, err)
	}
	if !ok {
		// Either another rider won the race or the order left pending.
		return nil, ErrOrderConflict
	}

	notify(s.notifier, order.CustomerID, NotifyOrderAccepted,
		"Rider assigned", fmt.Sprintf("A rider has accepted your order #%d", orderID))
	return s.getOrder(orderID)
}

func (s *orderService) AdvanceOrder(actor Actor, orderID int64, req AdvanceOrderRequest) (*models.Order, error) {
	target, known := actionTargets[req.Action]
	if !known {
		return nil, fmt.Errorf("%w: unknown action %q", ErrValidation, req.Action)
	}

	order, err := s.getOrder(orderID)
	if err != nil {
		return nil, err
	}
	if err := requireAssignedRiderOrAdmin(actor, order); err != nil {
		return nil, err
	}
	if !CanTransition(order.Status, target) {
		return nil, fmt.Errorf("%w: cannot %s an order that is %s", ErrInvalidTransition, req.Action, order.Status)
	}

	if target == models.OrderStatusDelivered {
		// Manual override path; routes through the same settlement as OTP
		// verification so the financial freeze can never be bypassed.
		note := req.Note
		if note == "" {
			note = "Delivery completed"
		}
		if err := s.completeDelivery(order, note, nil); err != nil {
			return nil, err
		}
	} else {
		entry := models.TimelineEntry{Status: target, Note: req.Note, At: time.Now()}
		ok, err := s.orderRepo.UpdateOrderStatus(orderID, order.Status, target, entry)
		if err != nil {
			return nil, fmt.Errorf("failed to update status of order %d: %w", orderID, err)
		}
		if !ok {
			return nil, ErrOrderConflict
		}
		notify(s.notifier, order.CustomerID, NotifyOrderStatus,
			"Order update", fmt.Sprintf("Your order #%d is now %s", orderID, target))
	}
	return s.getOrder(orderID)
}

func (s *orderService) IssueDeliveryOTP(actor Actor, orderID int64) (*models.Order, error) {
	order, err := s.getOrder(orderID)
	if err != nil {
		return nil, err
	}
	if err := requireAssignedRiderOrAdmin(actor, order); err != nil {
		return nil, err
	}
	switch order.Status {
	case models.OrderStatusAssigned, models.OrderStatusPickedUp, models.OrderStatusDelivering:
	default:
		return nil, fmt.Errorf("%w: cannot issue a delivery code for a %s order", ErrInvalidTransition, order.Status)
	}

	code, err := generateOTP(s.cfg.OTPLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate delivery code: %w", err)
	}
	expiresAt := time.Now().Add(s.cfg.OTPTTL)
	if err := s.orderRepo.SetDeliveryOTP(orderID, code, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to store delivery code for order %d: %w", orderID, err)
	}

	// Issuing a code from assigned moves the order to delivering: the rider is
	// at the door. This transition is part of the contract and is audited like
	// any other.
	if order.Status == models.OrderStatusAssigned {
		entry := models.TimelineEntry{Status: models.OrderStatusDelivering, Note: "Delivery code issued", At: time.Now()}
		ok, err := s.orderRepo.UpdateOrderStatus(orderID, models.OrderStatusAssigned, models.OrderStatusDelivering, entry)
		if err != nil {
			return nil, fmt.Errorf("failed to advance order %d to delivering: %w", orderID, err)
		}
		if !ok {
			return nil, ErrOrderConflict
		}
	}

	notify(s.notifier, order.CustomerID, NotifyDeliveryOTP,
		"Delivery code", fmt.Sprintf("Give this code to your rider to confirm delivery: %s", code))
	return s.getOrder(orderID)
}

func (s *orderService) VerifyDeliveryOTP(actor Actor, orderID int64, req VerifyOTPRequest) (*models.Order, error) {
	if req.Code == "" {
		return nil, fmt.Errorf("%w: code is required", ErrValidation)
	}

	// Fetch fresh state at call time: expiry and status must be re-checked
	// here, never against a previously cached order.
	order, err := s.getOrder(orderID)
	if err != nil {
		return nil, err
	}
	if err := requireAssignedRiderOrAdmin(actor, order); err != nil {
		return nil, err
	}
	if order.IsTerminal() {
		return nil, fmt.Errorf("%w: order is already %s", ErrInvalidTransition, order.Status)
	}
	if order.Delivery.OTPCode == nil || order.Delivery.OTPExpiresAt == nil {
		return nil, ErrOTPNotIssued
	}
	if time.Now().After(*order.Delivery.OTPExpiresAt) {
		return nil, ErrOTPExpired
	}
	if req.Code != *order.Delivery.OTPCode {
		return nil, ErrInvalidOTPCode
	}

	verifiedAt := time.Now()
	if err := s.completeDelivery(order, "Delivery confirmed with verification code", &verifiedAt); err != nil {
		return nil, err
	}
	return s.getOrder(orderID)
}

// completeDelivery is the single path that finalizes an order: it computes
// the financial split at the current commission rate and freezes it together
// with the delivered status. Both the OTP flow and the manual deliver action
// end up here.
func (s *orderService) completeDelivery(order *models.Order, note string, verifiedAt *time.Time) error {
	pricing, err := s.settings.GetPricingSettings()
	if err != nil {
		return fmt.Errorf("failed to load pricing settings: %w", err)
	}
	fin := ComputeFinancial(order.Price, pricing.CommissionRatePct)

	deliveredAt := time.Now()
	entry := models.TimelineEntry{Status: models.OrderStatusDelivered, Note: note, At: deliveredAt}
	ok, err := s.orderRepo.FinalizeDelivery(order.ID, fin, verifiedAt, deliveredAt, entry)
	if err != nil {
		return fmt.Errorf("failed to finalize delivery of order %d: %w", order.ID, err)
	}
	if !ok {
		return ErrOrderConflict
	}

	notify(s.notifier, order.CustomerID, NotifyOrderDelivered,
		"Order delivered", fmt.Sprintf("Your order #%d has been delivered", order.ID))
	if order.RiderID != nil {
		notify(s.notifier, *order.RiderID, NotifyOrderDelivered,
			"Delivery settled", fmt.Sprintf("You earned %.2f on order #%d", fin.RiderNetAmount, order.ID))
	}
	return nil
}

func (s *orderService) UpdateDeliveryProof(actor Actor, orderID int64, req DeliveryProofRequest) (*models.Order, error) {
	order, err := s.getOrder(orderID)
	if err != nil {
		return nil, err
	}
	if err := requireAssignedRiderOrAdmin(actor, order); err != nil {
		return nil, err
	}
	if order.Status == models.OrderStatusCancelled {
		return nil, fmt.Errorf("%w: cannot attach delivery proof to a cancelled order", ErrInvalidTransition)
	}

	delivery := models.Delivery{
		PhotoURL:       req.PhotoURL,
		RecipientName:  req.RecipientName,
		RecipientPhone: req.RecipientPhone,
		Note:           req.Note,
	}
	if err := s.orderRepo.UpdateDeliveryProof(orderID, delivery); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to update delivery proof for order %d: %w", orderID, err)
	}
	return s.getOrder(orderID)
}

func (s *orderService) getOrder(orderID int64) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to fetch order %d: %w", orderID, err)
	}
	return order, nil
}

// generateOTP returns a random numeric code of the given length.
func generateOTP(length int) (string, error) {
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
