package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ninthwaka_backend/internal/models"
	"ninthwaka_backend/internal/repositories"

	"github.com/redis/go-redis/v9"
)

// --- Data Transfer Objects (DTOs) ---

type UpdateLocationRequest struct {
	Lat float64 `json:"lat" binding:"required,gte=-90,lte=90"`
	Lng float64 `json:"lng" binding:"required,gte=-180,lte=180"`
}

// RiderLocation is the last reported position of a rider. Positions are
// ephemeral: they live in Redis with a TTL and expire when the rider stops
// reporting.
type RiderLocation struct {
	RiderID    int64     `json:"rider_id"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	ReportedAt time.Time `json:"reported_at"`
}

// --- LocationService Interface ---

type LocationService interface {
	UpdateLocation(actor Actor, req UpdateLocationRequest) error
	GetRiderLocation(actor Actor, orderID int64) (*RiderLocation, error)
}

// --- locationService Implementation ---

type locationService struct {
	client    *redis.Client
	orderRepo repositories.OrderRepository
	ttl       time.Duration
}

// NewLocationService creates a new instance of LocationService. Positions
// expire after ttl without a fresh report.
func NewLocationService(client *redis.Client, orderRepo repositories.OrderRepository, ttl time.Duration) LocationService {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &locationService{client: client, orderRepo: orderRepo, ttl: ttl}
}

func riderLocationKey(riderID int64) string {
	return fmt.Sprintf("rider:location:%d", riderID)
}

func (s *locationService) UpdateLocation(actor Actor, req UpdateLocationRequest) error {
	if actor.Role != models.RoleRider {
		return fmt.Errorf("%w: only riders report locations", ErrAuthorization)
	}
	if s.client == nil {
		return ErrLocationUnavailable
	}

	location := RiderLocation{
		RiderID:    actor.UserID,
		Lat:        req.Lat,
		Lng:        req.Lng,
		ReportedAt: time.Now(),
	}
	payload, err := json.Marshal(location)
	if err != nil {
		return fmt.Errorf("marshalling rider location: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.client.Set(ctx, riderLocationKey(actor.UserID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store rider location: %w", err)
	}
	return nil
}

// GetRiderLocation returns the assigned rider's last position for an order the
// caller is a party to. Tracking only makes sense while the order is in flight.
func (s *locationService) GetRiderLocation(actor Actor, orderID int64) (*RiderLocation, error) {
	order, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to fetch order %d: %w", orderID, err)
	}
	if err := authorizeOrderParty(actor, order); err != nil {
		return nil, err
	}
	if order.RiderID == nil || order.IsTerminal() {
		return nil, ErrLocationUnavailable
	}
	if s.client == nil {
		return nil, ErrLocationUnavailable
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	payload, err := s.client.Get(ctx, riderLocationKey(*order.RiderID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrLocationUnavailable
		}
		return nil, fmt.Errorf("failed to read rider location: %w", err)
	}

	var location RiderLocation
	if err := json.Unmarshal(payload, &location); err != nil {
		return nil, fmt.Errorf("unmarshalling rider location: %w", err)
	}
	return &location, nil
}
