package services

import (
	"context"
	"errors"
	"time"

	"googlemaps.github.io/maps"
)

// Geocoder resolves a free-form address into coordinates. It is only consulted
// at order creation to enrich pickup/dropoff; failures are non-fatal and leave
// the coordinates unset.
type Geocoder interface {
	Geocode(address string) (lat, lng float64, err error)
}

// ErrNoGeocodeResult is returned when the provider has no match for an address.
var ErrNoGeocodeResult = errors.New("no geocoding result for address")

type googleGeocoder struct {
	client *maps.Client
}

// NewGoogleGeocoder creates a Geocoder backed by the Google Maps Geocoding API.
func NewGoogleGeocoder(apiKey string) (Geocoder, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &googleGeocoder{client: client}, nil
}

func (g *googleGeocoder) Geocode(address string) (float64, float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return 0, 0, err
	}
	if len(results) == 0 {
		return 0, 0, ErrNoGeocodeResult
	}
	loc := results[0].Geometry.Location
	return loc.Lat, loc.Lng, nil
}

// nopGeocoder never resolves anything; used when no API key is configured.
type nopGeocoder struct{}

// NewNopGeocoder creates a Geocoder that always reports no result.
func NewNopGeocoder() Geocoder {
	return nopGeocoder{}
}

func (nopGeocoder) Geocode(string) (float64, float64, error) {
	return 0, 0, ErrNoGeocodeResult
}
