package domain

import (
	"time"

	"scootshare-backend/internal/apperror"
)

// Location is the structured pickup location of a vehicle. Text fields are
// always present; coordinates are optional.
type Location struct {
	Address  string   `json:"address"`
	Landmark string   `json:"landmark,omitempty"`
	City     string   `json:"city"`
	Lat      *float64 `json:"lat,omitempty"`
	Lng      *float64 `json:"lng,omitempty"`
}

// HasCoordinates reports whether the location carries a geo point.
func (l Location) HasCoordinates() bool {
	return l.Lat != nil && l.Lng != nil
}

// Pricing is the weekday/weekend rate table, in currency minor units.
type Pricing struct {
	WeekdayPriceCents int32 `json:"weekday_price_cents"`
	WeekendPriceCents int32 `json:"weekend_price_cents"`
}

// Validate enforces the rate-table invariants: both rates positive, weekend
// at least the weekday rate.
func (p Pricing) Validate() error {
	if p.WeekdayPriceCents <= 0 || p.WeekendPriceCents <= 0 {
		return apperror.Validation("weekday and weekend prices must be positive")
	}
	if p.WeekendPriceCents < p.WeekdayPriceCents {
		return apperror.Validation("weekend price must be at least the weekday price")
	}
	return nil
}

// Vehicle is a rentable unit owned by exactly one host. IsAvailable is an
// eventually-consistent cache over the booking set, kept in sync by the
// booking transitions and the reconciler; the reservation set is the source
// of truth.
type Vehicle struct {
	ID           int32     `json:"id"`
	HostID       int32     `json:"host_id"`
	Model        string    `json:"model"`
	Pickup       Location  `json:"pickup_location"`
	IsVerified   bool      `json:"is_verified"`
	IsAvailable  bool      `json:"is_available"`
	Pricing      Pricing   `json:"pricing"`
	BookingCount int32     `json:"booking_count"`
	CreatedOn    time.Time `json:"created_on"`
	UpdatedOn    time.Time `json:"updated_on"`

	// DistanceKm is annotated by geo search results; never persisted.
	DistanceKm *float64 `json:"distance_km,omitempty"`
}
