package http

import (
	"time"

	"scootshare-backend/internal/domain"
)

type addVehicleRequest struct {
	Model   string          `json:"model"`
	Pickup  domain.Location `json:"pickup_location"`
	Weekday int32           `json:"weekday_price_cents"`
	Weekend int32           `json:"weekend_price_cents"`
}

type updateVehicleRequest struct {
	Model       *string          `json:"model,omitempty"`
	Pickup      *domain.Location `json:"pickup_location,omitempty"`
	Weekday     *int32           `json:"weekday_price_cents,omitempty"`
	Weekend     *int32           `json:"weekend_price_cents,omitempty"`
	IsAvailable *bool            `json:"is_available,omitempty"`
}

type requestBookingRequest struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type verifyVehicleRequest struct {
	Verified bool `json:"verified"`
}

type quoteResponse struct {
	VehicleID       int32     `json:"vehicle_id"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	TotalPriceCents int32     `json:"total_price_cents"`
}

type vehicleDetailResponse struct {
	Vehicle  *domain.Vehicle  `json:"vehicle"`
	Bookings []domain.Booking `json:"bookings"`
}
