package domain

import (
	"time"

	"github.com/google/uuid"

	"scootshare-backend/internal/apperror"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCanceled  BookingStatus = "canceled"
)

// Booking is a single reservation on a vehicle. Windows are half-open
// [StartTime, EndTime).
type Booking struct {
	ID              string        `json:"id"`
	VehicleID       int32         `json:"vehicle_id"`
	RenterID        int32         `json:"renter_id"`
	StartTime       time.Time     `json:"start_time"`
	EndTime         time.Time     `json:"end_time"`
	TotalPriceCents int32         `json:"total_price_cents"`
	Status          BookingStatus `json:"status"`
	ReturnedAt      *time.Time    `json:"returned_at,omitempty"`
	CreatedOn       time.Time     `json:"created_on"`
	UpdatedOn       time.Time     `json:"updated_on"`
}

// NewBooking creates a pending booking for the given window.
func NewBooking(vehicleID, renterID int32, start, end time.Time, totalPriceCents int32) *Booking {
	return &Booking{
		ID:              uuid.NewString(),
		VehicleID:       vehicleID,
		RenterID:        renterID,
		StartTime:       start,
		EndTime:         end,
		TotalPriceCents: totalPriceCents,
		Status:          BookingStatusPending,
	}
}

// ValidateWindow rejects malformed booking windows.
func ValidateWindow(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return apperror.Validation("start and end times are required")
	}
	if !end.After(start) {
		return apperror.Validation("end time must be after start time")
	}
	return nil
}

// Overlap reports whether the half-open intervals [s1,e1) and [s2,e2)
// intersect. Boundary-touching windows (e1 == s2) do not overlap.
func Overlap(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// Overlaps reports whether the booking's window intersects [start, end).
func (b *Booking) Overlaps(start, end time.Time) bool {
	return Overlap(b.StartTime, b.EndTime, start, end)
}

// HasConfirmedConflict reports whether any confirmed booking in the set
// overlaps the candidate window. Pending bookings from other renters never
// block a new request; the host arbitrates between them at confirmation.
func HasConfirmedConflict(bookings []Booking, start, end time.Time) bool {
	for i := range bookings {
		if bookings[i].Status == BookingStatusConfirmed && bookings[i].Overlaps(start, end) {
			return true
		}
	}
	return false
}

// IsActive reports whether the booking still occupies the renter's
// single-active-booking slot.
func (b *Booking) IsActive() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}

// IsTerminal reports whether no further transitions exist for the booking.
func (b *Booking) IsTerminal() bool {
	return b.Status == BookingStatusCompleted || b.Status == BookingStatusCanceled
}

// Confirm moves a pending booking to confirmed. Confirming an already
// confirmed booking is a no-op; confirming a terminal booking is an error.
func (b *Booking) Confirm() error {
	switch b.Status {
	case BookingStatusPending:
		b.Status = BookingStatusConfirmed
		return nil
	case BookingStatusConfirmed:
		return nil
	default:
		return apperror.InvalidTransition("booking is " + string(b.Status) + ", cannot confirm")
	}
}

// Cancel moves a pending booking to canceled. Canceling an already canceled
// booking is a no-op.
func (b *Booking) Cancel() error {
	switch b.Status {
	case BookingStatusPending:
		b.Status = BookingStatusCanceled
		return nil
	case BookingStatusCanceled:
		return nil
	default:
		return apperror.InvalidTransition("booking is " + string(b.Status) + ", cannot cancel")
	}
}

// Complete moves a confirmed booking to completed and stamps the return
// time. Completing an already completed booking is a no-op, so the
// reconciler and a manual end action can race without double-firing.
func (b *Booking) Complete(now time.Time) error {
	switch b.Status {
	case BookingStatusConfirmed:
		b.Status = BookingStatusCompleted
		b.ReturnedAt = &now
		return nil
	case BookingStatusCompleted:
		return nil
	default:
		return apperror.InvalidTransition("booking is " + string(b.Status) + ", cannot complete")
	}
}

// Expired reports whether a confirmed booking's window has fully elapsed.
func (b *Booking) Expired(now time.Time) bool {
	return b.Status == BookingStatusConfirmed && !b.EndTime.After(now)
}
