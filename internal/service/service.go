package service

import (
	"context"
	"time"

	"scootshare-backend/internal/domain"
)

// BookingService owns the booking lifecycle on a vehicle: request, host
// confirmation with arbitration, explicit end.
type BookingService interface {
	RequestBooking(ctx context.Context, renterID, vehicleID int32, start, end time.Time) (*domain.Booking, error)
	ConfirmBooking(ctx context.Context, hostID, vehicleID int32, bookingID string) (*domain.Booking, error)
	EndBooking(ctx context.Context, actorID int32, actorRole domain.Role, vehicleID int32) (*domain.Booking, error)
	Quote(ctx context.Context, vehicleID int32, start, end time.Time) (int32, error)
	ListRenterBookings(ctx context.Context, renterID int32) ([]domain.Booking, error)
}

// SearchQuery describes an availability search. City text match and geo
// radius match are combined when both are supplied.
type SearchQuery struct {
	City     string
	Lat      *float64
	Lng      *float64
	RadiusKm float64
	From     time.Time
	To       time.Time
}

// VehicleUpdate carries the host-editable fields; nil means unchanged.
type VehicleUpdate struct {
	Model       *string
	Pickup      *domain.Location
	Pricing     *domain.Pricing
	IsAvailable *bool
}

type VehicleService interface {
	AddVehicle(ctx context.Context, hostID int32, v *domain.Vehicle) error
	GetVehicle(ctx context.Context, id int32) (*domain.Vehicle, []domain.Booking, error)
	UpdateVehicle(ctx context.Context, hostID, vehicleID int32, upd VehicleUpdate) (*domain.Vehicle, error)
	DeleteVehicle(ctx context.Context, hostID, vehicleID int32) error
	ListHostVehicles(ctx context.Context, hostID int32) ([]domain.Vehicle, error)
	SearchAvailable(ctx context.Context, q SearchQuery) ([]domain.Vehicle, error)
	SetVerified(ctx context.Context, vehicleID int32, verified bool) error
}

type NotificationService interface {
	GetNotifications(ctx context.Context, recipientID int32, role domain.Role, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, recipientID, notificationID int32) error
}

// DocumentVerifier is the document-verification collaborator. The core
// checks approval as a precondition but never implements verification.
type DocumentVerifier interface {
	IsRenterApproved(ctx context.Context, renterID int32) (bool, error)
	IsHostApproved(ctx context.Context, hostID int32) (bool, error)
}

// BookingEvent carries everything a notification needs: booking summary plus
// renter/host contact info.
type BookingEvent struct {
	Booking domain.Booking
	Vehicle domain.Vehicle
	Renter  *domain.Renter
	Host    *domain.Host
}

// Notifier is the fire-and-forget notification collaborator. Delivery
// failures are logged and never roll back a core state transition, so the
// methods return nothing.
type Notifier interface {
	BookingRequested(ctx context.Context, ev BookingEvent)
	BookingConfirmed(ctx context.Context, ev BookingEvent)
	BookingCanceled(ctx context.Context, ev BookingEvent, reason string)
	BookingCompleted(ctx context.Context, ev BookingEvent, autoEnded bool)
}

// EmailSender delivers a single plain-text email.
type EmailSender interface {
	Send(ctx context.Context, toEmail, toName, subject, body string) error
}
