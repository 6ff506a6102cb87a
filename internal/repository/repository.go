package repository

import (
	"context"
	"time"

	"scootshare-backend/internal/domain"
)

type VehicleRepository interface {
	Create(ctx context.Context, v *domain.Vehicle) error
	GetByID(ctx context.Context, id int32) (*domain.Vehicle, error)
	// GetByIDForUpdate locks the vehicle row for the remainder of the
	// surrounding transaction. Every mutation of a vehicle's booking set
	// goes through this lock, giving a single writer per vehicle.
	GetByIDForUpdate(ctx context.Context, id int32) (*domain.Vehicle, error)
	Update(ctx context.Context, v *domain.Vehicle) error
	Delete(ctx context.Context, id int32) error
	ListByHost(ctx context.Context, hostID int32) ([]domain.Vehicle, error)
	// SearchByCity returns verified, available vehicles in the city with no
	// confirmed booking overlapping [from, to).
	SearchByCity(ctx context.Context, city string, from, to time.Time) ([]domain.Vehicle, error)
	// SearchByRadius is SearchByCity for vehicles within radiusKm of the
	// point; results carry DistanceKm.
	SearchByRadius(ctx context.Context, lat, lng, radiusKm float64, from, to time.Time) ([]domain.Vehicle, error)
	// IDsWithExpiredConfirmed lists vehicles holding at least one confirmed
	// booking whose window ended at or before now (the reconciler's scan).
	IDsWithExpiredConfirmed(ctx context.Context, now time.Time) ([]int32, error)
}

type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	Update(ctx context.Context, b *domain.Booking) error
	ListByVehicle(ctx context.Context, vehicleID int32) ([]domain.Booking, error)
	ListByRenter(ctx context.Context, renterID int32) ([]domain.Booking, error)
	// RenterHasActive reports whether the renter holds a pending or
	// confirmed booking anywhere in the system.
	RenterHasActive(ctx context.Context, renterID int32) (bool, error)
	DeleteByVehicle(ctx context.Context, vehicleID int32) error
}

type RenterRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Renter, error)
	// GetByIDForUpdate locks the renter row; protects the system-wide
	// single-active-booking check-then-act.
	GetByIDForUpdate(ctx context.Context, id int32) (*domain.Renter, error)
	SetActiveBooking(ctx context.Context, id int32, active bool) error
}

type HostRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Host, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByRecipient(ctx context.Context, recipientID int32, role domain.Role, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, recipientID int32) error
}

// Store bundles the repositories with a transaction runner.
type Store interface {
	Vehicles() VehicleRepository
	Bookings() BookingRepository
	Renters() RenterRepository
	Hosts() HostRepository
	Notifications() NotificationRepository

	// ExecTx runs fn inside a single database transaction. The Store handed
	// to fn is bound to that transaction; row locks taken through it are
	// held until fn returns.
	ExecTx(ctx context.Context, fn func(Store) error) error
}
