package service

import (
	"context"
	"time"

	"scootshare-backend/internal/apperror"
	"scootshare-backend/internal/domain"
	"scootshare-backend/internal/repository"
)

type vehicleService struct {
	store           repository.Store
	docs            DocumentVerifier
	defaultRadiusKm float64
	now             func() time.Time
}

func NewVehicleService(store repository.Store, docs DocumentVerifier, defaultRadiusKm float64) VehicleService {
	return &vehicleService{
		store:           store,
		docs:            docs,
		defaultRadiusKm: defaultRadiusKm,
		now:             time.Now,
	}
}

// AddVehicle creates an unverified vehicle for the host. Hosts without
// approved documents cannot list vehicles.
func (s *vehicleService) AddVehicle(ctx context.Context, hostID int32, v *domain.Vehicle) error {
	approved, err := s.docs.IsHostApproved(ctx, hostID)
	if err != nil {
		return err
	}
	if !approved {
		return apperror.Conflict("host documents are not approved")
	}
	if v.Model == "" {
		return apperror.Validation("vehicle model is required")
	}
	if v.Pickup.Address == "" || v.Pickup.City == "" {
		return apperror.Validation("pickup address and city are required")
	}
	if err := v.Pricing.Validate(); err != nil {
		return err
	}

	v.HostID = hostID
	v.IsVerified = false // awaiting admin verification
	v.IsAvailable = true
	v.BookingCount = 0
	return s.store.Vehicles().Create(ctx, v)
}

func (s *vehicleService) GetVehicle(ctx context.Context, id int32) (*domain.Vehicle, []domain.Booking, error) {
	v, err := s.store.Vehicles().GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	bookings, err := s.store.Bookings().ListByVehicle(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return v, bookings, nil
}

// UpdateVehicle applies host edits. A pricing change is rejected while any
// confirmed booking with a future end exists, so quoted totals stay honest.
// The availability flag is recomputed from the confirmed booking set.
func (s *vehicleService) UpdateVehicle(ctx context.Context, hostID, vehicleID int32, upd VehicleUpdate) (*domain.Vehicle, error) {
	var updated *domain.Vehicle
	err := s.store.ExecTx(ctx, func(st repository.Store) error {
		v, err := st.Vehicles().GetByIDForUpdate(ctx, vehicleID)
		if err != nil {
			return err
		}
		if v.HostID != hostID {
			return apperror.Forbidden("vehicle belongs to another host")
		}

		bookings, err := st.Bookings().ListByVehicle(ctx, vehicleID)
		if err != nil {
			return err
		}
		now := s.now()

		if upd.Pricing != nil && *upd.Pricing != v.Pricing {
			if err := upd.Pricing.Validate(); err != nil {
				return err
			}
			for i := range bookings {
				b := &bookings[i]
				if b.Status == domain.BookingStatusConfirmed && b.EndTime.After(now) {
					return apperror.Conflict("pricing cannot change while a confirmed future booking exists")
				}
			}
			v.Pricing = *upd.Pricing
		}
		if upd.Model != nil {
			v.Model = *upd.Model
		}
		if upd.Pickup != nil {
			v.Pickup = *upd.Pickup
		}

		occupied := false
		for i := range bookings {
			b := &bookings[i]
			if b.Status == domain.BookingStatusConfirmed && !b.StartTime.After(now) && b.EndTime.After(now) {
				occupied = true
				break
			}
		}
		// A manual availability-off toggle survives unrelated edits; only an
		// explicit flag in the update or an in-progress booking overrides it.
		switch {
		case occupied:
			v.IsAvailable = false
		case upd.IsAvailable != nil:
			v.IsAvailable = *upd.IsAvailable
		}

		if err := st.Vehicles().Update(ctx, v); err != nil {
			return err
		}
		updated = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteVehicle removes the vehicle and its bookings as one unit. Renter
// flags backing any still-active booking are cleared so the renter can book
// again.
func (s *vehicleService) DeleteVehicle(ctx context.Context, hostID, vehicleID int32) error {
	return s.store.ExecTx(ctx, func(st repository.Store) error {
		v, err := st.Vehicles().GetByIDForUpdate(ctx, vehicleID)
		if err != nil {
			return err
		}
		if v.HostID != hostID {
			return apperror.Forbidden("vehicle belongs to another host")
		}

		bookings, err := st.Bookings().ListByVehicle(ctx, vehicleID)
		if err != nil {
			return err
		}
		for i := range bookings {
			if bookings[i].IsActive() {
				if err := st.Renters().SetActiveBooking(ctx, bookings[i].RenterID, false); err != nil {
					return err
				}
			}
		}

		if err := st.Bookings().DeleteByVehicle(ctx, vehicleID); err != nil {
			return err
		}
		return st.Vehicles().Delete(ctx, vehicleID)
	})
}

func (s *vehicleService) ListHostVehicles(ctx context.Context, hostID int32) ([]domain.Vehicle, error) {
	return s.store.Vehicles().ListByHost(ctx, hostID)
}

// SearchAvailable combines the city text match and the geo radius match,
// deduplicating by vehicle id and preferring the distance-annotated hit.
func (s *vehicleService) SearchAvailable(ctx context.Context, q SearchQuery) ([]domain.Vehicle, error) {
	if err := domain.ValidateWindow(q.From, q.To); err != nil {
		return nil, err
	}
	if q.City == "" && (q.Lat == nil || q.Lng == nil) {
		return nil, apperror.Validation("a city or coordinates are required")
	}

	var byGeo []domain.Vehicle
	if q.Lat != nil && q.Lng != nil {
		radius := q.RadiusKm
		if radius <= 0 {
			radius = s.defaultRadiusKm
		}
		var err error
		byGeo, err = s.store.Vehicles().SearchByRadius(ctx, *q.Lat, *q.Lng, radius, q.From, q.To)
		if err != nil {
			return nil, err
		}
	}

	var byCity []domain.Vehicle
	if q.City != "" {
		var err error
		byCity, err = s.store.Vehicles().SearchByCity(ctx, q.City, q.From, q.To)
		if err != nil {
			return nil, err
		}
	}

	results := make([]domain.Vehicle, 0, len(byGeo)+len(byCity))
	seen := make(map[int32]struct{}, len(byGeo)+len(byCity))
	for _, v := range byGeo {
		seen[v.ID] = struct{}{}
		results = append(results, v)
	}
	for _, v := range byCity {
		if _, dup := seen[v.ID]; dup {
			continue
		}
		results = append(results, v)
	}
	return results, nil
}

// SetVerified flips the admin verification flag on a vehicle.
func (s *vehicleService) SetVerified(ctx context.Context, vehicleID int32, verified bool) error {
	return s.store.ExecTx(ctx, func(st repository.Store) error {
		v, err := st.Vehicles().GetByIDForUpdate(ctx, vehicleID)
		if err != nil {
			return err
		}
		v.IsVerified = verified
		return st.Vehicles().Update(ctx, v)
	})
}
