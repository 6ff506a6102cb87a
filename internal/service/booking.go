package service

import (
	"context"
	"time"

	"scootshare-backend/internal/apperror"
	"scootshare-backend/internal/domain"
	"scootshare-backend/internal/logger"
	"scootshare-backend/internal/pricing"
	"scootshare-backend/internal/repository"
)

type bookingService struct {
	store    repository.Store
	docs     DocumentVerifier
	notifier Notifier
	now      func() time.Time
}

func NewBookingService(store repository.Store, docs DocumentVerifier, notifier Notifier) BookingService {
	return &bookingService{
		store:    store,
		docs:     docs,
		notifier: notifier,
		now:      time.Now,
	}
}

// RequestBooking appends a pending booking after the availability and
// single-active-booking preconditions pass. The conflict check and the
// booking insert run in one transaction holding the vehicle row lock, so
// two concurrent requests for overlapping windows cannot both pass.
func (s *bookingService) RequestBooking(ctx context.Context, renterID, vehicleID int32, start, end time.Time) (*domain.Booking, error) {
	if err := domain.ValidateWindow(start, end); err != nil {
		return nil, err
	}

	approved, err := s.docs.IsRenterApproved(ctx, renterID)
	if err != nil {
		return nil, err
	}
	if !approved {
		return nil, apperror.Conflict("renter documents are not approved")
	}

	var booking *domain.Booking
	var vehicle *domain.Vehicle
	err = s.store.ExecTx(ctx, func(st repository.Store) error {
		v, err := st.Vehicles().GetByIDForUpdate(ctx, vehicleID)
		if err != nil {
			return err
		}
		if !v.IsVerified {
			return apperror.Conflict("vehicle is awaiting verification")
		}
		if !v.IsAvailable {
			return apperror.Conflict("vehicle is not available")
		}

		// Renter row lock guards the system-wide check-then-act. Lock order
		// is always vehicle first, then renter.
		if _, err := st.Renters().GetByIDForUpdate(ctx, renterID); err != nil {
			return err
		}
		active, err := st.Bookings().RenterHasActive(ctx, renterID)
		if err != nil {
			return err
		}
		if active {
			return apperror.Conflict("renter already has an active booking")
		}

		existing, err := st.Bookings().ListByVehicle(ctx, vehicleID)
		if err != nil {
			return err
		}
		if domain.HasConfirmedConflict(existing, start, end) {
			return apperror.Conflict("requested window overlaps a confirmed booking")
		}

		total, err := pricing.Quote(start, end, v.Pricing)
		if err != nil {
			return err
		}

		b := domain.NewBooking(vehicleID, renterID, start, end, total)
		if err := st.Bookings().Create(ctx, b); err != nil {
			return err
		}
		if err := st.Renters().SetActiveBooking(ctx, renterID, true); err != nil {
			return err
		}
		booking, vehicle = b, v
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.BookingRequested(ctx, s.event(ctx, *booking, *vehicle))
	return booking, nil
}

// ConfirmBooking moves a pending booking to confirmed and cancels every
// other pending booking on the vehicle whose window overlaps the winner.
// Confirm, cascade-cancel and renter-flag updates commit as one unit.
func (s *bookingService) ConfirmBooking(ctx context.Context, hostID, vehicleID int32, bookingID string) (*domain.Booking, error) {
	var winner *domain.Booking
	var vehicle *domain.Vehicle
	var losers []domain.Booking
	var alreadyConfirmed bool

	err := s.store.ExecTx(ctx, func(st repository.Store) error {
		v, err := st.Vehicles().GetByIDForUpdate(ctx, vehicleID)
		if err != nil {
			return err
		}
		if v.HostID != hostID {
			return apperror.Forbidden("vehicle belongs to another host")
		}

		all, err := st.Bookings().ListByVehicle(ctx, vehicleID)
		if err != nil {
			return err
		}
		var target *domain.Booking
		for i := range all {
			if all[i].ID == bookingID {
				target = &all[i]
				break
			}
		}
		if target == nil {
			return apperror.NotFoundf("booking %s not found on vehicle %d", bookingID, vehicleID)
		}

		alreadyConfirmed = target.Status == domain.BookingStatusConfirmed
		if err := target.Confirm(); err != nil {
			return err
		}
		// Re-confirming an already confirmed booking is a no-op: arbitration
		// already ran, so nothing gets rewritten or re-announced.
		if alreadyConfirmed {
			winner, vehicle = target, v
			return nil
		}
		if err := st.Bookings().Update(ctx, target); err != nil {
			return err
		}
		if err := st.Renters().SetActiveBooking(ctx, target.RenterID, true); err != nil {
			return err
		}

		// Arbitration: overlapping pending siblings lose.
		for i := range all {
			sib := &all[i]
			if sib.ID == target.ID || sib.Status != domain.BookingStatusPending {
				continue
			}
			if !sib.Overlaps(target.StartTime, target.EndTime) {
				continue
			}
			if err := sib.Cancel(); err != nil {
				return err
			}
			if err := st.Bookings().Update(ctx, sib); err != nil {
				return err
			}
			if err := st.Renters().SetActiveBooking(ctx, sib.RenterID, false); err != nil {
				return err
			}
			losers = append(losers, *sib)
		}

		v.IsAvailable = false
		if err := st.Vehicles().Update(ctx, v); err != nil {
			return err
		}
		winner, vehicle = target, v
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !alreadyConfirmed {
		s.notifier.BookingConfirmed(ctx, s.event(ctx, *winner, *vehicle))
		for _, lost := range losers {
			s.notifier.BookingCanceled(ctx, s.event(ctx, lost, *vehicle), "an overlapping booking was confirmed instead")
		}
	}
	return winner, nil
}

// EndBooking completes the caller's confirmed booking on the vehicle. A
// renter may only end their own booking; a host may end any confirmed
// booking on a vehicle they own.
func (s *bookingService) EndBooking(ctx context.Context, actorID int32, actorRole domain.Role, vehicleID int32) (*domain.Booking, error) {
	var ended *domain.Booking
	var vehicle *domain.Vehicle

	err := s.store.ExecTx(ctx, func(st repository.Store) error {
		v, err := st.Vehicles().GetByIDForUpdate(ctx, vehicleID)
		if err != nil {
			return err
		}
		if actorRole == domain.RoleHost && v.HostID != actorID {
			return apperror.Forbidden("vehicle belongs to another host")
		}

		all, err := st.Bookings().ListByVehicle(ctx, vehicleID)
		if err != nil {
			return err
		}
		var target *domain.Booking
		for i := range all {
			b := &all[i]
			if b.Status != domain.BookingStatusConfirmed {
				continue
			}
			if actorRole == domain.RoleRenter && b.RenterID != actorID {
				continue
			}
			target = b
			break
		}
		if target == nil {
			return apperror.NotFound("no active booking found on this vehicle")
		}

		if err := target.Complete(s.now()); err != nil {
			return err
		}
		if err := st.Bookings().Update(ctx, target); err != nil {
			return err
		}
		if err := st.Renters().SetActiveBooking(ctx, target.RenterID, false); err != nil {
			return err
		}

		v.IsAvailable = true
		v.BookingCount++
		if err := st.Vehicles().Update(ctx, v); err != nil {
			return err
		}
		ended, vehicle = target, v
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.BookingCompleted(ctx, s.event(ctx, *ended, *vehicle), false)
	return ended, nil
}

// Quote prices a window against a vehicle's rate table without reserving.
func (s *bookingService) Quote(ctx context.Context, vehicleID int32, start, end time.Time) (int32, error) {
	if err := domain.ValidateWindow(start, end); err != nil {
		return 0, err
	}
	v, err := s.store.Vehicles().GetByID(ctx, vehicleID)
	if err != nil {
		return 0, err
	}
	return pricing.Quote(start, end, v.Pricing)
}

func (s *bookingService) ListRenterBookings(ctx context.Context, renterID int32) ([]domain.Booking, error) {
	return s.store.Bookings().ListByRenter(ctx, renterID)
}

// event gathers contact info for the notifier; lookups are best-effort.
func (s *bookingService) event(ctx context.Context, b domain.Booking, v domain.Vehicle) BookingEvent {
	ev := BookingEvent{Booking: b, Vehicle: v}
	renter, err := s.store.Renters().GetByID(ctx, b.RenterID)
	if err != nil {
		logger.Warn("failed to load renter for notification", "renter_id", b.RenterID, "error", err)
	}
	host, err := s.store.Hosts().GetByID(ctx, v.HostID)
	if err != nil {
		logger.Warn("failed to load host for notification", "host_id", v.HostID, "error", err)
	}
	ev.Renter, ev.Host = renter, host
	return ev
}
