package jobs

import (
	"context"
	"time"

	"scootshare-backend/internal/domain"
	"scootshare-backend/internal/logger"
	"scootshare-backend/internal/repository"
	"scootshare-backend/internal/service"
)

// CompleteExpiredBookings is the availability reconciler: every confirmed
// booking whose window has elapsed is completed, and the owning vehicle's
// availability flag is restored. A booking with an end in the past is always
// eligible, however late the sweep runs. Re-running over already-completed
// bookings is a no-op, so the job is safe to run concurrently with itself
// and with manual end actions.
func (jr *JobRunner) CompleteExpiredBookings() {
	jr.runWithRecovery("CompleteExpiredBookings", func() {
		ctx := context.Background()
		now := jr.now()

		ids, err := jr.store.Vehicles().IDsWithExpiredConfirmed(ctx, now)
		if err != nil {
			logger.Error("Failed to scan for expired bookings", "error", err)
			return
		}
		if len(ids) == 0 {
			return
		}

		reconciled := 0
		for _, id := range ids {
			// One bad vehicle must not block the rest of the sweep.
			if err := jr.reconcileVehicle(ctx, id, now); err != nil {
				logger.Error("Failed to reconcile vehicle", "vehicle_id", id, "error", err)
				continue
			}
			reconciled++
		}
		logger.Info("Completed expired bookings", "vehicles_scanned", len(ids), "vehicles_reconciled", reconciled)
	})
}

// reconcileVehicle completes every expired confirmed booking on one vehicle
// inside a single transaction, writing the vehicle record once.
func (jr *JobRunner) reconcileVehicle(ctx context.Context, vehicleID int32, now time.Time) error {
	var completed []domain.Booking
	var vehicle *domain.Vehicle

	err := jr.store.ExecTx(ctx, func(st repository.Store) error {
		v, err := st.Vehicles().GetByIDForUpdate(ctx, vehicleID)
		if err != nil {
			return err
		}
		bookings, err := st.Bookings().ListByVehicle(ctx, vehicleID)
		if err != nil {
			return err
		}

		for i := range bookings {
			b := &bookings[i]
			if !b.Expired(now) {
				continue
			}
			if err := b.Complete(now); err != nil {
				return err
			}
			if err := st.Bookings().Update(ctx, b); err != nil {
				return err
			}
			if err := st.Renters().SetActiveBooking(ctx, b.RenterID, false); err != nil {
				return err
			}
			completed = append(completed, *b)
		}
		if len(completed) == 0 {
			return nil
		}

		v.IsAvailable = true
		v.BookingCount += int32(len(completed))
		if err := st.Vehicles().Update(ctx, v); err != nil {
			return err
		}
		vehicle = v
		return nil
	})
	if err != nil || vehicle == nil {
		return err
	}

	for _, b := range completed {
		ev := service.BookingEvent{Booking: b, Vehicle: *vehicle}
		if renter, err := jr.store.Renters().GetByID(ctx, b.RenterID); err == nil {
			ev.Renter = renter
		}
		if host, err := jr.store.Hosts().GetByID(ctx, vehicle.HostID); err == nil {
			ev.Host = host
		}
		jr.notifier.BookingCompleted(ctx, ev, true)
	}
	return nil
}
