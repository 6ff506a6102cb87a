package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scootshare-backend/internal/config"
	"scootshare-backend/internal/domain"
	"scootshare-backend/internal/repository/memory"
	"scootshare-backend/internal/service"
)

type completedRecorder struct {
	events    []service.BookingEvent
	autoEnded []bool
}

func (r *completedRecorder) BookingRequested(context.Context, service.BookingEvent)        {}
func (r *completedRecorder) BookingConfirmed(context.Context, service.BookingEvent)        {}
func (r *completedRecorder) BookingCanceled(context.Context, service.BookingEvent, string) {}
func (r *completedRecorder) BookingCompleted(_ context.Context, ev service.BookingEvent, autoEnded bool) {
	r.events = append(r.events, ev)
	r.autoEnded = append(r.autoEnded, autoEnded)
}

type reconcilerFixture struct {
	store    *memory.Store
	notifier *completedRecorder
	runner   *JobRunner
	now      time.Time
}

func newReconcilerFixture(t *testing.T) *reconcilerFixture {
	t.Helper()
	f := &reconcilerFixture{
		store:    memory.NewStore(),
		notifier: &completedRecorder{},
		now:      time.Date(2026, time.March, 2, 12, 0, 0, 0, time.UTC),
	}
	f.runner = NewJobRunner(f.store, f.notifier, &config.Config{})
	f.runner.now = func() time.Time { return f.now }
	f.store.SeedHost(domain.Host{ID: 1, Email: "hana@example.com"})
	f.store.SeedRenter(domain.Renter{ID: 10, Email: "renter@example.com", HasActiveBooking: true})
	return f
}

func (f *reconcilerFixture) seedVehicle(t *testing.T) *domain.Vehicle {
	t.Helper()
	v := &domain.Vehicle{
		HostID:      1,
		Model:       "Vespa Primavera",
		Pickup:      domain.Location{Address: "12 Beach Rd", City: "Panaji"},
		Pricing:     domain.Pricing{WeekdayPriceCents: 100, WeekendPriceCents: 150},
		IsVerified:  true,
		IsAvailable: false,
	}
	require.NoError(t, f.store.Vehicles().Create(context.Background(), v))
	return v
}

func (f *reconcilerFixture) seedBooking(t *testing.T, vehicleID int32, status domain.BookingStatus, start, end time.Time) *domain.Booking {
	t.Helper()
	b := domain.NewBooking(vehicleID, 10, start, end, 100)
	b.Status = status
	require.NoError(t, f.store.Bookings().Create(context.Background(), b))
	return b
}

func TestRunWithRecoveryContainsPanic(t *testing.T) {
	f := newReconcilerFixture(t)
	assert.NotPanics(t, func() {
		f.runner.runWithRecovery("exploding-job", func() { panic("boom") })
	})
}

func TestCompleteExpiredBookings(t *testing.T) {
	f := newReconcilerFixture(t)
	v := f.seedVehicle(t)
	ctx := context.Background()

	expired := f.seedBooking(t, v.ID, domain.BookingStatusConfirmed, f.now.Add(-4*time.Hour), f.now.Add(-time.Hour))

	f.runner.CompleteExpiredBookings()

	got, err := f.store.Bookings().GetByID(ctx, expired.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCompleted, got.Status)
	require.NotNil(t, got.ReturnedAt)
	assert.Equal(t, f.now, *got.ReturnedAt)

	gotV, err := f.store.Vehicles().GetByID(ctx, v.ID)
	require.NoError(t, err)
	assert.True(t, gotV.IsAvailable)
	assert.Equal(t, int32(1), gotV.BookingCount)

	r, err := f.store.Renters().GetByID(ctx, 10)
	require.NoError(t, err)
	assert.False(t, r.HasActiveBooking)

	require.Len(t, f.notifier.events, 1)
	assert.True(t, f.notifier.autoEnded[0])
	require.NotNil(t, f.notifier.events[0].Renter)
	assert.Equal(t, "renter@example.com", f.notifier.events[0].Renter.Email)
}

func TestCompleteExpiredBookingsLeavesFutureConfirmed(t *testing.T) {
	f := newReconcilerFixture(t)
	v := f.seedVehicle(t)
	ctx := context.Background()

	future := f.seedBooking(t, v.ID, domain.BookingStatusConfirmed, f.now.Add(time.Hour), f.now.Add(4*time.Hour))

	f.runner.CompleteExpiredBookings()

	got, err := f.store.Bookings().GetByID(ctx, future.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, got.Status)

	gotV, err := f.store.Vehicles().GetByID(ctx, v.ID)
	require.NoError(t, err)
	assert.False(t, gotV.IsAvailable)
	assert.Empty(t, f.notifier.events)
}

func TestCompleteExpiredBookingsEndBoundary(t *testing.T) {
	f := newReconcilerFixture(t)
	v := f.seedVehicle(t)
	ctx := context.Background()

	// A booking ending exactly now is already elapsed.
	boundary := f.seedBooking(t, v.ID, domain.BookingStatusConfirmed, f.now.Add(-time.Hour), f.now)

	f.runner.CompleteExpiredBookings()

	got, err := f.store.Bookings().GetByID(ctx, boundary.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCompleted, got.Status)
}

func TestCompleteExpiredBookingsIsIdempotent(t *testing.T) {
	f := newReconcilerFixture(t)
	v := f.seedVehicle(t)
	ctx := context.Background()

	f.seedBooking(t, v.ID, domain.BookingStatusConfirmed, f.now.Add(-4*time.Hour), f.now.Add(-time.Hour))

	f.runner.CompleteExpiredBookings()
	f.runner.CompleteExpiredBookings()

	gotV, err := f.store.Vehicles().GetByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(1), gotV.BookingCount, "second sweep must not double-count")
	assert.Len(t, f.notifier.events, 1, "second sweep must not re-notify")
}

func TestCompleteExpiredBookingsSweepsMultipleVehicles(t *testing.T) {
	f := newReconcilerFixture(t)
	f.store.SeedRenter(domain.Renter{ID: 11, HasActiveBooking: true})
	v1 := f.seedVehicle(t)
	v2 := f.seedVehicle(t)
	ctx := context.Background()

	f.seedBooking(t, v1.ID, domain.BookingStatusConfirmed, f.now.Add(-4*time.Hour), f.now.Add(-time.Hour))
	b2 := domain.NewBooking(v2.ID, 11, f.now.Add(-3*time.Hour), f.now.Add(-time.Hour), 100)
	b2.Status = domain.BookingStatusConfirmed
	require.NoError(t, f.store.Bookings().Create(ctx, b2))

	f.runner.CompleteExpiredBookings()

	for _, id := range []int32{v1.ID, v2.ID} {
		v, err := f.store.Vehicles().GetByID(ctx, id)
		require.NoError(t, err)
		assert.True(t, v.IsAvailable, "vehicle %d", id)
		assert.Equal(t, int32(1), v.BookingCount, "vehicle %d", id)
	}
	assert.Len(t, f.notifier.events, 2)
}
