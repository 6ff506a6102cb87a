package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scootshare-backend/internal/apperror"
	"scootshare-backend/internal/domain"
	"scootshare-backend/internal/repository/memory"
)

type vehicleFixture struct {
	store *memory.Store
	svc   *vehicleService
	host  *domain.Host
	now   time.Time
}

func newVehicleFixture(t *testing.T) *vehicleFixture {
	t.Helper()
	store := memory.NewStore()
	docs := NewDocumentVerifier(store.Renters(), store.Hosts())

	f := &vehicleFixture{
		store: store,
		now:   time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC),
	}
	f.svc = NewVehicleService(store, docs, 10).(*vehicleService)
	f.svc.now = func() time.Time { return f.now }
	f.host = store.SeedHost(domain.Host{ID: 1, Name: "Hana", Email: "hana@example.com", IsDocVerified: true})
	return f
}

func (f *vehicleFixture) seedVehicle(t *testing.T, mutate func(*domain.Vehicle)) *domain.Vehicle {
	t.Helper()
	v := &domain.Vehicle{
		HostID:      f.host.ID,
		Model:       "Vespa Primavera",
		Pickup:      domain.Location{Address: "12 Beach Rd", City: "Panaji"},
		Pricing:     domain.Pricing{WeekdayPriceCents: 100, WeekendPriceCents: 150},
		IsVerified:  true,
		IsAvailable: true,
	}
	if mutate != nil {
		mutate(v)
	}
	require.NoError(t, f.store.Vehicles().Create(context.Background(), v))
	return v
}

func (f *vehicleFixture) seedBooking(t *testing.T, vehicleID int32, status domain.BookingStatus, start, end time.Time) *domain.Booking {
	t.Helper()
	b := domain.NewBooking(vehicleID, 10, start, end, 100)
	b.Status = status
	require.NoError(t, f.store.Bookings().Create(context.Background(), b))
	return b
}

func ptr[T any](v T) *T { return &v }

func TestAddVehicleRequiresApprovedHost(t *testing.T) {
	f := newVehicleFixture(t)
	f.store.SeedHost(domain.Host{ID: 2, IsDocVerified: false})

	v := &domain.Vehicle{
		Model:   "Honda Activa",
		Pickup:  domain.Location{Address: "5 Hill St", City: "Margao"},
		Pricing: domain.Pricing{WeekdayPriceCents: 80, WeekendPriceCents: 120},
	}
	err := f.svc.AddVehicle(context.Background(), 2, v)
	assert.True(t, apperror.Is(err, apperror.KindConflict))
}

func TestAddVehicleValidation(t *testing.T) {
	f := newVehicleFixture(t)
	ctx := context.Background()

	err := f.svc.AddVehicle(ctx, f.host.ID, &domain.Vehicle{
		Pickup:  domain.Location{Address: "5 Hill St", City: "Margao"},
		Pricing: domain.Pricing{WeekdayPriceCents: 80, WeekendPriceCents: 120},
	})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	err = f.svc.AddVehicle(ctx, f.host.ID, &domain.Vehicle{
		Model:   "Honda Activa",
		Pricing: domain.Pricing{WeekdayPriceCents: 80, WeekendPriceCents: 120},
	})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	err = f.svc.AddVehicle(ctx, f.host.ID, &domain.Vehicle{
		Model:   "Honda Activa",
		Pickup:  domain.Location{Address: "5 Hill St", City: "Margao"},
		Pricing: domain.Pricing{WeekdayPriceCents: 120, WeekendPriceCents: 80},
	})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestAddVehicleStartsUnverified(t *testing.T) {
	f := newVehicleFixture(t)

	v := &domain.Vehicle{
		Model:      "Honda Activa",
		Pickup:     domain.Location{Address: "5 Hill St", City: "Margao"},
		Pricing:    domain.Pricing{WeekdayPriceCents: 80, WeekendPriceCents: 120},
		IsVerified: true, // callers cannot self-verify
	}
	require.NoError(t, f.svc.AddVehicle(context.Background(), f.host.ID, v))
	assert.False(t, v.IsVerified)
	assert.True(t, v.IsAvailable)
	assert.Equal(t, f.host.ID, v.HostID)
	assert.NotZero(t, v.ID)
}

func TestUpdateVehiclePricingLockedByFutureConfirmed(t *testing.T) {
	f := newVehicleFixture(t)
	v := f.seedVehicle(t, nil)
	ctx := context.Background()

	start := time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.March, 4, 9, 0, 0, 0, time.UTC)
	b := f.seedBooking(t, v.ID, domain.BookingStatusConfirmed, start, end)

	newRates := domain.Pricing{WeekdayPriceCents: 200, WeekendPriceCents: 250}
	_, err := f.svc.UpdateVehicle(ctx, f.host.ID, v.ID, VehicleUpdate{Pricing: &newRates})
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	// Once the booking is completed the rates can change.
	b.Status = domain.BookingStatusCompleted
	require.NoError(t, f.store.Bookings().Update(ctx, b))
	updated, err := f.svc.UpdateVehicle(ctx, f.host.ID, v.ID, VehicleUpdate{Pricing: &newRates})
	require.NoError(t, err)
	assert.Equal(t, newRates, updated.Pricing)
}

func TestUpdateVehicleAvailabilityFollowsBookings(t *testing.T) {
	f := newVehicleFixture(t)
	v := f.seedVehicle(t, nil)
	ctx := context.Background()

	// Confirmed booking currently in progress keeps the vehicle unavailable
	// regardless of what the host asks for.
	start := time.Date(2026, time.March, 2, 7, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.March, 2, 12, 0, 0, 0, time.UTC)
	f.seedBooking(t, v.ID, domain.BookingStatusConfirmed, start, end)

	updated, err := f.svc.UpdateVehicle(ctx, f.host.ID, v.ID, VehicleUpdate{IsAvailable: ptr(true)})
	require.NoError(t, err)
	assert.False(t, updated.IsAvailable)
}

func TestUpdateVehicleKeepsManualAvailabilityToggle(t *testing.T) {
	f := newVehicleFixture(t)
	v := f.seedVehicle(t, nil)
	ctx := context.Background()

	// Host takes the vehicle off the market.
	updated, err := f.svc.UpdateVehicle(ctx, f.host.ID, v.ID, VehicleUpdate{IsAvailable: ptr(false)})
	require.NoError(t, err)
	require.False(t, updated.IsAvailable)

	// An unrelated edit must not put it back on.
	updated, err = f.svc.UpdateVehicle(ctx, f.host.ID, v.ID, VehicleUpdate{Model: ptr("Vespa GTS")})
	require.NoError(t, err)
	assert.Equal(t, "Vespa GTS", updated.Model)
	assert.False(t, updated.IsAvailable)

	// Turning it back on takes an explicit flag.
	updated, err = f.svc.UpdateVehicle(ctx, f.host.ID, v.ID, VehicleUpdate{IsAvailable: ptr(true)})
	require.NoError(t, err)
	assert.True(t, updated.IsAvailable)
}

func TestUpdateVehicleForbiddenForOtherHost(t *testing.T) {
	f := newVehicleFixture(t)
	v := f.seedVehicle(t, nil)

	_, err := f.svc.UpdateVehicle(context.Background(), 999, v.ID, VehicleUpdate{Model: ptr("Stolen")})
	assert.True(t, apperror.Is(err, apperror.KindForbidden))
}

func TestDeleteVehicleClearsRenterFlags(t *testing.T) {
	f := newVehicleFixture(t)
	v := f.seedVehicle(t, nil)
	ctx := context.Background()

	f.store.SeedRenter(domain.Renter{ID: 10, IsDocVerified: true, HasActiveBooking: true})
	start := time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.March, 3, 12, 0, 0, 0, time.UTC)
	f.seedBooking(t, v.ID, domain.BookingStatusPending, start, end)

	require.NoError(t, f.svc.DeleteVehicle(ctx, f.host.ID, v.ID))

	_, _, err := f.svc.GetVehicle(ctx, v.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	r, err := f.store.Renters().GetByID(ctx, 10)
	require.NoError(t, err)
	assert.False(t, r.HasActiveBooking)
}

func TestSearchAvailableMergesCityAndGeo(t *testing.T) {
	f := newVehicleFixture(t)
	ctx := context.Background()

	// Panaji, with coordinates near the query point.
	near := f.seedVehicle(t, func(v *domain.Vehicle) {
		v.Pickup.Lat, v.Pickup.Lng = ptr(15.4989), ptr(73.8278)
	})
	// Panaji, no coordinates: only the city match can find it.
	cityOnly := f.seedVehicle(t, func(v *domain.Vehicle) {
		v.Model = "Honda Activa"
	})
	// Different city, far away.
	f.seedVehicle(t, func(v *domain.Vehicle) {
		v.Pickup.City = "Margao"
		v.Pickup.Lat, v.Pickup.Lng = ptr(15.2832), ptr(73.9862)
	})

	from := time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC)
	to := time.Date(2026, time.March, 3, 12, 0, 0, 0, time.UTC)

	results, err := f.svc.SearchAvailable(ctx, SearchQuery{
		City: "Panaji",
		Lat:  ptr(15.4990),
		Lng:  ptr(73.8280),
		From: from,
		To:   to,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	// The geo hit comes first and carries a distance; the city-only vehicle
	// appears once without one.
	assert.Equal(t, near.ID, results[0].ID)
	assert.NotNil(t, results[0].DistanceKm)
	assert.Equal(t, cityOnly.ID, results[1].ID)
	assert.Nil(t, results[1].DistanceKm)
}

func TestSearchAvailableExcludesConflictedVehicles(t *testing.T) {
	f := newVehicleFixture(t)
	v := f.seedVehicle(t, nil)
	ctx := context.Background()

	start := time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.March, 3, 12, 0, 0, 0, time.UTC)
	f.seedBooking(t, v.ID, domain.BookingStatusConfirmed, start, end)

	overlapping, err := f.svc.SearchAvailable(ctx, SearchQuery{City: "Panaji", From: start.Add(time.Hour), To: end.Add(time.Hour)})
	require.NoError(t, err)
	assert.Empty(t, overlapping)

	// The window starting exactly at the confirmed end does not conflict.
	free, err := f.svc.SearchAvailable(ctx, SearchQuery{City: "Panaji", From: end, To: end.Add(2 * time.Hour)})
	require.NoError(t, err)
	assert.Len(t, free, 1)
}

func TestSearchAvailableValidation(t *testing.T) {
	f := newVehicleFixture(t)
	ctx := context.Background()

	from := time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC)
	to := from.Add(3 * time.Hour)

	_, err := f.svc.SearchAvailable(ctx, SearchQuery{From: from, To: to})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = f.svc.SearchAvailable(ctx, SearchQuery{City: "Panaji", From: to, To: from})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestSetVerified(t *testing.T) {
	f := newVehicleFixture(t)
	v := f.seedVehicle(t, func(v *domain.Vehicle) { v.IsVerified = false })
	ctx := context.Background()

	require.NoError(t, f.svc.SetVerified(ctx, v.ID, true))
	got, err := f.store.Vehicles().GetByID(ctx, v.ID)
	require.NoError(t, err)
	assert.True(t, got.IsVerified)
}
