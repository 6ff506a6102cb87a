package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scootshare-backend/internal/apperror"
	"scootshare-backend/internal/domain"
	"scootshare-backend/internal/repository"
	"scootshare-backend/internal/repository/postgres"
)

func newMockStore(t *testing.T) (*postgres.Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return postgres.NewStore(db), mock
}

func bookingRow(b *domain.Booking) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "vehicle_id", "renter_id", "start_time", "end_time", "total_price_cents", "status", "returned_at", "created_on", "updated_on"}).
		AddRow(b.ID, b.VehicleID, b.RenterID, b.StartTime, b.EndTime, b.TotalPriceCents, b.Status, b.ReturnedAt, time.Now(), time.Now())
}

func TestBookingRepository_Create(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	b := domain.NewBooking(1, 2, time.Now(), time.Now().Add(3*time.Hour), 300)
	mock.ExpectQuery("INSERT INTO bookings").
		WithArgs(b.ID, b.VehicleID, b.RenterID, b.StartTime, b.EndTime, b.TotalPriceCents, b.Status, nil).
		WillReturnRows(sqlmock.NewRows([]string{"created_on", "updated_on"}).AddRow(time.Now(), time.Now()))

	err := store.Bookings().Create(ctx, b)
	assert.NoError(t, err)
	assert.False(t, b.CreatedOn.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_GetByID(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		b := domain.NewBooking(1, 2, time.Now(), time.Now().Add(3*time.Hour), 300)
		mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id = \\$1").
			WithArgs(b.ID).
			WillReturnRows(bookingRow(b))

		got, err := store.Bookings().GetByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, b.ID, got.ID)
		assert.Equal(t, domain.BookingStatusPending, got.Status)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM bookings WHERE id = \\$1").
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := store.Bookings().GetByID(ctx, "missing")
		assert.True(t, apperror.Is(err, apperror.KindNotFound))
	})
}

func TestBookingRepository_Update(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	b := domain.NewBooking(1, 2, time.Now(), time.Now().Add(3*time.Hour), 300)
	require.NoError(t, b.Confirm())

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE bookings SET").
			WithArgs(b.Status, b.EndTime, nil, b.TotalPriceCents, b.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, store.Bookings().Update(ctx, b))
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectExec("UPDATE bookings SET").
			WithArgs(b.Status, b.EndTime, nil, b.TotalPriceCents, b.ID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := store.Bookings().Update(ctx, b)
		assert.True(t, apperror.Is(err, apperror.KindNotFound))
	})
}

func TestBookingRepository_RenterHasActive(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs(int32(7)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	active, err := store.Bookings().RenterHasActive(ctx, 7)
	require.NoError(t, err)
	assert.True(t, active)
}

func TestBookingRepository_ListByVehicle(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	b := domain.NewBooking(5, 2, time.Now(), time.Now().Add(3*time.Hour), 300)
	mock.ExpectQuery("SELECT (.+) FROM bookings WHERE vehicle_id = \\$1").
		WithArgs(int32(5)).
		WillReturnRows(bookingRow(b))

	got, err := store.Bookings().ListByVehicle(ctx, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, b.ID, got[0].ID)
}

func TestStore_ExecTx(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	t.Run("Commit", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM bookings WHERE vehicle_id = \\$1").
			WithArgs(int32(5)).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		err := store.ExecTx(ctx, func(st repository.Store) error {
			return st.Bookings().DeleteByVehicle(ctx, 5)
		})
		assert.NoError(t, err)
	})

	t.Run("Rollback", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectRollback()

		err := store.ExecTx(ctx, func(repository.Store) error {
			return apperror.Conflict("nope")
		})
		assert.True(t, apperror.Is(err, apperror.KindConflict))
	})

	t.Run("NestedReusesTransaction", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM bookings WHERE vehicle_id = \\$1").
			WithArgs(int32(6)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := store.ExecTx(ctx, func(st repository.Store) error {
			return st.ExecTx(ctx, func(inner repository.Store) error {
				return inner.Bookings().DeleteByVehicle(ctx, 6)
			})
		})
		assert.NoError(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
