package postgres

import (
	"context"
	"database/sql"
	"errors"

	"scootshare-backend/internal/apperror"
	"scootshare-backend/internal/domain"
)

type bookingRepository struct {
	q DBTX
}

const bookingColumns = `id, vehicle_id, renter_id, start_time, end_time, total_price_cents, status, returned_at, created_on, updated_on`

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	query := `INSERT INTO bookings (id, vehicle_id, renter_id, start_time, end_time, total_price_cents, status, returned_at, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	          RETURNING created_on, updated_on`
	err := r.q.QueryRowContext(ctx, query,
		b.ID, b.VehicleID, b.RenterID, b.StartTime, b.EndTime, b.TotalPriceCents, b.Status, b.ReturnedAt,
	).Scan(&b.CreatedOn, &b.UpdatedOn)
	return storageErr(err)
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	b := &domain.Booking{}
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.VehicleID, &b.RenterID, &b.StartTime, &b.EndTime,
		&b.TotalPriceCents, &b.Status, &b.ReturnedAt, &b.CreatedOn, &b.UpdatedOn,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFoundf("booking %s not found", id)
	}
	if err != nil {
		return nil, storageErr(err)
	}
	return b, nil
}

func (r *bookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	query := `UPDATE bookings SET status=$1, end_time=$2, returned_at=$3, total_price_cents=$4, updated_on=NOW() WHERE id=$5`
	res, err := r.q.ExecContext(ctx, query, b.Status, b.EndTime, b.ReturnedAt, b.TotalPriceCents, b.ID)
	if err != nil {
		return storageErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFoundf("booking %s not found", b.ID)
	}
	return nil
}

func (r *bookingRepository) ListByVehicle(ctx context.Context, vehicleID int32) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE vehicle_id = $1 ORDER BY start_time ASC`
	rows, err := r.q.QueryContext(ctx, query, vehicleID)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()
	return scanBookings(rows)
}

func (r *bookingRepository) ListByRenter(ctx context.Context, renterID int32) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE renter_id = $1 ORDER BY created_on DESC`
	rows, err := r.q.QueryContext(ctx, query, renterID)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()
	return scanBookings(rows)
}

func (r *bookingRepository) RenterHasActive(ctx context.Context, renterID int32) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM bookings WHERE renter_id = $1 AND status IN ('pending', 'confirmed'))`
	var exists bool
	if err := r.q.QueryRowContext(ctx, query, renterID).Scan(&exists); err != nil {
		return false, storageErr(err)
	}
	return exists, nil
}

func (r *bookingRepository) DeleteByVehicle(ctx context.Context, vehicleID int32) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM bookings WHERE vehicle_id = $1`, vehicleID)
	return storageErr(err)
}

func scanBookings(rows *sql.Rows) ([]domain.Booking, error) {
	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(
			&b.ID, &b.VehicleID, &b.RenterID, &b.StartTime, &b.EndTime,
			&b.TotalPriceCents, &b.Status, &b.ReturnedAt, &b.CreatedOn, &b.UpdatedOn,
		); err != nil {
			return nil, storageErr(err)
		}
		bookings = append(bookings, b)
	}
	return bookings, storageErr(rows.Err())
}
