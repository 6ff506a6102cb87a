package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"scootshare-backend/internal/apperror"
	"scootshare-backend/internal/domain"
)

type vehicleRepository struct {
	q DBTX
}

const vehicleColumns = `id, host_id, model, pickup_address, pickup_landmark, pickup_city, pickup_lat, pickup_lng,
	is_verified, is_available, weekday_price_cents, weekend_price_cents, booking_count, created_on, updated_on`

func (r *vehicleRepository) Create(ctx context.Context, v *domain.Vehicle) error {
	query := `INSERT INTO vehicles (host_id, model, pickup_address, pickup_landmark, pickup_city, pickup_lat, pickup_lng,
	            is_verified, is_available, weekday_price_cents, weekend_price_cents, booking_count, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 0, NOW(), NOW())
	          RETURNING id, created_on, updated_on`
	err := r.q.QueryRowContext(ctx, query,
		v.HostID, v.Model, v.Pickup.Address, v.Pickup.Landmark, v.Pickup.City, v.Pickup.Lat, v.Pickup.Lng,
		v.IsVerified, v.IsAvailable, v.Pricing.WeekdayPriceCents, v.Pricing.WeekendPriceCents,
	).Scan(&v.ID, &v.CreatedOn, &v.UpdatedOn)
	return storageErr(err)
}

func (r *vehicleRepository) GetByID(ctx context.Context, id int32) (*domain.Vehicle, error) {
	return r.get(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id)
}

func (r *vehicleRepository) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Vehicle, error) {
	return r.get(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1 FOR UPDATE`, id)
}

func (r *vehicleRepository) get(ctx context.Context, query string, id int32) (*domain.Vehicle, error) {
	v := &domain.Vehicle{}
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&v.ID, &v.HostID, &v.Model, &v.Pickup.Address, &v.Pickup.Landmark, &v.Pickup.City, &v.Pickup.Lat, &v.Pickup.Lng,
		&v.IsVerified, &v.IsAvailable, &v.Pricing.WeekdayPriceCents, &v.Pricing.WeekendPriceCents,
		&v.BookingCount, &v.CreatedOn, &v.UpdatedOn,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFoundf("vehicle %d not found", id)
	}
	if err != nil {
		return nil, storageErr(err)
	}
	return v, nil
}

func (r *vehicleRepository) Update(ctx context.Context, v *domain.Vehicle) error {
	query := `UPDATE vehicles SET model=$1, pickup_address=$2, pickup_landmark=$3, pickup_city=$4, pickup_lat=$5, pickup_lng=$6,
	            is_verified=$7, is_available=$8, weekday_price_cents=$9, weekend_price_cents=$10, booking_count=$11, updated_on=NOW()
	          WHERE id=$12`
	res, err := r.q.ExecContext(ctx, query,
		v.Model, v.Pickup.Address, v.Pickup.Landmark, v.Pickup.City, v.Pickup.Lat, v.Pickup.Lng,
		v.IsVerified, v.IsAvailable, v.Pricing.WeekdayPriceCents, v.Pricing.WeekendPriceCents, v.BookingCount, v.ID)
	if err != nil {
		return storageErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFoundf("vehicle %d not found", v.ID)
	}
	return nil
}

func (r *vehicleRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM vehicles WHERE id = $1`, id)
	if err != nil {
		return storageErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFoundf("vehicle %d not found", id)
	}
	return nil
}

func (r *vehicleRepository) ListByHost(ctx context.Context, hostID int32) ([]domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE host_id = $1 ORDER BY created_on DESC`
	rows, err := r.q.QueryContext(ctx, query, hostID)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()
	return scanVehicles(rows, false)
}

func (r *vehicleRepository) SearchByCity(ctx context.Context, city string, from, to time.Time) ([]domain.Vehicle, error) {
	query := `SELECT v.id, v.host_id, v.model, v.pickup_address, v.pickup_landmark, v.pickup_city, v.pickup_lat, v.pickup_lng,
	            v.is_verified, v.is_available, v.weekday_price_cents, v.weekend_price_cents, v.booking_count, v.created_on, v.updated_on
	          FROM vehicles v
	          WHERE v.is_verified AND v.is_available
	            AND v.pickup_city ILIKE '%' || $1 || '%'
	            AND NOT EXISTS (
	              SELECT 1 FROM bookings b
	              WHERE b.vehicle_id = v.id
	                AND b.status = 'confirmed'
	                AND b.start_time < $3
	                AND b.end_time > $2
	            )
	          ORDER BY v.created_on DESC`
	rows, err := r.q.QueryContext(ctx, query, city, from, to)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()
	return scanVehicles(rows, false)
}

func (r *vehicleRepository) SearchByRadius(ctx context.Context, lat, lng, radiusKm float64, from, to time.Time) ([]domain.Vehicle, error) {
	// Great-circle distance via the haversine formula, earth radius 6371 km.
	query := `SELECT v.id, v.host_id, v.model, v.pickup_address, v.pickup_landmark, v.pickup_city, v.pickup_lat, v.pickup_lng,
	            v.is_verified, v.is_available, v.weekday_price_cents, v.weekend_price_cents, v.booking_count, v.created_on, v.updated_on,
	            6371 * 2 * asin(sqrt(
	              power(sin(radians(v.pickup_lat - $1) / 2), 2) +
	              cos(radians($1)) * cos(radians(v.pickup_lat)) *
	              power(sin(radians(v.pickup_lng - $2) / 2), 2)
	            )) AS distance_km
	          FROM vehicles v
	          WHERE v.is_verified AND v.is_available
	            AND v.pickup_lat IS NOT NULL AND v.pickup_lng IS NOT NULL
	            AND NOT EXISTS (
	              SELECT 1 FROM bookings b
	              WHERE b.vehicle_id = v.id
	                AND b.status = 'confirmed'
	                AND b.start_time < $5
	                AND b.end_time > $4
	            )
	            AND 6371 * 2 * asin(sqrt(
	              power(sin(radians(v.pickup_lat - $1) / 2), 2) +
	              cos(radians($1)) * cos(radians(v.pickup_lat)) *
	              power(sin(radians(v.pickup_lng - $2) / 2), 2)
	            )) <= $3
	          ORDER BY distance_km ASC`
	rows, err := r.q.QueryContext(ctx, query, lat, lng, radiusKm, from, to)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()
	return scanVehicles(rows, true)
}

func (r *vehicleRepository) IDsWithExpiredConfirmed(ctx context.Context, now time.Time) ([]int32, error) {
	query := `SELECT DISTINCT vehicle_id FROM bookings WHERE status = 'confirmed' AND end_time <= $1`
	rows, err := r.q.QueryContext(ctx, query, now)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	var ids []int32
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, storageErr(err)
		}
		ids = append(ids, id)
	}
	return ids, storageErr(rows.Err())
}

func scanVehicles(rows *sql.Rows, withDistance bool) ([]domain.Vehicle, error) {
	var vehicles []domain.Vehicle
	for rows.Next() {
		var v domain.Vehicle
		dest := []any{
			&v.ID, &v.HostID, &v.Model, &v.Pickup.Address, &v.Pickup.Landmark, &v.Pickup.City, &v.Pickup.Lat, &v.Pickup.Lng,
			&v.IsVerified, &v.IsAvailable, &v.Pricing.WeekdayPriceCents, &v.Pricing.WeekendPriceCents,
			&v.BookingCount, &v.CreatedOn, &v.UpdatedOn,
		}
		if withDistance {
			var dist float64
			dest = append(dest, &dist)
			if err := rows.Scan(dest...); err != nil {
				return nil, storageErr(err)
			}
			v.DistanceKm = &dist
		} else if err := rows.Scan(dest...); err != nil {
			return nil, storageErr(err)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, storageErr(rows.Err())
}
