package postgres

import (
	"context"
	"database/sql"
	"errors"

	"scootshare-backend/internal/apperror"
	"scootshare-backend/internal/domain"
)

type renterRepository struct {
	q DBTX
}

const renterColumns = `id, name, email, phone, is_doc_verified, has_active_booking, created_on`

func (r *renterRepository) GetByID(ctx context.Context, id int32) (*domain.Renter, error) {
	return r.get(ctx, `SELECT `+renterColumns+` FROM renters WHERE id = $1`, id)
}

func (r *renterRepository) GetByIDForUpdate(ctx context.Context, id int32) (*domain.Renter, error) {
	return r.get(ctx, `SELECT `+renterColumns+` FROM renters WHERE id = $1 FOR UPDATE`, id)
}

func (r *renterRepository) get(ctx context.Context, query string, id int32) (*domain.Renter, error) {
	rt := &domain.Renter{}
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&rt.ID, &rt.Name, &rt.Email, &rt.Phone, &rt.IsDocVerified, &rt.HasActiveBooking, &rt.CreatedOn,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFoundf("renter %d not found", id)
	}
	if err != nil {
		return nil, storageErr(err)
	}
	return rt, nil
}

func (r *renterRepository) SetActiveBooking(ctx context.Context, id int32, active bool) error {
	res, err := r.q.ExecContext(ctx, `UPDATE renters SET has_active_booking = $1 WHERE id = $2`, active, id)
	if err != nil {
		return storageErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFoundf("renter %d not found", id)
	}
	return nil
}

type hostRepository struct {
	q DBTX
}

func (r *hostRepository) GetByID(ctx context.Context, id int32) (*domain.Host, error) {
	h := &domain.Host{}
	query := `SELECT id, name, email, phone, is_doc_verified, created_on FROM hosts WHERE id = $1`
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&h.ID, &h.Name, &h.Email, &h.Phone, &h.IsDocVerified, &h.CreatedOn,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFoundf("host %d not found", id)
	}
	if err != nil {
		return nil, storageErr(err)
	}
	return h, nil
}
