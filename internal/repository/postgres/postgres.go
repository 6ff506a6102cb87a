package postgres

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/lib/pq"

	"scootshare-backend/internal/apperror"
	"scootshare-backend/internal/repository"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so each repository can run
// against the pool or inside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
	q  DBTX

	vehicles      *vehicleRepository
	bookings      *bookingRepository
	renters       *renterRepository
	hosts         *hostRepository
	notifications *notificationRepository
}

func NewStore(db *sql.DB) *Store {
	return newStore(db, db)
}

func newStore(db *sql.DB, q DBTX) *Store {
	return &Store{
		db:            db,
		q:             q,
		vehicles:      &vehicleRepository{q: q},
		bookings:      &bookingRepository{q: q},
		renters:       &renterRepository{q: q},
		hosts:         &hostRepository{q: q},
		notifications: &notificationRepository{q: q},
	}
}

func (s *Store) Vehicles() repository.VehicleRepository           { return s.vehicles }
func (s *Store) Bookings() repository.BookingRepository           { return s.bookings }
func (s *Store) Renters() repository.RenterRepository             { return s.renters }
func (s *Store) Hosts() repository.HostRepository                 { return s.hosts }
func (s *Store) Notifications() repository.NotificationRepository { return s.notifications }

// ExecTx runs fn inside a database transaction and commits when fn returns
// nil. Nested calls reuse the already-open transaction.
func (s *Store) ExecTx(ctx context.Context, fn func(repository.Store) error) error {
	if _, nested := s.q.(*sql.Tx); nested {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperror.TransientStorage(err)
	}

	if err := fn(newStore(s.db, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return apperror.Wrap(err, apperror.KindOf(err), "rollback failed: "+rbErr.Error())
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperror.TransientStorage(err)
	}
	return nil
}

// storageErr maps driver failures into the app taxonomy. sql.ErrNoRows is
// the caller's concern and passes through unchanged.
func storageErr(err error) error {
	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return err
	}
	return apperror.TransientStorage(err)
}
