package postgres

import (
	"context"

	"scootshare-backend/internal/apperror"
	"scootshare-backend/internal/domain"
)

type notificationRepository struct {
	q DBTX
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := `INSERT INTO notifications (recipient_id, recipient_role, type, title, message, booking_id, vehicle_id, is_read, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, false, NOW())
	          RETURNING id, created_on`
	err := r.q.QueryRowContext(ctx, query,
		n.RecipientID, n.RecipientRole, n.Type, n.Title, n.Message, nullIfEmpty(n.BookingID), nullIfZero(n.VehicleID),
	).Scan(&n.ID, &n.CreatedOn)
	return storageErr(err)
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID int32, role domain.Role, limit, offset int32) ([]domain.Notification, int32, error) {
	var count int32
	countQuery := `SELECT count(*) FROM notifications WHERE recipient_id = $1 AND recipient_role = $2`
	if err := r.q.QueryRowContext(ctx, countQuery, recipientID, role).Scan(&count); err != nil {
		return nil, 0, storageErr(err)
	}

	query := `SELECT id, recipient_id, recipient_role, type, title, message,
	            COALESCE(booking_id, ''), COALESCE(vehicle_id, 0), is_read, created_on
	          FROM notifications
	          WHERE recipient_id = $1 AND recipient_role = $2
	          ORDER BY created_on DESC LIMIT $3 OFFSET $4`
	rows, err := r.q.QueryContext(ctx, query, recipientID, role, limit, offset)
	if err != nil {
		return nil, 0, storageErr(err)
	}
	defer rows.Close()

	var notes []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID, &n.RecipientID, &n.RecipientRole, &n.Type, &n.Title, &n.Message,
			&n.BookingID, &n.VehicleID, &n.IsRead, &n.CreatedOn,
		); err != nil {
			return nil, 0, storageErr(err)
		}
		notes = append(notes, n)
	}
	return notes, count, storageErr(rows.Err())
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, recipientID int32) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE notifications SET is_read = true WHERE id = $1 AND recipient_id = $2`, id, recipientID)
	if err != nil {
		return storageErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFoundf("notification %d not found", id)
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullIfZero(n int32) any {
	if n == 0 {
		return nil
	}
	return n
}
