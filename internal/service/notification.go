package service

import (
	"context"

	"scootshare-backend/internal/domain"
	"scootshare-backend/internal/repository"
)

type notificationService struct {
	notes repository.NotificationRepository
}

func NewNotificationService(notes repository.NotificationRepository) NotificationService {
	return &notificationService{notes: notes}
}

func (s *notificationService) GetNotifications(ctx context.Context, recipientID int32, role domain.Role, page, pageSize int32) ([]domain.Notification, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize
	return s.notes.ListByRecipient(ctx, recipientID, role, pageSize, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, recipientID, notificationID int32) error {
	return s.notes.MarkAsRead(ctx, notificationID, recipientID)
}
