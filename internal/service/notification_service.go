package service

import (
	"context"

	"gitforum/internal/models"
	"gitforum/internal/repository"
)

const maxNotificationsPageSize = 50

// NotificationService reads and acknowledges a user's notification feed.
// Writing notifications is the fan-out engine's job.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
}

// NewNotificationService creates a new notification service.
func NewNotificationService(notificationRepo repository.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

func (s *NotificationService) List(ctx context.Context, recipientID uint, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > maxNotificationsPageSize {
		limit = maxNotificationsPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.notificationRepo.ListByRecipient(ctx, recipientID, limit, offset)
}

func (s *NotificationService) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	return s.notificationRepo.UnreadCount(ctx, recipientID)
}

// MarkRead marks one notification as read. It only touches notifications
// owned by recipientID; anything else reads as not found.
func (s *NotificationService) MarkRead(ctx context.Context, recipientID, notificationID uint) error {
	updated, err := s.notificationRepo.MarkRead(ctx, recipientID, notificationID)
	if err != nil {
		return err
	}
	if !updated {
		return models.NewNotFoundError("Notification", notificationID)
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID uint) (int64, error) {
	return s.notificationRepo.MarkAllRead(ctx, recipientID)
}
