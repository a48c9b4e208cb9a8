package services

import (
	"context"

	"askboard/internal/models"

	"gorm.io/gorm"
)

// InboxLimit caps how many notifications List returns.
const InboxLimit = 50

type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// List returns the actor's most recent notifications, newest first.
func (s *NotificationService) List(ctx context.Context, actor Actor) ([]models.Notification, error) {
	const op = "services.notifications.List"

	if !actor.Authenticated() {
		return nil, fail(op, ErrUnauthenticated, "login required")
	}

	var notifications []models.Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ?", actor.ID).
		Order("created_at DESC, id DESC").
		Limit(InboxLimit).
		Find(&notifications).Error
	if err != nil {
		return nil, storeError(op, err)
	}
	return notifications, nil
}

// MarkRead marks one notification as read. Notifications of other users are
// reported as not found.
func (s *NotificationService) MarkRead(ctx context.Context, actor Actor, id string) error {
	const op = "services.notifications.MarkRead"

	if !actor.Authenticated() {
		return fail(op, ErrUnauthenticated, "login required")
	}

	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, actor.ID).
		Update("is_read", true)
	if res.Error != nil {
		return storeError(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return fail(op, ErrNotFound, "notification not found")
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, actor Actor) error {
	const op = "services.notifications.MarkAllRead"

	if !actor.Authenticated() {
		return fail(op, ErrUnauthenticated, "login required")
	}

	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", actor.ID, false).
		Update("is_read", true).Error
	if err != nil {
		return storeError(op, err)
	}
	return nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, actor Actor) (int64, error) {
	const op = "services.notifications.UnreadCount"

	var count int64
	if !actor.Authenticated() {
		return 0, nil
	}
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", actor.ID, false).
		Count(&count).Error
	if err != nil {
		return 0, storeError(op, err)
	}
	return count, nil
}
