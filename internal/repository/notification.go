package repository

import (
	"context"
	"time"

	"wayfarer/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository defines persistence operations for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	CreateBatch(ctx context.Context, notifications []*models.Notification) error
	GetByID(ctx context.Context, id uint) (*models.Notification, error)
	ListRecent(ctx context.Context, recipientID uint, limit int) ([]*models.Notification, error)
	ListPage(ctx context.Context, recipientID uint, limit, offset int) ([]*models.Notification, int64, error)
	CountUnseen(ctx context.Context, recipientID uint) (int64, error)
	MarkAllSeen(ctx context.Context, recipientID uint) error
	MarkRead(ctx context.Context, recipientID, id uint) error
	MarkAllRead(ctx context.Context, recipientID uint) error
	DeleteByEvent(ctx context.Context, recipientID uint, senderID uint, nType models.NotificationType, targetColumn string, targetID uint) error
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []*models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(notifications, 200).Error
}

func (r *notificationRepository) GetByID(ctx context.Context, id uint) (*models.Notification, error) {
	var notification models.Notification
	if err := r.db.WithContext(ctx).Preload("Sender").First(&notification, id).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *notificationRepository) ListRecent(ctx context.Context, recipientID uint, limit int) ([]*models.Notification, error) {
	var notifications []*models.Notification
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

// ListPage returns one page plus the total count. The secondary id sort
// keeps ordering stable when timestamps collide, so pages never overlap.
func (r *notificationRepository) ListPage(ctx context.Context, recipientID uint, limit, offset int) ([]*models.Notification, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ?", recipientID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []*models.Notification
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error
	return notifications, total, err
}

func (r *notificationRepository) CountUnseen(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND is_seen = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

func (r *notificationRepository) MarkAllSeen(ctx context.Context, recipientID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND is_seen = ?", recipientID, false).
		Update("is_seen", true).Error
}

func (r *notificationRepository) MarkRead(ctx context.Context, recipientID, id uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Updates(map[string]interface{}{"is_read": true, "is_seen": true})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Notification", id)
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Updates(map[string]interface{}{"is_read": true, "is_seen": true}).Error
}

// DeleteByEvent removes the notification produced by a specific event,
// used to retract a like notification when the like is undone.
// targetColumn names the reference column (post_id, comment_id, review_id).
func (r *notificationRepository) DeleteByEvent(ctx context.Context, recipientID uint, senderID uint, nType models.NotificationType, targetColumn string, targetID uint) error {
	return r.db.WithContext(ctx).
		Where("recipient_id = ? AND sender_id = ? AND type = ? AND "+targetColumn+" = ?",
			recipientID, senderID, nType, targetID).
		Delete(&models.Notification{}).Error
}

// PurgeOlderThan deletes notifications created before cutoff and returns
// the number of rows removed.
func (r *notificationRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}
