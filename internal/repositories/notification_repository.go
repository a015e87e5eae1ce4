package repositories

import (
	"context"
	"time"

	"github.com/anonto42/nano-social/backend/internal/models"
	"gorm.io/gorm"
)

// NotificationFilter selects notifications for bulk deletion. Zero fields are ignored.
type NotificationFilter struct {
	RecipientUserID uint
	ActorUserID     uint
	Type            models.NotificationType
	ReferenceID     string
}

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	GetByID(ctx context.Context, id uint) (*models.Notification, error)
	ListByRecipient(ctx context.Context, recipientID uint) ([]models.Notification, error)
	GetByRecipientID(ctx context.Context, recipientID uint, page, limit int) ([]models.Notification, int64, error)
	GetGrouped(ctx context.Context, recipientID uint, now time.Time) ([]models.Notification, []models.Notification, []models.Notification, []models.Notification, error)
	CountByRecipient(ctx context.Context, recipientID uint) (int64, error)
	DeleteNotification(ctx context.Context, id uint) error
	DeleteMatching(ctx context.Context, filter NotificationFilter) (int64, error)
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

const newestFirst = "date DESC, id DESC"

func (r *postgresNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *postgresNotificationRepository) GetByID(ctx context.Context, id uint) (*models.Notification, error) {
	var notification models.Notification
	if err := r.db.WithContext(ctx).First(&notification, id).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *postgresNotificationRepository) ListByRecipient(ctx context.Context, recipientID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).Where("recipient_user_id = ?", recipientID).
		Order(newestFirst).
		Find(&notifications).Error
	return notifications, err
}

func (r *postgresNotificationRepository) GetByRecipientID(ctx context.Context, recipientID uint, page, limit int) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	var total int64

	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Notification{}).Where("recipient_user_id = ?", recipientID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := db.Where("recipient_user_id = ?", recipientID).
		Order(newestFirst).
		Offset(offset).Limit(limit).
		Find(&notifications).Error

	return notifications, total, err
}

func (r *postgresNotificationRepository) GetGrouped(ctx context.Context, recipientID uint, now time.Time) (today, yesterday, thisWeek, older []models.Notification, retErr error) {
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterdayStart := todayStart.AddDate(0, 0, -1)
	weekStart := todayStart.AddDate(0, 0, -7)

	db := r.db.WithContext(ctx)

	// Today
	if err := db.Where("recipient_user_id = ? AND date >= ?", recipientID, todayStart).
		Order(newestFirst).Find(&today).Error; err != nil {
		return nil, nil, nil, nil, err
	}

	// Yesterday
	if err := db.Where("recipient_user_id = ? AND date >= ? AND date < ?", recipientID, yesterdayStart, todayStart).
		Order(newestFirst).Find(&yesterday).Error; err != nil {
		return nil, nil, nil, nil, err
	}

	// This week (excluding today and yesterday)
	if err := db.Where("recipient_user_id = ? AND date >= ? AND date < ?", recipientID, weekStart, yesterdayStart).
		Order(newestFirst).Find(&thisWeek).Error; err != nil {
		return nil, nil, nil, nil, err
	}

	// Older
	if err := db.Where("recipient_user_id = ? AND date < ?", recipientID, weekStart).
		Order(newestFirst).Limit(50).Find(&older).Error; err != nil {
		return nil, nil, nil, nil, err
	}

	return today, yesterday, thisWeek, older, nil
}

func (r *postgresNotificationRepository) CountByRecipient(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_user_id = ?", recipientID).Count(&count).Error
	return count, err
}

func (r *postgresNotificationRepository) DeleteNotification(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Notification{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *postgresNotificationRepository) DeleteMatching(ctx context.Context, filter NotificationFilter) (int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Notification{})
	if filter.RecipientUserID != 0 {
		q = q.Where("recipient_user_id = ?", filter.RecipientUserID)
	}
	if filter.ActorUserID != 0 {
		q = q.Where("actor_user_id = ?", filter.ActorUserID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.ReferenceID != "" {
		q = q.Where("reference_id = ?", filter.ReferenceID)
	}
	res := q.Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}
