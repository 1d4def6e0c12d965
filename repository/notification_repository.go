package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/quickbasket/storefront/models"
)

// NotificationRepository records delivery attempts for outbound notifications
type NotificationRepository interface {
	SaveLog(ctx context.Context, log *models.NotificationLog) error
}

type GormNotificationRepository struct {
	db *gorm.DB
}

func NewGormNotificationRepository(db *gorm.DB) NotificationRepository {
	return &GormNotificationRepository{db: db}
}

func (r *GormNotificationRepository) SaveLog(ctx context.Context, log *models.NotificationLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}
