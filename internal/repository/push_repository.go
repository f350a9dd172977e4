package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"todoapp/internal/model"
)

// PushRepository stores browser push subscriptions, one per user.
type PushRepository struct {
	db *gorm.DB
}

func NewPushRepository(db *gorm.DB) *PushRepository {
	return &PushRepository{db: db}
}

// Upsert saves the user's subscription, replacing any previous one.
func (r *PushRepository) Upsert(ctx context.Context, userID uint, subscriptionInfo string) error {
	db := r.db.WithContext(ctx)

	var sub model.WebPushSubscription
	err := db.Where("user_id = ?", userID).First(&sub).Error
	switch {
	case err == nil:
		sub.SubscriptionInfo = subscriptionInfo
		if err := db.Save(&sub).Error; err != nil {
			return fmt.Errorf("update push subscription: %w", err)
		}
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		sub = model.WebPushSubscription{UserID: userID, SubscriptionInfo: subscriptionInfo}
		if err := db.Create(&sub).Error; err != nil {
			return fmt.Errorf("create push subscription: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("find push subscription: %w", err)
	}
}

func (r *PushRepository) FindByUser(ctx context.Context, userID uint) (*model.WebPushSubscription, error) {
	var sub model.WebPushSubscription
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}
