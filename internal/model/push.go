package model

import "time"

// WebPushSubscription stores a user's browser push endpoint. One active
// subscription per user; saving a new one replaces the old.
// SubscriptionInfo is the opaque JSON blob the browser hands us
// (endpoint plus p256dh/auth keys).
type WebPushSubscription struct {
	ID               uint `gorm:"primaryKey"`
	UserID           uint `gorm:"uniqueIndex"`
	SubscriptionInfo string
	CreatedAt        time.Time
}
