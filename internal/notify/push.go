package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"todoapp/internal/model"
)

// PushPayload is the JSON body delivered to the service worker.
type PushPayload struct {
	Head string `json:"head"`
	Body string `json:"body"`
	URL  string `json:"url"`
}

// PushSender delivers a payload to one stored subscription.
type PushSender interface {
	Send(ctx context.Context, sub *model.WebPushSubscription, payload PushPayload) error
}

// WebPushSender sends browser push messages using VAPID keys.
type WebPushSender struct {
	publicKey  string
	privateKey string
	subscriber string
	ttl        int
}

func NewWebPushSender(publicKey, privateKey, subscriber string) *WebPushSender {
	return &WebPushSender{
		publicKey:  publicKey,
		privateKey: privateKey,
		subscriber: subscriber,
		ttl:        1000,
	}
}

func (s *WebPushSender) Send(ctx context.Context, sub *model.WebPushSubscription, payload PushPayload) error {
	var target webpush.Subscription
	if err := json.Unmarshal([]byte(sub.SubscriptionInfo), &target); err != nil {
		return fmt.Errorf("decode subscription: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	resp, err := webpush.SendNotificationWithContext(ctx, body, &target, &webpush.Options{
		Subscriber:      s.subscriber,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		TTL:             s.ttl,
	})
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("send push: endpoint returned %d", resp.StatusCode)
	}
	return nil
}
