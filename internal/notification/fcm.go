package notification

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// messageSender is the part of *messaging.Client used here.
type messageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMChannel pushes notifications to Firebase topics. Every organization
// has its own topic that the organizer apps subscribe to.
type FCMChannel struct {
	client messageSender
	log    *zap.Logger
}

func NewFCMChannel(client *messaging.Client, log *zap.Logger) *FCMChannel {
	return newFCMChannel(client, log)
}

func newFCMChannel(client messageSender, log *zap.Logger) *FCMChannel {
	if log == nil {
		log = zap.NewNop()
	}
	return &FCMChannel{client: client, log: log}
}

// OrganizationTopic is the FCM topic of an organization.
func OrganizationTopic(organizationID uint) string {
	return fmt.Sprintf("organization-%d", organizationID)
}

// PushToTopic sends a notification message to every device subscribed to topic.
func (f *FCMChannel) PushToTopic(ctx context.Context, topic, title, body string, data map[string]string) error {
	if f.client == nil {
		return fmt.Errorf("FCM client not initialized")
	}

	message := &messaging.Message{
		Topic: topic,
		Data:  data,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID:    "event_notifications",
				Priority:     messaging.PriorityHigh,
				DefaultSound: true,
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
		Webpush: &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{
				Title: title,
				Body:  body,
			},
		},
	}

	response, err := f.client.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}

	f.log.Info("✅ FCM message sent", zap.String("topic", topic), zap.String("id", response))
	return nil
}
