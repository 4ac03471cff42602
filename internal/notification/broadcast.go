package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafka.Writer used here.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// EventPublishedMessage is the payload sponsors' consumers read from the
// broadcast topic.
type EventPublishedMessage struct {
	Type           string    `json:"type"`
	EventID        uint      `json:"event_id"`
	OrganizationID uint      `json:"organization_id"`
	URL            string    `json:"url"`
	EventName      string    `json:"event_name"`
	PublishedAt    time.Time `json:"published_at"`
}

const messageTypeEventPublished = "EVENT_PUBLISHED"

// KafkaBroadcaster writes event broadcasts keyed by event id, so every
// message of one event lands on the same partition.
type KafkaBroadcaster struct {
	writer messageWriter
}

func NewKafkaBroadcaster(writer *kafka.Writer) *KafkaBroadcaster {
	return &KafkaBroadcaster{writer: writer}
}

func (b *KafkaBroadcaster) Broadcast(ctx context.Context, msg EventPublishedMessage) error {
	value, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal broadcast: %w", err)
	}
	err = b.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(msg.EventID), 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(msg.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("write broadcast: %w", err)
	}
	return nil
}

// redisPublisher is the part of *redis.Client used here.
type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// StatusUpdate is pushed to dashboards listening on the organization channel.
type StatusUpdate struct {
	EventID        uint   `json:"event_id"`
	OrganizationID uint   `json:"organization_id"`
	EventName      string `json:"event_name"`
	Published      bool   `json:"published"`
}

// RedisRealtime publishes status updates on notifications:organization:<id>.
type RedisRealtime struct {
	client redisPublisher
}

func NewRedisRealtime(client *redis.Client) *RedisRealtime {
	return &RedisRealtime{client: client}
}

func OrganizationChannel(organizationID uint) string {
	return fmt.Sprintf("notifications:organization:%d", organizationID)
}

func (r *RedisRealtime) PublishStatus(ctx context.Context, update StatusUpdate) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("marshal status update: %w", err)
	}
	if err := r.client.Publish(ctx, OrganizationChannel(update.OrganizationID), string(payload)).Err(); err != nil {
		return fmt.Errorf("publish status update: %w", err)
	}
	return nil
}
