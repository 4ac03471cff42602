package notification

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sharath018/expo-event-service/internal/event"
)

type Mailer interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

type Pusher interface {
	PushToTopic(ctx context.Context, topic, title, body string, data map[string]string) error
}

type Broadcaster interface {
	Broadcast(ctx context.Context, msg EventPublishedMessage) error
}

type Realtime interface {
	PublishStatus(ctx context.Context, update StatusUpdate) error
}

// Channels groups the delivery channels. Mailer and Translator are
// required; the others are skipped when nil.
type Channels struct {
	Mailer      Mailer
	Push        Pusher
	Broadcaster Broadcaster
	Realtime    Realtime
	Translator  *Translator
	Logger      *zap.Logger
}

// ===========================
// 📣 Notifier
// ===========================

// Notifier fans lifecycle notifications out to mail, push, realtime and
// the sponsor broadcast.
type Notifier struct {
	ch Channels
}

var _ event.Notifier = (*Notifier)(nil)

func NewNotifier(ch Channels) *Notifier {
	if ch.Logger == nil {
		ch.Logger = zap.NewNop()
	}
	return &Notifier{ch: ch}
}

const mailPeriodLayout = "2006-01-02 15:04"

func (n *Notifier) ActiveEventEdited(ctx context.Context, msg event.ActiveEventEdit) error {
	if msg.Email == "" {
		return fmt.Errorf("no recipient for event %d", msg.EventID)
	}
	data := map[string]interface{}{"EventID": msg.EventID}
	subject := n.ch.Translator.T(msg.Language, "ActiveEventEditedSubject", data)
	body := n.ch.Translator.T(msg.Language, "ActiveEventEditedBody", data)
	return n.ch.Mailer.Send(ctx, []string{msg.Email}, subject, body)
}

// PublishStatusChanged mails the organizer, pushes to the organization
// topic and publishes the realtime update. Every channel is attempted;
// the failures are joined.
func (n *Notifier) PublishStatusChanged(ctx context.Context, msg event.PublishStatusChange) error {
	data := map[string]interface{}{
		"EventName":     msg.EventName,
		"OrganizerName": msg.OrganizerName,
		"LocationType":  strings.ToLower(string(msg.LocationType)),
		"Period":        period(msg.GeneralStartDate, msg.GeneralEndDate),
	}
	subjectKey, bodyKey, titleKey := "EventUnpublishedSubject", "EventUnpublishedBody", "PushUnpublishedTitle"
	if msg.Published {
		subjectKey, bodyKey, titleKey = "EventPublishedSubject", "EventPublishedBody", "PushPublishedTitle"
	}

	var errs []error
	if msg.Email != "" {
		subject := n.ch.Translator.T(msg.Language, subjectKey, data)
		body := n.ch.Translator.T(msg.Language, bodyKey, data)
		if err := n.ch.Mailer.Send(ctx, []string{msg.Email}, subject, body); err != nil {
			errs = append(errs, fmt.Errorf("mail: %w", err))
		}
	}

	if n.ch.Push != nil {
		title := n.ch.Translator.T(msg.Language, titleKey, nil)
		pushData := map[string]string{
			"event_id":  strconv.FormatUint(uint64(msg.EventID), 10),
			"published": strconv.FormatBool(msg.Published),
		}
		if err := n.ch.Push.PushToTopic(ctx, OrganizationTopic(msg.OrganizationID), title, msg.EventName, pushData); err != nil {
			errs = append(errs, fmt.Errorf("push: %w", err))
		}
	}

	if n.ch.Realtime != nil {
		update := StatusUpdate{
			EventID:        msg.EventID,
			OrganizationID: msg.OrganizationID,
			EventName:      msg.EventName,
			Published:      msg.Published,
		}
		if err := n.ch.Realtime.PublishStatus(ctx, update); err != nil {
			errs = append(errs, fmt.Errorf("realtime: %w", err))
		}
	}

	return errors.Join(errs...)
}

func (n *Notifier) EventPublished(ctx context.Context, msg event.EventPublished) error {
	if n.ch.Broadcaster == nil {
		n.ch.Logger.Debug("ℹ️ broadcast disabled, skipping", zap.Uint("event_id", msg.EventID))
		return nil
	}
	return n.ch.Broadcaster.Broadcast(ctx, EventPublishedMessage{
		Type:           messageTypeEventPublished,
		EventID:        msg.EventID,
		OrganizationID: msg.OrganizationID,
		URL:            msg.URL,
		EventName:      msg.EventName,
		PublishedAt:    msg.PublishedAt.UTC(),
	})
}

func period(start, end *time.Time) string {
	if start == nil || end == nil {
		return ""
	}
	// dates arrive in the event's timezone
	return start.Format(mailPeriodLayout) + " - " + end.Format(mailPeriodLayout) + " (" + start.Location().String() + ")"
}
