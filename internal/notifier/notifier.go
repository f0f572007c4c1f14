// Package notifier delivers outbox rows to the configured RabbitMQ exchange,
// grounded on the notification-service's Notifier interface (MVP console
// sender promoted to a real queue publish, since this core has no direct
// push/email channel of its own).
package notifier

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/padelhub/reservation-core/internal/domain"
	"github.com/padelhub/reservation-core/pkg/mq"
)

// QueuePublisher sends each outbox row to RabbitMQ, routed on its
// notification type (pkg/mq.PublishNotification), for an external delivery
// worker (push/email/SMS) to consume.
type QueuePublisher struct {
	pub *mq.Publisher
}

func NewQueuePublisher(pub *mq.Publisher) *QueuePublisher {
	return &QueuePublisher{pub: pub}
}

func (q *QueuePublisher) Send(ctx context.Context, n domain.Notification) error {
	return q.pub.PublishNotification(ctx, mq.NotificationEvent{
		RecipientID: n.RecipientID, ReservationID: n.ReservationID,
		SubmitterID: n.SubmitterID, Type: string(n.Type),
		Title: n.Title, Message: n.Message, Data: n.Data,
	})
}

// ConsoleSender logs each notification instead of publishing it; cmd/notifier
// always uses QueuePublisher and does not fall back to it.
type ConsoleSender struct{}

func (ConsoleSender) Send(_ context.Context, n domain.Notification) error {
	log.Info().Str("recipient_id", n.RecipientID).Str("type", string(n.Type)).
		Str("title", n.Title).Msg(n.Message)
	return nil
}
