package mq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Routing keys for the reservation core's outbox relay, one per
// domain.NotificationType.
const (
	RKReservationConfirmed = "notification.reservation_confirmed"
	RKReservationCancelled = "notification.reservation_cancelled"
	RKCreditDeduction      = "notification.credit_deduction"
	RKParticipantLeft      = "notification.participant_left"
	RKMatchStatusChanged   = "notification.match_status_changed"
	RKScoreProposal        = "notification.SCORE_PROPOSAL"
	RKScoreConfirmed       = "notification.SCORE_CONFIRMED"
	RKScoreConflict        = "notification.SCORE_CONFLICT"
)

// NotificationEvent is the wire shape for one outbox row published onto the
// notification exchange, for an external delivery worker (push/email/SMS)
// to consume.
type NotificationEvent struct {
	RecipientID   string `json:"recipient_id"`
	ReservationID int64  `json:"reservation_id"`
	SubmitterID   string `json:"submitter_id"`
	Type          string `json:"type"`
	Title         string `json:"title"`
	Message       string `json:"message"`
	Data          string `json:"data"`
}

// routingKeyFor maps a notification type to its routing key, falling back
// to a generic catch-all for any type this list hasn't named yet.
func routingKeyFor(notificationType string) string {
	switch notificationType {
	case "reservation_confirmed":
		return RKReservationConfirmed
	case "reservation_cancelled":
		return RKReservationCancelled
	case "credit_deduction":
		return RKCreditDeduction
	case "participant_left":
		return RKParticipantLeft
	case "match_status_changed":
		return RKMatchStatusChanged
	case "SCORE_PROPOSAL":
		return RKScoreProposal
	case "SCORE_CONFIRMED":
		return RKScoreConfirmed
	case "SCORE_CONFLICT":
		return RKScoreConflict
	default:
		return fmt.Sprintf("notification.%s", notificationType)
	}
}

type Publisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Publisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *Publisher) PublishJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        b,
	})
}

// PublishNotification routes an outbox event onto this exchange by its
// notification type, so callers never hand-build routing keys.
func (p *Publisher) PublishNotification(ctx context.Context, n NotificationEvent) error {
	return p.PublishJSON(ctx, routingKeyFor(n.Type), n)
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
