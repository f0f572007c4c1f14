// Package outbox implements the Notification Outbox (spec §4.8, §9): events
// are written as rows in the same transaction as the mutation that produced
// them, then delivered out-of-band by a separate dispatcher. This decouples
// notification delivery from the transactional core, matching spec §5's
// "notifications are fire-and-forget; their delivery never blocks or rolls
// back a reservation mutation."
package outbox

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/padelhub/reservation-core/internal/domain"
	"github.com/padelhub/reservation-core/internal/repository"
)

// Record is the caller-facing shape for an outbox write; ID and CreatedAt
// are assigned by Enqueue.
type Record struct {
	RecipientID   string
	ReservationID int64
	SubmitterID   string
	Type          domain.NotificationType
	Title         string
	Message       string
	Data          string
}

type Outbox struct {
	repo *repository.OutboxRepo
}

func New(repo *repository.OutboxRepo) *Outbox {
	return &Outbox{repo: repo}
}

// Enqueue inserts the notification row inside the caller's transaction
// (spec §9). Failures are logged, not returned: a notification that can't
// be written must never roll back the reservation mutation that produced
// it (spec §7's "notification delivery failures are logged, never
// surfaced to the caller").
func (o *Outbox) Enqueue(ctx context.Context, tx *gorm.DB, r Record) {
	n := &domain.Notification{
		ID:            uuid.NewString(),
		RecipientID:   r.RecipientID,
		ReservationID: r.ReservationID,
		SubmitterID:   r.SubmitterID,
		Type:          r.Type,
		Title:         r.Title,
		Message:       r.Message,
		Data:          r.Data,
	}
	// A failed INSERT aborts the surrounding postgres transaction; rolling
	// back to this savepoint keeps the caller's transaction usable.
	if tx != nil {
		tx.SavePoint("outbox_enqueue")
	}
	if err := o.repo.Insert(ctx, tx, n); err != nil {
		if tx != nil {
			tx.RollbackTo("outbox_enqueue")
		}
		log.Error().Err(err).Str("recipient_id", r.RecipientID).Int64("reservation_id", r.ReservationID).
			Str("type", string(r.Type)).Msg("outbox enqueue failed")
	}
}

// Dispatch delivers up to limit undelivered notifications via send, marking
// each delivered on success. A delivery failure is logged and left for the
// next tick; it never aborts the batch (spec §4.8).
func (o *Outbox) Dispatch(ctx context.Context, limit int, send func(context.Context, domain.Notification) error) (int, error) {
	rows, err := o.repo.Undelivered(ctx, limit)
	if err != nil {
		return 0, err
	}
	delivered := 0
	for _, n := range rows {
		if err := send(ctx, n); err != nil {
			log.Warn().Err(err).Str("notification_id", n.ID).Msg("notification delivery failed, will retry next tick")
			continue
		}
		if err := o.repo.MarkDelivered(ctx, n.ID); err != nil {
			log.Error().Err(err).Str("notification_id", n.ID).Msg("failed to mark notification delivered")
			continue
		}
		delivered++
	}
	return delivered, nil
}
