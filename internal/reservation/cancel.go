package reservation

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/padelhub/reservation-core/internal/domain"
	"github.com/padelhub/reservation-core/internal/ledger"
	"github.com/padelhub/reservation-core/internal/outbox"
	"github.com/padelhub/reservation-core/internal/repository"
)

// CancelInput identifies who is cancelling what (spec §4.5's two
// cancellation branches: the creator cancelling the whole reservation, or a
// participant leaving one they did not create).
type CancelInput struct {
	ReservationID int64
	UserID        string
}

// ErrNotParticipant is returned when UserID holds no seat on the
// reservation named by CancelInput.
var ErrNotParticipant = errors.New("reservation: user is not a participant")

// Cancel runs spec §4.5's cancellation flow. The 24-hour window is enforced
// first, before the creator/participant split, since it gates both branches
// equally. The creator branch hard-cancels the whole reservation and
// refunds every paid participant; the participant branch refunds only the
// leaving player and, if that drops a VALID reservation below four seats,
// reverts it to PENDING and frees the slot.
func (m *Machine) Cancel(ctx context.Context, in CancelInput) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res, err := m.reservations.LockByID(ctx, tx, in.ReservationID)
		if err != nil {
			return err
		}
		if res.Etat.IsCancelled() {
			return domain.ErrUnexpectedState
		}

		slot, err := m.slots.LockByID(ctx, tx, res.SlotID)
		if err != nil {
			return err
		}

		parts, err := m.participants.ListLocked(ctx, tx, res.ID)
		if err != nil {
			return err
		}
		var self *domain.Participant
		for i := range parts {
			if parts[i].UserID == in.UserID {
				self = &parts[i]
				break
			}
		}
		if self == nil {
			return ErrNotParticipant
		}

		if m.clock.Now().Add(cancellationWindow).After(slot.StartTime) {
			return domain.ErrTooLateToCancel
		}

		if self.IsCreator {
			return m.cancelHard(ctx, tx, res, "creator_cancelled")
		}

		return m.leaveParticipant(ctx, tx, res, slot, self)
	})
}

// leaveParticipant is the non-creator branch of Cancel: refund only the
// leaving player, drop their seat, and demote the reservation back to
// PENDING if it had been VALID on exactly four seats.
func (m *Machine) leaveParticipant(ctx context.Context, tx *gorm.DB, res *domain.Reservation, slot *domain.CourtSlot, self *domain.Participant) error {
	if self.PaymentState == domain.PaymentPaid {
		debit, err := m.ledger.FindDebitFor(ctx, tx, self.UserID, res.ID)
		if err != nil {
			return err
		}
		if debit != nil {
			user, err := repository.LockForUpdate(tx, ctx, self.UserID)
			if err != nil {
				return err
			}
			if _, err := m.ledger.Refund(ctx, tx, user, debit.Amount.Abs(), ledger.RefundKey(res.ID, self.UserID, self.UserID)); err != nil {
				return err
			}
		}
	}

	if err := m.participants.Delete(ctx, tx, res.ID, self.UserID); err != nil {
		return err
	}

	remaining, err := m.participants.ListLocked(ctx, tx, res.ID)
	if err != nil {
		return err
	}

	if res.Etat == domain.EtatValid && len(remaining) < 4 {
		res.Etat = domain.EtatPending
		res.UpdatedAt = m.clock.Now()
		if err := m.reservations.Save(ctx, tx, res); err != nil {
			return err
		}
		ok, _, err := m.arbiter.HasAvailableCapacity(ctx, tx, slot.ID, res.Date)
		if err != nil {
			return err
		}
		if ok {
			slot.Available = true
			if err := m.slots.Save(ctx, tx, slot); err != nil {
				return err
			}
		}
		for _, p := range remaining {
			m.outbox.Enqueue(ctx, tx, outbox.Record{
				RecipientID: p.UserID, ReservationID: res.ID,
				Type: domain.NotifyMatchStatusChanged, Title: "Match reopened",
				Message: "Your match dropped below four players and is pending again.",
			})
		}
	} else {
		for _, p := range remaining {
			m.outbox.Enqueue(ctx, tx, outbox.Record{
				RecipientID: p.UserID, ReservationID: res.ID,
				Type: domain.NotifyParticipantLeft, Title: "Player left",
				Message: "A player left your reservation.",
			})
		}
	}

	log.Info().Int64("reservation_id", res.ID).Str("user_id", self.UserID).
		Msg("participant left reservation")
	return nil
}
