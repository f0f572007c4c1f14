package reservation

import (
	"fmt"

	"context"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/padelhub/reservation-core/internal/domain"
	"github.com/padelhub/reservation-core/internal/ledger"
	"github.com/padelhub/reservation-core/internal/outbox"
	"github.com/padelhub/reservation-core/internal/repository"
)

// JoinInput is not given explicit numbered steps in the reservation state
// machine's spec, but is required by the data model: OPEN reservations hold
// a rating window and accumulate participants one at a time until the
// fourth seat fills, at which point the reservation turns VALID, other VALID
// OPEN reservations on sibling slots are cancelled (cancelValidSiblings), the
// slot is marked unavailable if it is now at capacity, and every participant
// is notified.
type JoinInput struct {
	ReservationID int64
	UserID        string
	Channel       domain.PaymentChannel
}

// Join seats a fourth... or second or third... player into an OPEN
// reservation. It debits the joiner exactly as Create debits a creator,
// using JoinDebitKey so the idempotency gate is keyed per (reservation,
// joiner) rather than colliding with the creator's own key.
func (m *Machine) Join(ctx context.Context, in JoinInput) (*domain.Reservation, error) {
	var joined *domain.Reservation

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res, err := m.reservations.LockByID(ctx, tx, in.ReservationID)
		if err != nil {
			return err
		}
		if res.Type != domain.ReservationOpen {
			return domain.ErrMissingTeamSeat
		}
		if res.Etat.IsCancelled() {
			return domain.ErrUnexpectedState
		}

		parts, err := m.participants.ListLocked(ctx, tx, res.ID)
		if err != nil {
			return err
		}
		if len(parts) >= 4 {
			return domain.ErrSlotFull
		}
		for _, p := range parts {
			if p.UserID == in.UserID {
				return domain.ErrUnexpectedState
			}
		}

		user, err := repository.LockForUpdate(tx, ctx, in.UserID)
		if err != nil {
			return err
		}
		if user.Rating < res.MinRating || user.Rating > res.MaxRating {
			return domain.ErrInvalidRange
		}

		slot, err := m.slots.LockByID(ctx, tx, res.SlotID)
		if err != nil {
			return err
		}

		shouldSkip := res.IsPrepaidForAll
		var charge decimal.Decimal
		if shouldSkip {
			charge = decimal.Zero
		} else {
			discounted, err := m.discountedUnitPrice(ctx, tx, user, slot.UnitPrice, res.Date)
			if err != nil {
				return err
			}
			charge = discounted
		}

		if charge.GreaterThan(decimal.Zero) {
			key := ledger.JoinDebitKey(res.ID, user.ID)
			if err := m.ledger.Debit(ctx, tx, user, charge, key); err != nil {
				return err
			}
			m.outbox.Enqueue(ctx, tx, outbox.Record{
				RecipientID: user.ID, ReservationID: res.ID,
				Type: domain.NotifyCreditDeduction, Title: "Credit deducted",
				Message: fmt.Sprintf("%s debited to join reservation", charge.String()),
			})
		}

		team := nextFreeTeam(parts)
		participant := &domain.Participant{
			ReservationID:  res.ID,
			UserID:         user.ID,
			IsCreator:      false,
			Team:           team,
			PaymentChannel: in.Channel,
		}
		if shouldSkip {
			participant.PaymentState = domain.PaymentUnpaid
		} else {
			participant.PaymentState = domain.PaymentPaid
		}
		if err := m.participants.Create(ctx, tx, participant); err != nil {
			return err
		}

		now := m.clock.Now()
		if len(parts)+1 == 4 {
			res.Etat = domain.EtatValid
			res.UpdatedAt = now
			if err := m.reservations.Save(ctx, tx, res); err != nil {
				return err
			}
			if err := m.cancelValidSiblings(ctx, tx, res, slot); err != nil {
				return err
			}
			if ok, _, err := m.arbiter.HasAvailableCapacity(ctx, tx, slot.ID, res.Date); err == nil && !ok {
				slot.Available = false
				if err := m.slots.Save(ctx, tx, slot); err != nil {
					return err
				}
			}
			for _, p := range append(parts, *participant) {
				m.outbox.Enqueue(ctx, tx, outbox.Record{
					RecipientID: p.UserID, ReservationID: res.ID,
					Type: domain.NotifyReservationConfirmed, Title: "Match confirmed",
					Message: "Your open match is full and confirmed.",
				})
			}
		} else {
			for _, p := range parts {
				m.outbox.Enqueue(ctx, tx, outbox.Record{
					RecipientID: p.UserID, ReservationID: res.ID,
					Type: domain.NotifyMatchStatusChanged, Title: "Player joined",
					Message: "A new player joined your open match.",
				})
			}
		}

		log.Info().Int64("reservation_id", res.ID).Str("user_id", user.ID).
			Int("team", team).Msg("participant joined reservation")
		joined = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return joined, nil
}

// nextFreeTeam assigns the lowest free team slot among {0,1,2,3}; the
// creator always holds 0.
func nextFreeTeam(existing []domain.Participant) int {
	taken := map[int]bool{}
	for _, p := range existing {
		taken[p.Team] = true
	}
	for t := 0; t < 4; t++ {
		if !taken[t] {
			return t
		}
	}
	return 3
}
