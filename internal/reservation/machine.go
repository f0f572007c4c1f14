// Package reservation implements the Reservation State Machine (spec §4.5):
// the single entry point for booking and cancellation. It consults the
// Capacity Arbiter, mutates the Credit Ledger via idempotent operations,
// inserts participant rows, and emits notifications, all inside one
// transaction per call (spec §5).
//
// Ordering note (resolves an implementation ambiguity in spec §4.5): the
// spec's numbered steps determine the charge (3-4) and debit the creator (5)
// before "insert reservation" (7), yet the debit's type_key embeds the
// reservation id. This implementation inserts the reservation row as soon as
// pricing is known — obtaining the id the debit key needs — then debits,
// then re-checks capacity (6), then finalizes etat/slot availability
// (8-10). Every invariant and failure mode the spec names still holds: a
// failed debit or a lost capacity race rolls back the whole transaction,
// including the insert, so no reservation is ever observably created
// without its charge having succeeded.
package reservation

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/padelhub/reservation-core/internal/domain"
	"github.com/padelhub/reservation-core/internal/capacity"
	"github.com/padelhub/reservation-core/internal/ledger"
	"github.com/padelhub/reservation-core/internal/outbox"
	"github.com/padelhub/reservation-core/internal/repository"
)

const cancellationWindow = 24 * time.Hour

type Machine struct {
	db           *gorm.DB
	users        *repository.UserRepo
	slots        *repository.SlotRepo
	reservations *repository.ReservationRepo
	participants *repository.ParticipantRepo
	ledger       *ledger.Ledger
	arbiter      *capacity.Arbiter
	outbox       *outbox.Outbox
	clock        Clock
}

func New(
	db *gorm.DB,
	users *repository.UserRepo,
	slots *repository.SlotRepo,
	reservations *repository.ReservationRepo,
	participants *repository.ParticipantRepo,
	ledg *ledger.Ledger,
	arbiter *capacity.Arbiter,
	ob *outbox.Outbox,
	clock Clock,
) *Machine {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Machine{
		db: db, users: users, slots: slots, reservations: reservations,
		participants: participants, ledger: ledg, arbiter: arbiter,
		outbox: ob, clock: clock,
	}
}

// CreateInput maps 1:1 to the HTTP layer's JSON contract (spec §6).
type CreateInput struct {
	SlotID        int64
	Date          time.Time
	CreatorUserID string
	Type          domain.ReservationType
	Channel       domain.PaymentChannel
	PayForAll     bool
	MinRating     float64 // used only when Type == ReservationOpen
	MaxRating     float64
}

// Create runs spec §4.5's create flow.
func (m *Machine) Create(ctx context.Context, in CreateInput) (*domain.Reservation, error) {
	var created *domain.Reservation

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := repository.LockForUpdate(tx, ctx, in.CreatorUserID)
		if err != nil {
			return err
		}

		requestedSlot, err := m.slots.LockByID(ctx, tx, in.SlotID)
		if err != nil {
			return err
		}

		selectedSlot := requestedSlot
		ok, _, err := m.arbiter.HasAvailableCapacity(ctx, tx, requestedSlot.ID, in.Date)
		if err != nil {
			return err
		}
		if !ok {
			sibling, err := m.arbiter.FindFreeSibling(ctx, tx, requestedSlot, in.Date)
			if err != nil {
				return err
			}
			if sibling == nil {
				return domain.ErrSlotFull
			}
			selectedSlot = sibling
		}

		if in.Type == domain.ReservationOpen {
			if !(in.MinRating <= in.MaxRating) || math.IsNaN(in.MinRating) || math.IsNaN(in.MaxRating) ||
				math.IsInf(in.MinRating, 0) || math.IsInf(in.MaxRating, 0) {
				return domain.ErrInvalidRange
			}
		}

		shouldSkip := in.Type == domain.ReservationPrivate && in.Channel == domain.ChannelOnsite
		discountedUnit, err := m.discountedUnitPrice(ctx, tx, user, selectedSlot.UnitPrice, in.Date)
		if err != nil {
			return err
		}
		charge := chargeFor(shouldSkip, in.PayForAll, discountedUnit, selectedSlot.UnitPrice)
		unitTotal := discountedUnit
		if in.PayForAll {
			unitTotal = discountedUnit.Add(selectedSlot.UnitPrice.Mul(decimal.NewFromInt(3)))
		}

		now := m.clock.Now()
		res := &domain.Reservation{
			SlotID:          selectedSlot.ID,
			Date:            in.Date,
			CreatorUserID:   user.ID,
			Type:            in.Type,
			Etat:            domain.EtatPending,
			UnitTotalPrice:  unitTotal,
			IsPrepaidForAll: in.PayForAll,
			MinRating:       in.MinRating,
			MaxRating:       in.MaxRating,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := m.insertWithUniqueCoder(ctx, tx, res); err != nil {
			return err
		}

		if charge.GreaterThan(decimal.Zero) {
			key := ledger.CreatorDebitKey(res.ID, user.ID)
			if err := m.ledger.Debit(ctx, tx, user, charge, key); err != nil {
				return err
			}
			m.outbox.Enqueue(ctx, tx, outbox.Record{
				RecipientID: user.ID, ReservationID: res.ID,
				Type: domain.NotifyCreditDeduction,
				Title: "Credit deducted", Message: fmt.Sprintf("%s debited for reservation", charge.String()),
			})
		}

		// Step 6: re-check capacity on the finally selected slot, defending
		// against a concurrent inserter between the first check and now.
		okAgain, _, err := m.arbiter.HasAvailableCapacity(ctx, tx, selectedSlot.ID, in.Date)
		if err != nil {
			return err
		}
		if !okAgain && in.Type == domain.ReservationPrivate && in.Channel == domain.ChannelCredit {
			return domain.ErrSlotJustTaken
		}

		if in.Type == domain.ReservationPrivate && in.Channel == domain.ChannelCredit {
			res.Etat = domain.EtatValid
			res.UpdatedAt = now
			if err := m.reservations.Save(ctx, tx, res); err != nil {
				return err
			}
			if err := m.cancelExcessPending(ctx, tx, selectedSlot, in.Date); err != nil {
				return err
			}
			m.outbox.Enqueue(ctx, tx, outbox.Record{
				RecipientID: user.ID, ReservationID: res.ID,
				Type: domain.NotifyReservationConfirmed, Title: "Reservation confirmed",
				Message: "Your reservation is confirmed.",
			})
		}

		becameValid := in.Type == domain.ReservationPrivate && in.Channel == domain.ChannelCredit
		atCapacity, _, err := m.arbiter.HasAvailableCapacity(ctx, tx, selectedSlot.ID, in.Date)
		if err != nil {
			return err
		}
		if becameValid || !atCapacity {
			selectedSlot.Available = false
			if err := m.slots.Save(ctx, tx, selectedSlot); err != nil {
				return err
			}
		}

		participant := &domain.Participant{
			ReservationID:  res.ID,
			UserID:         user.ID,
			IsCreator:      true,
			Team:           0,
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

		log.Info().Int64("reservation_id", res.ID).Str("user_id", user.ID).
			Str("op", "create").Str("etat", fmt.Sprint(res.Etat)).Msg("reservation created")
		created = res
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// insertWithUniqueCoder generates a short unique coder and retries on
// collision up to 10 times (spec §4.5 step 7, §7 taxonomy entry 2).
func (m *Machine) insertWithUniqueCoder(ctx context.Context, tx *gorm.DB, res *domain.Reservation) error {
	var lastErr error
	for attempt := 0; attempt < 10; attempt++ {
		res.Coder = uuid.NewString()[:8]
		// A failed INSERT aborts the surrounding postgres transaction; the
		// savepoint lets the next attempt run inside the same transaction.
		tx.SavePoint("reservation_coder")
		err := m.reservations.Create(ctx, tx, res)
		if err == nil {
			return nil
		}
		tx.RollbackTo("reservation_coder")
		if !repository.IsUniqueViolation(err) {
			return err
		}
		lastErr = err
		res.ID = 0
	}
	return fmt.Errorf("reservation: coder generation exhausted retries: %w", lastErr)
}

// cancelExcessPending is spec §4.5 step 8's helper: once a sibling group's
// total VALID count reaches its total capacity, every PENDING reservation
// on any slot in that group is hard-cancelled (paid participants refunded,
// every participant notified, participants dropped) since it can never be
// satisfied.
func (m *Machine) cancelExcessPending(ctx context.Context, tx *gorm.DB, slot *domain.CourtSlot, date time.Time) error {
	siblings, err := m.slots.Siblings(ctx, tx, slot)
	if err != nil {
		return err
	}
	group := append([]domain.CourtSlot{*slot}, siblings...)

	var totalCapacity, totalValid int64
	for i := range group {
		slotCap := group[i].Capacity
		if slotCap <= 0 {
			slotCap = 1
		}
		totalCapacity += int64(slotCap)
		valid, err := m.reservations.CountValid(ctx, tx, group[i].ID, date)
		if err != nil {
			return err
		}
		totalValid += valid
	}
	if totalValid < totalCapacity {
		return nil
	}

	for i := range group {
		pendings, err := m.reservations.ListPending(ctx, tx, group[i].ID, date)
		if err != nil {
			return err
		}
		for j := range pendings {
			if err := m.cancelHard(ctx, tx, &pendings[j], "capacity_exhausted"); err != nil {
				return err
			}
		}
	}
	return nil
}

// cancelValidSiblings is the distinct helper used when an OPEN reservation
// transitions to VALID by acquiring its fourth player (spec §4.5). PRIVATE
// creation already handles its own siblings via cancelExcessPending.
func (m *Machine) cancelValidSiblings(ctx context.Context, tx *gorm.DB, newRes *domain.Reservation, slot *domain.CourtSlot) error {
	siblings, err := m.slots.Siblings(ctx, tx, slot)
	if err != nil {
		return err
	}
	for i := range siblings {
		valids, err := m.reservations.ListValid(ctx, tx, siblings[i].ID, newRes.Date)
		if err != nil {
			return err
		}
		for j := range valids {
			v := valids[j]
			if v.ID == newRes.ID {
				continue
			}
			if newRes.Type == domain.ReservationOpen && v.Type != domain.ReservationOpen {
				continue // OPEN promotion cancels only other OPEN VALID siblings
			}
			if err := m.cancelHard(ctx, tx, &v, "sibling_superseded"); err != nil {
				return err
			}
		}
	}
	return nil
}

// cancelHard refunds every paid participant exactly their debited amount,
// notifies every participant, drops all participants, and marks the
// reservation cancelled. Used both by
// the creator-cancel path and the two sibling-cancellation helpers above.
func (m *Machine) cancelHard(ctx context.Context, tx *gorm.DB, res *domain.Reservation, reason string) error {
	parts, err := m.participants.ListLocked(ctx, tx, res.ID)
	if err != nil {
		return err
	}
	for _, p := range parts {
		refunded := false
		if p.PaymentState == domain.PaymentPaid {
			debit, err := m.ledger.FindDebitFor(ctx, tx, p.UserID, res.ID)
			if err != nil {
				return err
			}
			// debit == nil: INFINITY or ONSITE, nothing was debited
			if debit != nil {
				user, err := repository.LockForUpdate(tx, ctx, p.UserID)
				if err != nil {
					return err
				}
				refunded, err = m.ledger.Refund(ctx, tx, user, debit.Amount.Abs(), ledger.CancelRefundKey(res.ID))
				if err != nil {
					return err
				}
			}
		}
		msg := fmt.Sprintf("Reservation cancelled (%s).", reason)
		if refunded {
			msg = fmt.Sprintf("Reservation cancelled (%s); refund issued.", reason)
		}
		m.outbox.Enqueue(ctx, tx, outbox.Record{
			RecipientID: p.UserID, ReservationID: res.ID,
			Type: domain.NotifyReservationCancelled, Title: "Reservation cancelled",
			Message: msg,
		})
	}

	if err := m.participants.DeleteAll(ctx, tx, res.ID); err != nil {
		return err
	}
	res.IsCancel = true
	res.Etat = domain.EtatCompletedCancelled
	res.UpdatedAt = m.clock.Now()
	if err := m.reservations.Save(ctx, tx, res); err != nil {
		return err
	}

	slot, err := m.slots.LockByID(ctx, tx, res.SlotID)
	if err != nil {
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

	log.Info().Int64("reservation_id", res.ID).Str("op", "cancel_hard").Str("reason", reason).
		Msg("reservation cancelled")
	return nil
}
