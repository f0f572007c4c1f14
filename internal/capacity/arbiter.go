// Package capacity implements the Capacity Arbiter (spec §4.4): it
// determines whether a requested slot, or one of its siblings, has a free
// seat, under the lock discipline that prevents oversubscription. The
// locking shape is grounded on the teacher's booking_repo.go
// CreateWithNoOverlap, which takes the same "lock candidate rows inside one
// transaction before deciding" approach for a different invariant (no
// overlap instead of bounded capacity).
package capacity

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/padelhub/reservation-core/internal/domain"
	"github.com/padelhub/reservation-core/internal/repository"
)

type Arbiter struct {
	slots        *repository.SlotRepo
	reservations *repository.ReservationRepo
}

func New(slots *repository.SlotRepo, reservations *repository.ReservationRepo) *Arbiter {
	return &Arbiter{slots: slots, reservations: reservations}
}

// HasAvailableCapacity locks the slot row, re-queries VALID reservations on
// (slot, date) under lock, and returns whether active count is below
// capacity (spec §4.4 steps 1-3). PENDING reservations never consume
// capacity.
func (a *Arbiter) HasAvailableCapacity(ctx context.Context, tx *gorm.DB, slotID int64, date time.Time) (bool, *domain.CourtSlot, error) {
	slot, err := a.slots.LockByID(ctx, tx, slotID)
	if err != nil {
		return false, nil, err
	}
	capacity := slot.Capacity
	if capacity <= 0 {
		capacity = 1
	}
	active, err := a.reservations.CountValid(ctx, tx, slotID, date)
	if err != nil {
		return false, nil, err
	}
	return active < int64(capacity), slot, nil
}

// FindFreeSibling enumerates sibling slots in ascending-id order (spec §5's
// deterministic lock order) excluding slot.ID, and returns the first one
// with free capacity.
func (a *Arbiter) FindFreeSibling(ctx context.Context, tx *gorm.DB, slot *domain.CourtSlot, date time.Time) (*domain.CourtSlot, error) {
	siblings, err := a.slots.Siblings(ctx, tx, slot)
	if err != nil {
		return nil, err
	}
	for i := range siblings {
		ok, _, err := a.HasAvailableCapacity(ctx, tx, siblings[i].ID, date)
		if err != nil {
			return nil, err
		}
		if ok {
			return &siblings[i], nil
		}
	}
	return nil, nil
}
