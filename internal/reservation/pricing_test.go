package reservation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/padelhub/reservation-core/internal/domain"
)

func TestChargeFor_OnsitePrivateSkipsCharge(t *testing.T) {
	charge := chargeFor(true, false, decimal.NewFromInt(100), decimal.NewFromInt(400))

	assert.True(t, charge.IsZero())
}

func TestChargeFor_SingleDiscountedUnit(t *testing.T) {
	charge := chargeFor(false, false, decimal.NewFromInt(100), decimal.NewFromInt(400))

	assert.True(t, charge.Equal(decimal.NewFromInt(100)))
}

func TestChargeFor_PayForAllAddsThreeUndiscountedUnits(t *testing.T) {
	charge := chargeFor(false, true, decimal.NewFromInt(100), decimal.NewFromInt(400))

	// 100 + 3*400 = 1300
	assert.True(t, charge.Equal(decimal.NewFromInt(1300)))
}

func TestChargeFor_ShouldSkipOverridesPayForAll(t *testing.T) {
	charge := chargeFor(true, true, decimal.NewFromInt(100), decimal.NewFromInt(400))

	assert.True(t, charge.IsZero())
}

func TestNextFreeTeam_FirstJoinerTakesSlotOne(t *testing.T) {
	existing := []domain.Participant{{Team: 0, IsCreator: true}}

	assert.Equal(t, 1, nextFreeTeam(existing))
}

func TestNextFreeTeam_SkipsOccupiedSlots(t *testing.T) {
	existing := []domain.Participant{{Team: 0}, {Team: 1}, {Team: 3}}

	assert.Equal(t, 2, nextFreeTeam(existing))
}
