package reservation

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/padelhub/reservation-core/internal/domain"
)

// membershipFlatDiscount is the flat amount subtracted from unit price for
// tiers 1-3 (spec §4.5 step 4).
var membershipFlatDiscount = decimal.NewFromInt(300)

// discountedUnitPrice applies the membership discount ladder: tier
// INFINITY is free, subject to a one-reservation-per-calendar-date rate
// limit (exceeding it falls back to the default, undiscounted price);
// tiers 1-3 subtract a flat 300; tier NONE pays sticker price.
func (m *Machine) discountedUnitPrice(ctx context.Context, tx *gorm.DB, user *domain.User, unitPrice decimal.Decimal, date time.Time) (decimal.Decimal, error) {
	switch user.MembershipTier {
	case domain.MembershipInfinity:
		used, err := m.infinityUsedToday(ctx, tx, user.ID, date)
		if err != nil {
			return decimal.Zero, err
		}
		if used {
			return unitPrice, nil // rate-limited: default, no discount
		}
		return decimal.Zero, nil
	case domain.MembershipTier1, domain.MembershipTier2, domain.MembershipTier3:
		discounted := unitPrice.Sub(membershipFlatDiscount)
		if discounted.IsNegative() {
			discounted = decimal.Zero
		}
		return discounted, nil
	default:
		return unitPrice, nil
	}
}

// infinityUsedToday reports whether user already holds a non-cancelled
// reservation dated `date`, enforcing the INFINITY one-per-day rate limit.
func (m *Machine) infinityUsedToday(ctx context.Context, tx *gorm.DB, userID string, date time.Time) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).
		Model(&domain.Reservation{}).
		Where("creator_user_id = ? AND date = ? AND is_cancel = ?", userID, date, false).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// chargeFor computes the effective amount to debit the creator at create time
// (spec §4.5 step 4): free for PRIVATE+ONSITE, a single discounted unit
// otherwise, or discounted-plus-three-undiscounted when paying for all.
func chargeFor(shouldSkip bool, payForAll bool, discountedUnit, undiscountedUnit decimal.Decimal) decimal.Decimal {
	if shouldSkip {
		return decimal.Zero
	}
	if payForAll {
		return discountedUnit.Add(undiscountedUnit.Mul(decimal.NewFromInt(3)))
	}
	return discountedUnit
}
