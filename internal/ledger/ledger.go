// Package ledger implements the Credit Ledger (spec §4.1): an append-only
// record of per-user balance deltas with idempotent debit and refund,
// gated by a unique (user_id, type_key) pair.
package ledger

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/padelhub/reservation-core/internal/domain"
	"github.com/padelhub/reservation-core/internal/repository"
)

type Ledger struct {
	users *repository.UserRepo
	txns  *repository.LedgerRepo
}

func New(users *repository.UserRepo, txns *repository.LedgerRepo) *Ledger {
	return &Ledger{users: users, txns: txns}
}

// Debit atomically decrements the locked user's balance and appends a
// transaction with amount = -|amount| (spec §4.1). The caller must already
// hold tx and a row lock on user (acquired via repository.LockForUpdate).
func (l *Ledger) Debit(ctx context.Context, tx *gorm.DB, user *domain.User, amount decimal.Decimal, typeKey string) error {
	if amount.Sign() <= 0 {
		return domain.ErrInvalidAmount
	}
	if user.CreditBalance.LessThan(amount) {
		log.Warn().Str("user_id", user.ID).Str("type_key", typeKey).
			Str("balance", user.CreditBalance.String()).Str("amount", amount.String()).
			Msg("ledger debit rejected: insufficient funds")
		return domain.ErrInsufficientFunds
	}

	user.CreditBalance = user.CreditBalance.Sub(amount)
	if err := l.users.Save(ctx, tx, user); err != nil {
		return err
	}

	txn := &domain.CreditTransaction{
		UserID:    user.ID,
		Amount:    amount.Neg(),
		TypeKey:   typeKey,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.txns.Insert(ctx, tx, txn); err != nil {
		return err
	}
	log.Info().Str("user_id", user.ID).Str("type_key", typeKey).Str("amount", amount.String()).
		Msg("ledger debit applied")
	return nil
}

// Refund is the sole idempotence gate (spec §4.1): if a transaction with
// (user, type_key) already exists it is a no-op, returning false. Otherwise
// it increments the balance and appends a +|amount| transaction, returning
// true. The caller must hold tx and a row lock on user.
func (l *Ledger) Refund(ctx context.Context, tx *gorm.DB, user *domain.User, amount decimal.Decimal, typeKey string) (bool, error) {
	existing, err := l.txns.FindByKey(ctx, tx, user.ID, typeKey)
	if err != nil {
		return false, err
	}
	if existing != nil {
		log.Debug().Str("user_id", user.ID).Str("type_key", typeKey).
			Msg("ledger refund skipped: already applied")
		return false, nil
	}

	abs := amount.Abs()
	user.CreditBalance = user.CreditBalance.Add(abs)
	if err := l.users.Save(ctx, tx, user); err != nil {
		return false, err
	}

	txn := &domain.CreditTransaction{
		UserID:    user.ID,
		Amount:    abs,
		TypeKey:   typeKey,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.txns.Insert(ctx, tx, txn); err != nil {
		return false, err
	}
	log.Info().Str("user_id", user.ID).Str("type_key", typeKey).Str("amount", abs.String()).
		Msg("ledger refund applied")
	return true, nil
}

// FindDebitFor locates the most recent debit type_key matching either the
// creator pattern or any join pattern for (reservation, user), returning the
// signed (negative) amount. Cancellation refunds exactly what was debited,
// never the slot's current price (spec §4.1).
func (l *Ledger) FindDebitFor(ctx context.Context, tx *gorm.DB, userID string, reservationID int64) (*domain.CreditTransaction, error) {
	return l.txns.FindLatestDebitForReservation(ctx, tx, userID, reservationID)
}

// CreatorDebitKey and JoinDebitKey build the structured idempotency keys
// named in spec §3. RefundKey and CancelRefundKey build the matching refund
// keys so Refund's idempotence gate is keyed off the same reservation.
func CreatorDebitKey(reservationID int64, userID string) string {
	return "debit:reservation:R" + strconv.FormatInt(reservationID, 10) + ":U" + userID + ":creator"
}

func JoinDebitKey(reservationID int64, userID string) string {
	return "debit:join:R" + strconv.FormatInt(reservationID, 10) + ":U" + userID
}

func RefundKey(reservationID int64, userID string, participantID string) string {
	return "refund:R" + strconv.FormatInt(reservationID, 10) + ":U" + userID + ":P" + participantID
}

func CancelRefundKey(reservationID int64) string {
	return "refund:cancel:R" + strconv.FormatInt(reservationID, 10)
}
