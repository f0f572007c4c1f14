package repository

import (
	"context"
	"errors"
	"strconv"

	"gorm.io/gorm"

	"github.com/padelhub/reservation-core/internal/domain"
)

type LedgerRepo struct{ db *gorm.DB }

func NewLedgerRepo(db *gorm.DB) *LedgerRepo {
	return &LedgerRepo{db: db}
}

func (r *LedgerRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.CreditTransaction{})
}

// FindByKey probes the (user, type_key) idempotence gate inside tx. A
// gorm.ErrRecordNotFound return means no prior transaction exists.
func (r *LedgerRepo) FindByKey(ctx context.Context, tx *gorm.DB, userID, typeKey string) (*domain.CreditTransaction, error) {
	var t domain.CreditTransaction
	err := tx.WithContext(ctx).
		Where("user_id = ? AND type_key = ?", userID, typeKey).
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// FindLatestDebitForReservation locates the most recent debit whose
// type_key references this reservation and user, regardless of whether it
// was the creator's or a joiner's debit pattern (spec §4.1 findDebitFor).
func (r *LedgerRepo) FindLatestDebitForReservation(ctx context.Context, tx *gorm.DB, userID string, reservationID int64) (*domain.CreditTransaction, error) {
	var t domain.CreditTransaction
	err := tx.WithContext(ctx).
		Where("user_id = ? AND type_key LIKE ? AND amount < 0", userID, debitKeyLikePattern(reservationID)).
		Order("created_at DESC").
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func debitKeyLikePattern(reservationID int64) string {
	return "debit:%:R" + strconv.FormatInt(reservationID, 10) + ":%"
}

func (r *LedgerRepo) Insert(ctx context.Context, tx *gorm.DB, t *domain.CreditTransaction) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.WithContext(ctx).Create(t).Error
}
