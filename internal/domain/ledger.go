package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreditTransaction is an append-only record of a balance delta. The unique
// (UserID, TypeKey) pair is the sole idempotence gate for every refund and
// debit path in the system (spec §3, §4.1).
type CreditTransaction struct {
	ID        int64  `gorm:"primaryKey"`
	UserID    string `gorm:"index:idx_ledger_user_key,unique,priority:1"`
	Amount    decimal.Decimal `gorm:"type:numeric(14,2)"` // signed; negative = debit, positive = refund
	TypeKey   string `gorm:"index:idx_ledger_user_key,unique,priority:2"`
	CreatedAt time.Time
}
