package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CourtSlot is one time-bounded booking surface on a specific court.
// Sibling slots share (CourtID, StartTime, EndTime) and may each carry
// capacity > 1 when several matches of the same start/end are scheduled on
// sibling court instances (spec §1, §3).
type CourtSlot struct {
	ID        int64 `gorm:"primaryKey"`
	CourtID   int64 `gorm:"index:idx_slot_sibling,priority:1"`
	StartTime time.Time `gorm:"index:idx_slot_sibling,priority:2"`
	EndTime   time.Time `gorm:"index:idx_slot_sibling,priority:3"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(10,2)"`
	Capacity  int `gorm:"default:1"`

	// Available is a denormalized hint only; it must never be the sole
	// source of truth for capacity (spec §3, §5). The Capacity Arbiter
	// always re-queries reservations under lock before trusting it.
	Available bool
}
