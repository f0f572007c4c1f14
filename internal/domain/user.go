package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MembershipTier gates the unit-price discount ladder applied at reservation
// creation (spec §4.5 step 4).
type MembershipTier int

const (
	MembershipNone     MembershipTier = 0
	MembershipTier1    MembershipTier = 1
	MembershipTier2    MembershipTier = 2
	MembershipTier3    MembershipTier = 3
	MembershipInfinity MembershipTier = 4
)

const (
	// MinRating and MaxRating bound every persisted rating (spec §4.2 step 8).
	MinRating = 0.5
	MaxRating = 7.0

	// DefaultRating is assigned to a user created externally with no history.
	DefaultRating = 0.5

	// DefaultReliabilityPct is the default reliability, stored as an integer
	// percentage in [0,100] and used downstream as a /100 coefficient.
	DefaultReliabilityPct = 20
)

// User is the identity the core mutates but never creates or destroys.
// Authentication material is opaque here; it belongs to an external
// collaborator (spec §1, §9).
type User struct {
	ID             string `gorm:"primaryKey"`
	Rating         float64
	ReliabilityPct int // integer percentage in [0,100]; /100 is the coefficient used by the engines
	CreditBalance  decimal.Decimal `gorm:"type:numeric(14,2)"`
	MembershipTier MembershipTier
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Reliability returns the stored percentage as the [0,1] coefficient the
// Rating and Reliability engines consume.
func (u User) Reliability() float64 {
	return float64(u.ReliabilityPct) / 100.0
}

// CreditPool is a per-sport credit balance. The table is migrated, but no
// operation in this repository reads or writes it: the Ledger debits and
// refunds User.CreditBalance only.
type CreditPool struct {
	UserID  string `gorm:"primaryKey"`
	Sport   string `gorm:"primaryKey"`
	Balance decimal.Decimal `gorm:"type:numeric(14,2)"`
}
