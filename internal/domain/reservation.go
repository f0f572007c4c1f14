package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReservationType int

const (
	ReservationPrivate ReservationType = 1
	ReservationOpen    ReservationType = 2
)

// Etat is the reservation's lifecycle state (spec §3). The legacy French
// naming ("etat" = state) is kept verbatim from the spec's data model.
type Etat int

const (
	EtatPending            Etat = 0
	EtatValid              Etat = 1
	EtatCompletedCancelled Etat = -1 // the value 3 is also read as cancelled; see IsCancelled
)

// IsCancelled treats both documented cancelled encodings (-1 and 3) as the
// same terminal state, per spec §3's "etat ∈ {..., COMPLETED_CANCELLED=-1 or 3}".
func (e Etat) IsCancelled() bool {
	return e == EtatCompletedCancelled || e == 3
}

type PaymentChannel int

const (
	ChannelCredit PaymentChannel = 1
	ChannelOnsite PaymentChannel = 2
)

type ScoreStatus int

const (
	ScorePending        ScoreStatus = 0
	ScoreConfirmed      ScoreStatus = 1
	ScoreAutoConfirmed  ScoreStatus = 2
	ScoreConflict       ScoreStatus = 3
)

// Locked reports whether the score has reached a terminal state that must
// never transition again (spec §8's monotonicity property).
func (s ScoreStatus) Locked() bool {
	return s == ScoreConfirmed || s == ScoreAutoConfirmed
}

type SetMode int

const (
	SetModeNormal       SetMode = 0
	SetModeSuperTiebreak SetMode = 1
)

// Reservation is the central entity of the state machine (spec §3, §4.5,
// §4.6). Set score fields are flattened rather than a nested slice to mirror
// how the spec names them (set1A, set1B, ...) and to keep the gorm model a
// single table, matching the teacher's one-struct-per-table convention.
type Reservation struct {
	ID             int64 `gorm:"primaryKey"`
	SlotID         int64 `gorm:"index"`
	Date           time.Time
	CreatorUserID  string `gorm:"index"`
	Type           ReservationType
	Etat           Etat `gorm:"index"`
	IsCancel       bool
	Coder          string `gorm:"uniqueIndex"`
	UnitTotalPrice decimal.Decimal `gorm:"type:numeric(10,2)"`
	IsPrepaidForAll bool

	// Rating window, validated at creation when Type == ReservationOpen
	// (spec §4.5 step 3).
	MinRating float64
	MaxRating float64

	Set1A, Set1B int
	Set2A, Set2B int
	Set3A, Set3B int
	SuperTiebreak bool
	SetMode       SetMode
	// Teamwin: 1 if team {0,1} won, 2 if team {2,3} won, 0 if undecided.
	Teamwin           int
	ScoreStatus       ScoreStatus
	LastScoreSubmitterID string
	LastScoreUpdateAt    time.Time
	ConfirmedAt          *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Participant is a seat in a reservation; one of four team slots {0,1,2,3}
// where {0,1} plays {2,3} (spec §3).
type Participant struct {
	ReservationID  int64 `gorm:"primaryKey;index:idx_participant_res_user,priority:1"`
	UserID         string `gorm:"primaryKey;index:idx_participant_res_user,priority:2"`
	IsCreator      bool
	PaymentState   PaymentState
	PaymentChannel PaymentChannel
	Team           int // 0,1,2,3
}

type PaymentState int

const (
	PaymentUnpaid PaymentState = 0
	PaymentPaid   PaymentState = 1
)
