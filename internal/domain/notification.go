package domain

import "time"

// NotificationType enumerates the outbox message kinds named in spec §6.
type NotificationType string

const (
	NotifyReservationConfirmed NotificationType = "reservation_confirmed"
	NotifyReservationCancelled NotificationType = "reservation_cancelled"
	NotifyCreditDeduction      NotificationType = "credit_deduction"
	NotifyParticipantLeft      NotificationType = "participant_left"
	NotifyMatchStatusChanged   NotificationType = "match_status_changed"
	NotifyScoreProposal        NotificationType = "SCORE_PROPOSAL"
	NotifyScoreConfirmed       NotificationType = "SCORE_CONFIRMED"
	NotifyScoreConflict        NotificationType = "SCORE_CONFLICT"
)

// Notification is the outbox row inserted in the same transaction as the
// mutation that produced it (spec §9: "model as an explicit outbox record
// inserted in the same transaction, consumed by a worker task"). Delivery
// over push/email is a separate, fire-and-forget concern (spec §5, §6).
type Notification struct {
	ID            string `gorm:"primaryKey"`
	RecipientID   string `gorm:"index"`
	ReservationID int64  `gorm:"index"`
	SubmitterID   string
	Type          NotificationType
	Title         string
	Message       string
	Data          string // JSON-encoded payload; shape is a contract owned by the delivery worker
	Delivered     bool   `gorm:"index"`
	CreatedAt     time.Time
}
