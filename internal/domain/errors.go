package domain

import "errors"

// Sentinel errors for the reservation core's error taxonomy (spec §7).
// Handlers at the HTTP boundary type-switch on these with errors.Is to pick
// a status code; nothing below this package knows about HTTP.
var (
	// Contention (409, retryable)
	ErrSlotFull       = errors.New("slot_full")
	ErrSlotJustTaken  = errors.New("slot_just_taken")
	ErrSlotContention = errors.New("slot_contention")

	// Validation (4xx)
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrInvalidRange       = errors.New("invalid_range")
	ErrInvalidScore       = errors.New("invalid_score")
	ErrMatchUndecided     = errors.New("match_undecided")
	ErrInvalidPaymentChan = errors.New("invalid_payment_channel")
	ErrMissingTeamSeat    = errors.New("missing_team_seat")

	// Business (409, non-retryable)
	ErrTooLateToCancel = errors.New("too_late_to_cancel")
	ErrScoreLocked     = errors.New("score_locked")

	// Ledger
	ErrInsufficientFunds = errors.New("insufficient_funds")

	// State corruption (500, log + abort)
	ErrOrphanParticipants = errors.New("orphan_participants")
	ErrNegativeCapacity   = errors.New("negative_capacity")
	ErrUnexpectedState    = errors.New("unexpected_state")
)
