package httpapi

import (
	"errors"
	"net/http"

	"github.com/padelhub/reservation-core/internal/domain"
)

// statusFor maps the error taxonomy from spec §7 to HTTP status codes,
// matching spec §6's "create may fail with 409 ... or 400 ...".
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSlotFull),
		errors.Is(err, domain.ErrSlotJustTaken),
		errors.Is(err, domain.ErrSlotContention):
		return http.StatusConflict
	case errors.Is(err, domain.ErrTooLateToCancel),
		errors.Is(err, domain.ErrScoreLocked):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidRange),
		errors.Is(err, domain.ErrInvalidScore),
		errors.Is(err, domain.ErrMatchUndecided),
		errors.Is(err, domain.ErrInvalidPaymentChan),
		errors.Is(err, domain.ErrMissingTeamSeat),
		errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrOrphanParticipants),
		errors.Is(err, domain.ErrNegativeCapacity),
		errors.Is(err, domain.ErrUnexpectedState):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// codeFor names the user-visible error code string (spec §6) for the
// response body, independent of the HTTP status it maps to.
func codeFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrSlotFull):
		return "SLOT_FULL"
	case errors.Is(err, domain.ErrSlotJustTaken):
		return "SLOT_JUST_TAKEN"
	case errors.Is(err, domain.ErrSlotContention):
		return "SLOT_CONTENTION"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "INSUFFICIENT_FUNDS"
	case errors.Is(err, domain.ErrTooLateToCancel):
		return "TOO_LATE_TO_CANCEL"
	case errors.Is(err, domain.ErrInvalidScore):
		return "INVALID_SCORE"
	case errors.Is(err, domain.ErrScoreLocked):
		return "SCORE_LOCKED"
	case errors.Is(err, domain.ErrMatchUndecided):
		return "MATCH_UNDECIDED"
	case errors.Is(err, domain.ErrInvalidRange):
		return "INVALID_RANGE"
	default:
		return "INTERNAL"
	}
}
