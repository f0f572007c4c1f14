// Package score implements the Score Protocol (spec §4.6): set validation,
// winner determination, and the updateScore state machine that reconciles
// two independent submissions into CONFIRMED, CONFLICT, or PENDING.
package score

import "github.com/padelhub/reservation-core/internal/domain"

// Set is one submitted set's raw game count for both sides.
type Set struct {
	A, B int
}

// Submission is the caller-facing shape of a score update (spec §6's
// create/cancel JSON-ish contract extended to scores).
type Submission struct {
	Set1, Set2, Set3 Set
	SuperTiebreak    bool
	SetMode          domain.SetMode
}

// validSet reports whether (a,b) is a legal normal-set result: max=6 with a
// 2-game margin, or max=7 with the loser on 5 or 6 (spec §4.6).
func validSet(a, b int) bool {
	max, min := a, b
	if b > a {
		max, min = b, a
	}
	if max == 6 && (max-min) >= 2 {
		return true
	}
	if max == 7 && (min == 5 || min == 6) {
		return true
	}
	return false
}

// validSuperTiebreak reports whether (a,b) is a legal super-tiebreak result:
// first to at least 10 with a 2-point margin (spec §4.6).
func validSuperTiebreak(a, b int) bool {
	max, min := a, b
	if b > a {
		max, min = b, a
	}
	return max >= 10 && (max-min) >= 2
}

// setWinner returns 1 if side A won the set, 2 if side B won, 0 if the set
// result itself is invalid.
func setWinner(a, b int, isSuperTiebreak bool) int {
	ok := validSet(a, b)
	if isSuperTiebreak {
		ok = validSuperTiebreak(a, b)
	}
	if !ok {
		return 0
	}
	if a > b {
		return 1
	}
	return 2
}

// Evaluate validates every submitted set and determines the match winner
// under best-of-three rules: set 3 is required iff sets 0 and 1 split 1-1,
// and is played as a super-tiebreak iff SuperTiebreak is set and
// SetMode=SetModeSuperTiebreak (spec §4.6). A malformed first or second set,
// or any third set after straight sets, is ErrInvalidScore; after a split, a
// third set that is missing or not a valid finished set is
// ErrMatchUndecided, matching spec §6's distinct 400 codes.
func Evaluate(s Submission) (teamwin int, err error) {
	w1 := setWinner(s.Set1.A, s.Set1.B, false)
	w2 := setWinner(s.Set2.A, s.Set2.B, false)
	if w1 == 0 || w2 == 0 {
		return 0, domain.ErrInvalidScore
	}

	if w1 == w2 {
		if s.Set3.A != 0 || s.Set3.B != 0 {
			return 0, domain.ErrInvalidScore
		}
		return w1, nil
	}

	isSuperTiebreak := s.SuperTiebreak && s.SetMode == domain.SetModeSuperTiebreak
	w3 := setWinner(s.Set3.A, s.Set3.B, isSuperTiebreak)
	if w3 == 0 {
		return 0, domain.ErrMatchUndecided
	}
	return w3, nil
}
