package score

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/padelhub/reservation-core/internal/domain"
)

func TestIdentical_MatchingSubmissionReturnsTrue(t *testing.T) {
	res := &domain.Reservation{
		Set1A: 6, Set1B: 4, Set2A: 6, Set2B: 4,
		Teamwin: 1,
	}
	sub := Submission{Set1: Set{6, 4}, Set2: Set{6, 4}}

	assert.True(t, identical(res, sub, 1))
}

func TestIdentical_DifferingScoreReturnsFalse(t *testing.T) {
	res := &domain.Reservation{
		Set1A: 6, Set1B: 4, Set2A: 6, Set2B: 4,
		Teamwin: 1,
	}
	sub := Submission{Set1: Set{6, 3}, Set2: Set{6, 4}}

	assert.False(t, identical(res, sub, 1))
}

func TestIdentical_DifferingWinnerReturnsFalse(t *testing.T) {
	res := &domain.Reservation{
		Set1A: 6, Set1B: 4, Set2A: 6, Set2B: 4,
		Teamwin: 1,
	}
	sub := Submission{Set1: Set{6, 4}, Set2: Set{6, 4}}

	assert.False(t, identical(res, sub, 2))
}
