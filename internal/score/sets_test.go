package score

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/padelhub/reservation-core/internal/domain"
)

func TestEvaluate_StraightSetsWin(t *testing.T) {
	sub := Submission{Set1: Set{6, 4}, Set2: Set{6, 4}}

	teamwin, err := Evaluate(sub)

	assert.NoError(t, err)
	assert.Equal(t, 1, teamwin)
}

func TestEvaluate_SplitSetsRequiresThird(t *testing.T) {
	sub := Submission{Set1: Set{6, 4}, Set2: Set{4, 6}, Set3: Set{6, 3}}

	teamwin, err := Evaluate(sub)

	assert.NoError(t, err)
	assert.Equal(t, 1, teamwin)
}

func TestEvaluate_SplitSetsMissingThirdIsUndecided(t *testing.T) {
	sub := Submission{Set1: Set{6, 4}, Set2: Set{4, 6}}

	_, err := Evaluate(sub)

	assert.ErrorIs(t, err, domain.ErrMatchUndecided)
}

func TestEvaluate_InvalidSetFormat(t *testing.T) {
	tests := []struct {
		name string
		sub  Submission
	}{
		{"seven-four is invalid", Submission{Set1: Set{7, 4}, Set2: Set{6, 4}}},
		{"five-three never completes", Submission{Set1: Set{5, 3}, Set2: Set{6, 4}}},
		{"six-six is invalid", Submission{Set1: Set{6, 6}, Set2: Set{6, 4}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Evaluate(tc.sub)
			assert.ErrorIs(t, err, domain.ErrInvalidScore)
		})
	}
}

func TestEvaluate_ExtraThirdSetAfterStraightSetsIsInvalid(t *testing.T) {
	sub := Submission{Set1: Set{6, 4}, Set2: Set{6, 4}, Set3: Set{6, 0}}

	_, err := Evaluate(sub)

	assert.ErrorIs(t, err, domain.ErrInvalidScore)
}

func TestEvaluate_SuperTiebreakDecider(t *testing.T) {
	sub := Submission{
		Set1: Set{6, 4}, Set2: Set{4, 6}, Set3: Set{10, 6},
		SuperTiebreak: true, SetMode: domain.SetModeSuperTiebreak,
	}

	teamwin, err := Evaluate(sub)

	assert.NoError(t, err)
	assert.Equal(t, 1, teamwin)
}

func TestEvaluate_SuperTiebreakRequiresTwoPointMargin(t *testing.T) {
	sub := Submission{
		Set1: Set{6, 4}, Set2: Set{4, 6}, Set3: Set{11, 10},
		SuperTiebreak: true, SetMode: domain.SetModeSuperTiebreak,
	}

	_, err := Evaluate(sub)

	assert.ErrorIs(t, err, domain.ErrMatchUndecided)
}

func TestEvaluate_SevenFiveIsValid(t *testing.T) {
	sub := Submission{Set1: Set{7, 5}, Set2: Set{6, 4}}

	teamwin, err := Evaluate(sub)

	assert.NoError(t, err)
	assert.Equal(t, 1, teamwin)
}
