package reliability

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate_EvenMatchWinner(t *testing.T) {
	// Arrange: two evenly rated teams, winner's perspective.
	in := Input{
		WinnerRatingSum: 8.0, LoserRatingSum: 8.0,
		CurrentReliability:  0.5,
		TeammateReliability: 1.0, Opponent1Reliability: 1.0, Opponent2Reliability: 1.0,
	}

	// Act
	result := Calculate(in)

	// Assert: even match means RE=0.5, H=1.0, Delta=Beta*0.5=0.05.
	assert.InDelta(t, 0.5, result.RE, 1e-9)
	assert.InDelta(t, 1.0, result.H, 1e-9)
	assert.InDelta(t, 0.05, result.Delta, 1e-9)
	assert.InDelta(t, 0.55, result.NewReliability, 1e-9)
}

func TestCalculate_ClampedToUnitInterval(t *testing.T) {
	in := Input{
		WinnerRatingSum: 14.0, LoserRatingSum: 2.0,
		CurrentReliability:  0.99,
		TeammateReliability: 1.0, Opponent1Reliability: 1.0, Opponent2Reliability: 1.0,
	}

	result := Calculate(in)

	assert.LessOrEqual(t, result.NewReliability, 1.0)
	assert.GreaterOrEqual(t, result.NewReliability, 0.0)
}

func TestCalculate_LowReliabilityInputsFloorH(t *testing.T) {
	// Arrange: all three other-player reliabilities at zero; H must floor at
	// 0.01 rather than divide by zero.
	in := Input{
		WinnerRatingSum: 8.0, LoserRatingSum: 8.0,
		CurrentReliability:  0.2,
		TeammateReliability: 0, Opponent1Reliability: 0, Opponent2Reliability: 0,
	}

	result := Calculate(in)

	assert.False(t, math.IsNaN(result.Delta))
	assert.False(t, math.IsInf(result.Delta, 0))
	assert.InDelta(t, 0.01, result.H, 1e-9)
}

func TestCalculate_NeverGoesNegative(t *testing.T) {
	in := Input{
		WinnerRatingSum: 2.0, LoserRatingSum: 14.0,
		CurrentReliability:  0.0,
		TeammateReliability: 1.0, Opponent1Reliability: 1.0, Opponent2Reliability: 1.0,
	}

	result := Calculate(in)

	assert.GreaterOrEqual(t, result.NewReliability, 0.0)
}
