package rating

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupW_ZeroDifferenceIsHalf(t *testing.T) {
	// Arrange / Act
	center := lookupW(0)

	// Assert
	assert.Equal(t, 0.5, center)
}

func TestLookupW_EdgeCases(t *testing.T) {
	tests := []struct {
		name string
		x    float64
		want float64
	}{
		{"far above table", 4.0, 0.02},
		{"far below table", -4.0, 2.8},
		{"exactly at upper table edge", 3.5, 0.02},
		{"exactly at lower table edge", -3.5, 2.8},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, lookupW(tc.x))
		})
	}
}

func TestLookupPct_Boundaries(t *testing.T) {
	assert.Equal(t, 100.0, lookupPct(-1))
	assert.Equal(t, 100.0, lookupPct(0))
	assert.Equal(t, 50.00, lookupPct(19))
	assert.InDelta(t, 47.37, lookupPct(20), 0.01)
}

func TestCalculate_BalancedMatchTenGames(t *testing.T) {
	// Arrange: spec scenario 1 — balanced teams, 10 games won.
	in := Input{
		PlayerRating: 4.0, TeammateRating: 4.0,
		Opponent1: 4.0, Opponent2: 4.0,
		PointsScored:        10,
		TeammateReliability: 1.0, Opponent1Reliability: 1.0, Opponent2Reliability: 1.0,
	}

	// Act
	result, err := Calculate(in)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.X)
	assert.Equal(t, 0.5, result.W)
	assert.InDelta(t, 73.68, result.Pct, 0.01)
	assert.InDelta(t, 0.3684, result.Y, 0.001)
	assert.InDelta(t, 0.1316, result.Z, 0.001)
	assert.InDelta(t, 4.1316, result.NewRating, 0.001)
}

func TestCalculate_UnderdogWinFifteenGames(t *testing.T) {
	// Arrange: spec scenario 2 — underdog win, 15 games won.
	in := Input{
		PlayerRating: 2.0, TeammateRating: 2.5,
		Opponent1: 5.0, Opponent2: 5.5,
		PointsScored:        15,
		TeammateReliability: 1.0, Opponent1Reliability: 1.0, Opponent2Reliability: 1.0,
	}

	// Act
	result, err := Calculate(in)

	// Assert
	require.NoError(t, err)
	assert.InDelta(t, -3.0, result.X, 0.001)
	assert.Equal(t, 2.8, result.W)
	assert.InDelta(t, 60.53, result.Pct, 0.01)
	assert.InDelta(t, 1.6948, result.Y, 0.001)
	assert.InDelta(t, 1.1052, result.Z, 0.001)
	assert.InDelta(t, 3.1052, result.NewRating, 0.001)
}

func TestCalculate_ZeroGamesEdgeNoChange(t *testing.T) {
	// Arrange: spec scenario 3 — balanced teams, zero games won.
	in := Input{
		PlayerRating: 4.0, TeammateRating: 4.0,
		Opponent1: 4.0, Opponent2: 4.0,
		PointsScored:        0,
		TeammateReliability: 1.0, Opponent1Reliability: 1.0, Opponent2Reliability: 1.0,
	}

	// Act
	result, err := Calculate(in)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 100.0, result.Pct)
	assert.Equal(t, result.W, result.Y)
	assert.Equal(t, 0.0, result.Z)
	assert.Equal(t, 4.0, result.NewRating)
}

func TestCalculate_RejectsNonFiniteInput(t *testing.T) {
	_, err := Calculate(Input{PlayerRating: math.NaN()})
	assert.Error(t, err)

	_, err = Calculate(Input{PlayerRating: math.Inf(1)})
	assert.Error(t, err)
}

func TestCalculate_ClampsToRatingBounds(t *testing.T) {
	// Arrange: a player already at the rating floor facing a crushing loss.
	in := Input{
		PlayerRating: 0.5, TeammateRating: 0.5,
		Opponent1: 7.0, Opponent2: 7.0,
		PointsScored:        0,
		TeammateReliability: 1.0, Opponent1Reliability: 1.0, Opponent2Reliability: 1.0,
	}

	result, err := Calculate(in)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.NewRating, 0.5)
	assert.LessOrEqual(t, result.NewRating, 7.0)
}

func TestCalculate_NegativePointsClampedToZero(t *testing.T) {
	in := Input{
		PlayerRating: 4.0, TeammateRating: 4.0,
		Opponent1: 4.0, Opponent2: 4.0,
		PointsScored:        -5,
		TeammateReliability: 1.0, Opponent1Reliability: 1.0, Opponent2Reliability: 1.0,
	}

	result, err := Calculate(in)

	require.NoError(t, err)
	assert.Equal(t, 100.0, result.Pct) // same as PointsScored=0
}
