// Package rating implements the pure Rating Engine (spec §4.2): a
// deterministic, total function from a match's four ratings, the player's
// team's points scored, and three reliability coefficients to the player's
// new rating. Style follows the pack's standalone ranking calculators
// (Black-And-White-Club-frolf-bot's leaderboarddomain package): typed
// inputs, no side effects, table-driven lookups.
package rating

import (
	"fmt"
	"math"

	"github.com/padelhub/reservation-core/internal/domain"
)

// wRow is one row of the rating-difference table (spec §4.2): the first row
// whose [Min,Max] contains X wins, walked in listed order.
type wRow struct {
	Min, Max float64
	W        float64
}

// wTable is the exact ordered table from spec §4.2. Rows are intentionally
// left in the spec's listed order; lookupW relies on walking them in order,
// not on binary search, since a couple of rows are adjacent-but-not-quite-
// contiguous by design.
var wTable = []wRow{
	{0.96, 3.5, 0.02},
	{0.86, 0.95, 0.03},
	{0.76, 0.85, 0.05},
	{0.66, 0.75, 0.08},
	{0.56, 0.65, 0.11},
	{0.46, 0.55, 0.15},
	{0.36, 0.45, 0.20},
	{0.26, 0.35, 0.26},
	{0.16, 0.25, 0.33},
	{0.05, 0.15, 0.41},
	{-0.06, 0.05, 0.50},
	{-0.16, -0.06, 0.60},
	{-0.25, -0.16, 0.70},
	{-0.36, -0.26, 0.85},
	{-0.46, -0.36, 1.00},
	{-0.56, -0.46, 1.20},
	{-0.66, -0.56, 1.40},
	{-0.76, -0.66, 1.70},
	{-0.86, -0.76, 2.00},
	{-0.96, -0.86, 2.40},
	{-3.5, -0.96, 2.80},
}

// lookupW resolves the rating-difference table, with the edge cases named
// in spec §4.2 step 2.
func lookupW(x float64) float64 {
	if x > 3.5 {
		return 0.02
	}
	if x < -3.5 {
		return 2.8
	}
	for _, row := range wTable {
		if x >= row.Min && x <= row.Max {
			return row.W
		}
	}
	return 0.5
}

// pctTable is the exact points-to-percentage table for P ∈ {0,...,19}
// (spec §4.2).
var pctTable = [20]float64{
	100, 97.37, 94.74, 92.11, 89.47, 86.84, 84.21, 81.58, 78.95, 76.32,
	73.68, 71.05, 68.42, 65.79, 63.16, 60.53, 57.89, 55.26, 52.63, 50.00,
}

// lookupPct resolves the points-to-percentage table, with the P > 19
// linear tail and the P < 0 default named in spec §4.2 step 3.
func lookupPct(p int) float64 {
	if p < 0 {
		return 100
	}
	if p <= 19 {
		return pctTable[p]
	}
	pct := 50 - float64(p-19)*2.63
	if pct < 0 {
		pct = 0
	}
	return pct
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Input bundles the Rating Engine's parameters (spec §4.2).
type Input struct {
	PlayerRating   float64 // Rp
	TeammateRating float64 // Rt
	Opponent1      float64 // Ro1
	Opponent2      float64 // Ro2
	PointsScored   int     // P: games won across sets by the player's team, >= 0

	// Reliability coefficients in [0,1]: teammate, opponent1, opponent2.
	TeammateReliability  float64 // Ft
	Opponent1Reliability float64 // Fa1
	Opponent2Reliability float64 // Fa2
}

// Result carries the intermediate values alongside the final rating, since
// §8's end-to-end scenarios assert on X, W, pct, Y, Z individually.
type Result struct {
	X, W, Pct, Y, Z, Delta float64
	NewRating              float64
}

// Calculate runs the eight-step pipeline from spec §4.2. It fails only if any
// input is non-finite, per the engine's stated totality.
func Calculate(in Input) (Result, error) {
	for _, v := range []float64{
		in.PlayerRating, in.TeammateRating, in.Opponent1, in.Opponent2,
		in.TeammateReliability, in.Opponent1Reliability, in.Opponent2Reliability,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Result{}, fmt.Errorf("rating: non-finite input")
		}
	}
	if in.PointsScored < 0 {
		in.PointsScored = 0
	}

	x := ((in.PlayerRating + in.TeammateRating) - (in.Opponent1 + in.Opponent2)) / 2
	w := lookupW(x)
	pct := lookupPct(in.PointsScored)
	y := w * pct / 100
	z := w - y
	avgRel := (in.TeammateReliability + in.Opponent1Reliability + in.Opponent2Reliability) / 3
	ro := z * avgRel
	newRating := clamp(in.PlayerRating+ro, domain.MinRating, domain.MaxRating)

	return Result{
		X: x, W: w, Pct: pct, Y: y, Z: z, Delta: ro,
		NewRating: newRating,
	}, nil
}
