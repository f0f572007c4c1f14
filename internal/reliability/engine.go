// Package reliability implements the pure Reliability Engine (spec §4.3): a
// bounded additive update to a player's reliability coefficient in [0,1].
package reliability

import "math"

// Beta is the fixed learning-rate constant from spec §4.3.
const Beta = 0.1

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Input bundles the Reliability Engine's parameters (spec §4.3).
type Input struct {
	WinnerRatingSum float64 // Sw: sum of the two winning-team ratings
	LoserRatingSum  float64 // Sl: sum of the two losing-team ratings

	CurrentReliability float64 // Fcurrent, in [0,1]

	// Other-player reliabilities feeding H: teammate, opponent1, opponent2.
	TeammateReliability  float64
	Opponent1Reliability float64
	Opponent2Reliability float64
}

// Result carries the intermediate RE/H/ΔF values alongside the clamped
// new reliability, for testability (spec §8).
type Result struct {
	RE, H, Delta float64
	NewReliability float64
}

// Calculate runs the four-step pipeline from spec §4.3.
func Calculate(in Input) Result {
	avgWinner := in.WinnerRatingSum / 2
	avgLoser := in.LoserRatingSum / 2

	re := 1 / (1 + math.Pow(10, (avgLoser-avgWinner)/20))

	h := (in.TeammateReliability + in.Opponent1Reliability + in.Opponent2Reliability) / 3
	if h < 0.01 {
		h = 0.01
	}

	delta := Beta * re * (1 / math.Sqrt(h))
	newRel := clamp01(in.CurrentReliability + delta)

	return Result{RE: re, H: h, Delta: delta, NewReliability: newRel}
}
