package difficulty

import (
	"math/bits"
)

// WeightedAverage is the second generation: solve times weighted by
// recency, capped at ten targets, with a 0.99 adjustment applied through
// integer pre-multiplication.
type WeightedAverage struct {
	window int
	target uint64
}

func (a *WeightedAverage) Version() Version { return V2 }
func (a *WeightedAverage) Window() int      { return a.window }

func (a *WeightedAverage) Next(series Series) (uint64, error) {
	series = series.Recent(a.window)
	length := len(series)
	if length <= 1 {
		return 1, nil
	}

	maxSolveTime := 10 * a.target
	var weighted uint64
	for i := 1; i < length; i++ {
		solveTime := uint64(1)
		if prev, cur := series[i-1].Timestamp, series[i].Timestamp; cur > prev {
			solveTime = cur - prev
		}
		if solveTime > maxSolveTime {
			solveTime = maxSolveTime
		}
		hi, term := bits.Mul64(uint64(i), solveTime)
		var carry uint64
		weighted, carry = bits.Add64(weighted, term, 0)
		if hi != 0 || carry != 0 {
			return 0, ErrOverflow
		}
	}

	// N = length-1 solve times.
	if minimum := a.target * uint64(length-1) / 2; weighted < minimum {
		weighted = minimum
	}

	first, last := series[0].CumulativeDifficulty, series[length-1].CumulativeDifficulty
	if last <= first {
		return 0, ErrNoWork
	}
	totalWork := last - first

	// 0.99 * (length/2) * target, scaled before dividing.
	adjusted := 99 * uint64(length/2) * a.target / 100
	hi, lo := bits.Mul64(totalWork, adjusted)
	if hi != 0 {
		return 0, ErrOverflow
	}
	return atLeastOne(lo / weighted), nil
}
