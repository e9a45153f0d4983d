package difficulty

import (
	"math/bits"
)

// LWMA2 is the fourth and fifth generation: LWMA in integer arithmetic
// with solve times clamped to [-FTL, 6T] and a stabilizer that raises the
// difficulty by at most 10% when the last three blocks came too fast.
// The fifth generation only widens the window.
type LWMA2 struct {
	version Version
	// window is N+1 samples, N solve times.
	window int
	target uint64
	ftl    uint64
}

func (a *LWMA2) Version() Version { return a.version }
func (a *LWMA2) Window() int      { return a.window }

func (a *LWMA2) Next(series Series) (uint64, error) {
	series = series.Recent(a.window)
	if len(series) <= 1 {
		return 1, nil
	}
	n := int64(len(series) - 1)
	t := int64(a.target)
	ftl := int64(a.ftl)

	var weighted, sumLast3 int64
	for i := int64(1); i <= n; i++ {
		solveTime := int64(series[i].Timestamp) - int64(series[i-1].Timestamp)
		if solveTime > 6*t {
			solveTime = 6 * t
		}
		if solveTime < -ftl {
			solveTime = -ftl
		}
		weighted += solveTime * i
		if i > n-3 {
			sumLast3 += solveTime
		}
	}

	last, prev := series[n].CumulativeDifficulty, series[n-1].CumulativeDifficulty
	if last < prev {
		return 0, ErrNoWork
	}
	if sumLast3 < 8*t/10 {
		hi, lo := bits.Mul64(last-prev, 110)
		if hi >= 100 {
			return 0, ErrOverflow
		}
		next, _ := bits.Div64(hi, lo, 100)
		return atLeastOne(next), nil
	}

	first := series[0].CumulativeDifficulty
	if last <= first {
		return 0, ErrNoWork
	}
	totalWork := last - first

	// Enough timestamps running backwards make the weighted sum
	// non-positive; the average solve time is then meaningless and the
	// difficulty drops to the floor.
	if weighted <= 0 {
		return 1, nil
	}

	// next = totalWork*T*(N+1)*99 / (200*L)
	scale := uint64(t) * uint64(n+1) * 99
	hi, lo := bits.Mul64(totalWork, scale)
	denominator := 200 * uint64(weighted)
	if hi >= denominator {
		return 0, ErrOverflow
	}
	next, _ := bits.Div64(hi, lo, denominator)
	return atLeastOne(next), nil
}
