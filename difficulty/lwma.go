package difficulty

import (
	"math"
)

// lwmaAdjust corrects the average solve time to within about 0.1%.
const lwmaAdjust = 0.998

// LWMA is the third generation: a linearly weighted moving average of
// solve times over N blocks, combined with the harmonic mean of the block
// difficulties. It is computed in float64; every intermediate is forced
// through an explicit conversion so no multiply-add is fused and the
// result is identical on every platform.
type LWMA struct {
	n      int
	target uint64
}

func (a *LWMA) Version() Version { return V3 }
func (a *LWMA) Window() int      { return a.n + 1 }

func (a *LWMA) Next(series Series) (uint64, error) {
	series = series.Recent(a.n + 1)
	if len(series) <= 1 {
		return 1, nil
	}
	n := int64(len(series) - 1)
	t := int64(a.target)

	k := float64(n * (n + 1) / 2)

	var lwma, sumInverseD float64
	for i := int64(1); i <= n; i++ {
		solveTime := int64(series[i].Timestamp) - int64(series[i-1].Timestamp)
		if solveTime > 7*t {
			solveTime = 7 * t
		} else if solveTime < -7*t {
			solveTime = -7 * t
		}
		d := series[i].CumulativeDifficulty - series[i-1].CumulativeDifficulty

		lwma += float64(float64(solveTime*i) / k)
		// A zero difficulty adds +Inf, which drives the result to the floor.
		sumInverseD += float64(1 / float64(d))
	}

	if int64(math.Round(lwma)) < t/20 {
		lwma = float64(t / 20)
	}

	harmonicMeanD := float64(float64(float64(n)/sumInverseD) * lwmaAdjust)
	next := float64(float64(harmonicMeanD*float64(t)) / lwma)

	switch {
	case math.IsNaN(next) || next < 1:
		return 1, nil
	case next >= 1<<64:
		return 0, ErrOverflow
	}
	return uint64(next), nil
}
