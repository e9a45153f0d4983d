package difficulty

import (
	"math/bits"
	"sort"
)

// TrimmedMean is the first generation: the sorted window with Cut outliers
// dropped from each end, total work divided by the time span, rounded up.
type TrimmedMean struct {
	window int
	cut    int
	target uint64
}

func (a *TrimmedMean) Version() Version { return V1 }
func (a *TrimmedMean) Window() int      { return a.window }

func (a *TrimmedMean) Next(series Series) (uint64, error) {
	series = series.Recent(a.window)
	length := len(series)
	if length <= 1 {
		return 1, nil
	}

	// Only timestamps are sorted; cumulative difficulties keep chain order.
	timestamps := make([]uint64, length)
	for i, s := range series {
		timestamps[i] = s.Timestamp
	}
	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i] < timestamps[j] })

	kept := a.window - 2*a.cut
	cutBegin, cutEnd := 0, length
	if length > kept {
		cutBegin = (length - kept + 1) / 2
		cutEnd = cutBegin + kept
	}

	timeSpan := timestamps[cutEnd-1] - timestamps[cutBegin]
	if timeSpan == 0 {
		timeSpan = 1
	}

	first, last := series[cutBegin].CumulativeDifficulty, series[cutEnd-1].CumulativeDifficulty
	if last <= first {
		return 0, ErrNoWork
	}
	totalWork := last - first

	hi, lo := bits.Mul64(totalWork, a.target)
	sum, carry := bits.Add64(lo, timeSpan-1, 0)
	if hi != 0 || carry != 0 {
		return 0, ErrOverflow
	}
	return atLeastOne(sum / timeSpan), nil
}
