// Package fusion classifies fusion transactions: fee-less transactions
// that consolidate many small inputs into a few canonical denominations.
//
// It also owns amount decomposition, the split of a value into
// denominations of the form d*10^k used by every coinbase and fusion output
// set.
package fusion

import (
	"sort"
)

// PrettyAmounts lists every canonical denomination d*10^k with d in [1,9]
// and k in [0,18], followed by 10^19, in ascending order. The index of an
// amount divided by 9 is its power of ten.
var PrettyAmounts = buildPrettyAmounts()

func buildPrettyAmounts() []uint64 {
	amounts := make([]uint64, 0, 19*9+1)
	for order := uint64(1); len(amounts) < 19*9; order *= 10 {
		for d := uint64(1); d <= 9; d++ {
			amounts = append(amounts, d*order)
		}
	}
	return append(amounts, 10000000000000000000)
}

// DecomposeAmount splits amount into one chunk per non-zero decimal digit,
// largest first. Low digits are folded into a single dust chunk, placed
// last, for as long as their running sum stays within dustThreshold. The
// chunks always sum to amount; zero yields no chunks.
func DecomposeAmount(amount, dustThreshold uint64) []uint64 {
	var (
		chunks []uint64
		dust   uint64
		// dustDone is set once a chunk overflowed the dust threshold; no
		// later digit can join the dust.
		dustDone bool
	)
	for order := uint64(1); amount != 0; order *= 10 {
		chunk := (amount % 10) * order
		amount /= 10
		if !dustDone && dust+chunk <= dustThreshold {
			dust += chunk
			continue
		}
		dustDone = true
		if chunk != 0 {
			chunks = append(chunks, chunk)
		}
	}

	// Digits were produced smallest first.
	for i, j := 0, len(chunks)-1; i < j; i, j = i+1, j-1 {
		chunks[i], chunks[j] = chunks[j], chunks[i]
	}
	if dust != 0 {
		chunks = append(chunks, dust)
	}
	return chunks
}

// IsPrettyAmount reports whether amount is a canonical denomination and
// returns its power of ten.
func IsPrettyAmount(amount uint64) (powerOfTen uint8, ok bool) {
	i := sort.Search(len(PrettyAmounts), func(i int) bool { return PrettyAmounts[i] >= amount })
	if i == len(PrettyAmounts) || PrettyAmounts[i] != amount {
		return 0, false
	}
	return uint8(i / 9), true
}
