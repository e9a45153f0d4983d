// Package difficulty implements the five generations of difficulty
// retargeting used over the history of the chain, and the proof-of-work
// check against a target difficulty.
//
// Each generation is an Algorithm. The caller picks one per block height
// with VersionAt, so replaying old blocks always uses the rule that was in
// force when they were mined:
//
//	alg, err := difficulty.ForHeight(rules.Difficulty, height)
//	next, err := alg.Next(series)
//
// Every algorithm is a pure function of its input: no state is kept between
// calls and any number of goroutines may share one Algorithm.
package difficulty

import (
	"errors"
	"fmt"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/tychecash/go-tyche/tyche"
)

var (
	// ErrOverflow is returned when an intermediate product does not fit
	// 128 bits or the result does not fit 64 bits. It is never folded into
	// a numeric result.
	ErrOverflow = errors.New("difficulty computation overflow")
	// ErrNoWork is returned when the cumulative difficulty does not grow
	// across the series.
	ErrNoWork = errors.New("cumulative difficulty does not increase")
	// ErrUnknownVersion is returned by New for an unsupported generation.
	ErrUnknownVersion = errors.New("unknown difficulty algorithm version")
)

// Version identifies a difficulty algorithm generation.
type Version uint8

const (
	V1 Version = 1 + iota // trimmed mean
	V2                    // weighted average
	V3                    // LWMA
	V4                    // LWMA-2
	V5                    // LWMA-2, retuned window
)

func (v Version) String() string {
	switch v {
	case V1:
		return "v1 (trimmed mean)"
	case V2:
		return "v2 (weighted average)"
	case V3:
		return "v3 (LWMA)"
	case V4:
		return "v4 (LWMA-2)"
	case V5:
		return "v5 (LWMA-2 retune)"
	}
	return fmt.Sprintf("v%d (unknown)", uint8(v))
}

// Sample is one block of the history: its timestamp and the cumulative
// difficulty of the chain up to and including it.
type Sample struct {
	Timestamp            uint64 `json:"timestamp"`
	CumulativeDifficulty uint64 `json:"cumulativeDifficulty"`
}

// Series is a block history ordered oldest first.
type Series []Sample

// Recent returns the last n samples of s, or s itself when it is shorter.
func (s Series) Recent(n int) Series {
	if len(s) > n {
		return s[len(s)-n:]
	}
	return s
}

// Lagged drops the lag most recent samples. Callers of the V1 and V2
// algorithms pass a lagged series so fresh, easily manipulated timestamps
// do not take part in retargeting.
func (s Series) Lagged(lag uint64) Series {
	if uint64(len(s)) <= lag {
		return nil
	}
	return s[:uint64(len(s))-lag]
}

// Algorithm computes the difficulty of the next block from the recent history.
type Algorithm interface {
	// Version returns the generation this algorithm implements.
	Version() Version
	// Window returns the number of most recent samples Next looks at.
	// Older samples are ignored.
	Window() int
	// Next returns the difficulty of the block following series. Results
	// are at least 1; a series of at most one sample yields exactly 1.
	Next(series Series) (uint64, error)
}

// New returns the algorithm of the given generation configured by rules.
func New(version Version, rules tyche.DifficultyRules) (Algorithm, error) {
	switch version {
	case V1:
		return &TrimmedMean{window: int(rules.Window), cut: int(rules.Cut), target: rules.Target}, nil
	case V2:
		return &WeightedAverage{window: int(rules.Window), target: rules.Target}, nil
	case V3:
		return &LWMA{n: int(rules.LWMAWindow), target: rules.Target}, nil
	case V4:
		return &LWMA2{version: V4, window: int(rules.LWMA2Window), target: rules.Target, ftl: rules.FutureTimeLimit}, nil
	case V5:
		return &LWMA2{version: V5, window: int(rules.LWMA2RetuneWindow), target: rules.Target, ftl: rules.FutureTimeLimit}, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownVersion, version)
}

// VersionAt returns the generation in force at height.
func VersionAt(rules tyche.DifficultyRules, height idx.Block) Version {
	u := rules.Upgrades
	switch {
	case height >= u.V5:
		return V5
	case height >= u.V4:
		return V4
	case height >= u.V3:
		return V3
	case height >= u.V2:
		return V2
	}
	return V1
}

// ForHeight returns the algorithm in force at height.
func ForHeight(rules tyche.DifficultyRules, height idx.Block) (Algorithm, error) {
	return New(VersionAt(rules, height), rules)
}

func atLeastOne(d uint64) uint64 {
	if d < 1 {
		return 1
	}
	return d
}
