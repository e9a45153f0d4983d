// Package emission implements the coin emission curve and the block-size
// penalty applied to the reward of oversized blocks.
//
// The base reward of a block is the remaining supply shifted right by the
// emission speed factor, so it decays geometrically as coins are minted.
// Blocks larger than the effective median size lose part of their reward
// and fee quadratically; blocks over twice the median are invalid.
package emission

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	"github.com/ethereum/go-ethereum/log"

	"github.com/tychecash/go-tyche/tyche"
)

var (
	// ErrBlockTooBig is returned when the block exceeds twice the effective median.
	ErrBlockTooBig = errors.New("block cumulative size is too big")
	// ErrSupplyExceeded is returned when the generated coins exceed the money supply.
	ErrSupplyExceeded = errors.New("already generated coins exceed money supply")
	// ErrSizeOutOfRange is returned for a median above 2^32-1.
	ErrSizeOutOfRange = errors.New("median size out of range")
	// ErrRewardOverflow is returned when reward plus fee does not fit uint64.
	ErrRewardOverflow = errors.New("block reward overflows uint64")
)

// Reward is the outcome of BlockReward.
type Reward struct {
	// Reward is what the coinbase may claim: penalized base reward plus
	// penalized fee.
	Reward uint64
	// EmissionChange is the net change of the circulating supply. It is
	// negative when the burnt part of the fee exceeds the new coins.
	EmissionChange int64
}

// Schedule computes block rewards for one rule set. It holds no mutable
// state and is safe for concurrent use.
type Schedule struct {
	supply         uint64
	speedFactor    uint
	fullRewardZone uint64

	logger log.Logger
}

// NewSchedule returns the emission schedule of rules.
func NewSchedule(rules tyche.Rules) *Schedule {
	return &Schedule{
		supply:         rules.Economy.MoneySupply,
		speedFactor:    rules.Economy.EmissionSpeedFactor,
		fullRewardZone: rules.Blocks.FullRewardZone,
		logger:         log.New("module", "emission"),
	}
}

// BaseReward returns (supply - alreadyGenerated) >> speedFactor.
func (s *Schedule) BaseReward(alreadyGenerated uint64) (uint64, error) {
	if alreadyGenerated > s.supply {
		return 0, fmt.Errorf("%w: %d > %d", ErrSupplyExceeded, alreadyGenerated, s.supply)
	}
	return (s.supply - alreadyGenerated) >> s.speedFactor, nil
}

// EffectiveMedian floors the median block size at the full reward zone.
func (s *Schedule) EffectiveMedian(medianSize uint64) uint64 {
	if medianSize < s.fullRewardZone {
		return s.fullRewardZone
	}
	return medianSize
}

// BlockReward returns the reward a block of currentBlockSize may claim
// given the median size of recent blocks, the coins minted so far and the
// fees of the included transactions. The same penalty is applied to the
// base reward and to the fee.
func (s *Schedule) BlockReward(medianSize, currentBlockSize, alreadyGenerated, fee uint64) (Reward, error) {
	baseReward, err := s.BaseReward(alreadyGenerated)
	if err != nil {
		return Reward{}, err
	}

	median := s.EffectiveMedian(medianSize)
	if median > math.MaxUint32 {
		return Reward{}, fmt.Errorf("%w: %d", ErrSizeOutOfRange, median)
	}
	if currentBlockSize > 2*median {
		s.logger.Trace("Block cumulative size is too big", "size", currentBlockSize, "limit", 2*median)
		return Reward{}, fmt.Errorf("%w: %d, expected at most %d", ErrBlockTooBig, currentBlockSize, 2*median)
	}

	penalizedBase := penalize(baseReward, median, currentBlockSize)
	penalizedFee := penalize(fee, median, currentBlockSize)

	reward, carry := bits.Add64(penalizedBase, penalizedFee, 0)
	if carry != 0 {
		return Reward{}, ErrRewardOverflow
	}
	return Reward{
		Reward:         reward,
		EmissionChange: int64(penalizedBase - (fee - penalizedFee)),
	}, nil
}

// PenalizedAmount scales amount by size*(2*median-size)/median^2 when
// size exceeds median, rounding down. The median must fit 32 bits and size
// must not exceed twice the median.
func PenalizedAmount(amount, medianSize, currentBlockSize uint64) (uint64, error) {
	if medianSize > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d", ErrSizeOutOfRange, medianSize)
	}
	if currentBlockSize > 2*medianSize {
		return 0, fmt.Errorf("%w: %d, expected at most %d", ErrBlockTooBig, currentBlockSize, 2*medianSize)
	}
	return penalize(amount, medianSize, currentBlockSize), nil
}

// penalize assumes medianSize < 2^32 and currentBlockSize <= 2*medianSize,
// so the factor size*(2m-size) <= m^2 fits 64 bits and the result is
// below amount.
func penalize(amount, medianSize, currentBlockSize uint64) uint64 {
	if amount == 0 {
		return 0
	}
	if currentBlockSize <= medianSize {
		return amount
	}
	factor := currentBlockSize * (2*medianSize - currentBlockSize)
	hi, lo := bits.Mul64(amount, factor)

	// Two successive floor divisions by the median equal one floor
	// division by median^2.
	hi, lo = div128by64(hi, lo, medianSize)
	_, lo = div128by64(hi, lo, medianSize)
	return lo
}

// div128by64 returns the 128-bit quotient of (hi, lo) / d.
func div128by64(hi, lo, d uint64) (qhi, qlo uint64) {
	qhi = hi / d
	qlo, _ = bits.Div64(hi%d, lo, d)
	return qhi, qlo
}
