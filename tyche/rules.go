// Package tyche defines the consensus rules of the TycheCash networks.
//
// This package provides:
//   - Network identification (MainNet, TestNet) and the static rule tables
//   - Economy rules: money supply, emission curve, decimal places, dust
//   - Block rules: full-reward zone, size growth cap, time limits
//   - Difficulty rules for every retargeting generation and their upgrade heights
//   - Fusion transaction thresholds
//   - Address prefix and auxiliary storage file names
//
// The Rules type is a plain value. It is validated once (see Validate) and
// never mutated afterwards, so any number of goroutines may read it.
package tyche

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common/math"
)

const (
	// MainNetName and TestNetName select a rule table in RulesByName.
	MainNetName = "main"
	TestNetName = "test"

	// TestnetFilePrefix is prepended to the auxiliary file names on testnet.
	TestnetFilePrefix = "testnet_"

	// DifficultyTarget is the expected number of seconds between blocks.
	DifficultyTarget = 120

	// CurrentTransactionVersion is written into every new transaction.
	CurrentTransactionVersion = 1

	// BlockMajorVersion1 and BlockMinorVersion0 stamp the genesis block.
	BlockMajorVersion1 = 1
	BlockMinorVersion0 = 0

	// MaxDecimalPlaces keeps 10^places inside a uint64.
	MaxDecimalPlaces = 19

	// MaxDifficultyWindow and MaxDifficultyTarget bound the retargeting
	// parameters. Within them every weighted solve-time sum and scale
	// factor of the difficulty algorithms fits 64 bits, so only the
	// products with the caller's total work can overflow.
	MaxDifficultyWindow = 1 << 16
	MaxDifficultyTarget = 1 << 20
)

var (
	// ErrInvalidRules wraps every rule invariant violation.
	ErrInvalidRules = errors.New("invalid consensus rules")
	// ErrSizeOverflow is returned when a size computation leaves uint64.
	ErrSizeOverflow = errors.New("block size overflows uint64")
	// ErrUnknownNetwork is returned by RulesByName.
	ErrUnknownNetwork = errors.New("unknown network")
)

// Rules describes the complete consensus configuration of one network.
type Rules struct {
	Name    string // Network name identifier ("main", "test")
	Testnet bool

	Economy    EconomyRules
	Blocks     BlocksRules
	Difficulty DifficultyRules
	Fusion     FusionRules
	Mempool    MempoolRules
	Address    AddressRules
	Files      FileNames
}

// EconomyRules governs emission and the value of a coin.
type EconomyRules struct {
	// MoneySupply is the total number of atomic units ever emitted.
	MoneySupply uint64
	// EmissionSpeedFactor is the right shift applied to the remaining supply
	// to get the base reward of a block. Must lie in (0, 64].
	EmissionSpeedFactor uint
	// DecimalPlaces is the number of fraction digits of a display coin.
	DecimalPlaces uint
	MinimumFee    uint64
	// DustThreshold is the largest amount still considered dust.
	DustThreshold uint64
	// MinedMoneyUnlockWindow is the number of blocks a coinbase stays locked.
	MinedMoneyUnlockWindow uint64
}

// BlocksRules contains block size and timing limits.
type BlocksRules struct {
	MaxBlockNumber idx.Block
	MaxBlobSize    uint64
	MaxTxSize      uint64
	// FullRewardZone is the median size below which no penalty applies.
	FullRewardZone uint64
	// RewardWindow is the number of blocks the size median is taken over.
	RewardWindow uint64
	// MinerTxBlobReservedSize is reserved in templates for the coinbase.
	MinerTxBlobReservedSize uint64

	// Cumulative size cap: MaxSizeInitial + height*GrowthNumerator/GrowthDenominator.
	MaxSizeInitial    uint64
	GrowthNumerator   uint64
	GrowthDenominator uint64

	TimestampCheckWindow uint64
	// FutureTimeLimit is how far, in seconds, a block timestamp may run ahead.
	FutureTimeLimit uint64
}

// DifficultyRules parameterize the five retargeting generations.
type DifficultyRules struct {
	// Target is the desired block interval in seconds.
	Target uint64

	// Window, Lag and Cut drive the trimmed-mean and weighted-average
	// algorithms. 2*Cut <= Window-2 must hold.
	Window uint64
	Lag    uint64
	Cut    uint64

	// LWMAWindow is N, the number of solve times averaged by LWMA.
	LWMAWindow uint64
	// LWMA2Window and LWMA2RetuneWindow are the sample counts (N+1) of LWMA-2
	// before and after the retune.
	LWMA2Window       uint64
	LWMA2RetuneWindow uint64
	// FutureTimeLimit bounds negative solve times in LWMA-2.
	FutureTimeLimit uint64

	// Heights at which each later generation activates.
	Upgrades DifficultyUpgrades
}

// DifficultyUpgrades lists activation heights of difficulty generations 2..5.
// Generation 1 is active from genesis.
type DifficultyUpgrades struct {
	V2 idx.Block
	V3 idx.Block
	V4 idx.Block
	V5 idx.Block
}

// FusionRules define when a fee-less consolidation transaction is accepted.
type FusionRules struct {
	MaxSize            uint64
	MinInputCount      uint64
	MinInOutCountRatio uint64
}

// MempoolRules contains pool lifetimes and locked transaction tolerances.
type MempoolRules struct {
	TxLiveTime                       uint64
	TxFromAltBlockLiveTime           uint64
	NumberOfPeriodsToForgetTxDeleted uint64
	LockedTxAllowedDeltaSeconds      uint64
	LockedTxAllowedDeltaBlocks       uint64
}

// AddressRules carry the base58 network tag.
type AddressRules struct {
	// Prefix is varint-encoded at the front of every address.
	Prefix uint64
}

// FileNames of the auxiliary storage files.
type FileNames struct {
	Blocks       string
	BlocksCache  string
	BlockIndexes string
	TxPool       string
}

// MainNetRules returns the rules of the production network.
func MainNetRules() Rules {
	return Rules{
		Name:       MainNetName,
		Economy:    DefaultEconomyRules(),
		Blocks:     DefaultBlocksRules(),
		Difficulty: DefaultDifficultyRules(),
		Fusion:     DefaultFusionRules(),
		Mempool:    DefaultMempoolRules(),
		Address:    AddressRules{Prefix: 0x2ca6},
		Files:      DefaultFileNames(),
	}
}

// TestNetRules returns the test network rules. They differ from mainnet
// only by the testnet flag; the file names are prefixed at initialization.
func TestNetRules() Rules {
	r := MainNetRules()
	r.Name = TestNetName
	r.Testnet = true
	return r
}

// RulesByName returns the static rule table of a network.
func RulesByName(name string) (Rules, error) {
	switch name {
	case MainNetName, "mainnet":
		return MainNetRules(), nil
	case TestNetName, "testnet":
		return TestNetRules(), nil
	}
	return Rules{}, fmt.Errorf("%w: %q", ErrUnknownNetwork, name)
}

// DefaultEconomyRules returns the emission parameters.
func DefaultEconomyRules() EconomyRules {
	return EconomyRules{
		MoneySupply:            math.MaxUint64,
		EmissionSpeedFactor:    20,
		DecimalPlaces:          8,
		MinimumFee:             1000000, // 0.01 coin
		DustThreshold:          1000000,
		MinedMoneyUnlockWindow: 10,
	}
}

// DefaultBlocksRules returns the block limits.
func DefaultBlocksRules() BlocksRules {
	return BlocksRules{
		MaxBlockNumber:          500000000,
		MaxBlobSize:             500000000,
		MaxTxSize:               1000000000,
		FullRewardZone:          100000,
		RewardWindow:            100,
		MinerTxBlobReservedSize: 600,
		MaxSizeInitial:          1000000,
		GrowthNumerator:         100 * 1024,
		GrowthDenominator:       365 * 24 * 60 * 60 / DifficultyTarget,
		TimestampCheckWindow:    60,
		FutureTimeLimit:         60 * 60 * 2,
	}
}

// DefaultDifficultyRules returns the retargeting parameters.
func DefaultDifficultyRules() DifficultyRules {
	return DifficultyRules{
		Target:            DifficultyTarget,
		Window:            720, // one day of blocks
		Lag:               15,
		Cut:               60,
		LWMAWindow:        60,
		LWMA2Window:       61,
		LWMA2RetuneWindow: 91,
		FutureTimeLimit:   3*DifficultyTarget - 30,
		Upgrades: DifficultyUpgrades{
			V2: 20000,
			V3: 60000,
			V4: 110000,
			V5: 250000,
		},
	}
}

// DefaultFusionRules returns the fusion thresholds. The size cap is 30% of
// the full reward zone.
func DefaultFusionRules() FusionRules {
	return FusionRules{
		MaxSize:            DefaultBlocksRules().FullRewardZone * 30 / 100,
		MinInputCount:      12,
		MinInOutCountRatio: 4,
	}
}

// DefaultMempoolRules returns pool lifetimes.
func DefaultMempoolRules() MempoolRules {
	return MempoolRules{
		TxLiveTime:                       60 * 60 * 24,
		TxFromAltBlockLiveTime:           60 * 60 * 24 * 7,
		NumberOfPeriodsToForgetTxDeleted: 7,
		LockedTxAllowedDeltaSeconds:      DifficultyTarget * 1,
		LockedTxAllowedDeltaBlocks:       1,
	}
}

// DefaultFileNames returns the mainnet storage file names.
func DefaultFileNames() FileNames {
	return FileNames{
		Blocks:       "blocks.bin",
		BlocksCache:  "blockscache.bin",
		BlockIndexes: "blockindexes.bin",
		TxPool:       "poolstate.bin",
	}
}

// WithPrefix returns the file names with prefix prepended to each.
func (f FileNames) WithPrefix(prefix string) FileNames {
	return FileNames{
		Blocks:       prefix + f.Blocks,
		BlocksCache:  prefix + f.BlocksCache,
		BlockIndexes: prefix + f.BlockIndexes,
		TxPool:       prefix + f.TxPool,
	}
}

// Coin returns the number of atomic units in one display coin, 10^DecimalPlaces.
func (e EconomyRules) Coin() uint64 {
	coin := uint64(1)
	for i := uint(0); i < e.DecimalPlaces; i++ {
		coin *= 10
	}
	return coin
}

// MaxCumulativeSize returns the largest cumulative block size allowed at
// height: MaxSizeInitial + height*GrowthNumerator/GrowthDenominator, with
// floor division. Overflow of either step yields ErrSizeOverflow.
func (b BlocksRules) MaxCumulativeSize(height idx.Block) (uint64, error) {
	grown, overflow := math.SafeMul(uint64(height), b.GrowthNumerator)
	if overflow {
		return 0, fmt.Errorf("%w: height %d", ErrSizeOverflow, height)
	}
	size, overflow := math.SafeAdd(b.MaxSizeInitial, grown/b.GrowthDenominator)
	if overflow {
		return 0, fmt.Errorf("%w: height %d", ErrSizeOverflow, height)
	}
	return size, nil
}

// Copy returns a copy of the rules. Rules holds no reference types, so a
// value copy is already deep; Copy exists so callers never need to know.
func (r Rules) Copy() Rules {
	return r
}

// String returns a JSON representation of Rules for debugging and logging.
func (r Rules) String() string {
	b, _ := json.Marshal(&r)
	return string(b)
}
