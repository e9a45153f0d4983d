// Package currency assembles the consensus components of one network behind
// a single immutable value.
//
// A node builds a Currency once at startup:
//
//	cur, err := currency.New(tyche.MainNetRules(), nil)
//
// and then, for every candidate block, asks it for the difficulty, the
// reward and the coinbase. New validates the rules, builds the genesis
// block and caches its hash. Nothing is mutated afterwards, so the value
// may be shared between goroutines without locking.
package currency

import (
	"fmt"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/tychecash/go-tyche/address"
	"github.com/tychecash/go-tyche/amount"
	"github.com/tychecash/go-tyche/difficulty"
	"github.com/tychecash/go-tyche/emission"
	"github.com/tychecash/go-tyche/fusion"
	"github.com/tychecash/go-tyche/inter"
	"github.com/tychecash/go-tyche/miner"
	"github.com/tychecash/go-tyche/tyche"
	"github.com/tychecash/go-tyche/tyche/genesis"
)

// Currency is the initialized consensus core of a network.
type Currency struct {
	rules tyche.Rules
	files tyche.FileNames

	genesis     inter.Block
	genesisHash common.Hash

	schedule   *emission.Schedule
	fusion     *fusion.Validator
	miner      *miner.Builder
	addresses  *address.Codec
	amounts    *amount.Formatter
	algorithms map[difficulty.Version]difficulty.Algorithm

	logger log.Logger
}

// New validates rules and initializes the currency. A nil logger selects
// the root logger tagged with the module name.
func New(rules tyche.Rules, logger log.Logger) (*Currency, error) {
	if logger == nil {
		logger = log.New("module", "currency")
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	rules = rules.Copy()

	block, err := genesis.Build(rules)
	if err != nil {
		logger.Error("Failed to generate genesis block", "err", err)
		return nil, err
	}
	hash, err := block.Hash()
	if err != nil {
		logger.Error("Failed to get genesis block hash", "err", err)
		return nil, err
	}

	files := rules.Files
	if rules.Testnet {
		files = files.WithPrefix(tyche.TestnetFilePrefix)
	}

	algorithms := make(map[difficulty.Version]difficulty.Algorithm, 5)
	for v := difficulty.V1; v <= difficulty.V5; v++ {
		if algorithms[v], err = difficulty.New(v, rules.Difficulty); err != nil {
			return nil, err
		}
	}

	c := &Currency{
		rules:       rules,
		files:       files,
		genesis:     *block,
		genesisHash: hash,
		schedule:    emission.NewSchedule(rules),
		fusion:      fusion.NewValidator(rules),
		miner:       miner.NewBuilder(rules),
		addresses:   address.NewCodec(rules.Address.Prefix),
		amounts:     amount.NewFormatter(rules.Economy),
		algorithms:  algorithms,
		logger:      logger,
	}
	logger.Debug("Currency initialized", "network", rules.Name, "genesis", hash)
	return c, nil
}

// Rules returns a copy of the validated rules.
func (c *Currency) Rules() tyche.Rules {
	return c.rules.Copy()
}

// Files returns the auxiliary storage file names, prefixed on testnet.
func (c *Currency) Files() tyche.FileNames {
	return c.files
}

// GenesisBlock returns a copy of the genesis block.
func (c *Currency) GenesisBlock() inter.Block {
	b := c.genesis
	b.BaseTransaction.Inputs = append([]inter.Input(nil), b.BaseTransaction.Inputs...)
	b.BaseTransaction.Outputs = append([]inter.Output(nil), b.BaseTransaction.Outputs...)
	b.BaseTransaction.Extra = append([]byte(nil), b.BaseTransaction.Extra...)
	return b
}

// GenesisBlockHash returns the hash computed at initialization.
func (c *Currency) GenesisBlockHash() common.Hash {
	return c.genesisHash
}

// Coin returns the number of atomic units in one coin.
func (c *Currency) Coin() uint64 {
	return c.rules.Economy.Coin()
}

// MaxBlockCumulativeSize returns the size cap of the block at height.
func (c *Currency) MaxBlockCumulativeSize(height idx.Block) (uint64, error) {
	return c.rules.Blocks.MaxCumulativeSize(height)
}

// BlockReward is emission.Schedule.BlockReward for this network.
func (c *Currency) BlockReward(medianSize, currentBlockSize, alreadyGenerated, fee uint64) (emission.Reward, error) {
	return c.schedule.BlockReward(medianSize, currentBlockSize, alreadyGenerated, fee)
}

// DifficultyAlgorithm returns the retargeting algorithm in force at height.
func (c *Currency) DifficultyAlgorithm(height idx.Block) difficulty.Algorithm {
	return c.algorithms[difficulty.VersionAt(c.rules.Difficulty, height)]
}

// NextDifficulty computes the difficulty of the block at height from the
// history preceding it. The trimmed-mean and weighted-average generations
// skip the configured lag of most recent samples.
func (c *Currency) NextDifficulty(height idx.Block, series difficulty.Series) (uint64, error) {
	algo := c.DifficultyAlgorithm(height)
	if v := algo.Version(); v == difficulty.V1 || v == difficulty.V2 {
		series = series.Lagged(c.rules.Difficulty.Lag)
	}
	d, err := algo.Next(series)
	if err != nil {
		c.logger.Debug("Cannot compute difficulty", "height", height, "algorithm", algo.Version(), "err", err)
		return 0, fmt.Errorf("difficulty at %d: %w", height, err)
	}
	return d, nil
}

// CheckProofOfWork reports whether block satisfies difficulty under hasher.
func (c *Currency) CheckProofOfWork(hasher difficulty.PowHasher, block *inter.Block, diff uint64) (bool, error) {
	ok, hash, err := difficulty.CheckProofOfWork(hasher, block, diff)
	if err != nil {
		return false, err
	}
	if !ok {
		c.logger.Trace("Block has insufficient proof of work", "pow", hash, "difficulty", diff)
	}
	return ok, nil
}

// ConstructMinerTx builds the coinbase for a candidate block.
func (c *Currency) ConstructMinerTx(req miner.Request) (*inter.Transaction, error) {
	return c.miner.ConstructMinerTx(req)
}

// IsFusionTransaction applies the fusion rules to bare amounts.
func (c *Currency) IsFusionTransaction(inputs, outputs []uint64, size uint64) bool {
	return c.fusion.IsFusionTransaction(inputs, outputs, size)
}

// IsFusionTx applies the fusion rules to a transaction.
func (c *Currency) IsFusionTx(tx *inter.Transaction) (bool, error) {
	return c.fusion.IsFusionTx(tx)
}

// IsAmountApplicableInFusionTransactionInput reports whether a wallet may
// feed amount to a fusion transaction bounded by threshold.
func (c *Currency) IsAmountApplicableInFusionTransactionInput(amount, threshold uint64) (uint8, bool) {
	return c.fusion.IsAmountApplicableInFusionTransactionInput(amount, threshold)
}

// ApproximateMaximumInputCount estimates the inputs fitting a transaction.
func (c *Currency) ApproximateMaximumInputCount(txSize, outputCount, mixin uint64) uint64 {
	return c.fusion.ApproximateMaximumInputCount(txSize, outputCount, mixin)
}

// AccountAddressAsString encodes addr with the network prefix.
func (c *Currency) AccountAddressAsString(addr address.AccountAddress) string {
	return c.addresses.Encode(addr)
}

// ParseAccountAddressString decodes an address of this network.
func (c *Currency) ParseAccountAddressString(s string) (address.AccountAddress, error) {
	addr, err := c.addresses.Decode(s)
	if err != nil {
		c.logger.Trace("Wrong address", "address", s, "err", err)
	}
	return addr, err
}

// FormatAmount renders atomic units as a decimal coin amount.
func (c *Currency) FormatAmount(v uint64) string {
	return c.amounts.Format(v)
}

// FormatSignedAmount is FormatAmount for signed values.
func (c *Currency) FormatSignedAmount(v int64) string {
	return c.amounts.FormatSigned(v)
}

// ParseAmount reads a decimal coin amount.
func (c *Currency) ParseAmount(s string) (uint64, error) {
	return c.amounts.Parse(s)
}
