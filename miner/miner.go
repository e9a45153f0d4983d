// Package miner builds coinbase transactions for candidate blocks.
package miner

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/log"

	"github.com/tychecash/go-tyche/address"
	"github.com/tychecash/go-tyche/crypto"
	"github.com/tychecash/go-tyche/emission"
	"github.com/tychecash/go-tyche/fusion"
	"github.com/tychecash/go-tyche/inter"
	"github.com/tychecash/go-tyche/tyche"
)

var (
	// ErrZeroMaxOutputs is returned when a request allows no outputs at all.
	ErrZeroMaxOutputs = errors.New("max outputs must be at least 1")
	// ErrHeightOutOfRange is returned for heights a base input cannot carry.
	ErrHeightOutOfRange = errors.New("height does not fit a base input")
	// ErrAmountMismatch is returned when the outputs do not sum to the reward.
	ErrAmountMismatch = errors.New("coinbase outputs do not sum to the block reward")
)

// Request describes the coinbase to build.
type Request struct {
	Height           idx.Block
	MedianSize       uint64
	AlreadyGenerated uint64
	CurrentBlockSize uint64
	Fee              uint64
	Address          address.AccountAddress
	// ExtraNonce is written into the extra field when not empty.
	ExtraNonce []byte
	// MaxOutputs bounds the number of outputs. Zero is rejected.
	MaxOutputs int
}

// Builder constructs coinbase transactions for one rule set.
type Builder struct {
	schedule      *emission.Schedule
	dustThreshold uint64
	unlockWindow  uint64
	entropy       io.Reader

	logger log.Logger
}

// NewBuilder returns a builder drawing transaction keys from crypto/rand.
func NewBuilder(rules tyche.Rules) *Builder {
	return NewBuilderWithEntropy(rules, rand.Reader)
}

// NewBuilderWithEntropy returns a builder drawing transaction keys from
// entropy. Deterministic readers make the output reproducible.
func NewBuilderWithEntropy(rules tyche.Rules, entropy io.Reader) *Builder {
	return &Builder{
		schedule:      emission.NewSchedule(rules),
		dustThreshold: rules.Economy.DustThreshold,
		unlockWindow:  rules.Economy.MinedMoneyUnlockWindow,
		entropy:       entropy,
		logger:        log.New("module", "miner"),
	}
}

// ConstructMinerTx builds the coinbase paying the block reward for req to
// req.Address. Nothing is returned unless every step succeeds.
func (b *Builder) ConstructMinerTx(req Request) (*inter.Transaction, error) {
	if req.MaxOutputs < 1 {
		return nil, ErrZeroMaxOutputs
	}
	if req.Height > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d", ErrHeightOutOfRange, req.Height)
	}

	txKey, err := crypto.GenerateKeyPair(b.entropy)
	if err != nil {
		return nil, err
	}
	extra := inter.AppendExtraPublicKey(nil, txKey.PublicKey)
	if len(req.ExtraNonce) > 0 {
		if extra, err = inter.AppendExtraNonce(extra, req.ExtraNonce); err != nil {
			return nil, err
		}
	}

	reward, err := b.schedule.BlockReward(req.MedianSize, req.CurrentBlockSize, req.AlreadyGenerated, req.Fee)
	if err != nil {
		b.logger.Debug("Cannot reward block", "height", req.Height, "size", req.CurrentBlockSize, "err", err)
		return nil, err
	}

	amounts := fusion.DecomposeAmount(reward.Reward, b.dustThreshold)
	for len(amounts) > req.MaxOutputs {
		last := len(amounts) - 1
		amounts[last-1] += amounts[last]
		amounts = amounts[:last]
	}

	derivation, err := crypto.GenerateKeyDerivation(req.Address.ViewPublicKey, txKey.SecretKey)
	if err != nil {
		b.logger.Error("Failed to generate key derivation", "view", req.Address.ViewPublicKey, "err", err)
		return nil, err
	}
	outputs := make([]inter.Output, 0, len(amounts))
	var sum uint64
	for i, amount := range amounts {
		key, err := crypto.DerivePublicKey(derivation, uint64(i), req.Address.SpendPublicKey)
		if err != nil {
			b.logger.Error("Failed to derive output key", "index", i, "spend", req.Address.SpendPublicKey, "err", err)
			return nil, err
		}
		outputs = append(outputs, inter.Output{Amount: amount, Key: key})
		sum += amount
	}
	if sum != reward.Reward {
		b.logger.Error("Failed to construct miner tx", "sum", sum, "reward", reward.Reward)
		return nil, fmt.Errorf("%w: %d != %d", ErrAmountMismatch, sum, reward.Reward)
	}

	return &inter.Transaction{
		Version:    tyche.CurrentTransactionVersion,
		UnlockTime: uint64(req.Height) + b.unlockWindow,
		Inputs:     []inter.Input{inter.BaseInput{BlockIndex: uint32(req.Height)}},
		Outputs:    outputs,
		Extra:      extra,
	}, nil
}
