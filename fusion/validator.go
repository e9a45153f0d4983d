package fusion

import (
	"sort"

	"github.com/ethereum/go-ethereum/log"

	"github.com/tychecash/go-tyche/inter"
	"github.com/tychecash/go-tyche/tyche"
)

// Serialized sizes used to estimate how many inputs fit a transaction.
const (
	keyImageSize         = 32
	outputKeySize        = 32
	amountSize           = 8 + 2 // varint
	globalIndexCountSize = 1     // varint
	globalIndexFirstSize = 4     // varint
	globalIndexDiffSize  = 4     // varint
	signatureSize        = 64
	extraTagSize         = 1
	inputTagSize         = 1
	outputTagSize        = 1
	publicKeySize        = 32
	txVersionSize        = 1
	txUnlockTimeSize     = 8
)

// Validator applies the fusion rules of one network. It is immutable and
// safe for concurrent use.
type Validator struct {
	maxSize       uint64
	minInputCount uint64
	minRatio      uint64
	dustThreshold uint64

	logger log.Logger
}

// NewValidator returns the fusion validator of rules.
func NewValidator(rules tyche.Rules) *Validator {
	return &Validator{
		maxSize:       rules.Fusion.MaxSize,
		minInputCount: rules.Fusion.MinInputCount,
		minRatio:      rules.Fusion.MinInOutCountRatio,
		dustThreshold: rules.Economy.DustThreshold,
		logger:        log.New("module", "fusion"),
	}
}

// IsFusionTransaction reports whether a transaction with the given input
// and output amounts and encoded size is a fusion transaction:
//   - size is at most the fusion size limit
//   - there are at least the minimum number of inputs
//   - there are at least ratio times as many inputs as outputs
//   - no input is below the dust threshold
//   - the outputs are exactly the decomposition of the input sum
func (v *Validator) IsFusionTransaction(inputs, outputs []uint64, size uint64) bool {
	if size > v.maxSize {
		return false
	}
	inputCount := uint64(len(inputs))
	if inputCount < v.minInputCount {
		return false
	}
	if inputCount < uint64(len(outputs))*v.minRatio {
		return false
	}

	var sum uint64
	for _, amount := range inputs {
		if amount < v.dustThreshold {
			return false
		}
		next := sum + amount
		if next < sum {
			return false
		}
		sum = next
	}

	expected := DecomposeAmount(sum, v.dustThreshold)
	if len(expected) != len(outputs) {
		return false
	}
	actual := append([]uint64{}, outputs...)
	sort.Slice(expected, func(i, j int) bool { return expected[i] < expected[j] })
	sort.Slice(actual, func(i, j int) bool { return actual[i] < actual[j] })
	for i := range expected {
		if expected[i] != actual[i] {
			return false
		}
	}
	return true
}

// IsFusionTx checks a whole transaction, measuring its size with the
// binary encoding. Base inputs disqualify a transaction.
func (v *Validator) IsFusionTx(tx *inter.Transaction) (bool, error) {
	size, err := tx.Size()
	if err != nil {
		return false, err
	}
	inputs := tx.InputAmounts()
	if len(inputs) != len(tx.Inputs) {
		return false, nil
	}
	ok := v.IsFusionTransaction(inputs, tx.OutputAmounts(), size)
	if !ok {
		v.logger.Trace("Not a fusion transaction", "inputs", len(inputs), "outputs", len(tx.Outputs), "size", size)
	}
	return ok, nil
}

// IsAmountApplicableInFusionTransactionInput reports whether amount may be
// consolidated by a fusion transaction with the given upper threshold: it
// lies in [dustThreshold, threshold) and is a canonical denomination. The
// power of ten of the amount is returned for wallet heuristics.
func (v *Validator) IsAmountApplicableInFusionTransactionInput(amount, threshold uint64) (powerOfTen uint8, ok bool) {
	if amount >= threshold || amount < v.dustThreshold {
		return 0, false
	}
	return IsPrettyAmount(amount)
}

// ApproximateMaximumInputCount estimates how many inputs of the given ring
// size (mixin) fit a transaction of txSize bytes with outputCount outputs.
func (v *Validator) ApproximateMaximumInputCount(txSize, outputCount, mixin uint64) uint64 {
	outputsSize := outputCount * (outputTagSize + outputKeySize + amountSize)
	headerSize := uint64(txVersionSize + txUnlockTimeSize + extraTagSize + publicKeySize)
	inputSize := inputTagSize + amountSize + keyImageSize + signatureSize + globalIndexCountSize + globalIndexFirstSize +
		mixin*(globalIndexDiffSize+signatureSize)

	if txSize < headerSize+outputsSize {
		return 0
	}
	return (txSize - headerSize - outputsSize) / inputSize
}
