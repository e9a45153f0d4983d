// Package inter defines the consensus data structures of the chain: the
// transaction and the block, together with their canonical binary encoding.
//
// Key concepts:
//   - Transaction: a version, an unlock time, inputs, outputs, a free-form
//     extra field and one signature ring per key input
//   - BaseInput: the single input of a coinbase transaction, naming the
//     height the coins are minted at
//   - KeyInput: spends one amount from a ring of earlier outputs
//   - Output: an amount locked to a one-time (stealth) public key
//   - Block: a header plus the coinbase and the hashes of the included transactions
//
// Usage:
//
//	raw, err := tx.MarshalBinary()
//	size := len(raw)
//	hash := tx.Hash()
//
// The encoding is the canonical varint wire format shared by every node;
// hashes are Keccak-256 over it, so any divergence forks the chain.
package inter

import (
	"github.com/tychecash/go-tyche/crypto"
)

// Input is one of BaseInput or KeyInput.
type Input interface {
	// inputTag returns the wire tag that precedes the input body.
	inputTag() byte
}

// BaseInput is the only input of a coinbase transaction. It carries no
// amount: the outputs are minted at BlockIndex.
type BaseInput struct {
	BlockIndex uint32
}

// KeyInput spends Amount from one output of a ring. OutputIndexes are
// relative offsets into the global list of outputs of that amount; the
// KeyImage prevents the real output from being spent twice.
type KeyInput struct {
	Amount        uint64
	OutputIndexes []uint32
	KeyImage      crypto.KeyImage
}

func (BaseInput) inputTag() byte { return tagBaseInput }
func (KeyInput) inputTag() byte  { return tagKeyInput }

// Output locks Amount to a one-time public key only the receiver can
// recognize and spend.
type Output struct {
	Amount uint64
	Key    crypto.PublicKey
}

// Transaction is a transfer of value. The part without Signatures is
// the transaction prefix; wallets sign its hash.
type Transaction struct {
	Version uint8
	// UnlockTime is a block height below MaxBlockNumber, or a unix time
	// above it, before which the outputs cannot be spent.
	UnlockTime uint64
	Inputs     []Input
	Outputs    []Output
	// Extra holds tagged sub-fields, see extra.go.
	Extra []byte

	// Signatures holds one ring signature per input. Base inputs carry an
	// empty ring; a key input carries one signature per ring member.
	Signatures [][]crypto.Signature
}

// IsCoinbase reports whether tx is a miner transaction: exactly one input,
// and that input is a BaseInput.
func (tx *Transaction) IsCoinbase() bool {
	if len(tx.Inputs) != 1 {
		return false
	}
	_, ok := tx.Inputs[0].(BaseInput)
	return ok
}

// InputAmounts lists the amounts of all key inputs in order. Base inputs
// contribute nothing.
func (tx *Transaction) InputAmounts() []uint64 {
	amounts := make([]uint64, 0, len(tx.Inputs))
	for _, in := range tx.Inputs {
		if k, ok := in.(KeyInput); ok {
			amounts = append(amounts, k.Amount)
		}
	}
	return amounts
}

// OutputAmounts lists the output amounts in order.
func (tx *Transaction) OutputAmounts() []uint64 {
	amounts := make([]uint64, len(tx.Outputs))
	for i, out := range tx.Outputs {
		amounts[i] = out.Amount
	}
	return amounts
}

// OutputTotal sums the outputs. ok is false if the sum overflows uint64.
func (tx *Transaction) OutputTotal() (total uint64, ok bool) {
	for _, out := range tx.Outputs {
		next := total + out.Amount
		if next < total {
			return 0, false
		}
		total = next
	}
	return total, true
}
