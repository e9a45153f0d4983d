package inter

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tychecash/go-tyche/crypto"
	"github.com/tychecash/go-tyche/utils/fast"
)

/*
	This file implements the canonical binary encoding of transactions.

	Layout (all integers are LEB128 varints unless noted):

	version
	unlockTime
	inputCount, then per input a tag byte and its body:
	    0xff base input: blockIndex
	    0x02 key input:  amount, offsetCount, offsets..., keyImage (32 bytes)
	outputCount, then per output: amount, 0x02, key (32 bytes)
	extraSize, extra bytes
	per input: its signatures (64 bytes each, no count prefix)

	The signature count of every input is implied by the prefix: zero for a
	base input, len(OutputIndexes) for a key input.
*/

const (
	tagBaseInput byte = 0xff
	tagKeyInput  byte = 0x02
	tagKeyOutput byte = 0x02
)

// ProtocolMaxMsgSize caps the size of a decoded object and every
// allocation made while decoding it.
const ProtocolMaxMsgSize = 10 * 1024 * 1024

var (
	// ErrUnknownTag is returned when an input or output carries an unsupported type tag.
	ErrUnknownTag = errors.New("unknown input or output tag")
	// ErrVersionOutOfRange is returned when a decoded version does not fit a byte.
	ErrVersionOutOfRange = errors.New("version out of range")
	// ErrTooLargeAlloc is returned when a decoded count cannot fit in the remaining bytes.
	ErrTooLargeAlloc = errors.New("too large allocation")
	// ErrTrailingBytes is returned when a blob has data past the decoded object.
	ErrTrailingBytes = errors.New("trailing bytes after object")
	// ErrSignatureCount is returned when a signature ring does not match its input.
	ErrSignatureCount = errors.New("signature count does not match input")
)

// MarshalBinary encodes tx in the canonical wire format.
func (tx *Transaction) MarshalBinary() ([]byte, error) {
	w := fast.NewWriter(make([]byte, 0, 128))
	if err := tx.marshalPrefix(w); err != nil {
		return nil, err
	}
	if err := tx.marshalSignatures(w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// PrefixBytes encodes tx without its signatures.
func (tx *Transaction) PrefixBytes() ([]byte, error) {
	w := fast.NewWriter(make([]byte, 0, 128))
	if err := tx.marshalPrefix(w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// PrefixHash is the hash that ring signatures commit to.
func (tx *Transaction) PrefixHash() (common.Hash, error) {
	raw, err := tx.PrefixBytes()
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.FastHash(raw), nil
}

// Hash returns the transaction identifier, Keccak-256 of the full encoding.
func (tx *Transaction) Hash() (common.Hash, error) {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return common.Hash{}, err
	}
	return crypto.FastHash(raw), nil
}

// Size returns the length of the encoded transaction in bytes.
func (tx *Transaction) Size() (uint64, error) {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return 0, err
	}
	return uint64(len(raw)), nil
}

func (tx *Transaction) marshalPrefix(w *fast.Writer) error {
	w.WriteUvarint(uint64(tx.Version))
	w.WriteUvarint(tx.UnlockTime)

	w.WriteUvarint(uint64(len(tx.Inputs)))
	for i, in := range tx.Inputs {
		switch in := in.(type) {
		case BaseInput:
			w.WriteByte(tagBaseInput)
			w.WriteUvarint(uint64(in.BlockIndex))
		case KeyInput:
			w.WriteByte(tagKeyInput)
			w.WriteUvarint(in.Amount)
			w.WriteUvarint(uint64(len(in.OutputIndexes)))
			for _, offset := range in.OutputIndexes {
				w.WriteUvarint(uint64(offset))
			}
			w.Write(in.KeyImage[:])
		default:
			return fmt.Errorf("%w: input %d has type %T", ErrUnknownTag, i, in)
		}
	}

	w.WriteUvarint(uint64(len(tx.Outputs)))
	for _, out := range tx.Outputs {
		w.WriteUvarint(out.Amount)
		w.WriteByte(tagKeyOutput)
		w.Write(out.Key[:])
	}

	w.WriteUvarint(uint64(len(tx.Extra)))
	w.Write(tx.Extra)
	return nil
}

func (tx *Transaction) marshalSignatures(w *fast.Writer) error {
	// A prefix-only transaction (e.g. a template before signing) carries
	// no rings at all.
	if len(tx.Signatures) == 0 && !tx.needsSignatures() {
		return nil
	}
	if len(tx.Signatures) != len(tx.Inputs) {
		return fmt.Errorf("%w: %d rings for %d inputs", ErrSignatureCount, len(tx.Signatures), len(tx.Inputs))
	}
	for i, in := range tx.Inputs {
		if want := signatureCount(in); len(tx.Signatures[i]) != want {
			return fmt.Errorf("%w: input %d has %d signatures, want %d", ErrSignatureCount, i, len(tx.Signatures[i]), want)
		}
		for _, sig := range tx.Signatures[i] {
			w.Write(sig[:])
		}
	}
	return nil
}

func (tx *Transaction) needsSignatures() bool {
	for _, in := range tx.Inputs {
		if signatureCount(in) != 0 {
			return true
		}
	}
	return false
}

func signatureCount(in Input) int {
	if k, ok := in.(KeyInput); ok {
		return len(k.OutputIndexes)
	}
	return 0
}

// UnmarshalTransaction decodes a transaction and rejects trailing bytes.
func UnmarshalTransaction(data []byte) (*Transaction, error) {
	if len(data) > ProtocolMaxMsgSize {
		return nil, ErrTooLargeAlloc
	}
	r := fast.NewReader(data)
	tx, err := readTransaction(r)
	if err != nil {
		return nil, err
	}
	if !r.Empty() {
		return nil, ErrTrailingBytes
	}
	return tx, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (tx *Transaction) UnmarshalBinary(data []byte) error {
	decoded, err := UnmarshalTransaction(data)
	if err != nil {
		return err
	}
	*tx = *decoded
	return nil
}

func readTransaction(r *fast.Reader) (*Transaction, error) {
	tx := &Transaction{}

	version, err := r.ReadUvarint()
	if err != nil {
		return nil, err
	}
	if version > 0xff {
		return nil, fmt.Errorf("%w: transaction version %d", ErrVersionOutOfRange, version)
	}
	tx.Version = uint8(version)
	if tx.UnlockTime, err = r.ReadUvarint(); err != nil {
		return nil, err
	}

	inputCount, err := readCount(r, 1)
	if err != nil {
		return nil, err
	}
	tx.Inputs = make([]Input, 0, inputCount)
	for i := 0; i < inputCount; i++ {
		in, err := readInput(r)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		tx.Inputs = append(tx.Inputs, in)
	}

	// amount (>=1) + tag + key
	outputCount, err := readCount(r, 2+len(crypto.PublicKey{}))
	if err != nil {
		return nil, err
	}
	tx.Outputs = make([]Output, outputCount)
	for i := range tx.Outputs {
		if tx.Outputs[i].Amount, err = r.ReadUvarint(); err != nil {
			return nil, err
		}
		tag, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if tag != tagKeyOutput {
			return nil, fmt.Errorf("%w: output %d tag 0x%02x", ErrUnknownTag, i, tag)
		}
		if err := r.ReadInto(tx.Outputs[i].Key[:]); err != nil {
			return nil, err
		}
	}

	extraSize, err := readCount(r, 1)
	if err != nil {
		return nil, err
	}
	extra, err := r.Read(extraSize)
	if err != nil {
		return nil, err
	}
	if extraSize > 0 {
		tx.Extra = append([]byte{}, extra...)
	}

	if !tx.needsSignatures() {
		return tx, nil
	}
	tx.Signatures = make([][]crypto.Signature, len(tx.Inputs))
	for i, in := range tx.Inputs {
		ring := make([]crypto.Signature, signatureCount(in))
		for j := range ring {
			if err := r.ReadInto(ring[j][:]); err != nil {
				return nil, fmt.Errorf("signature %d of input %d: %w", j, i, err)
			}
		}
		tx.Signatures[i] = ring
	}
	return tx, nil
}

func readInput(r *fast.Reader) (Input, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagBaseInput:
		height, err := r.ReadUvarint()
		if err != nil {
			return nil, err
		}
		if height > 0xffffffff {
			return nil, fmt.Errorf("base input height %d out of range", height)
		}
		return BaseInput{BlockIndex: uint32(height)}, nil
	case tagKeyInput:
		var in KeyInput
		if in.Amount, err = r.ReadUvarint(); err != nil {
			return nil, err
		}
		count, err := readCount(r, 1)
		if err != nil {
			return nil, err
		}
		in.OutputIndexes = make([]uint32, count)
		for i := range in.OutputIndexes {
			offset, err := r.ReadUvarint()
			if err != nil {
				return nil, err
			}
			if offset > 0xffffffff {
				return nil, fmt.Errorf("output offset %d out of range", offset)
			}
			in.OutputIndexes[i] = uint32(offset)
		}
		if err := r.ReadInto(in.KeyImage[:]); err != nil {
			return nil, err
		}
		return in, nil
	}
	return nil, fmt.Errorf("%w: input tag 0x%02x", ErrUnknownTag, tag)
}

// readCount reads an element count and rejects counts whose elements,
// at minSize bytes each, could not fit in the rest of the buffer.
func readCount(r *fast.Reader, minSize int) (int, error) {
	count, err := r.ReadUvarint()
	if err != nil {
		return 0, err
	}
	remaining := uint64(len(r.Bytes()) - r.Position())
	if count > remaining/uint64(minSize) {
		return 0, ErrTooLargeAlloc
	}
	return int(count), nil
}
