package inter

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/tychecash/go-tyche/crypto"
	"github.com/tychecash/go-tyche/utils/fast"
)

// BlockHeader is the part of a block the miner iterates over.
type BlockHeader struct {
	MajorVersion uint8
	MinorVersion uint8
	// Timestamp is the unix time claimed by the miner.
	Timestamp         uint64
	PreviousBlockHash common.Hash
	// Nonce is encoded as 4 little-endian bytes so miners can patch it in
	// place inside the hashing blob.
	Nonce uint32
}

// Block is a header, the coinbase and the hashes of every other included
// transaction. Transaction bodies travel separately.
//
// Usage:
//
//	blob, err := block.HashingBlob()   // input of the proof-of-work hash
//	id, err := block.Hash()            // block identifier
type Block struct {
	BlockHeader
	BaseTransaction   Transaction
	TransactionHashes []common.Hash
}

func (h *BlockHeader) marshal(w *fast.Writer) {
	w.WriteUvarint(uint64(h.MajorVersion))
	w.WriteUvarint(uint64(h.MinorVersion))
	w.WriteUvarint(h.Timestamp)
	w.Write(h.PreviousBlockHash[:])
	w.WriteUint32LE(h.Nonce)
}

// MarshalBinary encodes the block: header, coinbase, then the transaction
// hashes prefixed by their count.
func (b *Block) MarshalBinary() ([]byte, error) {
	w := fast.NewWriter(make([]byte, 0, 256+len(b.TransactionHashes)*32))
	b.BlockHeader.marshal(w)
	tx, err := b.BaseTransaction.MarshalBinary()
	if err != nil {
		return nil, err
	}
	w.Write(tx)
	w.WriteUvarint(uint64(len(b.TransactionHashes)))
	for _, h := range b.TransactionHashes {
		w.Write(h[:])
	}
	return w.Bytes(), nil
}

// MerkleRoot returns the tree hash of the coinbase hash followed by the
// transaction hashes.
func (b *Block) MerkleRoot() (common.Hash, error) {
	baseHash, err := b.BaseTransaction.Hash()
	if err != nil {
		return common.Hash{}, err
	}
	hashes := make([]common.Hash, 0, 1+len(b.TransactionHashes))
	hashes = append(hashes, baseHash)
	hashes = append(hashes, b.TransactionHashes...)
	return crypto.TreeHash(hashes), nil
}

// HashingBlob returns header || merkle root || varint(transaction count),
// where the count includes the coinbase. Proof-of-work is computed over it.
func (b *Block) HashingBlob() ([]byte, error) {
	root, err := b.MerkleRoot()
	if err != nil {
		return nil, err
	}
	w := fast.NewWriter(make([]byte, 0, 128))
	b.BlockHeader.marshal(w)
	w.Write(root[:])
	w.WriteUvarint(uint64(1 + len(b.TransactionHashes)))
	return w.Bytes(), nil
}

// Hash returns the block identifier: Keccak-256 over the hashing blob
// serialized as a length-prefixed byte array.
func (b *Block) Hash() (common.Hash, error) {
	blob, err := b.HashingBlob()
	if err != nil {
		return common.Hash{}, err
	}
	w := fast.NewWriter(make([]byte, 0, len(blob)+4))
	w.WriteUvarint(uint64(len(blob)))
	w.Write(blob)
	return crypto.FastHash(w.Bytes()), nil
}

// UnmarshalBlock decodes a block and rejects trailing bytes.
func UnmarshalBlock(data []byte) (*Block, error) {
	if len(data) > ProtocolMaxMsgSize {
		return nil, ErrTooLargeAlloc
	}
	r := fast.NewReader(data)
	b := &Block{}

	major, err := r.ReadUvarint()
	if err != nil {
		return nil, err
	}
	minor, err := r.ReadUvarint()
	if err != nil {
		return nil, err
	}
	if major > 0xff || minor > 0xff {
		return nil, fmt.Errorf("%w: block version %d.%d", ErrVersionOutOfRange, major, minor)
	}
	b.MajorVersion, b.MinorVersion = uint8(major), uint8(minor)
	if b.Timestamp, err = r.ReadUvarint(); err != nil {
		return nil, err
	}
	if err := r.ReadInto(b.PreviousBlockHash[:]); err != nil {
		return nil, err
	}
	if b.Nonce, err = r.ReadUint32LE(); err != nil {
		return nil, err
	}

	base, err := readTransaction(r)
	if err != nil {
		return nil, err
	}
	b.BaseTransaction = *base

	count, err := readCount(r, len(common.Hash{}))
	if err != nil {
		return nil, err
	}
	if count > 0 {
		b.TransactionHashes = make([]common.Hash, count)
		for i := range b.TransactionHashes {
			if err := r.ReadInto(b.TransactionHashes[i][:]); err != nil {
				return nil, err
			}
		}
	}
	if !r.Empty() {
		return nil, ErrTrailingBytes
	}
	return b, nil
}
