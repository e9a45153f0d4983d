package difficulty

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/tychecash/go-tyche/crypto"
	"github.com/tychecash/go-tyche/inter"
)

// PowHasher computes the slow proof-of-work hash of a block hashing blob.
type PowHasher interface {
	PowHash(blob []byte) (common.Hash, error)
}

// PowHasherFunc adapts a function to PowHasher.
type PowHasherFunc func(blob []byte) (common.Hash, error)

func (f PowHasherFunc) PowHash(blob []byte) (common.Hash, error) { return f(blob) }

// CheckProofOfWork hashes the block with hasher and reports whether the
// proof meets difficulty: the hash, read as a 256-bit little-endian number,
// times difficulty must stay below 2^256. The proof hash is returned so
// callers can log or cache it.
func CheckProofOfWork(hasher PowHasher, block *inter.Block, difficulty uint64) (bool, common.Hash, error) {
	blob, err := block.HashingBlob()
	if err != nil {
		return false, common.Hash{}, err
	}
	proof, err := hasher.PowHash(blob)
	if err != nil {
		return false, common.Hash{}, err
	}
	return crypto.CheckHash(proof, difficulty), proof, nil
}
