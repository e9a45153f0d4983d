package crypto

import (
	"math/big"
	"math/bits"

	"filippo.io/edwards25519"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// FastHash is the Keccak-256 digest used for transaction, block and
// checksum hashing.
func FastHash(data ...[]byte) common.Hash {
	return ethcrypto.Keccak256Hash(data...)
}

// HashToScalar reduces Keccak-256(data) modulo the group order.
func HashToScalar(data ...[]byte) *edwards25519.Scalar {
	var wide [64]byte
	h := FastHash(data...)
	copy(wide[:], h[:])
	// 64 bytes is always an accepted length.
	s, _ := edwards25519.NewScalar().SetUniformBytes(wide[:])
	return s
}

// TreeHash folds transaction hashes into the block's merkle root. One hash
// is returned unchanged, two are hashed together, and larger sets are first
// reduced to the largest power of two below len(hashes).
//
// TreeHash panics on an empty slice: every block has a base transaction.
func TreeHash(hashes []common.Hash) common.Hash {
	count := len(hashes)
	switch count {
	case 0:
		panic("crypto: tree hash of zero hashes")
	case 1:
		return hashes[0]
	case 2:
		return FastHash(hashes[0][:], hashes[1][:])
	}

	cnt := 1 << (bits.Len(uint(count-1)) - 1)
	ints := make([]common.Hash, cnt)
	copy(ints, hashes[:2*cnt-count])

	i := 2*cnt - count
	for j := 2*cnt - count; j < cnt; j++ {
		ints[j] = FastHash(hashes[i][:], hashes[i+1][:])
		i += 2
	}
	for cnt > 2 {
		cnt >>= 1
		for i, j := 0, 0; j < cnt; i, j = i+2, j+1 {
			ints[j] = FastHash(ints[i][:], ints[i+1][:])
		}
	}
	return FastHash(ints[0][:], ints[1][:])
}

var hashSpace = new(big.Int).Lsh(big.NewInt(1), 256)

// CheckHash reports whether hash, read as a 256-bit little-endian number,
// times difficulty stays below 2^256. A zero difficulty never passes.
func CheckHash(hash common.Hash, difficulty uint64) bool {
	if difficulty == 0 {
		return false
	}
	var be [32]byte
	for i, b := range hash {
		be[31-i] = b
	}
	product := new(big.Int).SetBytes(be[:])
	product.Mul(product, new(big.Int).SetUint64(difficulty))
	return product.Cmp(hashSpace) < 0
}
