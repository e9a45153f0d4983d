// Package crypto wraps the primitives the consensus core consumes as opaque
// building blocks: ed25519 keypairs, Diffie-Hellman style key derivation
// for one-time (stealth) output keys, Keccak-256 hashing and the
// transaction tree hash.
//
// Group arithmetic is done with filippo.io/edwards25519; hashing uses the
// legacy Keccak-256 exposed by go-ethereum.
package crypto

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"filippo.io/edwards25519"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var (
	// ErrInvalidPublicKey is returned when 32 bytes do not decode to a curve point.
	ErrInvalidPublicKey = errors.New("crypto: invalid public key")
	// ErrInvalidSecretKey is returned for secret keys that are not reduced scalars.
	ErrInvalidSecretKey = errors.New("crypto: invalid secret key")
)

// PublicKey is a compressed ed25519 point.
type PublicKey [32]byte

// SecretKey is a canonical little-endian scalar modulo the group order.
type SecretKey [32]byte

// KeyDerivation is the shared point 8*r*A computed by sender and receiver.
type KeyDerivation [32]byte

// KeyImage identifies a spent one-time output.
type KeyImage [32]byte

// Signature is an (c, r) scalar pair.
type Signature [64]byte

// KeyPair bundles a secret key with its public key.
type KeyPair struct {
	PublicKey PublicKey
	SecretKey SecretKey
}

// String returns the lowercase hex encoding of the key without a 0x prefix,
// the form keys take in logs and hard-coded blobs.
func (k PublicKey) String() string {
	return strings.TrimPrefix(hexutil.Encode(k[:]), "0x")
}

// MarshalText implements encoding.TextMarshaler.
func (k PublicKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. The 0x prefix is optional.
func (k *PublicKey) UnmarshalText(input []byte) error {
	res, err := PublicKeyFromString(string(input))
	if err != nil {
		return err
	}
	*k = res
	return nil
}

// PublicKeyFromString parses a 64 character hex string, with or without a
// 0x prefix. Only the length and the hex alphabet are checked; use Valid to
// check that the bytes decode to a curve point.
func PublicKeyFromString(str string) (PublicKey, error) {
	var k PublicKey
	if !strings.HasPrefix(str, "0x") && !strings.HasPrefix(str, "0X") {
		str = "0x" + str
	}
	raw, err := hexutil.Decode(str)
	if err != nil {
		return k, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	if len(raw) != len(k) {
		return k, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidPublicKey, len(k), len(raw))
	}
	copy(k[:], raw)
	return k, nil
}

// Valid reports whether k decodes to a point on the curve.
func (k PublicKey) Valid() bool {
	_, err := k.point()
	return err == nil
}

func (k PublicKey) point() (*edwards25519.Point, error) {
	p, err := new(edwards25519.Point).SetBytes(k[:])
	if err != nil {
		return nil, ErrInvalidPublicKey
	}
	return p, nil
}

func (k SecretKey) scalar() (*edwards25519.Scalar, error) {
	s, err := edwards25519.NewScalar().SetCanonicalBytes(k[:])
	if err != nil {
		return nil, ErrInvalidSecretKey
	}
	return s, nil
}

// GenerateKeyPair draws a uniformly random secret scalar from rand and
// returns it with the matching public key.
func GenerateKeyPair(rand io.Reader) (KeyPair, error) {
	var seed [64]byte
	if _, err := io.ReadFull(rand, seed[:]); err != nil {
		return KeyPair{}, fmt.Errorf("crypto: read entropy: %w", err)
	}
	s, err := edwards25519.NewScalar().SetUniformBytes(seed[:])
	if err != nil {
		return KeyPair{}, err
	}
	var kp KeyPair
	copy(kp.SecretKey[:], s.Bytes())
	copy(kp.PublicKey[:], new(edwards25519.Point).ScalarBaseMult(s).Bytes())
	return kp, nil
}

// SecretKeyToPublicKey computes sec*G.
func SecretKeyToPublicKey(sec SecretKey) (PublicKey, error) {
	var pub PublicKey
	s, err := sec.scalar()
	if err != nil {
		return pub, err
	}
	copy(pub[:], new(edwards25519.Point).ScalarBaseMult(s).Bytes())
	return pub, nil
}

// GenerateKeyDerivation computes 8*sec*pub. The sender calls it with the
// receiver's view public key and the transaction secret key; the receiver
// with the transaction public key and its view secret key.
func GenerateKeyDerivation(pub PublicKey, sec SecretKey) (KeyDerivation, error) {
	var d KeyDerivation
	p, err := pub.point()
	if err != nil {
		return d, err
	}
	s, err := sec.scalar()
	if err != nil {
		return d, err
	}
	point := new(edwards25519.Point).ScalarMult(s, p)
	point.MultByCofactor(point)
	copy(d[:], point.Bytes())
	return d, nil
}

// DerivationToScalar returns Hs(derivation || varint(index)).
func DerivationToScalar(d KeyDerivation, index uint64) *edwards25519.Scalar {
	buf := make([]byte, 0, len(d)+binary.MaxVarintLen64)
	buf = append(buf, d[:]...)
	buf = binary.AppendUvarint(buf, index)
	return HashToScalar(buf)
}

// DerivePublicKey returns the one-time key Hs(d, index)*G + base.
func DerivePublicKey(d KeyDerivation, index uint64, base PublicKey) (PublicKey, error) {
	var out PublicKey
	b, err := base.point()
	if err != nil {
		return out, err
	}
	p := new(edwards25519.Point).ScalarBaseMult(DerivationToScalar(d, index))
	p.Add(p, b)
	copy(out[:], p.Bytes())
	return out, nil
}

// DeriveSecretKey returns the one-time secret Hs(d, index) + base, the
// counterpart of DerivePublicKey held by the receiver.
func DeriveSecretKey(d KeyDerivation, index uint64, base SecretKey) (SecretKey, error) {
	var out SecretKey
	b, err := base.scalar()
	if err != nil {
		return out, err
	}
	s := edwards25519.NewScalar().Add(DerivationToScalar(d, index), b)
	copy(out[:], s.Bytes())
	return out, nil
}
