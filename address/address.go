// Package address encodes and decodes network-prefixed account addresses.
//
// An address is block base58 over
//
//	varint(prefix) || spend public key || view public key || checksum
//
// where the checksum is the first four bytes of Keccak-256 over everything
// before it. The prefix keeps addresses of one network from being used on
// another.
package address

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/tychecash/go-tyche/crypto"
	"github.com/tychecash/go-tyche/utils/fast"
)

const checksumSize = 4

var (
	// ErrPrefixMismatch is returned when an address belongs to another network.
	ErrPrefixMismatch = errors.New("address prefix mismatch")
	// ErrChecksum is returned when the embedded checksum does not match.
	ErrChecksum = errors.New("address checksum mismatch")
	// ErrInvalidKey is returned when an embedded key is not a curve point.
	ErrInvalidKey = errors.New("address holds an invalid public key")
)

// AccountAddress is the public part of an account: outputs are derived from
// the view key and spent with the spend key.
type AccountAddress struct {
	SpendPublicKey crypto.PublicKey
	ViewPublicKey  crypto.PublicKey
}

// Codec encodes addresses of one network.
type Codec struct {
	prefix uint64
}

// NewCodec returns a codec for the network tag prefix.
func NewCodec(prefix uint64) *Codec {
	return &Codec{prefix: prefix}
}

// Prefix returns the network tag.
func (c *Codec) Prefix() uint64 {
	return c.prefix
}

// Encode returns the string form of addr.
func (c *Codec) Encode(addr AccountAddress) string {
	return Encode(c.prefix, addr)
}

// Decode parses s and checks that it belongs to the codec's network.
func (c *Codec) Decode(s string) (AccountAddress, error) {
	prefix, addr, err := Parse(s)
	if err != nil {
		return AccountAddress{}, err
	}
	if prefix != c.prefix {
		return AccountAddress{}, fmt.Errorf("%w: got %#x, expected %#x", ErrPrefixMismatch, prefix, c.prefix)
	}
	return addr, nil
}

// Encode returns the string form of addr under prefix.
func Encode(prefix uint64, addr AccountAddress) string {
	w := fast.NewWriter(make([]byte, 0, 10+2*32+checksumSize))
	w.WriteUvarint(prefix)
	w.Write(addr.SpendPublicKey[:])
	w.Write(addr.ViewPublicKey[:])
	sum := crypto.FastHash(w.Bytes())
	w.Write(sum[:checksumSize])
	return EncodeBase58(w.Bytes())
}

// Parse decodes an address of any network and returns its prefix.
func Parse(s string) (prefix uint64, addr AccountAddress, err error) {
	raw, err := DecodeBase58(s)
	if err != nil {
		return 0, addr, err
	}
	if len(raw) < checksumSize {
		return 0, addr, ErrInvalidEncoding
	}
	body, checksum := raw[:len(raw)-checksumSize], raw[len(raw)-checksumSize:]
	sum := crypto.FastHash(body)
	if !bytes.Equal(sum[:checksumSize], checksum) {
		return 0, addr, ErrChecksum
	}

	r := fast.NewReader(body)
	if prefix, err = r.ReadUvarint(); err != nil {
		return 0, addr, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	if err := r.ReadInto(addr.SpendPublicKey[:]); err != nil {
		return 0, addr, ErrInvalidEncoding
	}
	if err := r.ReadInto(addr.ViewPublicKey[:]); err != nil {
		return 0, addr, ErrInvalidEncoding
	}
	if !r.Empty() {
		return 0, addr, ErrInvalidEncoding
	}
	if !addr.SpendPublicKey.Valid() || !addr.ViewPublicKey.Valid() {
		return 0, AccountAddress{}, ErrInvalidKey
	}
	return prefix, addr, nil
}
