package address

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/tychecash/go-tyche/crypto"
)

func TestBase58Vectors(t *testing.T) {
	tests := []struct {
		hex, enc string
	}{
		{"", ""},
		{"00", "11"},
		{"39", "1z"},
		{"ff", "5Q"},
		{"0100", "15R"},
		{"ffff", "LUv"},
		{"0000000000000039", "1111111111z"},
		{"ffffffffffffffff", "jpXCZedGfVQ"},
		{"06156013762879f7ffffffffff", "22222222222VtB5VXc"},
	}
	for _, tt := range tests {
		data := common.FromHex(tt.hex)
		require.Equal(t, tt.enc, EncodeBase58(data), "encode %s", tt.hex)

		got, err := DecodeBase58(tt.enc)
		require.NoError(t, err, "decode %s", tt.enc)
		require.True(t, bytes.Equal(data, got), "decode %s", tt.enc)
	}
}

func TestBase58RoundTrip(t *testing.T) {
	for n := 0; n < 80; n++ {
		data := make([]byte, n)
		_, err := rand.Read(data)
		require.NoError(t, err)

		enc := EncodeBase58(data)
		require.Len(t, enc, n/8*11+encodedBlockSizes[n%8])
		got, err := DecodeBase58(enc)
		require.NoError(t, err)
		require.True(t, bytes.Equal(data, got))
	}
}

func TestBase58Invalid(t *testing.T) {
	for _, s := range []string{
		"1",            // no block has a one character encoding
		"1111",         // nor four
		"10",           // '0' is not in the alphabet
		"zz",           // 3363 does not fit one byte
		"zzzzzzzzzzz",  // 58^11-1 does not fit eight bytes
		"11111111111l", // 'l' is not in the alphabet
	} {
		_, err := DecodeBase58(s)
		require.ErrorIs(t, err, ErrInvalidEncoding, "input %q", s)
	}
}

func testAddress(t *testing.T) AccountAddress {
	spend, err := crypto.GenerateKeyPair(rand.Reader)
	require.NoError(t, err)
	view, err := crypto.GenerateKeyPair(rand.Reader)
	require.NoError(t, err)
	return AccountAddress{SpendPublicKey: spend.PublicKey, ViewPublicKey: view.PublicKey}
}

func TestAddressRoundTrip(t *testing.T) {
	require := require.New(t)
	addr := testAddress(t)

	for _, prefix := range []uint64{0, 0x2ca6, 1 << 40} {
		c := NewCodec(prefix)
		s := c.Encode(addr)

		got, err := c.Decode(s)
		require.NoError(err)
		require.Equal(addr, got)

		p, got, err := Parse(s)
		require.NoError(err)
		require.Equal(prefix, p)
		require.Equal(addr, got)
	}
}

func TestAddressPrefixMismatch(t *testing.T) {
	addr := testAddress(t)
	s := NewCodec(0x2ca6).Encode(addr)

	_, err := NewCodec(0x2ca7).Decode(s)
	require.ErrorIs(t, err, ErrPrefixMismatch)
}

func TestAddressChecksum(t *testing.T) {
	require := require.New(t)
	addr := testAddress(t)
	c := NewCodec(0x2ca6)
	s := c.Encode(addr)

	raw, err := DecodeBase58(s)
	require.NoError(err)
	raw[5] ^= 1
	_, err = c.Decode(EncodeBase58(raw))
	require.ErrorIs(err, ErrChecksum)

	_, err = c.Decode(s[:len(s)-1])
	require.Error(err)

	_, err = c.Decode("")
	require.ErrorIs(err, ErrInvalidEncoding)
}

func TestAddressInvalidKey(t *testing.T) {
	addr := testAddress(t)
	// Find a y coordinate with no matching x.
	for y := byte(2); ; y++ {
		addr.ViewPublicKey = crypto.PublicKey{y}
		if !addr.ViewPublicKey.Valid() {
			break
		}
	}
	_, err := NewCodec(1).Decode(Encode(1, addr))
	require.ErrorIs(t, err, ErrInvalidKey)
}
