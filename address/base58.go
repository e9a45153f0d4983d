package address

import (
	"errors"
	"strings"

	"github.com/decred/base58"
)

/*
	Addresses use the block variant of base58: the input is cut into 8-byte
	blocks and every block is encoded on its own into a fixed number of
	characters, left-padded with the zero digit '1'. A full block always
	takes 11 characters; the last, partial block takes encodedBlockSizes[n]
	characters for n bytes. The encoded length therefore determines the
	decoded length exactly.
*/

const (
	alphabet        = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"
	zeroDigit       = '1'
	fullBlockSize   = 8
	fullEncodedSize = 11
)

var encodedBlockSizes = [fullBlockSize + 1]int{0, 2, 3, 5, 6, 7, 9, 10, 11}

// ErrInvalidEncoding is returned for strings that are not block base58.
var ErrInvalidEncoding = errors.New("invalid base58 encoding")

// EncodeBase58 encodes data with block base58.
func EncodeBase58(data []byte) string {
	var sb strings.Builder
	sb.Grow(len(data)/fullBlockSize*fullEncodedSize + fullEncodedSize)
	for len(data) > 0 {
		n := fullBlockSize
		if len(data) < n {
			n = len(data)
		}
		encodeBlock(&sb, data[:n])
		data = data[n:]
	}
	return sb.String()
}

func encodeBlock(sb *strings.Builder, block []byte) {
	// Leading zero bytes come back as '1' digits; only the value counts here.
	digits := strings.TrimLeft(base58.Encode(block), string(zeroDigit))
	for i := len(digits); i < encodedBlockSizes[len(block)]; i++ {
		sb.WriteByte(zeroDigit)
	}
	sb.WriteString(digits)
}

// DecodeBase58 reverses EncodeBase58.
func DecodeBase58(s string) ([]byte, error) {
	lastSize := -1
	for size, encoded := range encodedBlockSizes {
		if encoded == len(s)%fullEncodedSize {
			lastSize = size
			break
		}
	}
	if lastSize < 0 {
		return nil, ErrInvalidEncoding
	}

	out := make([]byte, 0, len(s)/fullEncodedSize*fullBlockSize+lastSize)
	for len(s) > 0 {
		chunk, size := fullEncodedSize, fullBlockSize
		if len(s) < fullEncodedSize {
			chunk, size = len(s), lastSize
		}
		block, err := decodeBlock(s[:chunk], size)
		if err != nil {
			return nil, err
		}
		out = append(out, block...)
		s = s[chunk:]
	}
	return out, nil
}

func decodeBlock(s string, size int) ([]byte, error) {
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(alphabet, s[i]) < 0 {
			return nil, ErrInvalidEncoding
		}
	}
	value := base58.Decode(strings.TrimLeft(s, string(zeroDigit)))
	if len(value) > size {
		// The digits describe a number that does not fit the block.
		return nil, ErrInvalidEncoding
	}
	block := make([]byte, size)
	copy(block[size-len(value):], value)
	return block, nil
}
