package inter

import (
	"errors"

	"github.com/tychecash/go-tyche/crypto"
	"github.com/tychecash/go-tyche/utils/fast"
)

/*
	The transaction extra field is a sequence of tagged sub-fields:

	0x00 padding: the rest of the field is zero bytes
	0x01 transaction public key: 32 bytes
	0x02 nonce: one length byte followed by at most 255 bytes

	Parsing stops at the first unknown tag. Everything before it is kept,
	which lets older nodes read fields written by newer software.
*/

const (
	ExtraTagPadding   byte = 0x00
	ExtraTagPublicKey byte = 0x01
	ExtraTagNonce     byte = 0x02

	// MaxExtraNonceSize is the largest nonce a single length byte can describe.
	MaxExtraNonceSize = 255
)

var (
	// ErrExtraNonceTooLong is returned when a nonce does not fit the length byte.
	ErrExtraNonceTooLong = errors.New("extra nonce longer than 255 bytes")
	// ErrMalformedExtra is returned for truncated or inconsistent extra fields.
	ErrMalformedExtra = errors.New("malformed transaction extra")
)

// ExtraFields is the parsed content of a transaction extra field.
type ExtraFields struct {
	PublicKey    crypto.PublicKey
	HasPublicKey bool
	Nonce        []byte
}

// AppendExtraPublicKey appends the transaction public key sub-field.
func AppendExtraPublicKey(extra []byte, key crypto.PublicKey) []byte {
	extra = append(extra, ExtraTagPublicKey)
	return append(extra, key[:]...)
}

// AppendExtraNonce appends a nonce sub-field. The miner uses it to vary the
// coinbase and hence the merkle root without touching the header.
func AppendExtraNonce(extra []byte, nonce []byte) ([]byte, error) {
	if len(nonce) > MaxExtraNonceSize {
		return extra, ErrExtraNonceTooLong
	}
	extra = append(extra, ExtraTagNonce, byte(len(nonce)))
	return append(extra, nonce...), nil
}

// ParseExtra reads the known sub-fields of extra. The first public key and
// the first nonce win when a field is repeated.
func ParseExtra(extra []byte) (ExtraFields, error) {
	var fields ExtraFields
	r := fast.NewReader(extra)
	for !r.Empty() {
		tag, _ := r.ReadByte()
		switch tag {
		case ExtraTagPadding:
			for !r.Empty() {
				if b, _ := r.ReadByte(); b != 0 {
					return fields, ErrMalformedExtra
				}
			}
		case ExtraTagPublicKey:
			var key crypto.PublicKey
			if err := r.ReadInto(key[:]); err != nil {
				return fields, ErrMalformedExtra
			}
			if !fields.HasPublicKey {
				fields.PublicKey, fields.HasPublicKey = key, true
			}
		case ExtraTagNonce:
			size, err := r.ReadByte()
			if err != nil {
				return fields, ErrMalformedExtra
			}
			nonce, err := r.Read(int(size))
			if err != nil {
				return fields, ErrMalformedExtra
			}
			if fields.Nonce == nil {
				fields.Nonce = append([]byte{}, nonce...)
			}
		default:
			return fields, nil
		}
	}
	return fields, nil
}
