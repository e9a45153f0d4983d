package inter

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/tychecash/go-tyche/crypto"
)

const (
	testOutputKey = "9b2e4c0281c0b02e7c53291a94d1d0cbff8883f8024f5142ee494ffbbd088071"
	testTxKey     = "e8c8d5bd6ff5d7bd45e2dcf8e8d7e5cd6b7a0c0a5d6f1b7a42e1e47b73e8a4f9"
)

// coinbaseHex is a coinbase minting 2^44-1 at height 0 with a ten block lock.
const coinbaseHex = "010a01ff0001ffffffffffff0302" + testOutputKey + "2101" + testTxKey

func testCoinbase(t *testing.T) *Transaction {
	key, err := crypto.PublicKeyFromString(testOutputKey)
	require.NoError(t, err)
	txKey, err := crypto.PublicKeyFromString(testTxKey)
	require.NoError(t, err)
	return &Transaction{
		Version:    1,
		UnlockTime: 10,
		Inputs:     []Input{BaseInput{BlockIndex: 0}},
		Outputs:    []Output{{Amount: 1<<44 - 1, Key: key}},
		Extra:      AppendExtraPublicKey(nil, txKey),
	}
}

func TestTransactionCoinbaseEncoding(t *testing.T) {
	require := require.New(t)

	tx := testCoinbase(t)
	raw, err := tx.MarshalBinary()
	require.NoError(err)
	require.Equal(common.FromHex(coinbaseHex), raw)

	decoded, err := UnmarshalTransaction(raw)
	require.NoError(err)
	require.Equal(tx, decoded)
	require.True(decoded.IsCoinbase())

	size, err := tx.Size()
	require.NoError(err)
	require.Equal(uint64(len(raw)), size)

	hash, err := tx.Hash()
	require.NoError(err)
	require.Equal(crypto.FastHash(raw), hash)

	// Coinbase has no signatures, so the prefix is the whole transaction.
	prefix, err := tx.PrefixHash()
	require.NoError(err)
	require.Equal(hash, prefix)
}

func TestTransactionWithKeyInputs(t *testing.T) {
	require := require.New(t)

	var image crypto.KeyImage
	image[0] = 0xaa
	var sig crypto.Signature
	sig[63] = 0x55

	tx := &Transaction{
		Version: 1,
		Inputs: []Input{
			KeyInput{Amount: 1000, OutputIndexes: []uint32{5, 300}, KeyImage: image},
			KeyInput{Amount: 70, OutputIndexes: []uint32{1}, KeyImage: image},
		},
		Outputs: []Output{{Amount: 1000}, {Amount: 70}},
		Signatures: [][]crypto.Signature{
			{sig, sig},
			{sig},
		},
	}
	raw, err := tx.MarshalBinary()
	require.NoError(err)

	prefix, err := tx.PrefixBytes()
	require.NoError(err)
	require.Equal(len(prefix)+3*64, len(raw))

	decoded, err := UnmarshalTransaction(raw)
	require.NoError(err)
	require.Equal(tx, decoded)
	require.False(decoded.IsCoinbase())
	require.Equal([]uint64{1000, 70}, decoded.InputAmounts())
	require.Equal([]uint64{1000, 70}, decoded.OutputAmounts())

	total, ok := decoded.OutputTotal()
	require.True(ok)
	require.Equal(uint64(1070), total)

	// A ring with the wrong size cannot be encoded.
	tx.Signatures[1] = nil
	_, err = tx.MarshalBinary()
	require.ErrorIs(err, ErrSignatureCount)

	// Truncated signatures cannot be decoded.
	_, err = UnmarshalTransaction(raw[:len(raw)-1])
	require.Error(err)
}

func TestUnmarshalTransactionErrors(t *testing.T) {
	valid := common.FromHex(coinbaseHex)

	tests := []struct {
		name string
		blob []byte
		err  error
	}{
		{"trailing byte", append(append([]byte{}, valid...), 0), ErrTrailingBytes},
		{"unknown input tag", []byte{1, 0, 1, 0x03, 0}, ErrUnknownTag},
		{"huge input count", []byte{1, 0, 0xff, 0xff, 0x03}, ErrTooLargeAlloc},
		{"wide version", []byte{0x80, 0x02, 0}, ErrVersionOutOfRange},
		{"truncated", valid[:20], nil},
		{"empty", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalTransaction(tt.blob)
			require.Error(t, err)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
			}
		})
	}
}

func TestOutputTotalOverflow(t *testing.T) {
	tx := &Transaction{Outputs: []Output{{Amount: ^uint64(0)}, {Amount: 1}}}
	_, ok := tx.OutputTotal()
	require.False(t, ok)
}

func TestExtra(t *testing.T) {
	require := require.New(t)

	key, err := crypto.PublicKeyFromString(testTxKey)
	require.NoError(err)

	extra := AppendExtraPublicKey(nil, key)
	extra, err = AppendExtraNonce(extra, []byte("pool-42"))
	require.NoError(err)

	fields, err := ParseExtra(extra)
	require.NoError(err)
	require.True(fields.HasPublicKey)
	require.Equal(key, fields.PublicKey)
	require.Equal([]byte("pool-42"), fields.Nonce)

	_, err = AppendExtraNonce(nil, make([]byte, MaxExtraNonceSize+1))
	require.ErrorIs(err, ErrExtraNonceTooLong)
	_, err = AppendExtraNonce(nil, make([]byte, MaxExtraNonceSize))
	require.NoError(err)

	// Unknown tags end parsing without error.
	fields, err = ParseExtra(append(AppendExtraPublicKey(nil, key), 0x7f, 1, 2))
	require.NoError(err)
	require.True(fields.HasPublicKey)

	// Padding must be all zero.
	_, err = ParseExtra([]byte{ExtraTagPadding, 0, 0})
	require.NoError(err)
	_, err = ParseExtra([]byte{ExtraTagPadding, 0, 1})
	require.ErrorIs(err, ErrMalformedExtra)

	_, err = ParseExtra([]byte{ExtraTagPublicKey, 1, 2})
	require.ErrorIs(err, ErrMalformedExtra)
	_, err = ParseExtra([]byte{ExtraTagNonce, 5, 1})
	require.ErrorIs(err, ErrMalformedExtra)
}

func TestBlockEncodingAndHash(t *testing.T) {
	require := require.New(t)

	block := &Block{
		BlockHeader: BlockHeader{
			MajorVersion: 1,
			Nonce:        70,
		},
		BaseTransaction: *testCoinbase(t),
	}

	raw, err := block.MarshalBinary()
	require.NoError(err)
	header := common.FromHex("010000" + "0000000000000000000000000000000000000000000000000000000000000000" + "46000000")
	require.Equal(header, raw[:len(header)])
	require.Equal(byte(0), raw[len(raw)-1], "no transaction hashes")

	decoded, err := UnmarshalBlock(raw)
	require.NoError(err)
	require.Equal(block, decoded)

	// With a single transaction the merkle root is the coinbase hash.
	baseHash, err := block.BaseTransaction.Hash()
	require.NoError(err)
	root, err := block.MerkleRoot()
	require.NoError(err)
	require.Equal(baseHash, root)

	blob, err := block.HashingBlob()
	require.NoError(err)
	require.Equal(append(append(header, baseHash[:]...), 1), blob)

	hash, err := block.Hash()
	require.NoError(err)
	require.Equal(crypto.FastHash(append([]byte{byte(len(blob))}, blob...)), hash)

	// Extra transactions change the root and the count.
	block.TransactionHashes = []common.Hash{crypto.FastHash([]byte("tx"))}
	blob2, err := block.HashingBlob()
	require.NoError(err)
	require.Equal(byte(2), blob2[len(blob2)-1])
	hash2, err := block.Hash()
	require.NoError(err)
	require.NotEqual(hash, hash2)

	raw, err = block.MarshalBinary()
	require.NoError(err)
	decoded, err = UnmarshalBlock(raw)
	require.NoError(err)
	require.Equal(block, decoded)

	_, err = UnmarshalBlock(append(raw, 0))
	require.ErrorIs(err, ErrTrailingBytes)

	// Major version 256 is the varint 0x80 0x02.
	wide := append([]byte{0x80, 0x02}, raw[1:]...)
	_, err = UnmarshalBlock(wide)
	require.ErrorIs(err, ErrVersionOutOfRange)
	require.NotErrorIs(err, ErrUnknownTag)
}
