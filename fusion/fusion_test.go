package fusion

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tychecash/go-tyche/crypto"
	"github.com/tychecash/go-tyche/inter"
	"github.com/tychecash/go-tyche/tyche"
)

func TestPrettyAmounts(t *testing.T) {
	require.Len(t, PrettyAmounts, 172)
	require.Equal(t, uint64(1), PrettyAmounts[0])
	require.Equal(t, uint64(9), PrettyAmounts[8])
	require.Equal(t, uint64(10), PrettyAmounts[9])
	require.Equal(t, uint64(9000000000000000000), PrettyAmounts[170])
	require.Equal(t, uint64(10000000000000000000), PrettyAmounts[171])
	for i := 1; i < len(PrettyAmounts); i++ {
		require.Less(t, PrettyAmounts[i-1], PrettyAmounts[i])
	}
}

func TestDecomposeAmount(t *testing.T) {
	tests := []struct {
		amount, dust uint64
		want         []uint64
	}{
		{0, 1000, nil},
		{7, 1000, []uint64{7}},
		{123456789, 1000, []uint64{100000000, 20000000, 3000000, 400000, 50000, 6000, 789}},
		{123456789, 0, []uint64{100000000, 20000000, 3000000, 400000, 50000, 6000, 700, 80, 9}},
		{12000000, 1000000, []uint64{10000000, 2000000}},
		{1000001, 1000000, []uint64{1000000, 1}},
		{1 << 44, 1000000, []uint64{10000000000000, 7000000000000, 500000000000, 90000000000, 2000000000, 100000000, 80000000, 6000000, 44416}},
	}
	for _, tt := range tests {
		got := DecomposeAmount(tt.amount, tt.dust)
		assert.Equal(t, tt.want, got, "amount %d dust %d", tt.amount, tt.dust)
	}
}

func TestDecomposeAmountSumsExactly(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	amounts := []uint64{1, 9, 10, 999999, 1000000, 1 << 44, math.MaxUint64, math.MaxUint64 - 1}
	for i := 0; i < 1000; i++ {
		amounts = append(amounts, rnd.Uint64()>>uint(rnd.Intn(64)))
	}
	for _, dust := range []uint64{0, 1000000, math.MaxUint64} {
		for _, amount := range amounts {
			var sum uint64
			chunks := DecomposeAmount(amount, dust)
			for i, c := range chunks {
				require.NotZero(t, c)
				sum += c
				// Only the last chunk may be non-canonical dust.
				if i < len(chunks)-1 {
					_, ok := IsPrettyAmount(c)
					require.True(t, ok, "chunk %d of %d", c, amount)
					require.Greater(t, c, chunks[i+1])
				}
			}
			require.Equal(t, amount, sum)
		}
	}
}

func testValidator() *Validator {
	return NewValidator(tyche.MainNetRules())
}

func repeat(amount uint64, n int) []uint64 {
	out := make([]uint64, n)
	for i := range out {
		out[i] = amount
	}
	return out
}

func TestIsFusionTransaction(t *testing.T) {
	v := testValidator()
	twelve := repeat(1000000, 12)

	tests := []struct {
		name    string
		inputs  []uint64
		outputs []uint64
		size    uint64
		want    bool
	}{
		{"valid", twelve, []uint64{10000000, 2000000}, 1000, true},
		{"outputs in any order", twelve, []uint64{2000000, 10000000}, 1000, true},
		{"at size limit", twelve, []uint64{10000000, 2000000}, 30000, true},
		{"too big", twelve, []uint64{10000000, 2000000}, 30001, false},
		{"ten inputs", repeat(1000000, 10), []uint64{10000000}, 100, false},
		{"wrong outputs", twelve, []uint64{12000000}, 1000, false},
		{"missing output", twelve, []uint64{10000000}, 1000, false},
		{"ratio", twelve, []uint64{10000000, 1000000, 500000, 500000}, 1000, false},
		{"dust input", append(repeat(1000000, 11), 999999), []uint64{10000000, 1999999}, 1000, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, v.IsFusionTransaction(tt.inputs, tt.outputs, tt.size))
		})
	}
}

// TestDustInputRejected checks that a dust input disqualifies the
// transaction even when the outputs match the decomposition of the sum.
func TestDustInputRejected(t *testing.T) {
	v := testValidator()
	inputs := append(repeat(2000000, 11), 500000)
	var sum uint64
	for _, in := range inputs {
		sum += in
	}
	outputs := DecomposeAmount(sum, tyche.DefaultEconomyRules().DustThreshold)
	require.False(t, v.IsFusionTransaction(inputs, outputs, 100))

	inputs[11] = 1000000
	sum += 500000
	require.True(t, v.IsFusionTransaction(inputs, DecomposeAmount(sum, 1000000), 100))
}

func TestIsFusionTx(t *testing.T) {
	require := require.New(t)
	v := testValidator()

	tx := &inter.Transaction{Version: 1}
	for i := 0; i < 12; i++ {
		tx.Inputs = append(tx.Inputs, inter.KeyInput{Amount: 1000000, OutputIndexes: []uint32{uint32(i)}})
		tx.Signatures = append(tx.Signatures, make([]crypto.Signature, 1))
	}
	tx.Outputs = []inter.Output{{Amount: 10000000}, {Amount: 2000000}}

	ok, err := v.IsFusionTx(tx)
	require.NoError(err)
	require.True(ok)

	tx.Outputs[1].Amount = 1999999
	ok, err = v.IsFusionTx(tx)
	require.NoError(err)
	require.False(ok)

	coinbase := &inter.Transaction{Inputs: []inter.Input{inter.BaseInput{}}}
	ok, err = v.IsFusionTx(coinbase)
	require.NoError(err)
	require.False(ok)

	tx.Signatures = tx.Signatures[:3]
	_, err = v.IsFusionTx(tx)
	require.ErrorIs(err, inter.ErrSignatureCount)
}

func TestIsAmountApplicableInFusionTransactionInput(t *testing.T) {
	v := testValidator()

	tests := []struct {
		amount, threshold uint64
		bucket            uint8
		ok                bool
	}{
		{2000000, 10000000, 6, true},
		{1000000, 10000000, 6, true},
		{9000000, 10000000, 6, true},
		{10000000, 10000000, 0, false},
		{999999, 10000000, 0, false},
		{900000, 10000000, 0, false},
		{1500000, 10000000, 0, false},
		{10000000000000000000, math.MaxUint64, 19, true},
		{9000000000000000000, math.MaxUint64, 18, true},
	}
	for _, tt := range tests {
		bucket, ok := v.IsAmountApplicableInFusionTransactionInput(tt.amount, tt.threshold)
		require.Equal(t, tt.ok, ok, "amount %d", tt.amount)
		require.Equal(t, tt.bucket, bucket, "amount %d", tt.amount)
	}
}

func TestApproximateMaximumInputCount(t *testing.T) {
	v := testValidator()

	// header 42 + one output 43 leaves 30000-85 bytes; an input without
	// mixins takes 112 bytes, each mixin adds 68.
	require.Equal(t, uint64((30000-85)/112), v.ApproximateMaximumInputCount(30000, 1, 0))
	require.Equal(t, uint64((30000-85)/(112+3*68)), v.ApproximateMaximumInputCount(30000, 1, 3))
	require.Zero(t, v.ApproximateMaximumInputCount(50, 1, 0))
}
