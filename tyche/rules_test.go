package tyche

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/stretchr/testify/require"
)

// TestMainNetRules verifies the production table against the values the
// chain was launched with.
func TestMainNetRules(t *testing.T) {
	rules := MainNetRules()

	if rules.Name != MainNetName {
		t.Errorf("Name = %q, want %q", rules.Name, MainNetName)
	}
	if rules.Testnet {
		t.Error("mainnet rules must not be flagged as testnet")
	}
	if got := rules.Economy.Coin(); got != 100000000 {
		t.Errorf("Coin() = %d, want 10^8", got)
	}
	// The very first block emits MaxUint64 >> 20.
	if got := rules.Economy.MoneySupply >> rules.Economy.EmissionSpeedFactor; got != 1<<44-1 {
		t.Errorf("genesis base reward = %d, want %d", got, uint64(1<<44-1))
	}
	if rules.Fusion.MaxSize != 30000 {
		t.Errorf("Fusion.MaxSize = %d, want 30000", rules.Fusion.MaxSize)
	}
	if err := rules.Validate(); err != nil {
		t.Fatalf("mainnet rules invalid: %v", err)
	}
}

func TestTestNetRules(t *testing.T) {
	require := require.New(t)

	test := TestNetRules()
	main := MainNetRules()
	require.True(test.Testnet)
	require.Equal(TestNetName, test.Name)
	require.NoError(test.Validate())

	test.Name, test.Testnet = main.Name, main.Testnet
	require.Equal(main, test, "testnet must only differ by its flag")
}

func TestRulesByName(t *testing.T) {
	tests := []struct {
		name    string
		testnet bool
		err     bool
	}{
		{"main", false, false},
		{"mainnet", false, false},
		{"test", true, false},
		{"testnet", true, false},
		{"fake", false, true},
		{"", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := RulesByName(tt.name)
			if tt.err {
				require.ErrorIs(t, err, ErrUnknownNetwork)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.testnet, r.Testnet)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Rules)
	}{
		{"zero emission factor", func(r *Rules) { r.Economy.EmissionSpeedFactor = 0 }},
		{"emission factor above 64", func(r *Rules) { r.Economy.EmissionSpeedFactor = 65 }},
		{"too many decimal places", func(r *Rules) { r.Economy.DecimalPlaces = 20 }},
		{"zero supply", func(r *Rules) { r.Economy.MoneySupply = 0 }},
		{"window below 2", func(r *Rules) { r.Difficulty.Window = 1; r.Difficulty.Cut = 0 }},
		{"cut too large", func(r *Rules) { r.Difficulty.Window = 10; r.Difficulty.Cut = 5 }},
		{"cut doubling wraps", func(r *Rules) { r.Difficulty.Cut = 1 << 63 }},
		{"huge window", func(r *Rules) { r.Difficulty.Window = 1 << 63 }},
		{"window above max", func(r *Rules) { r.Difficulty.Window = MaxDifficultyWindow + 1 }},
		{"huge lwma window", func(r *Rules) { r.Difficulty.LWMAWindow = math.MaxUint64 }},
		{"huge lwma2 window", func(r *Rules) { r.Difficulty.LWMA2Window = 1 << 40 }},
		{"huge retune window", func(r *Rules) { r.Difficulty.LWMA2RetuneWindow = MaxDifficultyWindow + 1 }},
		{"zero target", func(r *Rules) { r.Difficulty.Target = 0 }},
		{"target above max", func(r *Rules) { r.Difficulty.Target = MaxDifficultyTarget + 1 }},
		{"huge target", func(r *Rules) { r.Difficulty.Target = math.MaxUint64 / 5 }},
		{"huge future time limit", func(r *Rules) { r.Difficulty.FutureTimeLimit = 1 << 63 }},
		{"short lwma window", func(r *Rules) { r.Difficulty.LWMA2RetuneWindow = 1 }},
		{"decreasing upgrades", func(r *Rules) { r.Difficulty.Upgrades.V4 = r.Difficulty.Upgrades.V3 - 1 }},
		{"zero growth denominator", func(r *Rules) { r.Blocks.GrowthDenominator = 0 }},
		{"zero full reward zone", func(r *Rules) { r.Blocks.FullRewardZone = 0 }},
		{"zero fusion ratio", func(r *Rules) { r.Fusion.MinInOutCountRatio = 0 }},
		{"empty file name", func(r *Rules) { r.Files.TxPool = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := MainNetRules()
			tt.mutate(&r)
			require.ErrorIs(t, r.Validate(), ErrInvalidRules)
		})
	}

	t.Run("boundaries", func(t *testing.T) {
		r := MainNetRules()
		r.Economy.EmissionSpeedFactor = 64
		r.Economy.DecimalPlaces = MaxDecimalPlaces
		r.Difficulty.Window = 2
		r.Difficulty.Cut = 0
		require.NoError(t, r.Validate())

		r.Difficulty.Window = 10
		r.Difficulty.Cut = 4
		require.NoError(t, r.Validate())

		r.Difficulty.Window = MaxDifficultyWindow
		r.Difficulty.Cut = (MaxDifficultyWindow - 2) / 2
		r.Difficulty.LWMAWindow = MaxDifficultyWindow
		r.Difficulty.LWMA2Window = MaxDifficultyWindow
		r.Difficulty.LWMA2RetuneWindow = MaxDifficultyWindow
		r.Difficulty.Target = MaxDifficultyTarget
		r.Difficulty.FutureTimeLimit = MaxDifficultyTarget
		require.NoError(t, r.Validate())

		r.Difficulty.Window = 11
		r.Difficulty.Cut = 4
		require.NoError(t, r.Validate())
		r.Difficulty.Cut = 5
		require.ErrorIs(t, r.Validate(), ErrInvalidRules)
	})
}

func TestMaxCumulativeSize(t *testing.T) {
	require := require.New(t)
	b := DefaultBlocksRules()

	size, err := b.MaxCumulativeSize(0)
	require.NoError(err)
	require.Equal(b.MaxSizeInitial, size)

	// One year of blocks grows the cap by 100 KiB.
	size, err = b.MaxCumulativeSize(idx.Block(b.GrowthDenominator))
	require.NoError(err)
	require.Equal(b.MaxSizeInitial+100*1024, size)

	// Floor division.
	size, err = b.MaxCumulativeSize(1)
	require.NoError(err)
	require.Equal(b.MaxSizeInitial+100*1024/b.GrowthDenominator, size)

	_, err = b.MaxCumulativeSize(idx.Block(math.MaxUint64))
	require.ErrorIs(err, ErrSizeOverflow)

	b.GrowthNumerator = 1
	b.GrowthDenominator = 1
	b.MaxSizeInitial = math.MaxUint64
	_, err = b.MaxCumulativeSize(1)
	require.ErrorIs(err, ErrSizeOverflow)
}

func TestFileNamesWithPrefix(t *testing.T) {
	f := DefaultFileNames().WithPrefix(TestnetFilePrefix)
	require.Equal(t, FileNames{
		Blocks:       "testnet_blocks.bin",
		BlocksCache:  "testnet_blockscache.bin",
		BlockIndexes: "testnet_blockindexes.bin",
		TxPool:       "testnet_poolstate.bin",
	}, f)
}

// TestRulesCopy checks that mutating a copy leaves the original intact.
func TestRulesCopy(t *testing.T) {
	original := MainNetRules()
	copied := original.Copy()
	copied.Difficulty.Upgrades.V5 = 1
	copied.Files.Blocks = "x"
	require.NotEqual(t, original.Difficulty.Upgrades.V5, copied.Difficulty.Upgrades.V5)
	require.Equal(t, "blocks.bin", original.Files.Blocks)
}

func TestRulesString(t *testing.T) {
	r := MainNetRules()
	var decoded Rules
	require.NoError(t, json.Unmarshal([]byte(r.String()), &decoded))
	require.Equal(t, r, decoded)
}
