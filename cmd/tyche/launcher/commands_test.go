package launcher

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tychecash/go-tyche/difficulty"
	"github.com/tychecash/go-tyche/emission"
	"github.com/tychecash/go-tyche/tyche/genesis"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var out, errOut bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(append([]string{"tyche", "--datadir", t.TempDir()}, args...))
	return out.String(), err
}

func TestAmountCommands(t *testing.T) {
	out, err := run(t, "amount", "format", "123456789")
	require.NoError(t, err)
	require.Equal(t, "1.23456789\n", out)

	out, err = run(t, "amount", "parse", "1.5")
	require.NoError(t, err)
	require.Equal(t, "150000000\n", out)

	_, err = run(t, "amount", "parse", "1.000000001")
	require.Error(t, err)

	_, err = run(t, "amount", "format")
	require.Error(t, err)
}

func TestDecomposeCommand(t *testing.T) {
	out, err := run(t, "decompose", "1.23456789")
	require.NoError(t, err)
	require.Equal(t, "1.00000000\n0.20000000\n0.03000000\n0.00456789\n", out)

	out, err = run(t, "decompose", "--dust", "0", "0.00000012")
	require.NoError(t, err)
	require.Equal(t, "0.00000010\n0.00000002\n", out)
}

func TestParamsCommand(t *testing.T) {
	out, err := run(t, "--testnet", "params", "--height", "1000")
	require.NoError(t, err)
	require.Contains(t, out, "Genesis hash:")
	require.Contains(t, out, "testnet_blocks.bin")
	require.Contains(t, out, "testnet_poolstate.bin")
	require.Contains(t, out, "v1 (trimmed mean)")
}

func TestGenesisCommand(t *testing.T) {
	out, err := run(t, "genesis")
	require.NoError(t, err)
	require.Contains(t, out, "Coinbase:     "+genesis.CoinbaseTxHex)
	require.Contains(t, out, "Nonce:        70")

	out, err = run(t, "--network", "test", "genesis")
	require.NoError(t, err)
	require.Contains(t, out, "Nonce:        71")

	out, err = run(t, "genesis", "--generate")
	require.NoError(t, err)
	// Everything before the random output key matches.
	require.True(t, strings.HasPrefix(out, genesis.CoinbaseTxHex[:28]), out)
}

func TestRewardCommand(t *testing.T) {
	out, err := run(t, "reward", "--maxouts", "3")
	require.NoError(t, err)
	require.Contains(t, out, "Reward:          175921.86044415")
	require.Contains(t, out, "100000.00000000")
	require.Contains(t, out, "70000.00000000")
	require.Contains(t, out, "5921.86044415")
	require.Contains(t, out, "Unlock height:   10")

	_, err = run(t, "reward", "--median", "100000", "--size", "300000")
	require.ErrorIs(t, err, emission.ErrBlockTooBig)
}

func TestDifficultyCommand(t *testing.T) {
	series := make(difficulty.Series, 30)
	for i := range series {
		series[i] = difficulty.Sample{Timestamp: uint64(i) * 120, CumulativeDifficulty: uint64(i+1) * 1000}
	}
	data, err := json.Marshal(series)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "series.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	out, err := run(t, "difficulty", "--height", "0", path)
	require.NoError(t, err)
	require.Contains(t, out, "Difficulty: 1000\n")

	_, err = run(t, "difficulty", filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestAddressCommands(t *testing.T) {
	out, err := run(t, "address", "new")
	require.NoError(t, err)
	lines := strings.Split(out, "\n")
	require.True(t, strings.HasPrefix(lines[0], "Address:"))
	addr := strings.TrimSpace(strings.TrimPrefix(lines[0], "Address:"))

	out, err = run(t, "address", "parse", addr)
	require.NoError(t, err)
	require.Contains(t, out, "Spend public key:")

	last := byte('2')
	if addr[len(addr)-1] == last {
		last = '3'
	}
	_, err = run(t, "address", "parse", addr[:len(addr)-1]+string(last))
	require.Error(t, err)
}

func TestDumpConfigCommand(t *testing.T) {
	out, err := run(t, "--testnet", "dumpconfig")
	require.NoError(t, err)
	require.Contains(t, out, "[Network]")
	require.Contains(t, out, `Name = "test"`)
}

func TestInvalidGlobalFlags(t *testing.T) {
	_, err := run(t, "--log.format", "xml", "params")
	require.Error(t, err)
	_, err = run(t, "--network", "stagenet", "params")
	require.Error(t, err)
}
