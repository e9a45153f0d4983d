package launcher

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/dustin/go-humanize"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"gopkg.in/urfave/cli.v1"

	"github.com/tychecash/go-tyche/address"
	"github.com/tychecash/go-tyche/amount"
	"github.com/tychecash/go-tyche/crypto"
	"github.com/tychecash/go-tyche/currency"
	"github.com/tychecash/go-tyche/difficulty"
	"github.com/tychecash/go-tyche/flags"
	"github.com/tychecash/go-tyche/fusion"
	"github.com/tychecash/go-tyche/miner"
	"github.com/tychecash/go-tyche/tyche"
	"github.com/tychecash/go-tyche/tyche/genesis"
)

var generateFlag = cli.BoolFlag{
	Name:  "generate",
	Usage: "Generate a fresh genesis coinbase instead of printing the hard-coded one",
}

func commands() []cli.Command {
	return []cli.Command{
		{
			Name:   "params",
			Usage:  "Print the consensus rules of the selected network",
			Flags:  []cli.Flag{flags.HeightFlag},
			Action: paramsAction,
		},
		{
			Name:   "genesis",
			Usage:  "Print the genesis block",
			Flags:  []cli.Flag{generateFlag},
			Action: genesisAction,
		},
		{
			Name:   "reward",
			Usage:  "Compute the reward of a candidate block",
			Flags:  append(flags.BlockFlags(), flags.MaxOutputsFlag),
			Action: rewardAction,
		},
		{
			Name:      "difficulty",
			Usage:     "Compute the next difficulty from a JSON file of samples",
			ArgsUsage: "<series.json>",
			Flags:     []cli.Flag{flags.HeightFlag},
			Action:    difficultyAction,
		},
		{
			Name:      "decompose",
			Usage:     "Split an amount into canonical denominations",
			ArgsUsage: "<amount>",
			Flags:     []cli.Flag{flags.DustFlag},
			Action:    decomposeAction,
		},
		{
			Name:  "amount",
			Usage: "Convert between atomic units and coins",
			Subcommands: []cli.Command{
				{
					Name:      "format",
					Usage:     "Render atomic units as coins",
					ArgsUsage: "<units>",
					Action:    amountFormatAction,
				},
				{
					Name:      "parse",
					Usage:     "Convert coins to atomic units",
					ArgsUsage: "<coins>",
					Action:    amountParseAction,
				},
			},
		},
		{
			Name:  "address",
			Usage: "Create and inspect account addresses",
			Subcommands: []cli.Command{
				{
					Name:   "new",
					Usage:  "Generate a random account",
					Action: addressNewAction,
				},
				{
					Name:      "parse",
					Usage:     "Decode an address of the selected network",
					ArgsUsage: "<address>",
					Action:    addressParseAction,
				},
			},
		},
		{
			Name:   "dumpconfig",
			Usage:  "Print the effective configuration as TOML",
			Action: dumpConfigAction,
		},
	}
}

func currencyFrom(ctx *cli.Context) (*currency.Currency, Config, error) {
	cfg, err := configFrom(ctx)
	if err != nil {
		return nil, cfg, err
	}
	rules, err := tyche.RulesByName(cfg.Network.Name)
	if err != nil {
		return nil, cfg, err
	}
	cur, err := currency.New(rules, log.New("module", "currency"))
	return cur, cfg, err
}

func requireArgs(ctx *cli.Context, n int) error {
	if ctx.NArg() != n {
		return fmt.Errorf("%s: expected %d argument(s), got %d", ctx.Command.Name, n, ctx.NArg())
	}
	return nil
}

func paramsAction(ctx *cli.Context) error {
	cur, cfg, err := currencyFrom(ctx)
	if err != nil {
		return err
	}
	rules := cur.Rules()
	height := idx.Block(ctx.Uint64(flags.HeightFlag.Name))
	maxSize, err := cur.MaxBlockCumulativeSize(height)
	if err != nil {
		return err
	}
	paths := cfg.StoragePaths(cur.Files())

	w := ctx.App.Writer
	fmt.Fprintln(w, rules.String())
	fmt.Fprintf(w, "Genesis hash:        %s\n", cur.GenesisBlockHash().Hex())
	fmt.Fprintf(w, "Coin:                %s atomic units\n", humanize.Comma(int64(cur.Coin())))
	fmt.Fprintf(w, "Full reward zone:    %s\n", humanize.Bytes(rules.Blocks.FullRewardZone))
	fmt.Fprintf(w, "Max block size @%d: %s\n", height, humanize.Bytes(maxSize))
	fmt.Fprintf(w, "Difficulty:          %s\n", cur.DifficultyAlgorithm(height).Version())
	fmt.Fprintf(w, "Blocks file:         %s\n", paths.Blocks)
	fmt.Fprintf(w, "Blocks cache file:   %s\n", paths.BlocksCache)
	fmt.Fprintf(w, "Block indexes file:  %s\n", paths.BlockIndexes)
	fmt.Fprintf(w, "Pool state file:     %s\n", paths.TxPool)
	return nil
}

func genesisAction(ctx *cli.Context) error {
	cur, _, err := currencyFrom(ctx)
	if err != nil {
		return err
	}
	w := ctx.App.Writer

	if ctx.Bool(generateFlag.Name) {
		tx, err := genesis.GenerateTransaction(miner.NewBuilder(cur.Rules()))
		if err != nil {
			return err
		}
		raw, err := tx.MarshalBinary()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, common.Bytes2Hex(raw))
		return nil
	}

	block := cur.GenesisBlock()
	raw, err := block.BaseTransaction.MarshalBinary()
	if err != nil {
		return err
	}
	blob, err := block.HashingBlob()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Hash:         %s\n", cur.GenesisBlockHash().Hex())
	fmt.Fprintf(w, "Nonce:        %d\n", block.Nonce)
	fmt.Fprintf(w, "Coinbase:     %s\n", common.Bytes2Hex(raw))
	fmt.Fprintf(w, "Hashing blob: %s\n", common.Bytes2Hex(blob))
	return nil
}

func rewardAction(ctx *cli.Context) error {
	cur, _, err := currencyFrom(ctx)
	if err != nil {
		return err
	}
	median := ctx.Uint64(flags.MedianSizeFlag.Name)
	size := ctx.Uint64(flags.BlockSizeFlag.Name)
	generated := ctx.Uint64(flags.GeneratedFlag.Name)
	fee := ctx.Uint64(flags.FeeFlag.Name)

	reward, err := cur.BlockReward(median, size, generated, fee)
	if err != nil {
		return err
	}

	w := ctx.App.Writer
	fmt.Fprintf(w, "Reward:          %s (%s units)\n", cur.FormatAmount(reward.Reward), humanize.Comma(int64(reward.Reward)))
	fmt.Fprintf(w, "Emission change: %s\n", cur.FormatSignedAmount(reward.EmissionChange))

	// Preview the coinbase split; keys are irrelevant here.
	tx, err := cur.ConstructMinerTx(miner.Request{
		Height:           idx.Block(ctx.Uint64(flags.HeightFlag.Name)),
		MedianSize:       median,
		AlreadyGenerated: generated,
		CurrentBlockSize: size,
		Fee:              fee,
		MaxOutputs:       ctx.Int(flags.MaxOutputsFlag.Name),
	})
	if err != nil {
		return err
	}
	for i, out := range tx.Outputs {
		fmt.Fprintf(w, "Output %-2d        %s\n", i, cur.FormatAmount(out.Amount))
	}
	fmt.Fprintf(w, "Unlock height:   %d\n", tx.UnlockTime)
	return nil
}

func difficultyAction(ctx *cli.Context) error {
	if err := requireArgs(ctx, 1); err != nil {
		return err
	}
	cur, _, err := currencyFrom(ctx)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(ctx.Args().First())
	if err != nil {
		return err
	}
	var series difficulty.Series
	if err := json.Unmarshal(data, &series); err != nil {
		return fmt.Errorf("decode samples: %w", err)
	}

	height := idx.Block(ctx.Uint64(flags.HeightFlag.Name))
	next, err := cur.NextDifficulty(height, series)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "Algorithm:  %s\n", cur.DifficultyAlgorithm(height).Version())
	fmt.Fprintf(ctx.App.Writer, "Difficulty: %d\n", next)
	return nil
}

func decomposeAction(ctx *cli.Context) error {
	if err := requireArgs(ctx, 1); err != nil {
		return err
	}
	cur, _, err := currencyFrom(ctx)
	if err != nil {
		return err
	}
	value, err := cur.ParseAmount(ctx.Args().First())
	if err != nil {
		return err
	}
	dust := cur.Rules().Economy.DustThreshold
	if ctx.IsSet(flags.DustFlag.Name) {
		dust = ctx.Uint64(flags.DustFlag.Name)
	}
	for _, c := range fusion.DecomposeAmount(value, dust) {
		fmt.Fprintln(ctx.App.Writer, cur.FormatAmount(c))
	}
	return nil
}

func economyFormatter(ctx *cli.Context) (*amount.Formatter, error) {
	cfg, err := configFrom(ctx)
	if err != nil {
		return nil, err
	}
	rules, err := tyche.RulesByName(cfg.Network.Name)
	if err != nil {
		return nil, err
	}
	return amount.NewFormatter(rules.Economy), nil
}

func amountFormatAction(ctx *cli.Context) error {
	if err := requireArgs(ctx, 1); err != nil {
		return err
	}
	f, err := economyFormatter(ctx)
	if err != nil {
		return err
	}
	units, err := strconv.ParseInt(ctx.Args().First(), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %v", amount.ErrInvalidAmount, err)
	}
	fmt.Fprintln(ctx.App.Writer, f.FormatSigned(units))
	return nil
}

func amountParseAction(ctx *cli.Context) error {
	if err := requireArgs(ctx, 1); err != nil {
		return err
	}
	f, err := economyFormatter(ctx)
	if err != nil {
		return err
	}
	units, err := f.ParseSigned(ctx.Args().First())
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.App.Writer, units)
	return nil
}

func addressNewAction(ctx *cli.Context) error {
	cur, _, err := currencyFrom(ctx)
	if err != nil {
		return err
	}
	spend, err := crypto.GenerateKeyPair(rand.Reader)
	if err != nil {
		return err
	}
	view, err := crypto.GenerateKeyPair(rand.Reader)
	if err != nil {
		return err
	}
	addr := address.AccountAddress{SpendPublicKey: spend.PublicKey, ViewPublicKey: view.PublicKey}

	w := ctx.App.Writer
	fmt.Fprintf(w, "Address:      %s\n", cur.AccountAddressAsString(addr))
	fmt.Fprintf(w, "Spend secret: %x\n", spend.SecretKey[:])
	fmt.Fprintf(w, "View secret:  %x\n", view.SecretKey[:])
	return nil
}

func addressParseAction(ctx *cli.Context) error {
	if err := requireArgs(ctx, 1); err != nil {
		return err
	}
	cur, _, err := currencyFrom(ctx)
	if err != nil {
		return err
	}
	addr, err := cur.ParseAccountAddressString(ctx.Args().First())
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.App.Writer, "Spend public key: %s\n", addr.SpendPublicKey)
	fmt.Fprintf(ctx.App.Writer, "View public key:  %s\n", addr.ViewPublicKey)
	return nil
}

func dumpConfigAction(ctx *cli.Context) error {
	cfg, err := configFrom(ctx)
	if err != nil {
		return err
	}
	out, err := DumpConfig(cfg)
	if err != nil {
		return err
	}
	_, err = ctx.App.Writer.Write(out)
	return err
}
