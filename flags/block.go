package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// Flags describing a candidate block, shared by the reward and difficulty
// commands.
var (
	HeightFlag = cli.Uint64Flag{
		Name:  "height",
		Usage: "Height of the candidate block",
	}
	MedianSizeFlag = cli.Uint64Flag{
		Name:  "median",
		Usage: "Median cumulative size of the recent blocks in bytes",
	}
	BlockSizeFlag = cli.Uint64Flag{
		Name:  "size",
		Usage: "Cumulative size of the candidate block in bytes",
	}
	GeneratedFlag = cli.Uint64Flag{
		Name:  "generated",
		Usage: "Atomic units emitted before the candidate block",
	}
	FeeFlag = cli.Uint64Flag{
		Name:  "fee",
		Usage: "Total fee of the included transactions in atomic units",
	}
	MaxOutputsFlag = cli.IntFlag{
		Name:  "maxouts",
		Usage: "Maximum number of coinbase outputs",
		Value: 1,
	}
	DustFlag = cli.Uint64Flag{
		Name:  "dust",
		Usage: "Dust threshold overriding the network default",
	}
)

// BlockFlags returns the candidate block flags.
func BlockFlags() []cli.Flag {
	return []cli.Flag{
		HeightFlag,
		MedianSizeFlag,
		BlockSizeFlag,
		GeneratedFlag,
		FeeFlag,
	}
}
