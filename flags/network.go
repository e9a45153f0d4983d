package flags

import (
	"gopkg.in/urfave/cli.v1"
)

var (
	NetworkFlag = cli.StringFlag{
		Name:  "network",
		Usage: "Rule set to use (main|test)",
		Value: "main",
	}
	TestnetFlag = cli.BoolFlag{
		Name:  "testnet",
		Usage: "Shorthand for --network test",
	}
)

// NetworkFlags selects the consensus rule set.
func NetworkFlags() []cli.Flag {
	return []cli.Flag{
		NetworkFlag,
		TestnetFlag,
	}
}
