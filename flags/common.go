package flags

import (
	"gopkg.in/urfave/cli.v1"
)

var (
	ConfigFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	DataDirFlag = cli.StringFlag{
		Name:  "datadir",
		Usage: "Data directory the storage file names are resolved against",
		Value: "~/.tyche",
	}
	LogFormatFlag = cli.StringFlag{
		Name:  "log.format",
		Usage: "Log output format (text|json)",
		Value: "text",
	}
	LogVerbosityFlag = cli.IntFlag{
		Name:  "log.verbosity",
		Usage: "Logging verbosity (0=crit,1=error,2=warn,3=info,4=debug,5=trace)",
		Value: 3,
	}
	LogColorFlag = cli.BoolFlag{
		Name:  "log.color",
		Usage: "Enable colored log output",
	}
	LogSentryFlag = cli.StringFlag{
		Name:  "log.sentry",
		Usage: "Sentry DSN receiving error level records",
	}
)

// CommonFlags returns the base set of CLI flags shared across commands.
func CommonFlags() []cli.Flag {
	return []cli.Flag{
		ConfigFileFlag,
		DataDirFlag,
		LogFormatFlag,
		LogVerbosityFlag,
		LogColorFlag,
		LogSentryFlag,
	}
}
