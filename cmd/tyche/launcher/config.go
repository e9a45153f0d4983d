package launcher

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"unicode"

	"github.com/naoina/toml"
	"gopkg.in/urfave/cli.v1"

	"github.com/tychecash/go-tyche/flags"
	"github.com/tychecash/go-tyche/tyche"
)

// Config aggregates every setting the launcher needs.
type Config struct {
	Node    NodeConfig
	Network NetworkConfig
	Logging LoggingConfig
}

type NodeConfig struct {
	DataDir string
}

type NetworkConfig struct {
	Name string
}

type LoggingConfig struct {
	Verbosity int
	Format    string
	Color     bool
	// Sentry is the DSN of the error reporting endpoint. Empty disables it.
	Sentry string
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		link := ""
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://pkg.go.dev/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

func defaultConfig() Config {
	d := DefaultConfig()
	return Config{
		Node: NodeConfig{
			DataDir: resolvePath(d.Node.DataDir),
		},
		Network: NetworkConfig{
			Name: d.Network.Name,
		},
		Logging: LoggingConfig{
			Verbosity: d.Logging.Verbosity,
			Format:    d.Logging.Format,
			Color:     d.Logging.Color,
		},
	}
}

// MakeAllConfigs merges defaults, the optional config file and CLI flag
// overrides into a single config struct, in that order.
func MakeAllConfigs(ctx *cli.Context) (Config, error) {
	cfg := defaultConfig()

	if file := ctx.GlobalString(flags.ConfigFileFlag.Name); file != "" {
		if err := loadConfigFile(file, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to load config file %s: %w", file, err)
		}
	}

	applyCLIOverrides(ctx, &cfg)

	if _, err := tyche.RulesByName(cfg.Network.Name); err != nil {
		return cfg, err
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		return cfg, fmt.Errorf("unknown log format %q", cfg.Logging.Format)
	}
	return cfg, nil
}

func loadConfigFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	var lineErr *toml.LineError
	if errors.As(err, &lineErr) {
		err = errors.New(path + ", " + err.Error())
	}
	if err != nil {
		return err
	}
	cfg.Node.DataDir = resolvePath(cfg.Node.DataDir)
	return nil
}

// DumpConfig renders cfg as TOML.
func DumpConfig(cfg Config) ([]byte, error) {
	return tomlSettings.Marshal(&cfg)
}

func applyCLIOverrides(ctx *cli.Context, cfg *Config) {
	if ctx.GlobalIsSet(flags.DataDirFlag.Name) {
		cfg.Node.DataDir = resolvePath(ctx.GlobalString(flags.DataDirFlag.Name))
	}

	if ctx.GlobalIsSet(flags.NetworkFlag.Name) {
		cfg.Network.Name = ctx.GlobalString(flags.NetworkFlag.Name)
	}
	if ctx.GlobalBool(flags.TestnetFlag.Name) {
		cfg.Network.Name = tyche.TestNetName
	}

	if ctx.GlobalIsSet(flags.LogFormatFlag.Name) {
		cfg.Logging.Format = ctx.GlobalString(flags.LogFormatFlag.Name)
	}
	if ctx.GlobalIsSet(flags.LogVerbosityFlag.Name) {
		cfg.Logging.Verbosity = ctx.GlobalInt(flags.LogVerbosityFlag.Name)
	}
	if ctx.GlobalIsSet(flags.LogColorFlag.Name) {
		cfg.Logging.Color = ctx.GlobalBool(flags.LogColorFlag.Name)
	}
	if ctx.GlobalIsSet(flags.LogSentryFlag.Name) {
		cfg.Logging.Sentry = ctx.GlobalString(flags.LogSentryFlag.Name)
	}
}

// StoragePaths resolves storage file names against the data directory.
func (c Config) StoragePaths(files tyche.FileNames) tyche.FileNames {
	return tyche.FileNames{
		Blocks:       filepath.Join(c.Node.DataDir, files.Blocks),
		BlocksCache:  filepath.Join(c.Node.DataDir, files.BlocksCache),
		BlockIndexes: filepath.Join(c.Node.DataDir, files.BlockIndexes),
		TxPool:       filepath.Join(c.Node.DataDir, files.TxPool),
	}
}

func resolvePath(p string) string {
	if strings.HasPrefix(p, "~") {
		return filepath.Join(GuessHomeDir(), strings.TrimPrefix(p, "~"))
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(GuessWorkDir(), p)
}

func GuessWorkDir() string {
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func GuessHomeDir() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return dir
	}
	return "."
}
