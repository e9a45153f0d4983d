package launcher

import (
	"errors"

	"gopkg.in/urfave/cli.v1"

	"github.com/tychecash/go-tyche/flags"
)

const configKey = "config"

func newApp() *cli.App {
	app := flags.NewApp("TycheCash consensus rules tool")
	app.Flags = flags.Merge(flags.CommonFlags(), flags.NetworkFlags())
	app.Commands = commands()
	app.Before = func(ctx *cli.Context) error {
		cfg, err := MakeAllConfigs(ctx)
		if err != nil {
			return err
		}
		if err := setupLogging(cfg.Logging, ctx.App.ErrWriter); err != nil {
			return err
		}
		ctx.App.Metadata = map[string]interface{}{configKey: cfg}
		return nil
	}
	return app
}

// Launch parses args and runs the selected command.
func Launch(args []string) error {
	return newApp().Run(args)
}

func configFrom(ctx *cli.Context) (Config, error) {
	cfg, ok := ctx.App.Metadata[configKey].(Config)
	if !ok {
		return Config{}, errors.New("launcher config is not initialized")
	}
	return cfg, nil
}
