package launcher

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/log"
	"github.com/evalphobia/logrus_sentry"
	"github.com/sirupsen/logrus"
)

// sentryLevels are the logrus levels forwarded to Sentry.
var sentryLevels = []logrus.Level{
	logrus.PanicLevel,
	logrus.FatalLevel,
	logrus.ErrorLevel,
}

// newLogger builds the logrus sink described by cfg.
func newLogger(cfg LoggingConfig, out io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.Out = out
	logger.SetLevel(logrus.TraceLevel)

	switch cfg.Format {
	case "json":
		logger.Formatter = &logrus.JSONFormatter{}
	case "text":
		logger.Formatter = &logrus.TextFormatter{
			ForceColors:   cfg.Color,
			DisableColors: !cfg.Color,
			FullTimestamp: true,
		}
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	if cfg.Sentry != "" {
		hook, err := logrus_sentry.NewSentryHook(cfg.Sentry, sentryLevels)
		if err != nil {
			return nil, fmt.Errorf("sentry hook: %w", err)
		}
		logger.AddHook(hook)
	}
	return logger, nil
}

// logrusHandler forwards go-ethereum log records to a logrus logger. The
// key/value context becomes logrus fields.
func logrusHandler(logger *logrus.Logger) log.Handler {
	return log.FuncHandler(func(r *log.Record) error {
		fields := make(logrus.Fields, len(r.Ctx)/2)
		for i := 0; i+1 < len(r.Ctx); i += 2 {
			key, ok := r.Ctx[i].(string)
			if !ok {
				key = fmt.Sprint(r.Ctx[i])
			}
			fields[key] = r.Ctx[i+1]
		}
		entry := logger.WithFields(fields).WithTime(r.Time)
		entry.Log(logrusLevel(r.Lvl), r.Msg)
		return nil
	})
}

func logrusLevel(lvl log.Lvl) logrus.Level {
	switch lvl {
	case log.LvlCrit:
		// Crit exits by itself; logrus must not exit a second time.
		return logrus.ErrorLevel
	case log.LvlError:
		return logrus.ErrorLevel
	case log.LvlWarn:
		return logrus.WarnLevel
	case log.LvlInfo:
		return logrus.InfoLevel
	case log.LvlDebug:
		return logrus.DebugLevel
	}
	return logrus.TraceLevel
}

// setupLogging installs the root log handler for cfg.
func setupLogging(cfg LoggingConfig, out io.Writer) error {
	logger, err := newLogger(cfg, out)
	if err != nil {
		return err
	}
	log.Root().SetHandler(log.LvlFilterHandler(log.Lvl(cfg.Verbosity), logrusHandler(logger)))
	return nil
}
