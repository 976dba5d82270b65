// Package playthrough parses playthrough command flags and runs a script.
package playthrough

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	entrypoint "github.com/louisbranch/theorem-trail/internal/platform/cmd"
	"github.com/louisbranch/theorem-trail/internal/platform/config"
	"github.com/louisbranch/theorem-trail/internal/platform/logging"
	"github.com/louisbranch/theorem-trail/internal/tools/playthrough"
	"go.uber.org/zap"
)

// Config holds playthrough command configuration.
type Config struct {
	Script     string        `env:"THEOREM_TRAIL_PLAYTHROUGH_FILE"`
	Locale     string        `env:"THEOREM_TRAIL_PLAYTHROUGH_LOCALE"  envDefault:"en-US"`
	Assertions bool          `env:"THEOREM_TRAIL_PLAYTHROUGH_ASSERT"  envDefault:"true"`
	Strict     bool          `env:"THEOREM_TRAIL_PLAYTHROUGH_STRICT"`
	Verbose    bool          `env:"THEOREM_TRAIL_PLAYTHROUGH_VERBOSE"`
	Timeout    time.Duration `env:"THEOREM_TRAIL_PLAYTHROUGH_TIMEOUT" envDefault:"10s"`
	LogLevel   string        `env:"THEOREM_TRAIL_LOG_LEVEL"           envDefault:"info"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Script, "script", cfg.Script, "path to playthrough lua file")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "dialogue locale")
	fs.BoolVar(&cfg.Assertions, "assert", cfg.Assertions, "enable assertions (disable to log expectations)")
	fs.BoolVar(&cfg.Strict, "strict", cfg.Strict, "stop on engine failures instead of showing the unknown scene")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable verbose logging")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "timeout per step")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the playthrough command and prints a summary to out.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if cfg.Script == "" {
		return config.Usage(errors.New("playthrough script path is required"))
	}

	logger := logging.NewForWriter(logging.Config{Level: cfg.LogLevel, Encoding: "console"}, errOut).
		With(zap.String("script", cfg.Script))
	defer func() { _ = logger.Sync() }()

	mode := playthrough.AssertionStrict
	if !cfg.Assertions {
		mode = playthrough.AssertionLogOnly
	}

	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServicePlaythrough, entrypoint.RunOptions{Logger: logger}, func(ctx context.Context) error {
		report, err := playthrough.RunFile(ctx, playthrough.Config{
			Locale:       cfg.Locale,
			Assertions:   mode,
			Verbose:      cfg.Verbose,
			Timeout:      cfg.Timeout,
			StrictEngine: cfg.Strict,
			Logger:       logger,
		}, cfg.Script)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %d steps, %d failed expectations, %s virtual time\n", report.Name, report.Steps, report.Failed, report.Elapsed)
		return nil
	})
}
