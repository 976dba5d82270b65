// Package narrative parses narrative command flags and audits the game
// content against the translation catalogs.
package narrative

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	entrypoint "github.com/louisbranch/theorem-trail/internal/platform/cmd"
	apperrors "github.com/louisbranch/theorem-trail/internal/platform/errors"
	"github.com/louisbranch/theorem-trail/internal/platform/i18n/catalog"
	"github.com/louisbranch/theorem-trail/internal/platform/logging"
	"github.com/louisbranch/theorem-trail/internal/services/narrative/content"
	"go.uber.org/zap"
)

// Config holds narrative command configuration.
type Config struct {
	// Locales to audit. Empty audits every catalog locale.
	Locales  []string `env:"THEOREM_TRAIL_NARRATIVE_LOCALES" envSeparator:","`
	LogLevel string   `env:"THEOREM_TRAIL_LOG_LEVEL"         envDefault:"info"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	locales := strings.Join(cfg.Locales, ",")
	fs.StringVar(&locales, "locales", locales, "comma separated locales to audit (default: all)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	cfg.Locales = splitLocales(locales)
	return cfg, nil
}

// Run audits the embedded content and prints one line per locale to out.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	logger := logging.NewForWriter(logging.Config{Level: cfg.LogLevel, Encoding: "console"}, errOut)
	defer func() { _ = logger.Sync() }()

	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceNarrative, entrypoint.RunOptions{Logger: logger}, func(context.Context) error {
		c, err := content.Embedded()
		if err != nil {
			return err
		}
		bundle := catalog.Default()
		locales := cfg.Locales
		if len(locales) == 0 {
			locales = bundle.Locales()
		}

		var failed []error
		for _, locale := range locales {
			if err := c.Audit(bundle, locale); err != nil {
				logger.Error("content audit failed", zap.String("locale", locale), apperrors.Field(err))
				fmt.Fprintf(out, "%s: FAIL\n", locale)
				failed = append(failed, fmt.Errorf("%s: %w", locale, err))
				continue
			}
			coverage := bundle.Coverage(locale)
			if len(coverage.Missing) > 0 {
				logger.Warn("untranslated keys fall back to base locale",
					zap.String("locale", locale), zap.Strings("keys", coverage.Missing))
			}
			fmt.Fprintf(out, "%s: ok (%d scenes, %d quests, %d dialogues, %.1f%% translated)\n",
				locale, len(c.Scenes.Scenes()), len(c.Quests.All()), len(c.DialogueKeys()), coverage.Completion)
		}
		return errors.Join(failed...)
	})
}

func splitLocales(value string) []string {
	var locales []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			locales = append(locales, part)
		}
	}
	return locales
}
