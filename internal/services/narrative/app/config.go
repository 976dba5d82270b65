package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/theorem-trail/internal/platform/config"
	apperrors "github.com/louisbranch/theorem-trail/internal/platform/errors"
	"github.com/louisbranch/theorem-trail/internal/platform/timeouts"
)

// Config holds router settings.
type Config struct {
	// Locale selects dialogue audio paths and error messages.
	Locale string `env:"LOCALE"`
	// CharDelay is the typing time per rune. Zero shows lines at once.
	CharDelay time.Duration `env:"TYPING_CHAR_DELAY"`
	// SettleDelay separates a correct answer from the automatic advance.
	SettleDelay time.Duration `env:"ANSWER_SETTLE_DELAY"`
	// BadgeFadeDelay is how long completed quest badges keep fading.
	BadgeFadeDelay time.Duration `env:"BADGE_FADE_DELAY"`
	// PreloadTimeout caps the loading scene.
	PreloadTimeout time.Duration `env:"PRELOAD_TIMEOUT"`
	// Strict panics on engine-internal failures instead of degrading to the
	// unknown-scene placeholder. Meant for development builds.
	Strict bool `env:"STRICT"`
}

// DefaultConfig returns the production pacing.
func DefaultConfig() Config {
	return Config{
		Locale:         apperrors.DefaultLocale,
		CharDelay:      timeouts.TypingCharDelay,
		SettleDelay:    timeouts.AnswerSettle,
		BadgeFadeDelay: timeouts.BadgeFade,
		PreloadTimeout: timeouts.Preload,
	}
}

// LoadConfigFromEnv overlays environment variables on DefaultConfig.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	if err := config.ParseEnvWithPrefix(&cfg); err != nil {
		return Config{}, fmt.Errorf("load router config: %w", err)
	}
	return cfg.normalize(), nil
}

func (c Config) normalize() Config {
	c.Locale = strings.TrimSpace(c.Locale)
	if c.Locale == "" {
		c.Locale = apperrors.DefaultLocale
	}
	if c.CharDelay < 0 {
		c.CharDelay = 0
	}
	if c.SettleDelay < 0 {
		c.SettleDelay = 0
	}
	if c.BadgeFadeDelay < 0 {
		c.BadgeFadeDelay = 0
	}
	if c.PreloadTimeout <= 0 {
		c.PreloadTimeout = timeouts.Preload
	}
	return c
}
