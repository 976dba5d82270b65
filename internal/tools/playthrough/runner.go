package playthrough

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/louisbranch/theorem-trail/internal/platform/i18n/catalog"
	"github.com/louisbranch/theorem-trail/internal/platform/logging"
	"github.com/louisbranch/theorem-trail/internal/services/narrative/app"
	"github.com/louisbranch/theorem-trail/internal/services/narrative/domain/bus"
	"github.com/louisbranch/theorem-trail/internal/services/narrative/domain/pacing"
	"github.com/louisbranch/theorem-trail/internal/services/narrative/domain/state"
	"go.uber.org/zap"
)

// Config controls playthrough execution.
type Config struct {
	Locale     string
	Assertions AssertionMode
	Verbose    bool
	// Timeout bounds each step, including waits for the loading scene.
	Timeout time.Duration
	// StrictEngine makes engine-internal failures stop the run instead of
	// rendering the unknown-scene placeholder.
	StrictEngine bool
	Logger       *zap.Logger
}

// DefaultConfig returns default runner configuration.
func DefaultConfig() Config {
	return Config{
		Locale:     "en-US",
		Assertions: AssertionStrict,
		Timeout:    10 * time.Second,
	}
}

// Report summarises a finished playthrough.
type Report struct {
	Name  string
	Steps int
	// Failed counts expectations that failed in log-only mode.
	Failed int
	// Elapsed is the virtual time that passed during the run.
	Elapsed time.Duration
}

// Runner executes playthroughs, each on a fresh session.
type Runner struct {
	cfg        Config
	assertions *Assertions
	logger     *zap.Logger
	timeout    time.Duration
}

// NewRunner prepares a runner. Defaults (logger, timeout, locale) are
// applied here.
func NewRunner(cfg Config) *Runner {
	logger := logging.OrNop(cfg.Logger)
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if cfg.Locale == "" {
		cfg.Locale = "en-US"
	}
	return &Runner{
		cfg:        cfg,
		assertions: &Assertions{Mode: cfg.Assertions, Logger: logger},
		logger:     logger,
		timeout:    timeout,
	}
}

// RunFile loads and executes a playthrough script.
func RunFile(ctx context.Context, cfg Config, path string) (Report, error) {
	p, err := LoadFromFile(path)
	if err != nil {
		return Report{}, err
	}
	return NewRunner(cfg).Run(ctx, p)
}

// session is the engine under test for one run.
type session struct {
	router *app.Router
	clock  *pacing.ManualClock
	store  *state.Store
	start  time.Time
}

// Run executes the steps of p against a fresh engine.
func (r *Runner) Run(ctx context.Context, p *Playthrough) (Report, error) {
	if p == nil {
		return Report{}, errors.New("playthrough is required")
	}
	r.assertions.Failed = 0
	r.logf("playthrough start", zap.String("playthrough", p.Name), zap.Int("steps", len(p.Steps)))

	s, err := r.newSession(ctx, p.Seed)
	if err != nil {
		return Report{}, err
	}
	defer s.router.Close()

	report := Report{Name: p.Name, Steps: len(p.Steps)}
	startCtx, cancel := context.WithTimeout(ctx, r.timeout)
	err = s.waitForLoading(startCtx)
	cancel()
	if err != nil {
		return report, err
	}

	for index, step := range p.Steps {
		stepNumber := index + 1
		r.logf("step start", zap.Int("step", stepNumber), zap.String("kind", step.Kind))
		stepCtx, cancel := context.WithTimeout(ctx, r.timeout)
		err := r.runStepSafely(stepCtx, s, step)
		cancel()
		if err != nil {
			report.Failed = r.assertions.Failed
			report.Elapsed = s.clock.Now().Sub(s.start)
			return report, fmt.Errorf("step %d (%s): %w", stepNumber, step.Kind, err)
		}
	}

	report.Failed = r.assertions.Failed
	report.Elapsed = s.clock.Now().Sub(s.start)
	r.logf("playthrough done", zap.String("playthrough", p.Name), zap.Int("failed", report.Failed))
	return report, nil
}

func (r *Runner) newSession(ctx context.Context, seed Seed) (*session, error) {
	start := time.Unix(0, 0).UTC()
	clock := pacing.NewManualClock(start)
	store := state.NewStoreFrom(seed.gameState())

	cfg := app.DefaultConfig()
	cfg.Locale = r.cfg.Locale
	cfg.Strict = r.cfg.StrictEngine

	router, err := app.New(cfg, app.Deps{
		Store:      store,
		Bus:        bus.New(),
		Clock:      clock,
		Translator: catalog.Default().Translator(r.cfg.Locale),
		Logger:     r.logger.Named("engine"),
	})
	if err != nil {
		return nil, fmt.Errorf("create router: %w", err)
	}
	if err := router.Start(ctx); err != nil {
		return nil, fmt.Errorf("start router: %w", err)
	}
	return &session{router: router, clock: clock, store: store, start: start}, nil
}

func (r *Runner) runStepSafely(ctx context.Context, s *session, step Step) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("engine panic: %v", recovered)
		}
	}()
	if err := r.runStep(s, step); err != nil {
		return err
	}
	return s.waitForLoading(ctx)
}

// waitForLoading blocks while the loading scene preloads assets.
func (s *session) waitForLoading(ctx context.Context) error {
	for s.router.CurrentScene().Loading {
		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for loading scene: %w", ctx.Err())
		case <-time.After(time.Millisecond):
		}
	}
	return nil
}

func (seed Seed) gameState() state.GameState {
	updaters := make([]state.Updater, 0, len(seed.CompletedQuests)+len(seed.CompletedEvents)+len(seed.DialogueShown)+1)
	for _, id := range seed.CompletedQuests {
		updaters = append(updaters, state.CompleteQuest(id))
	}
	for _, id := range seed.CompletedEvents {
		updaters = append(updaters, state.CompleteEvent(id))
	}
	for _, key := range seed.DialogueShown {
		updaters = append(updaters, state.MarkDialogueShown(key))
	}
	if seed.ActiveQuest != "" {
		updaters = append(updaters, state.SelectQuest(seed.ActiveQuest))
	}
	return state.Compose(updaters...)(state.New("", seed.SceneID))
}

func (r *Runner) logf(msg string, fields ...zap.Field) {
	if r.cfg.Verbose {
		r.logger.Info(msg, fields...)
		return
	}
	r.logger.Debug(msg, fields...)
}
