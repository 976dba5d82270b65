// Package cmd holds the startup plumbing shared by the command-line tools.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/louisbranch/theorem-trail/internal/platform/config"
	"github.com/louisbranch/theorem-trail/internal/platform/otel"
	"github.com/louisbranch/theorem-trail/internal/platform/timeouts"
	"go.uber.org/zap"
)

// Service names double as tracer names and CLI identifiers.
const (
	ServiceNarrative   = "narrative"
	ServicePlaythrough = "playthrough"
)

// RunOptions controls shared entrypoint behavior for commands.
type RunOptions struct {
	// ShutdownTimeout bounds telemetry shutdown.
	ShutdownTimeout time.Duration
	// Logger defaults to zap.L().
	Logger *zap.Logger
}

// Main parses process arguments with parse, runs the command until SIGINT or
// SIGTERM and exits with the status of the first error. run writes results to
// out and diagnostics to errOut.
func Main[T any](parse func(*flag.FlagSet, []string) (T, error), run func(context.Context, T, io.Writer, io.Writer) error) {
	cfg, err := parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exit(os.Stderr, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, os.Stdout, os.Stderr)
	stop()
	config.Exit(os.Stderr, err)
}

// ParseConfig loads environment defaults into cfg. Failures are usage errors.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	return config.Usage(config.ParseEnv(cfg))
}

// ParseArgs parses command-line flags. Failures are usage errors.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if args == nil {
		args = []string{}
	}
	return config.Usage(fs.Parse(args))
}

// RunWithTelemetryAndOptions sets up tracing for service, runs the command
// and flushes spans before returning.
func RunWithTelemetryAndOptions(ctx context.Context, service string, options RunOptions, run func(context.Context) error) error {
	service = strings.TrimSpace(service)
	if service == "" {
		return fmt.Errorf("service name is required")
	}
	if run == nil {
		return fmt.Errorf("run function is required")
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.L()
	}
	logger = logger.With(zap.String("service", service))

	shutdown, err := otel.Setup(ctx, service)
	if err != nil {
		return err
	}
	defer func() {
		shutdownTimeout := options.ShutdownTimeout
		if shutdownTimeout <= 0 {
			shutdownTimeout = timeouts.TelemetryShutdown
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("otel shutdown", zap.Error(err))
		}
	}()

	started := time.Now()
	err = run(ctx)
	logger.Debug("command finished", zap.Duration("took", time.Since(started)), zap.Bool("ok", err == nil))
	return err
}
