// Package logging builds the zap loggers used across the game engine.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects level, encoding and output of a logger.
type Config struct {
	Level      string `env:"THEOREM_TRAIL_LOG_LEVEL" envDefault:"info"`
	Encoding   string `env:"THEOREM_TRAIL_LOG_ENCODING" envDefault:"console"`
	OutputPath string `env:"THEOREM_TRAIL_LOG_OUTPUT"`
}

// New builds a logger. An unknown level falls back to info and an unknown
// encoding falls back to json.
func New(cfg Config) (*zap.Logger, error) {
	encoding := strings.ToLower(strings.TrimSpace(cfg.Encoding))
	if encoding != "console" && encoding != "json" {
		encoding = "json"
	}

	outputPath := strings.TrimSpace(cfg.OutputPath)
	if outputPath == "" {
		outputPath = "stdout"
	}

	zapConfig := zap.Config{
		Level:             parseLevel(cfg.Level),
		DisableCaller:     true,
		DisableStacktrace: true,
		Encoding:          encoding,
		EncoderConfig:     encoderConfig(),
		OutputPaths:       []string{outputPath},
		ErrorOutputPaths:  []string{"stderr"},
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// NewForWriter builds a logger that writes to w. OutputPath is ignored.
func NewForWriter(cfg Config, w io.Writer) *zap.Logger {
	if w == nil {
		return zap.NewNop()
	}
	var encoder zapcore.Encoder
	if strings.EqualFold(strings.TrimSpace(cfg.Encoding), "console") {
		encoder = zapcore.NewConsoleEncoder(encoderConfig())
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig())
	}
	return zap.New(zapcore.NewCore(encoder, zapcore.AddSync(w), parseLevel(cfg.Level)))
}

func parseLevel(value string) zap.AtomicLevel {
	level := zap.NewAtomicLevel()
	logLevel := strings.ToLower(strings.TrimSpace(value))
	if logLevel == "" {
		logLevel = "info"
	}
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q, using info: %v\n", value, err)
		level.SetLevel(zap.InfoLevel)
	}
	return level
}

func encoderConfig() zapcore.EncoderConfig {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return encoderCfg
}

// OrNop returns logger, or a no-op logger when it is nil.
func OrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
