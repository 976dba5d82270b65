package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.log")
	logger, err := New(Config{Level: "debug", Encoding: "json", OutputPath: path})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Debug("scene mounted")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, `"level":"DEBUG"`) || !strings.Contains(line, `"timestamp"`) {
		t.Fatalf("unexpected log line %q", line)
	}
}

func TestNewFallsBackOnUnknownLevelAndEncoding(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.log")
	logger, err := New(Config{Level: "chatty", Encoding: "xml", OutputPath: path})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("expected info level fallback")
	}
	if !logger.Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("expected info level enabled")
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("expected nop logger")
	}
}

func TestNewForWriterFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewForWriter(Config{Level: "warn", Encoding: "console"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line written at warn level: %q", out)
	}
	if !strings.Contains(out, "WARN") || !strings.Contains(out, "shown") {
		t.Fatalf("warn line missing: %q", out)
	}
}

func TestNewForWriterNilWriterIsNop(t *testing.T) {
	if NewForWriter(Config{}, nil).Core().Enabled(zapcore.ErrorLevel) {
		t.Fatal("expected nop logger")
	}
}
