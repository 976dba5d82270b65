package playthrough

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/theorem-trail/internal/platform/config"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("playthrough", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if !cfg.Assertions {
		t.Fatal("expected assertions to default to true")
	}
	if cfg.Timeout != 10*time.Second {
		t.Fatalf("expected default timeout 10s, got %s", cfg.Timeout)
	}
	if cfg.Locale != "en-US" {
		t.Fatalf("expected default locale en-US, got %q", cfg.Locale)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("THEOREM_TRAIL_PLAYTHROUGH_LOCALE", "pt-BR")
	fs := flag.NewFlagSet("playthrough", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, []string{"-script", "journey.lua", "-assert=false", "-strict", "-timeout", "2s"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Script != "journey.lua" {
		t.Fatalf("expected script override, got %q", cfg.Script)
	}
	if cfg.Assertions {
		t.Fatal("expected assertions disabled")
	}
	if !cfg.Strict {
		t.Fatal("expected strict engine")
	}
	if cfg.Timeout != 2*time.Second {
		t.Fatalf("expected timeout 2s, got %s", cfg.Timeout)
	}
	if cfg.Locale != "pt-BR" {
		t.Fatalf("expected locale from env, got %q", cfg.Locale)
	}
}

func TestRunRequiresScript(t *testing.T) {
	err := Run(context.Background(), Config{}, nil, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if config.ExitCode(err) != config.ExitUsage {
		t.Fatalf("exit code = %d, want usage", config.ExitCode(err))
	}
}

func TestRunPrintsSummary(t *testing.T) {
	t.Setenv("THEOREM_TRAIL_OTEL_ENABLED", "false")
	path := filepath.Join(t.TempDir(), "title.lua")
	script := `return Playthrough.new("title"):expect_scene("title"):advance():expect_scene("narrator")`
	if err := os.WriteFile(path, []byte(script), 0o600); err != nil {
		t.Fatalf("write script: %v", err)
	}

	var out, errOut bytes.Buffer
	err := Run(context.Background(), Config{
		Script:     path,
		Locale:     "en-US",
		Assertions: true,
		Timeout:    5 * time.Second,
		LogLevel:   "error",
	}, &out, &errOut)
	if err != nil {
		t.Fatalf("run: %v (log: %s)", err, errOut.String())
	}
	if !strings.Contains(out.String(), "title: 3 steps, 0 failed expectations") {
		t.Fatalf("unexpected summary %q", out.String())
	}
}
