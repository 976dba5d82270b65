package narrative

import (
	"bytes"
	"context"
	"flag"
	"strings"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("narrative", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if len(cfg.Locales) != 0 {
		t.Fatalf("expected no locales, got %v", cfg.Locales)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("THEOREM_TRAIL_NARRATIVE_LOCALES", "en-US")
	fs := flag.NewFlagSet("narrative", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-locales", " pt-BR, ,en-US"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if strings.Join(cfg.Locales, ",") != "pt-BR,en-US" {
		t.Fatalf("expected locale override, got %v", cfg.Locales)
	}
}

func TestRunAuditsEveryLocale(t *testing.T) {
	t.Setenv("THEOREM_TRAIL_OTEL_ENABLED", "false")
	var out bytes.Buffer
	if err := Run(context.Background(), Config{LogLevel: "error"}, &out, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, locale := range []string{"en-US", "pt-BR"} {
		if !strings.Contains(out.String(), locale+": ok") {
			t.Fatalf("missing %s line in %q", locale, out.String())
		}
	}
}

func TestRunFailsForUnknownLocale(t *testing.T) {
	t.Setenv("THEOREM_TRAIL_OTEL_ENABLED", "false")
	var out bytes.Buffer
	err := Run(context.Background(), Config{Locales: []string{"fr-FR"}, LogLevel: "error"}, &out, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(out.String(), "fr-FR: FAIL") {
		t.Fatalf("unexpected output %q", out.String())
	}
}
