package config

import (
	"strings"
	"testing"
)

type envTestConfig struct {
	Port int `env:"THEOREM_TRAIL_TEST_PORT" envDefault:"123"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("THEOREM_TRAIL_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

type prefixedConfig struct {
	Locale string `env:"LOCALE" envDefault:"en-US"`
}

func TestParseEnvWithPrefix(t *testing.T) {
	t.Setenv("THEOREM_TRAIL_LOCALE", "pt-BR")
	t.Setenv("LOCALE", "fr-FR")

	var cfg prefixedConfig
	if err := ParseEnvWithPrefix(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Locale != "pt-BR" {
		t.Fatalf("expected prefixed value, got %q", cfg.Locale)
	}
}
