package config

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.StatePath != "./data/vaults.json" {
		t.Fatalf("state path default mismatch: %q", cfg.StatePath)
	}
	if cfg.AuditLog != "./data/audit.jsonl" {
		t.Fatalf("audit log default mismatch: %q", cfg.AuditLog)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("log level default mismatch: %q", cfg.LogLevel)
	}
}

func TestLoadFlagsOverrideDefaults(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("state-path", "", "")
	flags.String("log-level", "", "")
	if err := flags.Parse([]string{"--state-path=/tmp/v.json", "--log-level=debug"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load("", flags)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.StatePath != "/tmp/v.json" {
		t.Fatalf("flag override missing: %q", cfg.StatePath)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("flag override missing: %q", cfg.LogLevel)
	}
}
