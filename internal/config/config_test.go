package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  port: "9090"
  cors_origins: ["http://localhost:5173"]
log:
  level: debug
  format: json
redis:
  addr: localhost:6379
  ttl: 15m
trivia:
  api_url: https://opentdb.com/api.php
  over_fetch: 40
  timeout: 5s
results:
  ttl: 24h
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || len(cfg.Server.CORSOrigins) != 1 {
		t.Fatalf("unexpected server section %+v", cfg.Server)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Fatalf("unexpected log section %+v", cfg.Log)
	}
	if cfg.Trivia.OverFetch != 40 || TTLDuration(cfg.Trivia.Timeout, 0) != 5*time.Second {
		t.Fatalf("unexpected trivia section %+v", cfg.Trivia)
	}
	if cfg.Postgres.URL != "" {
		t.Fatalf("absent postgres section must stay empty")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestTTLDuration(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Duration
	}{
		{"", time.Minute},
		{"garbage", time.Minute},
		{"90s", 90 * time.Second},
	}
	for _, tc := range cases {
		if got := TTLDuration(tc.raw, time.Minute); got != tc.want {
			t.Fatalf("TTLDuration(%q) = %s, want %s", tc.raw, got, tc.want)
		}
	}
}
