package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("load empty config: %v", err)
	}

	if cfg.Sync.LookbackDays != 91 {
		t.Errorf("expected lookback_days 91, got %d", cfg.Sync.LookbackDays)
	}
	if cfg.Sync.Interval != "15m" {
		t.Errorf("expected interval 15m, got %s", cfg.Sync.Interval)
	}
	if cfg.Grid.Weeks != 13 {
		t.Errorf("expected grid weeks 13, got %d", cfg.Grid.Weeks)
	}
	if cfg.Token.ExpiryLeeway != "60s" {
		t.Errorf("expected expiry_leeway 60s, got %s", cfg.Token.ExpiryLeeway)
	}
	if cfg.Storage.Type != "bolt" {
		t.Errorf("expected bolt storage, got %s", cfg.Storage.Type)
	}
	if cfg.Provider.BaseURL == "" {
		t.Error("expected a default provider base_url")
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
provider:
  client_id: "12345"
  client_secret: "secret"
sync:
  lookback_days: 30
grid:
  weeks: 4
storage:
  type: redis
  redis:
    host: redis.local
    port: 6380
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Provider.ClientID != "12345" {
		t.Errorf("expected client_id 12345, got %s", cfg.Provider.ClientID)
	}
	if cfg.Sync.LookbackDays != 30 {
		t.Errorf("expected lookback_days 30, got %d", cfg.Sync.LookbackDays)
	}
	if cfg.Grid.Weeks != 4 {
		t.Errorf("expected weeks 4, got %d", cfg.Grid.Weeks)
	}
	if cfg.Storage.Type != "redis" || cfg.Storage.Redis.Host != "redis.local" {
		t.Errorf("unexpected storage config: %+v", cfg.Storage)
	}
	if cfg.Storage.Redis.Port != 6380 {
		t.Errorf("expected redis port 6380, got %d", cfg.Storage.Redis.Port)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative lookback", "sync:\n  lookback_days: -1\n"},
		{"zero weeks", "grid:\n  weeks: 0\n"},
		{"unknown storage", "storage:\n  type: cassandra\n"},
		{"empty bolt path", "storage:\n  type: bolt\n  path: \"\"\n"},
		{"bad api port", "api:\n  enabled: true\n  port: 99999\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := Load(path); err == nil {
				t.Fatalf("expected error for %s", tt.name)
			}
		})
	}
}
