package domain

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("failed to write config fixture: %v", err)
	}
	return path
}

const mastodonOnly = `{
	"mastodon": {
		"client_id": "id",
		"client_secret": "secret",
		"access_token": "token",
		"domain": "pawoo.net"
	},
	"db_path": "db.json",
	"interval_minutes": 30
}`

func TestLoadConfigMastodonOnly(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, mastodonOnly))
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.HasTwitter() {
		t.Error("expected Twitter integration to be disabled")
	}
	if cfg.HasDanbooru() {
		t.Error("expected Danbooru integration to be disabled")
	}
	if cfg.HasPixiv() {
		t.Error("expected Pixiv integration to be disabled")
	}
	if cfg.IntervalMinutes != 30 {
		t.Errorf("IntervalMinutes = %d, want 30", cfg.IntervalMinutes)
	}
}

func TestLoadConfigRejectsIncomplete(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "missing mastodon token",
			body: `{"mastodon": {"client_id": "id", "client_secret": "s", "domain": "d"}, "db_path": "db.json", "interval_minutes": 5}`,
		},
		{
			name: "missing db path",
			body: `{"mastodon": {"client_id": "id", "client_secret": "s", "access_token": "t", "domain": "d"}, "interval_minutes": 5}`,
		},
		{
			name: "zero interval",
			body: `{"mastodon": {"client_id": "id", "client_secret": "s", "access_token": "t", "domain": "d"}, "db_path": "db.json", "interval_minutes": 0}`,
		},
		{
			name: "partial twitter block",
			body: `{"mastodon": {"client_id": "id", "client_secret": "s", "access_token": "t", "domain": "d"}, "twitter": {"consumer_key": "k"}, "db_path": "db.json", "interval_minutes": 5}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tt.body)); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("MASTODON_ACCESS_TOKEN", "from-env")

	cfg, err := LoadConfig(writeConfig(t, mastodonOnly))
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Mastodon.AccessToken != "from-env" {
		t.Errorf("AccessToken = %q, want %q", cfg.Mastodon.AccessToken, "from-env")
	}
}
