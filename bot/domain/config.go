package domain

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
)

// MastodonConfig holds the registered app credentials for the destination
// instance. All fields are required.
type MastodonConfig struct {
	ClientID     string `json:"client_id" validate:"required"`
	ClientSecret string `json:"client_secret" validate:"required"`
	AccessToken  string `json:"access_token" validate:"required"`
	Domain       string `json:"domain" validate:"required"`
}

// TwitterConfig holds OAuth1 user-context credentials.
type TwitterConfig struct {
	ConsumerKey       string `json:"consumer_key" validate:"required"`
	ConsumerSecret    string `json:"consumer_secret" validate:"required"`
	AccessToken       string `json:"access_token" validate:"required"`
	AccessTokenSecret string `json:"access_token_secret" validate:"required"`
}

// DanbooruConfig holds an API key pair. Danbooru ingestion also works without
// one via the public JSON endpoint.
type DanbooruConfig struct {
	Login  string `json:"login" validate:"required"`
	APIKey string `json:"api_key" validate:"required"`
}

// PixivConfig holds the refresh token for the app API session.
type PixivConfig struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Config is the full application configuration. A nil platform block means
// that integration is disabled; callers check the capability accessors once
// at wiring time instead of probing for missing fields later.
type Config struct {
	Mastodon        MastodonConfig  `json:"mastodon" validate:"required"`
	Twitter         *TwitterConfig  `json:"twitter,omitempty"`
	Danbooru        *DanbooruConfig `json:"danbooru,omitempty"`
	Pixiv           *PixivConfig    `json:"pixiv,omitempty"`
	DBPath          string          `json:"db_path" validate:"required"`
	IntervalMinutes int             `json:"interval_minutes" validate:"min=1"`
}

func (c *Config) HasTwitter() bool  { return c.Twitter != nil }
func (c *Config) HasDanbooru() bool { return c.Danbooru != nil }
func (c *Config) HasPixiv() bool    { return c.Pixiv != nil }

// LoadConfig reads, env-overrides, and validates the configuration file.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.applyEnvOverrides()

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &cfg, nil
}

// applyEnvOverrides lets secrets live outside the config file. Only values
// that are set in the environment win.
func (c *Config) applyEnvOverrides() {
	override(&c.Mastodon.ClientID, "MASTODON_CLIENT_ID")
	override(&c.Mastodon.ClientSecret, "MASTODON_CLIENT_SECRET")
	override(&c.Mastodon.AccessToken, "MASTODON_ACCESS_TOKEN")
	override(&c.Mastodon.Domain, "MASTODON_DOMAIN")

	if c.Twitter != nil {
		override(&c.Twitter.ConsumerKey, "TWITTER_CONSUMER_KEY")
		override(&c.Twitter.ConsumerSecret, "TWITTER_CONSUMER_SECRET")
		override(&c.Twitter.AccessToken, "TWITTER_ACCESS_TOKEN")
		override(&c.Twitter.AccessTokenSecret, "TWITTER_ACCESS_TOKEN_SECRET")
	}
	if c.Danbooru != nil {
		override(&c.Danbooru.Login, "DANBOORU_LOGIN")
		override(&c.Danbooru.APIKey, "DANBOORU_API_KEY")
	}
	if c.Pixiv != nil {
		override(&c.Pixiv.RefreshToken, "PIXIV_REFRESH_TOKEN")
	}
}

func override(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
