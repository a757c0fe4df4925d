package blog

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mengkeat/blog/content"
	"github.com/mengkeat/blog/views"
)

// SiteConfig holds all configuration for the site tooling.
type SiteConfig struct {
	Name        string `mapstructure:"name"`        // Site name (default "mengkeat")
	URL         string `mapstructure:"url"`         // Canonical URL (default "https://mengkeat.github.io")
	Description string `mapstructure:"description"` // Used in feeds and meta tags
	Author      string `mapstructure:"author"`      // Default "Chris Meng"

	Addr       string `mapstructure:"addr"`        // Preview listen address (default ":4321")
	ContentDir string `mapstructure:"content_dir"` // Collections root (default "src/content")
	IndexPath  string `mapstructure:"index_path"`  // SQLite index path (default "data/content.db")
	UseIndex   bool   `mapstructure:"use_index"`   // Serve from the SQLite index instead of files

	SessionSecret string `mapstructure:"session_secret"` // Random per process when empty
	CookieSecure  bool   `mapstructure:"cookie_secure"`

	CacheTTL      time.Duration `mapstructure:"cache_ttl"`      // Tag cache TTL (default 5m)
	WatchDebounce time.Duration `mapstructure:"watch_debounce"` // Rebuild debounce (default 1s)
}

var configDefaults = map[string]any{
	"name":           "mengkeat",
	"url":            "https://mengkeat.github.io",
	"description":    "",
	"author":         content.DefaultAuthor,
	"addr":           ":4321",
	"content_dir":    "src/content",
	"index_path":     "data/content.db",
	"use_index":      false,
	"session_secret": "",
	"cookie_secure":  false,
	"cache_ttl":      "5m",
	"watch_debounce": "1s",
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "mengkeat"
	}
	if c.URL == "" {
		c.URL = "https://mengkeat.github.io"
	}
	if c.Author == "" {
		c.Author = content.DefaultAuthor
	}
	if c.Addr == "" {
		c.Addr = ":4321"
	}
	if c.ContentDir == "" {
		c.ContentDir = "src/content"
	}
	if c.IndexPath == "" {
		c.IndexPath = "data/content.db"
	}
	if c.SessionSecret == "" {
		c.SessionSecret = randomSecret()
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 5 * time.Minute
	}
	if c.WatchDebounce == 0 {
		c.WatchDebounce = time.Second
	}
}

// Site returns the subset of the config the views need.
func (c SiteConfig) Site() views.Site {
	return views.Site{Name: c.Name, URL: c.URL, Description: c.Description, Author: c.Author}
}

// LoadConfig reads path (or ./site.yaml when path is empty and the file
// exists) and applies BLOG_* environment overrides.
func LoadConfig(path string) (SiteConfig, error) {
	v := viper.New()
	for k, val := range configDefaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix("BLOG")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("site")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return SiteConfig{}, fmt.Errorf("blog: read config: %w", err)
		}
	}

	var cfg SiteConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("blog: decode config: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}

// Option configures additional App behavior.
type Option func(*App)

// WithLogger sets the logger (default zap.NewNop).
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithStore serves content from s instead of ContentDir. The watcher is
// unavailable in this mode.
func WithStore(s content.Store) Option {
	return func(a *App) {
		a.store = s
	}
}
