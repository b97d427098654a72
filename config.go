package inkblog

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/eringen/inkblog/pkg/config"
	"github.com/eringen/inkblog/search"
	"github.com/eringen/inkblog/viewcount"
	"github.com/eringen/inkblog/window"
)

// View-count backends.
const (
	BackendSQLite = "sqlite"
	BackendRemote = "remote"
)

// Config holds all configuration for an inkblog site.
type Config struct {
	Site      SiteConfig      `yaml:"site" toml:"site" json:"site"`
	HTTP      HTTPConfig      `yaml:"http" toml:"http" json:"http"`
	Content   ContentConfig   `yaml:"content" toml:"content" json:"content"`
	Views     ViewsConfig     `yaml:"views" toml:"views" json:"views"`
	Session   SessionConfig   `yaml:"session" toml:"session" json:"session"`
	Search    SearchConfig    `yaml:"search" toml:"search" json:"search"`
	Paging    PagingConfig    `yaml:"paging" toml:"paging" json:"paging"`
	RateLimit RateLimitConfig `yaml:"rate_limit" toml:"rate_limit" json:"rate_limit"`
	Thumbs    ThumbsConfig    `yaml:"thumbs" toml:"thumbs" json:"thumbs"`
	LogLevel  slog.Level      `yaml:"log_level" toml:"log_level" json:"log_level"`
}

// SiteConfig describes the site for templates, feeds and metadata.
type SiteConfig struct {
	Name        string `yaml:"name" toml:"name" json:"name"`                      // default "Blog"
	URL         string `yaml:"url" toml:"url" json:"url"`                         // canonical URL, default "http://localhost:3000"
	Description string `yaml:"description" toml:"description" json:"description"` // RSS and meta description
	Author      string `yaml:"author" toml:"author" json:"author"`
	Email       string `yaml:"email" toml:"email" json:"email"` // RSS item author address
	Language    string `yaml:"language" toml:"language" json:"language"`
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Addr            string   `yaml:"addr" toml:"addr" json:"addr"` // default ":3000"
	StaticDir       string   `yaml:"static_dir" toml:"static_dir" json:"static_dir"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout" json:"shutdown_timeout"`
}

// ContentConfig locates the post files.
type ContentConfig struct {
	Dir   string `yaml:"dir" toml:"dir" json:"dir"` // default "content"
	Watch *bool  `yaml:"watch" toml:"watch" json:"watch"`
}

// WatchEnabled reports whether file changes trigger a reload (default true).
func (c ContentConfig) WatchEnabled() bool {
	return c.Watch == nil || *c.Watch
}

// ViewsConfig selects and configures the view-count backend.
type ViewsConfig struct {
	Backend    string   `yaml:"backend" toml:"backend" json:"backend"` // "sqlite" (default) or "remote"
	SQLitePath string   `yaml:"sqlite_path" toml:"sqlite_path" json:"sqlite_path"`
	RemoteURL  string   `yaml:"remote_url" toml:"remote_url" json:"remote_url"`
	RemoteKey  string   `yaml:"remote_key" toml:"remote_key" json:"remote_key"`
	Timeout    Duration `yaml:"timeout" toml:"timeout" json:"timeout"`
}

// SessionConfig configures the cookie session that tracks counted views.
type SessionConfig struct {
	Secret       string `yaml:"secret" toml:"secret" json:"secret"`
	CookieSecure bool   `yaml:"cookie_secure" toml:"cookie_secure" json:"cookie_secure"`
	MaxAge       int    `yaml:"max_age" toml:"max_age" json:"max_age"` // seconds, default 12h
}

// SearchConfig tunes the fuzzy matcher.
type SearchConfig struct {
	Threshold float64 `yaml:"threshold" toml:"threshold" json:"threshold"` // 0 = exact .. 1 = anything, default 0.3
}

// PagingConfig controls the windowed post grids.
type PagingConfig struct {
	PageSize  int      `yaml:"page_size" toml:"page_size" json:"page_size"` // default 9
	LoadDelay Duration `yaml:"load_delay" toml:"load_delay" json:"load_delay"`
}

// RateLimitConfig caps API requests per client IP and minute.
type RateLimitConfig struct {
	ViewsPerMinute  int `yaml:"views_per_minute" toml:"views_per_minute" json:"views_per_minute"`
	SearchPerMinute int `yaml:"search_per_minute" toml:"search_per_minute" json:"search_per_minute"`
}

// ThumbsConfig controls cover image thumbnails.
type ThumbsConfig struct {
	CacheDir string `yaml:"cache_dir" toml:"cache_dir" json:"cache_dir"`
	Width    int    `yaml:"width" toml:"width" json:"width"` // default 480
}

// Duration is a time.Duration that reads from strings such as "300ms".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// DefaultConfig returns a Config with every default applied. Fields whose
// zero value is meaningful (search.threshold, paging.load_delay) are only
// defaulted here, so a config file can still set them to zero.
func DefaultConfig() Config {
	c := Config{
		Search: SearchConfig{Threshold: search.DefaultThreshold},
		Paging: PagingConfig{LoadDelay: Duration(window.DefaultDelay)},
	}
	c.setDefaults()
	return c
}

// LoadConfig reads the config file at path on top of the defaults. An empty
// path uses the defaults alone. INKBLOG_SESSION_SECRET and
// INKBLOG_COOKIE_SECURE, when set, override the file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if err := config.Load(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv()
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Session.Secret = EnvOr("INKBLOG_SESSION_SECRET", c.Session.Secret)
	if v := os.Getenv("INKBLOG_COOKIE_SECURE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Session.CookieSecure = b
		}
	}
}

func (c *Config) setDefaults() {
	if c.Site.Name == "" {
		c.Site.Name = "Blog"
	}
	if c.Site.URL == "" {
		c.Site.URL = "http://localhost:3000"
	}
	if c.Site.Language == "" {
		c.Site.Language = "en"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":3000"
	}
	if c.HTTP.StaticDir == "" {
		c.HTTP.StaticDir = "public"
	}
	if c.HTTP.ShutdownTimeout == 0 {
		c.HTTP.ShutdownTimeout = Duration(10 * time.Second)
	}
	if c.Content.Dir == "" {
		c.Content.Dir = "content"
	}
	if c.Views.Backend == "" {
		c.Views.Backend = BackendSQLite
	}
	if c.Views.SQLitePath == "" {
		c.Views.SQLitePath = "data/views.db"
	}
	if c.Views.Timeout == 0 {
		c.Views.Timeout = Duration(5 * time.Second)
	}
	if c.Session.MaxAge == 0 {
		c.Session.MaxAge = 60 * 60 * 12
	}
	if c.Paging.PageSize == 0 {
		c.Paging.PageSize = 9
	}
	if c.RateLimit.ViewsPerMinute == 0 {
		c.RateLimit.ViewsPerMinute = 30
	}
	if c.RateLimit.SearchPerMinute == 0 {
		c.RateLimit.SearchPerMinute = 120
	}
	if c.Thumbs.CacheDir == "" {
		c.Thumbs.CacheDir = "data/thumbs"
	}
	if c.Thumbs.Width == 0 {
		c.Thumbs.Width = 480
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Site.Validate(); err != nil {
		return fmt.Errorf("site: %w", err)
	}
	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http: %w", err)
	}
	if err := c.Views.Validate(); err != nil {
		return fmt.Errorf("views: %w", err)
	}
	if err := validation.Validate(c.Search.Threshold, validation.Min(0.0), validation.Max(1.0)); err != nil {
		return fmt.Errorf("search.threshold: %w", err)
	}
	if err := validation.Validate(c.Paging.PageSize, validation.Min(1), validation.Max(100)); err != nil {
		return fmt.Errorf("paging.page_size: %w", err)
	}
	if err := validation.Validate(c.Thumbs.Width, validation.Min(16), validation.Max(4096)); err != nil {
		return fmt.Errorf("thumbs.width: %w", err)
	}
	return nil
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.URL, validation.Required, is.URL),
		validation.Field(&c.Email, is.EmailFormat),
	)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Addr, validation.Required, validation.By(func(any) error {
			_, port, err := net.SplitHostPort(c.Addr)
			if err != nil {
				return errors.New("must be host:port")
			}
			n, err := strconv.Atoi(port)
			if err != nil || n < 0 || n > 65535 {
				return errors.New("invalid port")
			}
			return nil
		})),
	)
}

// Validate validates the view-count backend configuration.
func (c *ViewsConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.Required, validation.In(BackendSQLite, BackendRemote)),
	); err != nil {
		return err
	}
	switch c.Backend {
	case BackendSQLite:
		if c.SQLitePath == "" {
			return errors.New("sqlite_path is required")
		}
	case BackendRemote:
		if c.RemoteURL == "" || c.RemoteKey == "" {
			return viewcount.ErrMissingCredentials
		}
	}
	return nil
}

// OpenStore constructs the configured view-count backend.
func OpenStore(c ViewsConfig) (viewcount.Store, error) {
	switch c.Backend {
	case BackendRemote:
		return viewcount.NewRemote(viewcount.RemoteConfig{
			URL:     c.RemoteURL,
			Key:     c.RemoteKey,
			Timeout: c.Timeout.Std(),
		})
	case BackendSQLite, "":
		return viewcount.NewSQLite(c.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown views backend %q", c.Backend)
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStore sets the view-count backend instead of opening the configured one.
// The App closes it on Close.
func WithStore(s viewcount.Store) Option {
	return func(a *App) {
		a.Store = s
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}
