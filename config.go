package folio

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eringen/folio/content"
	"github.com/eringen/folio/upload"
)

// SiteConfig holds all configuration for a folio site. It is built once at
// start-up and passed to every component that needs part of it.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name (default "Portfolio")
	URL         string `yaml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `yaml:"description"` // Site description for RSS and meta tags
	Author      string `yaml:"author"`      // Author name for JSON-LD

	Addr string `yaml:"addr"` // Listen address (default ":3000")

	SessionSecret string `yaml:"session_secret"` // Required: session encryption secret
	CookieSecure  bool   `yaml:"cookie_secure"`  // Set true for HTTPS

	// AllowedAdmins are the Google account emails that may use the admin
	// dashboard. Matching ignores case. An empty list admits nobody.
	AllowedAdmins []string     `yaml:"allowed_admins"`
	Google        GoogleConfig `yaml:"google"`

	Store  content.StoreConfig `yaml:"store"`
	Upload UploadConfig        `yaml:"upload"`

	CacheTTL time.Duration `yaml:"cache_ttl"` // Content cache TTL (default 5m)
}

// GoogleConfig configures Google sign-in. Sign-in is disabled when ClientID
// is empty.
type GoogleConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	// RedirectURL overrides the callback URL derived from the request host.
	RedirectURL string `yaml:"redirect_url"`
}

// UploadConfig controls where admin photo uploads are published.
type UploadConfig struct {
	S3             upload.S3Config `yaml:"s3"`
	Timeout        time.Duration   `yaml:"timeout"`          // Per-host request timeout (default 30s)
	DisableHosts   bool            `yaml:"disable_hosts"`    // Skip the anonymous file hosts
	DisableDataURI bool            `yaml:"disable_data_uri"` // Fail instead of storing the image inline
}

// Environment variables that override secrets from the config file.
const (
	EnvSessionSecret      = "FOLIO_SESSION_SECRET"
	EnvGoogleClientSecret = "FOLIO_GOOGLE_CLIENT_SECRET"
	EnvS3SecretKey        = "FOLIO_S3_SECRET_KEY"
)

// LoadConfig reads a YAML config file and applies environment overrides.
// Defaults are filled in later by New.
func LoadConfig(path string) (SiteConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return SiteConfig{}, fmt.Errorf("folio: open config: %w", err)
	}
	defer f.Close()

	var cfg SiteConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("folio: decode config %s: %w", path, err)
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *SiteConfig) applyEnv() {
	c.SessionSecret = EnvOr(EnvSessionSecret, c.SessionSecret)
	c.Google.ClientSecret = EnvOr(EnvGoogleClientSecret, c.Google.ClientSecret)
	c.Upload.S3.SecretKey = EnvOr(EnvS3SecretKey, c.Upload.S3.SecretKey)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Portfolio"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 5 * time.Minute
	}
	if c.Upload.Timeout == 0 {
		c.Upload.Timeout = upload.DefaultTimeout
	}
}

// Site returns the public subset of the config handed to views.
func (c SiteConfig) Site() Site {
	return Site{
		Name:        c.Name,
		URL:         c.URL,
		Description: c.Description,
		Author:      c.Author,
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStore uses st instead of opening the store named in the config.
func WithStore(st content.Store) Option {
	return func(a *App) {
		a.Store = st
	}
}

// WithIdentity uses p for admin sign-in instead of Google.
func WithIdentity(p IdentityProvider) Option {
	return func(a *App) {
		a.Identity = p
	}
}

// WithUploader replaces the upload chain built from the config.
func WithUploader(c *upload.Chain) Option {
	return func(a *App) {
		a.Uploader = c
	}
}

// WithSeed sets the content shown when the store is disabled or failing.
func WithSeed(s content.Seed) Option {
	return func(a *App) {
		a.seed = s
	}
}
