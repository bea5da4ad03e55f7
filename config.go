package policydesk

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/eringen/policydesk/content"
)

// SiteConfig holds all configuration for a policydesk site.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name (default "정책브리핑")
	URL         string `yaml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `yaml:"description"` // Site description for RSS and meta tags

	Locale   string `yaml:"locale"`   // BCP 47 display locale (default "ko-KR")
	Timezone string `yaml:"timezone"` // IANA zone for display dates (default "Asia/Seoul")

	Addr         string `yaml:"addr"`          // Listen address (default ":3000")
	DatabasePath string `yaml:"database_path"` // SQLite path (default "data/articles.db")
	PagesDir     string `yaml:"pages_dir"`     // Static page markdown files (default "pages")
	SeedOnEmpty  int    `yaml:"seed_on_empty"` // Fabricate this many articles when the database is empty

	AdminPassword string `yaml:"-"` // Required: admin login password
	SessionSecret string `yaml:"-"` // Required: session encryption secret
	CookieSecure  bool   `yaml:"cookie_secure"`

	ArticleCacheTTL time.Duration `yaml:"article_cache_ttl"` // default 5m
	LogMode         string        `yaml:"log_mode"`          // "dev" or "prod"
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "정책브리핑"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Locale == "" {
		c.Locale = "ko-KR"
	}
	if c.Timezone == "" {
		c.Timezone = "Asia/Seoul"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/articles.db"
	}
	if c.PagesDir == "" {
		c.PagesDir = "pages"
	}
	if c.ArticleCacheTTL == 0 {
		c.ArticleCacheTTL = 5 * time.Minute
	}
	if c.LogMode == "" {
		c.LogMode = "dev"
	}
}

// Validate reports missing required settings.
func (c SiteConfig) Validate() error {
	var errs []error
	if c.AdminPassword == "" {
		errs = append(errs, errors.New("AdminPassword is required"))
	}
	if c.SessionSecret == "" {
		errs = append(errs, errors.New("SessionSecret is required"))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone %q: %w", c.Timezone, err))
	}
	return errors.Join(errs...)
}

// Location returns the configured display zone, or UTC when it cannot be loaded.
func (c SiteConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LoadConfig reads an optional YAML file at path and overlays environment
// variables. A missing file is not an error.
func LoadConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("policydesk: read config: %w", err)
		default:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("policydesk: parse config %s: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	cfg.setDefaults()
	return cfg, nil
}

func (c *SiteConfig) applyEnv() error {
	strs := map[string]*string{
		"SITE_NAME":        &c.Name,
		"SITE_URL":         &c.URL,
		"SITE_DESCRIPTION": &c.Description,
		"SITE_LOCALE":      &c.Locale,
		"SITE_TIMEZONE":    &c.Timezone,
		"ADDR":             &c.Addr,
		"DATABASE_PATH":    &c.DatabasePath,
		"PAGES_DIR":        &c.PagesDir,
		"ADMIN_PASSWORD":   &c.AdminPassword,
		"SESSION_SECRET":   &c.SessionSecret,
		"LOG_MODE":         &c.LogMode,
	}
	for key, dst := range strs {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("policydesk: COOKIE_SECURE: %w", err)
		}
		c.CookieSecure = b
	}
	if v := os.Getenv("SEED_ON_EMPTY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("policydesk: SEED_ON_EMPTY: %w", err)
		}
		c.SeedOnEmpty = n
	}
	if v := os.Getenv("ARTICLE_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("policydesk: ARTICLE_CACHE_TTL: %w", err)
		}
		c.ArticleCacheTTL = d
	}
	return nil
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

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithStore uses an already opened store. The caller keeps ownership and
// closes it; App.Close leaves it open.
func WithStore(s *Store) Option {
	return func(a *App) {
		a.Store = s
		a.ownsStore = false
	}
}

// WithLogger sets the application logger (default: built from LogMode).
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithRandom replaces the randomness used for ids and author names.
// Seeded sources are for tests; most are not safe for concurrent use.
func WithRandom(ids io.Reader, rng content.Rand) Option {
	return func(a *App) {
		a.idSource = ids
		a.rng = rng
	}
}
