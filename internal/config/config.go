// Package config provides configuration types, defaults, and persistence for conceptnav.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zjrosen/conceptnav/internal/category"
	"github.com/zjrosen/conceptnav/internal/concept"
	"github.com/zjrosen/conceptnav/internal/flags"
	"github.com/zjrosen/conceptnav/internal/log"
	"github.com/zjrosen/conceptnav/internal/navigator"
	"github.com/zjrosen/conceptnav/internal/paths"
	"github.com/zjrosen/conceptnav/internal/registry"
	"github.com/zjrosen/conceptnav/internal/session"
	"github.com/zjrosen/conceptnav/internal/tracing"
)

// Config holds all application configuration.
type Config struct {
	Registry  RegistryConfig  `mapstructure:"registry"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Session   SessionConfig   `mapstructure:"session"`
	Catalogue CatalogueConfig `mapstructure:"catalogue"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Tracing   tracing.Config  `mapstructure:"tracing"`
	UI        UIConfig        `mapstructure:"ui"`
	Flags     map[string]bool `mapstructure:"flags"`
}

// RegistryConfig points the client at an SDMX structure endpoint.
type RegistryConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// CacheConfig configures the response cache tiers.
type CacheConfig struct {
	Path          string `mapstructure:"path"`           // sqlite file for the durable tier
	MemoryEntries int    `mapstructure:"memory_entries"` // LRU front size
	Disabled      bool   `mapstructure:"disabled"`       // no response caching at all
}

// SessionConfig controls how long derived state lives in a session.
type SessionConfig struct {
	TTL             time.Duration `mapstructure:"ttl"` // 0 keeps entries until cleared
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// CatalogueConfig selects the category scheme and concept rules.
type CatalogueConfig struct {
	CategorySchemeAgency  string   `mapstructure:"category_scheme_agency"`
	CategorySchemeID      string   `mapstructure:"category_scheme_id"`
	GeneralConceptsScheme string   `mapstructure:"general_concepts_scheme"`
	ExcludedCategories    []string `mapstructure:"excluded_categories"`
	RoleAllowList         []string `mapstructure:"role_allow_list"`

	// DefaultSelection is the scheme -> category choice the browser starts with.
	DefaultSelection map[string]string `mapstructure:"default_selection"`
}

// FetchConfig bounds per-dataflow fan-out.
type FetchConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// UIConfig holds user interface settings.
type UIConfig struct {
	MarkdownStyle string `mapstructure:"markdown_style"` // "dark" (default) or "light"
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	nav := navigator.DefaultConfig()
	sess := session.DefaultConfig()
	trace := tracing.DefaultConfig()
	trace.FilePath = paths.DefaultTracesPath()

	return Config{
		Registry: RegistryConfig{
			BaseURL: registry.DefaultBaseURL,
			Timeout: registry.DefaultTimeout,
		},
		Cache: CacheConfig{
			Path:          paths.DefaultCachePath(),
			MemoryEntries: registry.DefaultMemoryEntries,
		},
		Session: SessionConfig{
			TTL:             0,
			CleanupInterval: sess.CleanupInterval,
		},
		Catalogue: CatalogueConfig{
			CategorySchemeAgency:  nav.CategorySchemeAgency,
			CategorySchemeID:      nav.CategorySchemeID,
			GeneralConceptsScheme: nav.GeneralConceptsScheme,
			ExcludedCategories:    append([]string(nil), category.DefaultExcluded...),
			RoleAllowList:         append([]string(nil), concept.DefaultRoleAllowList...),
		},
		Fetch: FetchConfig{
			Concurrency: nav.Concurrency,
		},
		Tracing: trace,
		UI: UIConfig{
			MarkdownStyle: "dark",
		},
		Flags: flags.Defaults(),
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.Registry.BaseURL == "" {
		return fmt.Errorf("registry.base_url is required")
	}
	u, err := url.Parse(c.Registry.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("registry.base_url must be an absolute URL, got %q", c.Registry.BaseURL)
	}
	if c.Registry.Timeout < 0 {
		return fmt.Errorf("registry.timeout must not be negative, got %v", c.Registry.Timeout)
	}
	if c.Fetch.Concurrency <= 0 {
		return fmt.Errorf("fetch.concurrency must be positive, got %d", c.Fetch.Concurrency)
	}
	if c.Cache.MemoryEntries < 0 {
		return fmt.Errorf("cache.memory_entries must not be negative, got %d", c.Cache.MemoryEntries)
	}
	if c.Session.TTL < 0 {
		return fmt.Errorf("session.ttl must not be negative, got %v", c.Session.TTL)
	}
	switch c.UI.MarkdownStyle {
	case "", "dark", "light", "notty":
	default:
		return fmt.Errorf("ui.markdown_style must be \"dark\" or \"light\", got %q", c.UI.MarkdownStyle)
	}
	if err := c.Tracing.Validate(); err != nil {
		return err
	}
	return nil
}

// Navigator returns the pipeline settings. purge comes from the command line
// rather than the file.
func (c Config) Navigator(purge bool, prefetch bool) navigator.Config {
	nav := navigator.DefaultConfig()
	if c.Catalogue.CategorySchemeAgency != "" {
		nav.CategorySchemeAgency = c.Catalogue.CategorySchemeAgency
	}
	if c.Catalogue.CategorySchemeID != "" {
		nav.CategorySchemeID = c.Catalogue.CategorySchemeID
	}
	if c.Catalogue.GeneralConceptsScheme != "" {
		nav.GeneralConceptsScheme = c.Catalogue.GeneralConceptsScheme
	}
	if c.Catalogue.ExcludedCategories != nil {
		nav.ExcludedCategories = c.Catalogue.ExcludedCategories
	}
	if len(c.Catalogue.RoleAllowList) > 0 {
		nav.RoleAllowList = c.Catalogue.RoleAllowList
	}
	if c.Fetch.Concurrency > 0 {
		nav.Concurrency = c.Fetch.Concurrency
	}
	nav.Purge = purge
	nav.PrefetchConstraints = prefetch
	return nav
}

// SessionStore returns the session cache settings.
func (c Config) SessionStore() session.Config {
	cfg := session.DefaultConfig()
	if c.Session.TTL > 0 {
		cfg.TTL = c.Session.TTL
	}
	if c.Session.CleanupInterval > 0 {
		cfg.CleanupInterval = c.Session.CleanupInterval
	}
	return cfg
}

// Selection returns a copy of the configured default selection. Viper
// lowercases map keys, so scheme IDs are restored to upper case.
func (c Config) Selection() category.Selection {
	sel := make(category.Selection, len(c.Catalogue.DefaultSelection))
	for k, v := range c.Catalogue.DefaultSelection {
		sel[strings.ToUpper(k)] = v
	}
	return sel
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# conceptnav configuration

# SDMX structure registry
registry:
  base_url: ` + registry.DefaultBaseURL + `
  timeout: 60s

# Response cache. The durable tier is a sqlite file; the memory tier an LRU
# in front of it. Run 'conceptnav cache clear' to empty the file.
cache:
  # path: ~/.cache/conceptnav/responses.db
  memory_entries: 256
  disabled: false

# Derived state kept per browsing session (0 = until refreshed)
session:
  ttl: 0s
  cleanup_interval: 1h

# Catalogue layout
catalogue:
  category_scheme_agency: ESTAT
  category_scheme_id: MICRODATA_DOMAINS
  general_concepts_scheme: CS_ESTAT_GENERAL_CONCEPTS
  excluded_categories: [LFS, SILC]
  role_allow_list: [SEX, AGE]
  # Selection the browser starts with (scheme: category)
  # default_selection:
  #   MICRODATA_DOMAINS: LFS_2020

# Parallel per-dataflow requests
fetch:
  concurrency: 8

# UI settings
ui:
  markdown_style: dark  # "dark" (default) or "light"

# Distributed tracing
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # none, file, stdout, otlp (default: file)
#   file_path: ~/.config/conceptnav/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)

# Feature flags
flags:
  durable-cache: true          # sqlite-backed response cache
  prefetch-constraints: false  # load every constraint at startup, bypassing the cache
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
