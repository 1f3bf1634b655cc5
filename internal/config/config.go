// Package config loads the entitydiagram configuration file.
//
// Configuration is layered: built-in defaults, then the TOML file
// ($XDG_CONFIG_HOME/entitydiagram/config.toml), then ENTITYDIAGRAM_*
// environment variables. Command-line flags are applied last by the CLI.
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/entitydiagram/pkg/cache"
	"github.com/matzehuels/entitydiagram/pkg/catalog"
	"github.com/matzehuels/entitydiagram/pkg/errors"
	"github.com/matzehuels/entitydiagram/pkg/overlay"
	"github.com/matzehuels/entitydiagram/pkg/persist"
)

// AppName names the configuration, cache and data directories.
const AppName = "entitydiagram"

// Catalog source kinds.
const (
	SourceHTTP = "http"
	SourceFile = "file"
)

// BackendAPI stores the overlay through the platform's custom-objects API.
const BackendAPI = "api"

// Config is the full configuration.
type Config struct {
	Catalog CatalogConfig `toml:"catalog"`
	Overlay OverlayConfig `toml:"overlay"`
	Sync    SyncConfig    `toml:"sync"`
	Server  ServerConfig  `toml:"server"`
	Cache   CacheConfig   `toml:"cache"`
}

// CatalogConfig selects and configures the catalog source.
type CatalogConfig struct {
	Source          string `toml:"source"`
	BaseURL         string `toml:"base_url"`
	Project         string `toml:"project"`
	Token           string `toml:"token,omitempty"`
	Dir             string `toml:"dir"`
	SchemaContainer string `toml:"schema_container"`
	PageLimit       int    `toml:"page_limit"`
}

// OverlayConfig selects and configures the overlay store.
type OverlayConfig struct {
	Backend   string `toml:"backend"`
	Container string `toml:"container"`
	Path      string `toml:"path"`
	URL       string `toml:"url"`
	Database  string `toml:"database"`
}

// SyncConfig tunes the persistence synchronizer.
type SyncConfig struct {
	Delay        Duration `toml:"delay"`
	WriteTimeout Duration `toml:"write_timeout"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// CacheConfig configures the catalog response cache.
type CacheConfig struct {
	Disabled bool     `toml:"disabled"`
	Dir      string   `toml:"dir"`
	TTL      Duration `toml:"ttl"`
}

// Duration is a time.Duration that reads and writes as "500ms", "10m".
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Catalog: CatalogConfig{
			Source:          SourceFile,
			Dir:             ".",
			SchemaContainer: catalog.DefaultSchemaContainer,
			PageLimit:       catalog.DefaultPageLimit,
		},
		Overlay: OverlayConfig{
			Backend:   overlay.BackendFile,
			Container: overlay.DefaultContainer,
		},
		Sync: SyncConfig{
			Delay:        Duration{persist.DefaultDelay},
			WriteTimeout: Duration{persist.DefaultWriteTimeout},
		},
		Server: ServerConfig{Addr: "127.0.0.1:8080"},
		Cache:  CacheConfig{TTL: Duration{cache.CatalogTTL}},
	}
}

// Path returns the default configuration file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Dir returns the configuration directory (~/.config/entitydiagram/).
func Dir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName), nil
}

// Load reads the file at path over the defaults and applies environment
// overrides. An empty path means [Path]; a missing default file is not an
// error, a missing explicit file is.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "locate config")
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate checks enumerations and ranges.
func (c Config) Validate() error {
	switch c.Catalog.Source {
	case SourceFile:
	case SourceHTTP:
		if c.Catalog.BaseURL == "" || c.Catalog.Project == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "catalog.base_url and catalog.project are required for the http source")
		}
		if err := errors.ValidateURL(c.Catalog.BaseURL); err != nil {
			return err
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown catalog source %q (want http or file)", c.Catalog.Source)
	}

	backend := strings.ToLower(c.Overlay.Backend)
	if backend != BackendAPI && !containsFold(overlay.Backends, backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown overlay backend %q", c.Overlay.Backend)
	}
	if backend == BackendAPI && c.Catalog.Source != SourceHTTP {
		return errors.New(errors.ErrCodeInvalidConfig, "overlay backend api requires catalog source http")
	}
	if err := errors.ValidateContainer(c.Overlay.Container); err != nil {
		return err
	}

	if c.Sync.Delay.Duration <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "sync.delay must be positive")
	}
	if c.Sync.WriteTimeout.Duration <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "sync.write_timeout must be positive")
	}
	if c.Catalog.PageLimit <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "catalog.page_limit must be positive")
	}
	return nil
}

// Encode writes cfg as TOML.
func Encode(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteDefault writes the default configuration to path, creating parent
// directories. It refuses to overwrite an existing file unless force is set.
func WriteDefault(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.New(errors.ErrCodeInvalidInput, "%s already exists", path)
	}
	data, err := Encode(Default())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Environment overrides.
const (
	EnvBaseURL  = "ENTITYDIAGRAM_BASE_URL"
	EnvProject  = "ENTITYDIAGRAM_PROJECT"
	EnvToken    = "ENTITYDIAGRAM_TOKEN"
	EnvSource   = "ENTITYDIAGRAM_SOURCE"
	EnvDir      = "ENTITYDIAGRAM_CATALOG_DIR"
	EnvBackend  = "ENTITYDIAGRAM_OVERLAY_BACKEND"
	EnvStoreURL = "ENTITYDIAGRAM_OVERLAY_URL"
	EnvAddr     = "ENTITYDIAGRAM_ADDR"
	EnvDelay    = "ENTITYDIAGRAM_SYNC_DELAY"
	EnvNoCache  = "ENTITYDIAGRAM_NO_CACHE"
)

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		EnvBaseURL:  &cfg.Catalog.BaseURL,
		EnvProject:  &cfg.Catalog.Project,
		EnvToken:    &cfg.Catalog.Token,
		EnvSource:   &cfg.Catalog.Source,
		EnvDir:      &cfg.Catalog.Dir,
		EnvBackend:  &cfg.Overlay.Backend,
		EnvStoreURL: &cfg.Overlay.URL,
		EnvAddr:     &cfg.Server.Addr,
	}
	for name, dst := range strs {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup(EnvDelay); ok && v != "" {
		if err := cfg.Sync.Delay.UnmarshalText([]byte(v)); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", EnvDelay)
		}
	}
	if v, ok := lookup(EnvNoCache); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", EnvNoCache)
		}
		cfg.Cache.Disabled = b
	}
	return nil
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
