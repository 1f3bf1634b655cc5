package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/entitydiagram/pkg/errors"
	"github.com/matzehuels/entitydiagram/pkg/overlay"
	"github.com/matzehuels/entitydiagram/pkg/persist"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{EnvBaseURL, EnvProject, EnvToken, EnvSource, EnvDir, EnvBackend, EnvStoreURL, EnvAddr, EnvDelay, EnvNoCache} {
		t.Setenv(name, "")
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Sync.Delay.Duration != persist.DefaultDelay {
		t.Errorf("Sync.Delay = %v, want %v", cfg.Sync.Delay, persist.DefaultDelay)
	}
	if cfg.Overlay.Container != overlay.DefaultContainer {
		t.Errorf("Overlay.Container = %q", cfg.Overlay.Container)
	}
}

func TestPathXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/custom-config")

	got, err := Path()
	if err != nil {
		t.Fatalf("Path() error: %v", err)
	}
	if want := filepath.Join("/tmp/custom-config", AppName, "config.toml"); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestLoadMissingDefaultFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Catalog.Source != SourceFile {
		t.Errorf("Catalog.Source = %q, want default", cfg.Catalog.Source)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Load(missing) error = %v, want INVALID_CONFIG", err)
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[catalog]
source = "http"
base_url = "https://api.example.com"
project = "shop"

[overlay]
backend = "sqlite"
path = "/var/lib/entitydiagram/overlay.db"

[sync]
delay = "250ms"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Catalog.Project != "shop" || cfg.Overlay.Backend != "sqlite" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Sync.Delay.Duration != 250*time.Millisecond {
		t.Errorf("Sync.Delay = %v, want 250ms", cfg.Sync.Delay)
	}
	// Unset keys keep their defaults.
	if cfg.Catalog.PageLimit != Default().Catalog.PageLimit {
		t.Errorf("PageLimit = %d, want default", cfg.Catalog.PageLimit)
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[catalog\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Load() error = %v, want INVALID_CONFIG", err)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvToken:   "secret",
		EnvBackend: "redis",
		EnvDelay:   "2s",
		EnvNoCache: "true",
	}
	cfg := Default()
	err := applyEnv(&cfg, func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	if err != nil {
		t.Fatalf("applyEnv() error: %v", err)
	}
	if cfg.Catalog.Token != "secret" || cfg.Overlay.Backend != "redis" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Sync.Delay.Duration != 2*time.Second || !cfg.Cache.Disabled {
		t.Errorf("delay = %v, disabled = %v", cfg.Sync.Delay, cfg.Cache.Disabled)
	}

	bad := func(k string) (string, bool) {
		if k == EnvDelay {
			return "soon", true
		}
		return "", false
	}
	if err := applyEnv(&cfg, bad); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("applyEnv(bad delay) error = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"default", func(*Config) {}, true},
		{"unknown source", func(c *Config) { c.Catalog.Source = "ftp" }, false},
		{"http without project", func(c *Config) {
			c.Catalog.Source = SourceHTTP
			c.Catalog.BaseURL = "https://x"
		}, false},
		{"http bad url", func(c *Config) {
			c.Catalog.Source = SourceHTTP
			c.Catalog.BaseURL = "ftp://x"
			c.Catalog.Project = "p"
		}, false},
		{"unknown backend", func(c *Config) { c.Overlay.Backend = "s3" }, false},
		{"api backend needs http source", func(c *Config) { c.Overlay.Backend = BackendAPI }, false},
		{"api backend", func(c *Config) {
			c.Overlay.Backend = BackendAPI
			c.Catalog.Source = SourceHTTP
			c.Catalog.BaseURL = "https://x"
			c.Catalog.Project = "p"
		}, true},
		{"backend case-insensitive", func(c *Config) { c.Overlay.Backend = "SQLite" }, true},
		{"bad container", func(c *Config) { c.Overlay.Container = "../x" }, false},
		{"zero delay", func(c *Config) { c.Sync.Delay.Duration = 0 }, false},
		{"zero write timeout", func(c *Config) { c.Sync.WriteTimeout.Duration = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	if err := WriteDefault(path, false); err != nil {
		t.Fatalf("WriteDefault() error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `delay = "500ms"`) {
		t.Errorf("written config missing delay:\n%s", data)
	}
	if err := WriteDefault(path, false); err == nil {
		t.Error("WriteDefault() overwrote an existing file")
	}
	if err := WriteDefault(path, true); err != nil {
		t.Errorf("WriteDefault(force) error: %v", err)
	}

	clearEnv(t)
	if _, err := Load(path); err != nil {
		t.Errorf("Load(written default) error: %v", err)
	}
}
