// Package cli implements the entitydiagram command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/entitydiagram/internal/config"
	"github.com/matzehuels/entitydiagram/pkg/buildinfo"
	"github.com/matzehuels/entitydiagram/pkg/cache"
	"github.com/matzehuels/entitydiagram/pkg/overlay"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// annotationSkipConfig marks commands that run without loading the config
// file, such as those that create it.
const annotationSkipConfig = "skip-config"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Set by persistent flags and resolved in PersistentPreRunE.
	configPath string
	noCache    bool
	overrides  overrides
	cfg        config.Config
}

// overrides are persistent flags that take precedence over the config file.
type overrides struct {
	catalogDir string
	backend    string
	store      string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), cfg: config.Default()}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "entitydiagram edits relationship diagrams over catalog schemas",
		Long:         `entitydiagram renders the schemas, product types and field types of a commerce catalog as an entity-relationship diagram, and keeps user-drawn links and entity positions in a separate overlay store.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			if cmd.Annotations[annotationSkipConfig] == "true" {
				return nil
			}
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/entitydiagram/config.toml)")
	pf.BoolVar(&c.noCache, "no-cache", false, "disable the catalog response cache")
	pf.StringVar(&c.overrides.catalogDir, "catalog-dir", "", "read catalogs from JSON fixtures in this directory")
	pf.StringVar(&c.overrides.backend, "backend", "", "overlay backend (memory, file, redis, mongo, sqlite, api)")
	pf.StringVar(&c.overrides.store, "store", "", "overlay store path (file, sqlite) or URL (redis, mongo)")
	_ = root.RegisterFlagCompletionFunc("backend", completeBackends)

	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.linksCommand())
	root.AddCommand(c.moveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and applies flag overrides.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.overrides.catalogDir != "" {
		cfg.Catalog.Source = config.SourceFile
		cfg.Catalog.Dir = c.overrides.catalogDir
	}
	if c.overrides.backend != "" {
		cfg.Overlay.Backend = c.overrides.backend
	}
	if c.overrides.store != "" {
		switch cfg.Overlay.Backend {
		case overlay.BackendRedis, overlay.BackendMongo:
			cfg.Overlay.URL = c.overrides.store
		default:
			cfg.Overlay.Path = c.overrides.store
		}
	}
	if c.noCache {
		cfg.Cache.Disabled = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg
	c.Logger.Debug("config loaded", "source", cfg.Catalog.Source, "backend", cfg.Overlay.Backend)
	return nil
}

// =============================================================================
// Cache
// =============================================================================

func (c *CLI) newCache() cache.Cache {
	if c.cfg.Cache.Disabled {
		return cache.NewNullCache()
	}
	dir := c.cfg.Cache.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache()
		}
		dir = d
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("cache disabled", "dir", dir, "err", err)
		return cache.NewNullCache()
	}
	return fc
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/entitydiagram/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
