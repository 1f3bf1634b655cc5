package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/entitydiagram/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the catalog response cache",
	}
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	return cmd
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	var expired bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete cached catalog responses and exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			count, err := clearCache(dir, expired)
			if err != nil {
				return err
			}
			if count == 0 {
				printInfo("Nothing to clear")
				return nil
			}
			printSuccess("Cleared %s", pluralize(count, "cached entry", "cached entries"))
			printDetail("Directory: %s", dir)
			return nil
		},
	}
	cmd.Flags().BoolVar(&expired, "expired", false, "only delete expired or unreadable entries")
	return cmd
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(stdout, dir)
			return nil
		},
	}
}

// cacheDir returns the configured cache directory, or the XDG default.
func (c *CLI) cacheDir() (string, error) {
	if c.cfg.Cache.Dir != "" {
		return c.cfg.Cache.Dir, nil
	}
	return cacheDir()
}

// clearCache removes the entries under dir, or only the stale ones with
// expiredOnly, and returns how many were removed.
func clearCache(dir string, expiredOnly bool) (int, error) {
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return 0, err
	}
	if expiredOnly {
		return fc.Prune()
	}
	return fc.Clear()
}
