package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/entitydiagram/pkg/buildinfo"
)

// SetVersion overrides the build information shown by --version. main calls
// it with values injected via ldflags.
func SetVersion(version, commit, date string) {
	buildinfo.Version = version
	buildinfo.Commit = commit
	buildinfo.Date = date
}

// Execute runs the CLI with args, logging to stderr. --verbose (-v) switches
// the logger to debug level before any command runs.
func Execute(ctx context.Context, args []string, stderr io.Writer) error {
	var verbose bool

	c := New(stderr, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetErr(stderr)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	preRun := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(LogDebug)
		}
		return preRun(cmd, args)
	}

	return root.ExecuteContext(ctx)
}
