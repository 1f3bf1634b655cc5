package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/entitydiagram/pkg/buildinfo"
)

func TestSetVersion(t *testing.T) {
	old := [3]string{buildinfo.Version, buildinfo.Commit, buildinfo.Date}
	defer SetVersion(old[0], old[1], old[2])

	SetVersion("1.0.0", "abc123", "2024-01-01")
	if buildinfo.Version != "1.0.0" || buildinfo.Commit != "abc123" || buildinfo.Date != "2024-01-01" {
		t.Errorf("buildinfo = %s", buildinfo.String())
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()

	for _, name := range []string{"edit", "serve", "export", "links", "move", "cache", "config", "completion"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestExecuteCompletion(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	var out bytes.Buffer
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"completion", "bash"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("completion error: %v", err)
	}
	if !strings.Contains(out.String(), "entitydiagram") {
		t.Error("bash completion missing command name")
	}
}

func TestExecuteBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`[overlay]
backend = "s3"
`), 0o600); err != nil {
		t.Fatal(err)
	}

	err := Execute(context.Background(), []string{"--config", path, "links", "list"}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "s3") {
		t.Errorf("Execute() error = %v, want unknown backend", err)
	}
}
