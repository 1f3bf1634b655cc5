package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/entitydiagram/internal/config"
	"github.com/matzehuels/entitydiagram/pkg/catalog"
	"github.com/matzehuels/entitydiagram/pkg/diagram"
	"github.com/matzehuels/entitydiagram/pkg/errors"
	"github.com/matzehuels/entitydiagram/pkg/render"
)

const (
	testSchemas      = `[{"key":"User","value":{"attributes":[{"name":"id"},{"name":"email"}]}}]`
	testProductTypes = `{"limit":20,"offset":0,"count":1,"total":1,"results":[{"name":"Order","attributes":[{"name":"total"}]}]}`
)

// runner executes CLI commands against fixture catalogs and a file overlay
// shared across calls.
type runner struct {
	t          *testing.T
	catalogDir string
	storeDir   string
}

func newRunner(t *testing.T) *runner {
	t.Helper()
	for _, name := range []string{
		config.EnvBaseURL, config.EnvProject, config.EnvToken, config.EnvSource, config.EnvDir,
		config.EnvBackend, config.EnvStoreURL, config.EnvAddr, config.EnvDelay, config.EnvNoCache,
	} {
		t.Setenv(name, "")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, catalog.SchemasFile), testSchemas)
	writeTestFile(t, filepath.Join(dir, catalog.ProductTypesFile), testProductTypes)
	return &runner{t: t, catalogDir: dir, storeDir: filepath.Join(t.TempDir(), "overlay")}
}

func (r *runner) run(args ...string) (string, error) {
	r.t.Helper()
	var out bytes.Buffer
	old := stdout
	stdout = &out
	defer func() { stdout = old }()

	full := append([]string{"--catalog-dir", r.catalogDir, "--backend", "file", "--store", r.storeDir}, args...)
	err := Execute(context.Background(), full, &bytes.Buffer{})
	return out.String(), err
}

func (r *runner) mustRun(args ...string) string {
	r.t.Helper()
	out, err := r.run(args...)
	if err != nil {
		r.t.Fatalf("%s: %v", strings.Join(args, " "), err)
	}
	return out
}

func (r *runner) links() []diagram.Link {
	r.t.Helper()
	var links []diagram.Link
	if err := json.Unmarshal([]byte(r.mustRun("links", "list", "--json")), &links); err != nil {
		r.t.Fatalf("decode links: %v", err)
	}
	return links
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLinksAddPersists(t *testing.T) {
	r := newRunner(t)

	out := r.mustRun("links", "add", "User", "Order", "--key", "l1", "--text", "places")
	if !strings.Contains(out, "Linked") {
		t.Errorf("output = %q, want success message", out)
	}

	links := r.links()
	if len(links) != 1 {
		t.Fatalf("got %d links, want 1", len(links))
	}
	l := links[0]
	if l.Key != "l1" || l.From != "User" || l.To != "Order" {
		t.Errorf("link = %+v", l)
	}
	if l.FromLabel() != "places" || l.ToText != nil {
		t.Errorf("labels = %v, %v; want from label only", l.Text, l.ToText)
	}
}

func TestLinksAddGeneratesKey(t *testing.T) {
	r := newRunner(t)
	r.mustRun("links", "add", "User", "Order")

	links := r.links()
	if len(links) != 1 || links[0].Key == "" {
		t.Fatalf("links = %+v, want one keyed link", links)
	}
}

func TestLinksAddErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"self link", []string{"links", "add", "User", "User"}, errors.ErrCodeInvalidInput},
		{"unknown from", []string{"links", "add", "Ghost", "Order"}, errors.ErrCodeEntityNotFound},
		{"unknown to", []string{"links", "add", "User", "Ghost"}, errors.ErrCodeEntityNotFound},
		{"blank key", []string{"links", "add", "User", "Order", "--key", " "}, errors.ErrCodeInvalidKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRunner(t)
			_, err := r.run(tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
			if links := r.links(); len(links) != 0 {
				t.Errorf("links = %+v, want none", links)
			}
		})
	}
}

func TestLinksAddDuplicateKey(t *testing.T) {
	r := newRunner(t)
	r.mustRun("links", "add", "User", "Order", "--key", "l1")

	if _, err := r.run("links", "add", "Order", "User", "--key", "l1"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestLinksLabel(t *testing.T) {
	r := newRunner(t)
	r.mustRun("links", "add", "User", "Order", "--key", "l1")
	r.mustRun("links", "label", "l1", "owns")
	r.mustRun("links", "label", "l1", "owned by", "--to")

	l := r.links()[0]
	if l.FromLabel() != "owns" || l.ToLabel() != "owned by" {
		t.Errorf("labels = %q, %q", l.FromLabel(), l.ToLabel())
	}

	if _, err := r.run("links", "label", "missing", "x"); !errors.Is(err, errors.ErrCodeLinkNotFound) {
		t.Errorf("label missing link error = %v, want LINK_NOT_FOUND", err)
	}
}

func TestLinksRemove(t *testing.T) {
	r := newRunner(t)
	r.mustRun("links", "add", "User", "Order", "--key", "l1")
	r.mustRun("links", "add", "Order", "User", "--key", "l2")

	if _, err := r.run("links", "remove", "l1", "missing"); !errors.Is(err, errors.ErrCodeLinkNotFound) {
		t.Fatalf("error = %v, want LINK_NOT_FOUND", err)
	}
	if n := len(r.links()); n != 2 {
		t.Fatalf("failed remove deleted links: %d left", n)
	}

	r.mustRun("links", "rm", "l1")
	links := r.links()
	if len(links) != 1 || links[0].Key != "l2" {
		t.Errorf("links = %+v, want only l2", links)
	}
}

func TestLinksListTable(t *testing.T) {
	r := newRunner(t)
	if out := r.mustRun("links", "list"); !strings.Contains(out, "No links") {
		t.Errorf("empty list output = %q", out)
	}

	r.mustRun("links", "add", "User", "Order", "--key", "l1", "--to-text", "many")
	out := r.mustRun("links", "list")
	for _, want := range []string{"l1", "User", "Order", "many"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestLinkRowsMarksMissingEntities(t *testing.T) {
	snap := &diagram.Snapshot{
		Entities: []diagram.Entity{{Key: "User"}},
		Links:    []diagram.Link{{Key: "l1", From: "User", To: "Gone"}},
	}
	rows := linkRows(snap)
	if len(rows) != 1 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[0][1] != "User" || !strings.Contains(rows[0][2], "missing") {
		t.Errorf("row = %v", rows[0])
	}
}

func TestMoveAndPinnedExport(t *testing.T) {
	r := newRunner(t)
	r.mustRun("move", "User", "10", "20")

	out := filepath.Join(t.TempDir(), "diagram.dot")
	r.mustRun("export", "-o", out, "--pinned")

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `pos="10,-20!"`) {
		t.Errorf("pinned DOT missing moved position:\n%s", data)
	}
}

func TestMoveErrors(t *testing.T) {
	r := newRunner(t)

	if _, err := r.run("move", "User", "ten", "20"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad coordinate error = %v", err)
	}
	if _, err := r.run("move", "Ghost", "1", "2"); !errors.Is(err, errors.ErrCodeEntityNotFound) {
		t.Errorf("unknown entity error = %v", err)
	}
}

func TestExportStaticSVG(t *testing.T) {
	r := newRunner(t)
	out := r.mustRun("export", "--static")
	if !strings.HasPrefix(strings.TrimSpace(out), "<svg") || !strings.Contains(out, "User") {
		t.Errorf("static export = %.200q", out)
	}

	if _, err := r.run("export", "--static", "-f", "png"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("static png error = %v, want INVALID_INPUT", err)
	}
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		format, output string
		want           render.Format
		wantErr        bool
	}{
		{"", "", render.FormatSVG, false},
		{"", "out.png", render.FormatPNG, false},
		{"", "out.dot", render.FormatDOT, false},
		{"pdf", "out.png", render.FormatPDF, false},
		{"", "out.gif", "", true},
		{"jpeg", "", "", true},
	}
	for _, tt := range tests {
		got, err := resolveFormat(tt.format, tt.output)
		if (err != nil) != tt.wantErr {
			t.Errorf("resolveFormat(%q, %q) error = %v", tt.format, tt.output, err)
			continue
		}
		if got != tt.want {
			t.Errorf("resolveFormat(%q, %q) = %q, want %q", tt.format, tt.output, got, tt.want)
		}
	}
}

func TestConfigInit(t *testing.T) {
	r := newRunner(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	r.mustRun("--config", path, "config", "init")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if _, err := r.run("--config", path, "config", "init"); err == nil {
		t.Error("second init succeeded, want refusal to overwrite")
	}
	r.mustRun("--config", path, "config", "init", "--force")

	if out := r.mustRun("--config", path, "config", "path"); !strings.Contains(out, path) {
		t.Errorf("config path = %q", out)
	}
}

func TestConfigShowRedactsToken(t *testing.T) {
	r := newRunner(t)
	t.Setenv(config.EnvToken, "s3cret")

	out := r.mustRun("config", "show")
	if strings.Contains(out, "s3cret") {
		t.Error("token printed in clear")
	}
	if !strings.Contains(out, redacted) {
		t.Errorf("config show = %q, want redacted token", out)
	}
}
