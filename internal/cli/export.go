package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/entitydiagram/pkg/editor"
	"github.com/matzehuels/entitydiagram/pkg/errors"
	"github.com/matzehuels/entitydiagram/pkg/render"
)

// exportOpts holds the command-line flags for the export command.
type exportOpts struct {
	output    string // output file, or stdout when empty
	format    string // svg, png, pdf or dot; inferred from output when empty
	pinned    bool   // keep entity positions instead of letting graphviz lay out
	inherited bool   // include inherited attributes
	static    bool   // draw the editor canvas instead of a graphviz layout
}

func (c *CLI) exportCommand() *cobra.Command {
	var opts exportOpts
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render the diagram to SVG, PNG, PDF or DOT",
		Long: `Render the diagram with graphviz, or with --static as it appears on the
editor canvas. The format defaults to the output file's extension, then svg.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := resolveFormat(opts.format, opts.output)
			if err != nil {
				return err
			}
			if opts.static && f != render.FormatSVG {
				return errors.New(errors.ErrCodeInvalidInput, "--static only supports svg")
			}
			return c.withApp(cmd.Context(), func(a *app) error {
				data, err := exportSnapshot(cmd.Context(), a, f, opts)
				if err != nil {
					return err
				}
				return writeOutput(opts.output, data)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: svg, png, pdf, dot")
	cmd.Flags().BoolVar(&opts.pinned, "pinned", false, "keep entity positions")
	cmd.Flags().BoolVar(&opts.inherited, "inherited", false, "include inherited attributes")
	cmd.Flags().BoolVar(&opts.static, "static", false, "render the editor canvas")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
	return cmd
}

func exportSnapshot(ctx context.Context, a *app, f render.Format, opts exportOpts) ([]byte, error) {
	if opts.static {
		return render.SVG(editor.New(a.sess).View()), nil
	}
	return withSpinner(ctx, "Rendering "+string(f), func(ctx context.Context) ([]byte, error) {
		return render.Export(ctx, a.sess.Snapshot(), f, render.Options{Pinned: opts.pinned, Inherited: opts.inherited})
	})
}

// resolveFormat picks the explicit format, else the output extension, else svg.
func resolveFormat(format, output string) (render.Format, error) {
	if format != "" {
		return render.ParseFormat(format)
	}
	if ext := strings.TrimPrefix(filepath.Ext(output), "."); ext != "" {
		return render.ParseFormat(ext)
	}
	return render.FormatSVG, nil
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	printSuccess("Exported diagram")
	printFile(path)
	return nil
}
