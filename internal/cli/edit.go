package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/entitydiagram/pkg/catalog"
	"github.com/matzehuels/entitydiagram/pkg/diagram"
)

func (c *CLI) editCommand() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit the diagram in the terminal",
		Long: `Open the diagram in an interactive terminal editor.

Drag an entity's body to move it. Drag from its title onto another entity's
body to link the two. Click a link label to edit it, double-click an unlabeled
link to give it default labels, and press Delete to remove the selected link.
Changes are saved to the overlay store as you edit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app) error {
				return runEditor(cmd.Context(), a, watch)
			})
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "reload when catalog fixture files change")
	return cmd
}

func runEditor(ctx context.Context, a *app, watch bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewEditorModel(a.sess, a.sync.Status),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	// Observers run on the dispatching goroutine, which may be the program's
	// own update loop, so Send must not block it.
	unsubscribe := a.sess.Subscribe(func(_, _ *diagram.Snapshot) {
		go p.Send(snapshotMsg{})
	})
	defer unsubscribe()

	if fs, ok := a.source.(*catalog.FileSource); ok && watch {
		go func() {
			if err := fs.Watch(ctx, func() { a.reload(ctx) }); err != nil {
				a.logger.Warn("catalog watch stopped", "err", err)
			}
		}()
	}

	_, err := p.Run()
	return err
}
