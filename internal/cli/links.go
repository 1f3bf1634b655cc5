package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/entitydiagram/pkg/change"
	"github.com/matzehuels/entitydiagram/pkg/diagram"
	"github.com/matzehuels/entitydiagram/pkg/editor"
	"github.com/matzehuels/entitydiagram/pkg/errors"
)

func (c *CLI) linksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "links",
		Short: "List and edit user-drawn links",
	}
	cmd.AddCommand(c.linksListCommand())
	cmd.AddCommand(c.linksAddCommand())
	cmd.AddCommand(c.linksRemoveCommand())
	cmd.AddCommand(c.linksLabelCommand())
	return cmd
}

func (c *CLI) linksListCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List links",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app) error {
				snap := a.sess.Snapshot()
				if asJSON {
					enc := json.NewEncoder(stdout)
					enc.SetIndent("", "  ")
					return enc.Encode(snap.Links)
				}
				if len(snap.Links) == 0 {
					printInfo("No links")
					return nil
				}
				printTable([]string{"Key", "From", "To", "From label", "To label"}, linkRows(snap))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print links as JSON")
	return cmd
}

func linkRows(s *diagram.Snapshot) [][]string {
	endpoint := func(key string) string {
		if _, ok := s.FindEntity(key); !ok {
			return StyleWarning.Render(key + " (missing)")
		}
		return key
	}
	rows := make([][]string, len(s.Links))
	for i, l := range s.Links {
		rows[i] = []string{l.Key, endpoint(l.From), endpoint(l.To), formatLabel(l.Text), formatLabel(l.ToText)}
	}
	return rows
}

func (c *CLI) linksAddCommand() *cobra.Command {
	var key, text, toText string
	cmd := &cobra.Command{
		Use:   "add FROM TO",
		Short: "Link two entities",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to := args[0], args[1]
			if from == to {
				return errors.New(errors.ErrCodeInvalidInput, "cannot link %q to itself", from)
			}
			if key == "" {
				key = editor.NewLinkKey()
			}
			if err := errors.ValidateKey("link", key); err != nil {
				return err
			}
			e := change.LinkAdded{Key: key, From: from, To: to}
			if cmd.Flags().Changed("text") {
				e.Text = diagram.Label(text)
			}
			if cmd.Flags().Changed("to-text") {
				e.ToText = diagram.Label(toText)
			}

			return c.withApp(cmd.Context(), func(a *app) error {
				snap := a.sess.Snapshot()
				for _, k := range []string{from, to} {
					if _, ok := snap.FindEntity(k); !ok {
						return errors.New(errors.ErrCodeEntityNotFound, "entity %q not found", k)
					}
				}
				if _, ok := snap.FindLink(key); ok {
					return errors.New(errors.ErrCodeInvalidInput, "link %q already exists", key)
				}
				a.sess.Dispatch(e)
				printSuccess("Linked %s %s %s", StyleHighlight.Render(from), iconArrow, StyleHighlight.Render(to))
				printDetail("Key: %s", key)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "link key (default: a new UUID)")
	cmd.Flags().StringVar(&text, "text", "", "label at the from end")
	cmd.Flags().StringVar(&toText, "to-text", "", "label at the to end")
	return cmd
}

func (c *CLI) linksRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove KEY...",
		Aliases: []string{"rm"},
		Short:   "Remove links",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app) error {
				for _, key := range args {
					if _, ok := a.sess.Snapshot().FindLink(key); !ok {
						return errors.New(errors.ErrCodeLinkNotFound, "link %q not found", key)
					}
				}
				for _, key := range args {
					a.sess.Dispatch(change.LinkRemoved{Key: key})
				}
				printSuccess("Removed %s", pluralize(len(args), "link", "links"))
				return nil
			})
		},
	}
}

func (c *CLI) linksLabelCommand() *cobra.Command {
	var toEnd bool
	cmd := &cobra.Command{
		Use:   "label KEY TEXT",
		Short: "Set the label at one end of a link",
		Long:  "Set the label at the from end of a link, or at the to end with --to.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, text := args[0], args[1]
			return c.withApp(cmd.Context(), func(a *app) error {
				l, ok := a.sess.Snapshot().FindLink(key)
				if !ok {
					return errors.New(errors.ErrCodeLinkNotFound, "link %q not found", key)
				}
				old := l.FromLabel()
				if toEnd {
					old = l.ToLabel()
				}
				a.sess.Dispatch(change.LinkTextChanged{Key: key, OldText: old, NewText: text, IsFromText: !toEnd})
				printSuccess("Label %s", fmt.Sprintf("%q %s %q", old, iconArrow, text))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&toEnd, "to", false, "set the to-end label")
	return cmd
}
