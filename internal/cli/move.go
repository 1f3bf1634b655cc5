package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/entitydiagram/pkg/change"
	"github.com/matzehuels/entitydiagram/pkg/diagram"
	"github.com/matzehuels/entitydiagram/pkg/errors"
)

func (c *CLI) moveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "move ENTITY X Y",
		Short: "Set an entity's position",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			p, err := parsePoint(args[1], args[2])
			if err != nil {
				return err
			}
			return c.withApp(cmd.Context(), func(a *app) error {
				if _, ok := a.sess.Snapshot().FindEntity(key); !ok {
					return errors.New(errors.ErrCodeEntityNotFound, "entity %q not found", key)
				}
				a.sess.Dispatch(change.MoveTo(key, p))
				printSuccess("Moved %s to %s", StyleHighlight.Render(key), diagram.FormatLoc(p))
				return nil
			})
		},
	}
}

func parsePoint(xs, ys string) (diagram.Point, error) {
	x, err := strconv.ParseFloat(xs, 64)
	if err != nil {
		return diagram.Point{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid x %q", xs)
	}
	y, err := strconv.ParseFloat(ys, 64)
	if err != nil {
		return diagram.Point{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid y %q", ys)
	}
	return diagram.Point{X: x, Y: y}, nil
}
