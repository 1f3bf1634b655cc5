package cli

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/entitydiagram/internal/server"
	"github.com/matzehuels/entitydiagram/pkg/catalog"
)

// metricsNamespace prefixes every exported Prometheus metric.
const metricsNamespace = "entitydiagram"

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr  string
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the diagram over HTTP",
		Long: `Serve the diagram's JSON API, SVG and exports, and Prometheus metrics.

Events posted to /api/events are applied to the live diagram and persisted to
the overlay store. With --watch, edits to catalog fixture files reload the
diagram.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.cfg.Server.Addr
			}
			return c.runServe(cmd.Context(), addr, watch)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload when catalog fixture files change")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, watch bool) error {
	// Installed before loading so the initial catalog fetch is counted.
	metrics := server.NewMetrics(metricsNamespace)
	metrics.Install()

	return c.withApp(ctx, func(a *app) error {
		srv := server.New(a.sess,
			server.WithSynchronizer(a.sync),
			server.WithSource(a.source),
			server.WithMetrics(metrics),
			server.WithCache(c.newCache()),
			server.WithLogger(componentLogger(a.logger, "http")),
		)

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error { return srv.ListenAndServe(ctx, addr) })

		if fs, ok := a.source.(*catalog.FileSource); ok && watch {
			g.Go(func() error {
				return fs.Watch(ctx, func() { a.reload(ctx) })
			})
		} else if watch {
			a.logger.Warn("--watch only applies to file catalogs")
		}

		printInfo("Serving on %s", StyleLink.Render("http://"+addr))
		return g.Wait()
	})
}

// reload refetches the catalog, keeping links and positions.
func (a *app) reload(ctx context.Context) {
	snap, err := a.sess.Reload(ctx, a.source)
	if err != nil {
		a.logger.Error("reload failed", "err", err)
		return
	}
	a.logger.Info("reloaded", "entities", len(snap.Entities))
}
