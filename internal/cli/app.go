package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/entitydiagram/internal/config"
	"github.com/matzehuels/entitydiagram/pkg/catalog"
	"github.com/matzehuels/entitydiagram/pkg/diagram"
	"github.com/matzehuels/entitydiagram/pkg/overlay"
	"github.com/matzehuels/entitydiagram/pkg/persist"
	"github.com/matzehuels/entitydiagram/pkg/session"
)

// app is an opened diagram: catalog source, overlay store, session and
// synchronizer, wired from the configuration.
type app struct {
	source  catalog.Source
	store   overlay.Store
	overlay *overlay.Overlay
	sess    *session.Session
	sync    *persist.Synchronizer
	logger  *log.Logger
}

// open loads the diagram and attaches a synchronizer so that dispatched
// events are persisted. Callers must Close the app.
func (c *CLI) open(ctx context.Context) (*app, error) {
	logger := loggerFromContext(ctx)
	cfg := c.cfg

	var client *catalog.Client
	if cfg.Catalog.Source == config.SourceHTTP {
		client = catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.Project, c.newCache(),
			cfg.Cache.TTL.Duration, catalog.BearerToken(cfg.Catalog.Token))
	}
	src := newSource(cfg.Catalog, client, logger)

	store, err := openStore(ctx, cfg.Overlay, client, componentLogger(logger, "overlay"))
	if err != nil {
		return nil, err
	}
	ov := overlay.New(store, cfg.Overlay.Container)

	prog := newProgress(logger)
	snap, err := withSpinner(ctx, "Loading diagram", func(ctx context.Context) (*diagram.Snapshot, error) {
		return session.Load(ctx, src, ov)
	})
	if err != nil {
		store.Close()
		return nil, err
	}
	prog.done(pluralize(len(snap.Entities), "entity", "entities") + ", " + pluralize(len(snap.Links), "link", "links"))

	sess := session.New(snap, session.WithLogger(componentLogger(logger, "session")))
	syncer := persist.New(ov,
		persist.WithDelay(cfg.Sync.Delay.Duration),
		persist.WithWriteTimeout(cfg.Sync.WriteTimeout.Duration),
		persist.WithLogger(componentLogger(logger, "sync")),
	)
	syncer.Attach(sess)

	return &app{source: src, store: store, overlay: ov, sess: sess, sync: syncer, logger: logger}, nil
}

// Close flushes pending overlay writes and releases the store.
func (a *app) Close(ctx context.Context) error {
	return errors.Join(a.sync.Close(ctx), a.store.Close())
}

func newSource(cfg config.CatalogConfig, client *catalog.Client, logger *log.Logger) catalog.Source {
	if cfg.Source == config.SourceHTTP {
		return catalog.NewHTTPSource(client,
			catalog.WithSchemaContainer(cfg.SchemaContainer),
			catalog.WithPageLimit(cfg.PageLimit),
		)
	}
	return catalog.NewFileSource(cfg.Dir, componentLogger(logger, "catalog"))
}

func openStore(ctx context.Context, cfg config.OverlayConfig, client *catalog.Client, logger *log.Logger) (overlay.Store, error) {
	if strings.EqualFold(cfg.Backend, config.BackendAPI) {
		return overlay.NewAPIStore(client), nil
	}
	return overlay.Open(ctx, overlay.Options{
		Backend:  cfg.Backend,
		Path:     cfg.Path,
		URL:      cfg.URL,
		Database: cfg.Database,
		Logger:   logger,
	})
}

// withApp opens the diagram, runs fn and closes it, flushing any events fn
// dispatched. The flush outlives ctx: serve and edit return only once a
// signal has cancelled it, and pending writes must still reach the store.
func (c *CLI) withApp(ctx context.Context, fn func(*app) error) (err error) {
	a, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.Sync.WriteTimeout.Duration)
		defer cancel()
		if cerr := a.Close(closeCtx); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()
	return fn(a)
}
