package cli

import (
	"context"
	"errors"
	"io"

	"github.com/go-i2p/boardcfg/lib/util/signals"
	"github.com/go-i2p/boardcfg/lib/watch"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var errNoCatalogDir = errors.New("watch needs a catalog directory (--catalog or catalog.dir)")

func (a *app) watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Generate headers and regenerate them when the catalog changes",
		Long: "watch runs generate, then regenerates whenever a layer file of the catalog\n" +
			"changes. SIGHUP forces a regeneration; SIGINT or SIGTERM stops the watcher.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.watch(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func (a *app) watch(ctx context.Context, w io.Writer) error {
	dir := a.settings.Catalog.Dir
	if dir == "" {
		return errNoCatalogDir
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The catalog is reopened on every run to pick up edited files.
	regenerate := func(ctx context.Context) error {
		return a.generate(ctx, w)
	}
	if err := regenerate(ctx); err != nil {
		log.WithError(err).Error("initial generation failed, waiting for changes")
	}

	watcher := watch.New(dir, regenerate, watch.Options{
		Debounce:    a.settings.Watch.Debounce,
		MinInterval: a.settings.Watch.MinInterval,
	})

	d := signals.New()
	d.OnReload(watcher.Trigger)
	d.OnInterrupt(cancel)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d.Run(ctx)
		return nil
	})
	g.Go(func() error {
		defer cancel()
		return watcher.Run(ctx)
	})
	return g.Wait()
}
