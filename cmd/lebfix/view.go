package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lebfix/lebfix-client/internal/dashboard"
	"github.com/lebfix/lebfix-client/internal/logging"
	"github.com/lebfix/lebfix-client/internal/marketplace/domain"
	"github.com/lebfix/lebfix-client/internal/refresh"
	"github.com/lebfix/lebfix-client/internal/render"
	"github.com/lebfix/lebfix-client/internal/view"
)

func (c *cli) viewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Show the screen for the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, d, err := c.app.Dashboard(cmd.Context())
			if d != nil {
				defer d.Dispose()
			}
			return show(cmd.OutOrStdout(), v, d, c.app.Session.User(), err)
		},
	}
}

// show renders a view. Dashboard load failures are reported after whatever
// data did arrive.
func show(out io.Writer, v view.State, d dashboard.Dashboard, user *domain.User, loadErr error) error {
	if d == nil {
		return render.State(out, v, user)
	}
	if err := render.Dashboard(out, d); err != nil {
		return err
	}
	if loadErr != nil {
		fmt.Fprintf(out, "\nSome data could not be loaded: %v\n", loadErr)
	}
	return nil
}

// watcher keeps one dashboard alive and reloads it on each tick, swapping it
// when the routed view changes.
type watcher struct {
	c    *cli
	out  io.Writer
	view view.State
	d    dashboard.Dashboard
}

func (w *watcher) tick(ctx context.Context) error {
	err := w.c.app.Session.RefreshUser(ctx)
	if err != nil && !errors.Is(err, domain.ErrFetchFailed) && !errors.Is(err, domain.ErrNotLoggedIn) {
		logging.NewLogger(ctx, "watch").LogWarnf("refresh_user", "%v", err)
	}

	state := w.c.app.Session.State()
	v := view.Route(state.User, state.Loading)
	if v != w.view || w.d == nil {
		if w.d != nil {
			w.d.Dispose()
		}
		w.view = v
		w.d, _ = dashboard.ForView(v, w.c.app.API, w.c.app.Session)
	}

	var loadErr error
	if w.d != nil {
		loadErr = w.d.Load(ctx)
	}
	fmt.Fprint(w.out, "\033[H\033[2J")
	return show(w.out, w.view, w.d, state.User, loadErr)
}

func (c *cli) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Show the dashboard and refresh it on the configured schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			w := &watcher{c: c, out: cmd.OutOrStdout(), view: c.app.Route(ctx)}
			defer func() {
				if w.d != nil {
					w.d.Dispose()
				}
			}()

			scheduler, err := refresh.NewScheduler(c.app.Config.Refresh.Schedule, w.tick)
			if err != nil {
				return err
			}
			scheduler.RunNow(ctx)
			if err := scheduler.Start(ctx); err != nil {
				return err
			}
			<-ctx.Done()
			scheduler.Stop()
			return nil
		},
	}
}
