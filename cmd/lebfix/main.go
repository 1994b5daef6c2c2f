package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/lebfix/lebfix-client/config"
	"github.com/lebfix/lebfix-client/internal/bootstrap"
	"github.com/lebfix/lebfix-client/internal/logging"
	"github.com/lebfix/lebfix-client/internal/marketplace/domain"
)

type cli struct {
	app *bootstrap.App
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:               "lebfix",
		Short:             "Terminal client for the LebFix home-services marketplace",
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.teardown()
		},
	}

	root.AddCommand(
		c.loginCmd(),
		c.logoutCmd(),
		c.whoamiCmd(),
		c.completeProfileCmd(),
		c.viewCmd(),
		c.watchCmd(),
		c.providersCmd(),
		c.bookingsCmd(),
		c.bookCmd(),
		c.transitionCmd("accept", "Accept a pending booking", domain.StatusConfirmed),
		c.transitionCmd("decline", "Decline a pending booking", domain.StatusCancelled),
		c.transitionCmd("complete", "Mark a confirmed booking complete", domain.StatusCompleted),
		c.providerProfileCmd(),
		c.companyCmd(),
		c.addEmployeeCmd(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	bootstrap.SetupLogging(cfg)

	// keep stdout for command output
	browser.Stdout = os.Stderr

	app, err := bootstrap.New(cmd.Context(), cfg, browser.OpenURL)
	if err != nil {
		return err
	}
	c.app = app
	logging.For("cli").Debug().Str("command", cmd.Name()).Str("version", cfg.App.Version).Msg("starting")
	return nil
}

func (c *cli) teardown() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		log.Debug().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
