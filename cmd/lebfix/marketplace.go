package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lebfix/lebfix-client/internal/booking"
	"github.com/lebfix/lebfix-client/internal/dashboard"
	"github.com/lebfix/lebfix-client/internal/marketplace/domain"
	"github.com/lebfix/lebfix-client/internal/render"
	"github.com/lebfix/lebfix-client/internal/view"
)

// requireView restores the session and fails unless it routes to one of want.
func (c *cli) requireView(ctx context.Context, want ...view.State) (view.State, error) {
	v := c.app.Route(ctx)
	for _, w := range want {
		if v == w {
			return v, nil
		}
	}
	return v, viewError(v)
}

func viewError(v view.State) error {
	switch v {
	case view.Landing:
		return domain.ErrNotLoggedIn
	case view.ProfileCompletion:
		return fmt.Errorf("complete your profile first: run `lebfix complete-profile`")
	default:
		return fmt.Errorf("not available for this account (%s)", v)
	}
}

func (c *cli) providersCmd() *cobra.Command {
	var (
		category  string
		emergency bool
	)
	cmd := &cobra.Command{
		Use:   "providers",
		Short: "List service providers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			c.app.Session.RestoreSession(ctx)

			d := dashboard.NewCustomer(c.app.API, c.app.Session)
			defer d.Dispose()
			if err := d.SetCategory(ctx, domain.ServiceCategory(category)); err != nil {
				return err
			}
			if emergency {
				if err := d.SetEmergencyOnly(ctx, true); err != nil {
					return err
				}
			}
			return render.Providers(cmd.OutOrStdout(), d.Providers())
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "electrical, technical, mechanical or plumbing")
	cmd.Flags().BoolVar(&emergency, "emergency", false, "only providers taking emergency jobs")
	return cmd
}

func (c *cli) bookingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bookings",
		Short: "List your bookings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, d, err := c.app.Dashboard(cmd.Context())
			if d == nil {
				return viewError(v)
			}
			defer d.Dispose()
			if err != nil {
				return err
			}
			return render.Bookings(cmd.OutOrStdout(), d.Bookings(), v != view.CustomerDashboard)
		},
	}
}

func (c *cli) bookCmd() *cobra.Command {
	var (
		providerID string
		category   string
		form       booking.Form
		dryRun     bool
	)
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book a provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if _, err := c.requireView(ctx, view.CustomerDashboard); err != nil {
				return err
			}

			d := dashboard.NewCustomer(c.app.API, c.app.Session)
			defer d.Dispose()
			if err := d.RefreshProviders(ctx); err != nil {
				return err
			}
			f, err := d.OpenBooking(providerID)
			if err != nil {
				return err
			}
			if category != "" {
				f.Category = domain.ServiceCategory(category)
			}
			f.Description = form.Description
			f.ScheduledAt = form.ScheduledAt
			f.Address = form.Address
			f.Emergency = form.Emergency

			out := cmd.OutOrStdout()
			if err := render.BookingForm(out, f); err != nil {
				return err
			}
			if dryRun {
				return f.Validate()
			}

			created, err := d.SubmitBooking(ctx, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Booking %s requested (%s).\n", created.ID, created.Status)
			return render.Bookings(out, d.Bookings(), false)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&providerID, "provider", "", "provider id")
	flags.StringVar(&category, "category", "", "service category (defaults to the provider's first)")
	flags.StringVar(&form.Description, "description", "", "what needs fixing")
	flags.StringVar(&form.ScheduledAt, "date", "", "when, as 2006-01-02T15:04 local time or RFC 3339")
	flags.StringVar(&form.Address, "address", "", "where the job is")
	flags.BoolVar(&form.Emergency, "emergency", false, "request emergency service")
	flags.BoolVar(&dryRun, "dry-run", false, "show the estimate without booking")
	_ = cmd.MarkFlagRequired("provider")
	return cmd
}
