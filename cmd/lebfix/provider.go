package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lebfix/lebfix-client/internal/dashboard"
	"github.com/lebfix/lebfix-client/internal/marketplace/domain"
	"github.com/lebfix/lebfix-client/internal/render"
	"github.com/lebfix/lebfix-client/internal/view"
)

type transitioner interface {
	dashboard.Dashboard
	RefreshBookings(ctx context.Context) error
	Transition(ctx context.Context, bookingID string, target domain.BookingStatus) error
}

func (c *cli) transitionCmd(use, short string, target domain.BookingStatus) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <booking-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			v, err := c.requireView(ctx, view.FreelancerDashboard, view.CompanyDashboard)
			if err != nil {
				return err
			}
			d, _ := dashboard.ForView(v, c.app.API, c.app.Session)
			defer d.Dispose()

			t, ok := d.(transitioner)
			if !ok {
				return fmt.Errorf("bookings cannot be updated from this account")
			}
			if err := t.RefreshBookings(ctx); err != nil {
				return err
			}
			if err := t.Transition(ctx, args[0], target); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Booking %s is now %s.\n", args[0], target)
			return render.Bookings(out, d.Bookings(), true)
		},
	}
}

func (c *cli) providerProfileCmd() *cobra.Command {
	var (
		categories  []string
		hourly      float64
		emergency   float64
		description string
		hours       map[string]string
	)
	cmd := &cobra.Command{
		Use:   "provider-profile",
		Short: "Update your provider profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if _, err := c.requireView(ctx, view.FreelancerDashboard); err != nil {
				return err
			}
			d := dashboard.NewFreelancer(c.app.API, c.app.Session)
			defer d.Dispose()
			if err := d.RefreshOwnProvider(ctx); err != nil {
				return err
			}

			form := d.ProfileForm()
			flags := cmd.Flags()
			if flags.Changed("category") {
				form.Categories = toCategories(categories)
			}
			if flags.Changed("hourly-rate") {
				form.HourlyRate = &hourly
			}
			if flags.Changed("emergency-rate") {
				form.EmergencyRate = &emergency
			}
			if flags.Changed("description") {
				form.Description = description
			}
			if flags.Changed("hours") {
				if form.WorkingHours == nil {
					form.WorkingHours = make(map[string]string, len(hours))
				}
				for day, span := range hours {
					form.WorkingHours[day] = span
				}
			}
			if err := d.SaveProfile(ctx, form); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Provider profile saved.")
			if own := d.OwnProvider(); own != nil {
				return render.Providers(out, []domain.Provider{*own})
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringSliceVar(&categories, "category", nil, "service categories offered (repeatable)")
	flags.Float64Var(&hourly, "hourly-rate", 0, "hourly rate (freelancers only)")
	flags.Float64Var(&emergency, "emergency-rate", 0, "emergency hourly rate (freelancers only)")
	flags.StringVar(&description, "description", "", "short description of your services")
	flags.StringToStringVar(&hours, "hours", nil, "working hours per day, e.g. mon=09:00-17:00,sat=10:00-14:00")
	return cmd
}

func toCategories(in []string) []domain.ServiceCategory {
	out := make([]domain.ServiceCategory, len(in))
	for i, s := range in {
		out[i] = domain.ServiceCategory(s)
	}
	return out
}
