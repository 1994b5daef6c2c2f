package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lebfix/lebfix-client/internal/dashboard"
	"github.com/lebfix/lebfix-client/internal/render"
	"github.com/lebfix/lebfix-client/internal/view"
)

func (c *cli) companyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "company",
		Short: "Show your company and its employees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if _, err := c.requireView(ctx, view.CompanyDashboard); err != nil {
				return err
			}
			d := dashboard.NewCompany(c.app.API, c.app.Session)
			defer d.Dispose()
			if err := d.RefreshCompany(ctx); err != nil {
				return err
			}
			return render.Company(cmd.OutOrStdout(), d.Company())
		},
	}
}

func (c *cli) addEmployeeCmd() *cobra.Command {
	var (
		form       dashboard.EmployeeForm
		categories []string
	)
	cmd := &cobra.Command{
		Use:   "add-employee",
		Short: "Add an existing account to your company",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if _, err := c.requireView(ctx, view.CompanyDashboard); err != nil {
				return err
			}
			d := dashboard.NewCompany(c.app.API, c.app.Session)
			defer d.Dispose()

			form.Categories = toCategories(categories)
			if err := d.AddEmployee(ctx, form); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Added %s.\n", form.Email)
			return render.Company(out, d.Company())
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&form.Email, "email", "", "employee account email")
	flags.Float64Var(&form.HourlyRate, "hourly-rate", 25, "hourly rate")
	flags.Float64Var(&form.EmergencyRate, "emergency-rate", 50, "emergency hourly rate")
	flags.StringSliceVar(&categories, "category", nil, "service categories (repeatable)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
