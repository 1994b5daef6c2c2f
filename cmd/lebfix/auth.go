package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lebfix/lebfix-client/internal/marketplace/domain"
	"github.com/lebfix/lebfix-client/internal/profile"
	"github.com/lebfix/lebfix-client/internal/render"
	"github.com/lebfix/lebfix-client/internal/view"
)

func (c *cli) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in through the browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			user, err := c.app.Login(cmd.Context(), func(authURL string) {
				fmt.Fprintf(out, "Opening your browser to sign in.\nIf it does not open, visit:\n  %s\n", authURL)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Signed in as %s.\n", user.Name)
			if view.Route(user, false) == view.ProfileCompletion {
				return render.ProfileCompletion(out, user)
			}
			return nil
		},
	}
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Session.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return render.User(cmd.OutOrStdout(), c.app.Session.RestoreSession(cmd.Context()))
		},
	}
}

func (c *cli) completeProfileCmd() *cobra.Command {
	var role, phone, address string
	cmd := &cobra.Command{
		Use:   "complete-profile",
		Short: "Choose a role and set contact details",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if v := c.app.Route(ctx); v != view.ProfileCompletion {
				if v == view.Landing {
					return domain.ErrNotLoggedIn
				}
				return fmt.Errorf("profile is already complete")
			}

			form := profile.NewForm(c.app.Session)
			if err := form.SelectRole(domain.ParseRole(role)); err != nil {
				return err
			}
			form.SetContact(phone, address)
			if err := form.Submit(ctx); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Profile saved.")
			state := c.app.Session.State()
			if v := view.Route(state.User, state.Loading); v == view.ProfileCompletion {
				// customers still missing phone or address stay here
				return render.State(out, v, state.User)
			}
			fmt.Fprintln(out, "Run `lebfix view` to open your dashboard.")
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "customer, freelance_fixer or company")
	cmd.Flags().StringVar(&phone, "phone", "", "contact phone number")
	cmd.Flags().StringVar(&address, "address", "", "contact address")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}
