package render

import (
	"fmt"
	"io"

	"github.com/lebfix/lebfix-client/internal/dashboard"
	"github.com/lebfix/lebfix-client/internal/marketplace/domain"
)

// Dashboard writes a loaded role dashboard.
func Dashboard(w io.Writer, d dashboard.Dashboard) error {
	switch d := d.(type) {
	case *dashboard.Customer:
		title := "Providers"
		if c := d.Category(); c != "" {
			title = fmt.Sprintf("Providers (%s)", c)
		}
		if err := section(w, title); err != nil {
			return err
		}
		if err := Providers(w, d.Providers()); err != nil {
			return err
		}
		if err := section(w, "My bookings"); err != nil {
			return err
		}
		return Bookings(w, d.Bookings(), false)

	case *dashboard.Freelancer:
		if err := section(w, "My provider profile"); err != nil {
			return err
		}
		if own := d.OwnProvider(); own != nil {
			if err := Providers(w, []domain.Provider{*own}); err != nil {
				return err
			}
		} else if _, err := fmt.Fprintln(w, "No provider profile yet. Run `lebfix provider-profile`."); err != nil {
			return err
		}
		if err := section(w, "Incoming bookings"); err != nil {
			return err
		}
		return Bookings(w, d.Bookings(), true)

	case *dashboard.Company:
		if err := section(w, "Company"); err != nil {
			return err
		}
		if err := Company(w, d.Company()); err != nil {
			return err
		}
		if err := section(w, "Company bookings"); err != nil {
			return err
		}
		return Bookings(w, d.Bookings(), true)

	default:
		return fmt.Errorf("render: unsupported dashboard %T", d)
	}
}

func section(w io.Writer, title string) error {
	_, err := fmt.Fprintf(w, "\n== %s ==\n", title)
	return err
}
