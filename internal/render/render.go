// Package render writes plain-text views for the terminal.
package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/lebfix/lebfix-client/internal/booking"
	"github.com/lebfix/lebfix-client/internal/marketplace/domain"
	"github.com/lebfix/lebfix-client/internal/view"
)

const dateLayout = "2006-01-02 15:04"

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// State writes the screen for a non-dashboard view.
func State(w io.Writer, s view.State, user *domain.User) error {
	switch s {
	case view.Loading:
		_, err := fmt.Fprintln(w, "Loading...")
		return err
	case view.Landing:
		_, err := fmt.Fprintln(w, "LebFix: find trusted fixers near you.\nRun `lebfix login` to sign in.")
		return err
	case view.ProfileCompletion:
		return ProfileCompletion(w, user)
	default:
		_, err := fmt.Fprintf(w, "%s\n", s)
		return err
	}
}

func ProfileCompletion(w io.Writer, user *domain.User) error {
	var b strings.Builder
	b.WriteString("Complete your profile\n")
	if user != nil && user.Name != "" {
		fmt.Fprintf(&b, "Signed in as %s\n", user.Name)
	}
	b.WriteString("Choose a role: ")
	roles := []string{}
	for _, r := range []domain.Role{domain.RoleCustomer, domain.RoleFreelanceFixer, domain.RoleCompany} {
		roles = append(roles, r.String())
	}
	b.WriteString(strings.Join(roles, ", "))
	b.WriteString("\nRun `lebfix complete-profile --role <role> --phone <phone> --address <address>`.\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// User writes the signed-in account.
func User(w io.Writer, u *domain.User) error {
	if u == nil {
		_, err := fmt.Fprintln(w, "Not signed in.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintf(tw, "Name:\t%s\n", u.Name)
	fmt.Fprintf(tw, "Email:\t%s\n", u.Email)
	fmt.Fprintf(tw, "Role:\t%s\n", orDash(u.Role.String()))
	fmt.Fprintf(tw, "Phone:\t%s\n", orDash(u.Phone))
	fmt.Fprintf(tw, "Address:\t%s\n", orDash(u.Address))
	return tw.Flush()
}

func Providers(w io.Writer, providers []domain.Provider) error {
	if len(providers) == 0 {
		_, err := fmt.Fprintln(w, "No providers found.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tCOMPANY\tCATEGORIES\tRATING\tJOBS\tHOURLY\tEMERGENCY")
	for _, p := range providers {
		company := "-"
		if p.Company != nil {
			company = p.Company.Name
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			p.ID, p.DisplayName(), company, categories(p.ServiceCategories),
			optional(p.Rating, "%.1f"), p.TotalJobs,
			optional(p.HourlyRate, "%.2f"), optional(p.EmergencyRate, "%.2f"))
	}
	return tw.Flush()
}

// Bookings writes a booking table. With actions set, the lifecycle actions
// available for each booking are listed.
func Bookings(w io.Writer, bookings []domain.Booking, actions bool) error {
	if len(bookings) == 0 {
		_, err := fmt.Fprintln(w, "No bookings yet.")
		return err
	}
	tw := newTable(w)
	header := "ID\tCATEGORY\tWHEN\tWHERE\tCUSTOMER\tPROVIDER\tPRICE\tSTATUS"
	if actions {
		header += "\tACTIONS"
	}
	fmt.Fprintln(tw, header)
	for _, b := range bookings {
		emergency := ""
		if b.Emergency {
			emergency = " (emergency)"
		}
		fmt.Fprintf(tw, "%s\t%s%s\t%s\t%s\t%s\t%s\t%.2f\t%s",
			b.ID, b.ServiceCategory, emergency, when(b.ScheduledDate.Time),
			orDash(b.Location.Address), userName(b.Customer), userName(b.ProviderUser),
			b.Price, b.Status)
		if actions {
			fmt.Fprintf(tw, "\t%s", actionLabels(booking.Actions(b.Status)))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func Company(w io.Writer, c *domain.Company) error {
	if c == nil {
		_, err := fmt.Fprintln(w, "No company record.")
		return err
	}
	if _, err := fmt.Fprintf(w, "%s\n", c.Name); err != nil {
		return err
	}
	if len(c.Employees) == 0 {
		_, err := fmt.Fprintln(w, "No employees yet.")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "EMPLOYEE\tEMAIL\tPHONE")
	for _, e := range c.Employees {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", orDash(e.Name), orDash(e.Email), orDash(e.Phone))
	}
	return tw.Flush()
}

// BookingForm writes the form summary including the estimated hourly cost.
func BookingForm(w io.Writer, f *booking.Form) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "Provider:\t%s\n", f.Provider.DisplayName())
	fmt.Fprintf(tw, "Category:\t%s\n", orDash(string(f.Category)))
	fmt.Fprintf(tw, "Emergency:\t%t\n", f.Emergency)
	fmt.Fprintf(tw, "Estimated cost:\t%s\n", EstimatedCost(f))
	return tw.Flush()
}

// EstimatedCost formats the display-only hourly estimate, e.g. "35/hour".
func EstimatedCost(f *booking.Form) string {
	cost, ok := f.EstimatedHourlyCost()
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%s/hour", trimFloat(cost))
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func when(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(dateLayout)
}

func userName(u *domain.User) string {
	if u == nil {
		return "-"
	}
	return orDash(u.Name)
}

func categories(cs []domain.ServiceCategory) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = string(c)
	}
	return orDash(strings.Join(parts, ","))
}

func actionLabels(actions []booking.Action) string {
	if len(actions) == 0 {
		return "-"
	}
	labels := make([]string, len(actions))
	for i, a := range actions {
		labels[i] = a.Label
	}
	return strings.Join(labels, " / ")
}

func optional(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
