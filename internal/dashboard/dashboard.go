package dashboard

import (
	"context"

	"github.com/lebfix/lebfix-client/internal/marketplace/domain"
	"github.com/lebfix/lebfix-client/internal/view"
)

// Dashboard is the part every role dashboard shares.
type Dashboard interface {
	Load(ctx context.Context) error
	Bookings() []domain.Booking
	Dispose()
}

// API covers every backend call the dashboards make.
type API interface {
	CustomerAPI
	FreelancerAPI
	CompanyAPI
}

// ForView builds the dashboard for a routed view. ok is false for views that
// are not dashboards.
func ForView(v view.State, api API, session Session) (d Dashboard, ok bool) {
	switch v {
	case view.CustomerDashboard:
		return NewCustomer(api, session), true
	case view.FreelancerDashboard:
		return NewFreelancer(api, session), true
	case view.CompanyDashboard:
		return NewCompany(api, session), true
	default:
		return nil, false
	}
}
