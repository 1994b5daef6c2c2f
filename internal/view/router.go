// Package view decides which top-level screen the client shows.
package view

import "github.com/lebfix/lebfix-client/internal/marketplace/domain"

// State is one of the top-level screens.
type State int

const (
	Loading State = iota
	Landing
	ProfileCompletion
	CustomerDashboard
	FreelancerDashboard
	CompanyDashboard
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Landing:
		return "landing"
	case ProfileCompletion:
		return "profile_completion"
	case CustomerDashboard:
		return "customer_dashboard"
	case FreelancerDashboard:
		return "freelancer_dashboard"
	case CompanyDashboard:
		return "company_dashboard"
	default:
		return "unknown"
	}
}

// Route maps the session to a screen. Only customers are gated on contact
// details; fixers and companies go straight to their dashboards once a role
// is set.
func Route(user *domain.User, loading bool) State {
	if loading {
		return Loading
	}
	if user == nil {
		return Landing
	}

	switch user.Role {
	case domain.RoleUnset:
		return ProfileCompletion
	case domain.RoleCustomer:
		if !user.HasContactDetails() {
			return ProfileCompletion
		}
		return CustomerDashboard
	case domain.RoleFreelanceFixer, domain.RoleEmployeeFixer:
		return FreelancerDashboard
	case domain.RoleCompany:
		return CompanyDashboard
	case domain.RoleUnknown:
		return ProfileCompletion
	default:
		return ProfileCompletion
	}
}
