package http

import "github.com/lebfix/lebfix-client/internal/marketplace/domain"

// LoginRequest asks the backend for an external-auth URL.
type LoginRequest struct {
	HostURL string `json:"host_url"`
}

type LoginResponse struct {
	AuthURL string `json:"auth_url"`
}

// SessionRequest exchanges an external-auth session id for a user.
type SessionRequest struct {
	SessionID string `json:"session_id"`
}

// SessionResponse carries the user whose SessionToken is the bearer token.
type SessionResponse struct {
	User      domain.User `json:"user"`
	IsNewUser bool        `json:"is_new_user"`
}

// CompleteProfileRequest is submitted once per account.
type CompleteProfileRequest struct {
	Role    domain.Role `json:"role"`
	Phone   string      `json:"phone,omitempty"`
	Address string      `json:"address,omitempty"`
}

// ProviderQuery filters GET /providers.
type ProviderQuery struct {
	Category  domain.ServiceCategory
	Emergency *bool
}

// ProviderProfileRequest updates the caller's provider record. Rates are
// ignored by the backend for employee fixers.
type ProviderProfileRequest struct {
	ServiceCategories []domain.ServiceCategory `json:"service_categories"`
	HourlyRate        *float64                 `json:"hourly_rate,omitempty"`
	EmergencyRate     *float64                 `json:"emergency_rate,omitempty"`
	Description       string                   `json:"description,omitempty"`
	// WorkingHours maps a day to its hours, e.g. "mon": "09:00-17:00". The
	// backend stores it as the provider's availability.
	WorkingHours map[string]string `json:"working_hours,omitempty"`
}

// CreateBookingRequest is the payload for POST /bookings. ScheduledDate is
// RFC 3339 in UTC.
type CreateBookingRequest struct {
	ProviderID      string                 `json:"provider_id"`
	ServiceCategory domain.ServiceCategory `json:"service_category"`
	Description     string                 `json:"description"`
	ScheduledDate   string                 `json:"scheduled_date"`
	Location        domain.Location        `json:"location"`
	Emergency       bool                   `json:"emergency"`
}

type UpdateStatusRequest struct {
	Status domain.BookingStatus `json:"status"`
}

// AddEmployeeRequest attaches an existing account to the caller's company.
type AddEmployeeRequest struct {
	EmployeeEmail     string                   `json:"employee_email"`
	HourlyRate        float64                  `json:"hourly_rate"`
	EmergencyRate     float64                  `json:"emergency_rate"`
	ServiceCategories []domain.ServiceCategory `json:"service_categories"`
}
