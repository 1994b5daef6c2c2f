package domain

// User is the account record returned by /users/me and /auth/session.
// The client holds a cached copy that is refreshed after mutations.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email,omitempty"`
	Name         string `json:"name"`
	Role         Role   `json:"role"`
	Phone        string `json:"phone,omitempty"`
	Address      string `json:"address,omitempty"`
	Picture      string `json:"picture,omitempty"`
	CompanyID    string `json:"company_id,omitempty"`
	IsAvailable  bool   `json:"is_available,omitempty"`
	SessionToken string `json:"session_token,omitempty"`
}

// HasContactDetails reports whether both phone and address are filled in.
func (u *User) HasContactDetails() bool {
	return u.Phone != "" && u.Address != ""
}

// CompanySummary is the embedded company shape on providers.
type CompanySummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Provider is a bookable service offering, individual or company-affiliated.
type Provider struct {
	ID                string            `json:"id"`
	UserID            string            `json:"user_id,omitempty"`
	CompanyID         string            `json:"company_id,omitempty"`
	User              *User             `json:"user,omitempty"`
	Company           *CompanySummary   `json:"company,omitempty"`
	Rating            *float64          `json:"rating,omitempty"`
	TotalJobs         int               `json:"total_jobs"`
	HourlyRate        *float64          `json:"hourly_rate,omitempty"`
	EmergencyRate     *float64          `json:"emergency_rate,omitempty"`
	ServiceCategories []ServiceCategory `json:"service_categories"`
	Description       string            `json:"description,omitempty"`
	Availability      map[string]any    `json:"availability,omitempty"`
}

// DisplayName is the provider's user name, falling back to the id.
func (p *Provider) DisplayName() string {
	if p.User != nil && p.User.Name != "" {
		return p.User.Name
	}
	return p.ID
}

// Offers reports whether the provider lists category c.
func (p *Provider) Offers(c ServiceCategory) bool {
	for _, have := range p.ServiceCategories {
		if have == c {
			return true
		}
	}
	return false
}

// Location is where a booked job takes place. Coordinates are carried as
// received; the client never computes them.
type Location struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// Booking is a scheduled engagement between a customer and a provider.
type Booking struct {
	ID              string          `json:"id"`
	CustomerID      string          `json:"customer_id,omitempty"`
	ProviderID      string          `json:"provider_id"`
	CompanyID       string          `json:"company_id,omitempty"`
	Customer        *User           `json:"customer,omitempty"`
	ProviderUser    *User           `json:"provider_user,omitempty"`
	Provider        *Provider       `json:"provider,omitempty"`
	ServiceCategory ServiceCategory `json:"service_category"`
	Description     string          `json:"description"`
	ScheduledDate   Timestamp       `json:"scheduled_date"`
	Location        Location        `json:"location"`
	Emergency       bool            `json:"emergency"`
	Price           float64         `json:"price"`
	Status          BookingStatus   `json:"status"`
	CreatedAt       Timestamp       `json:"created_at,omitzero"`
	UpdatedAt       Timestamp       `json:"updated_at,omitzero"`
}

// Company is the record owned by a company-role user.
type Company struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	OwnerID           string            `json:"owner_id,omitempty"`
	Email             string            `json:"email,omitempty"`
	Phone             string            `json:"phone,omitempty"`
	Address           string            `json:"address,omitempty"`
	Description       string            `json:"description,omitempty"`
	ServiceCategories []ServiceCategory `json:"service_categories,omitempty"`
	Employees         []User            `json:"employees"`
}
