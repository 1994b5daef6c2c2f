package dashboard

import (
	"fmt"
	"strings"

	"github.com/lebfix/lebfix-client/internal/marketplace/domain"
	mkthttp "github.com/lebfix/lebfix-client/internal/marketplace/http"
)

// ProviderProfileForm edits the caller's own provider record.
type ProviderProfileForm struct {
	Categories    []domain.ServiceCategory
	HourlyRate    *float64
	EmergencyRate *float64
	Description   string
	// WorkingHours is sent whole; the backend replaces the stored
	// availability with it, so it is prefilled from the current record.
	WorkingHours map[string]string
}

func providerFormFrom(p *domain.Provider) ProviderProfileForm {
	if p == nil {
		return ProviderProfileForm{}
	}
	f := ProviderProfileForm{
		Categories:  append([]domain.ServiceCategory(nil), p.ServiceCategories...),
		Description: p.Description,
	}
	if p.HourlyRate != nil {
		v := *p.HourlyRate
		f.HourlyRate = &v
	}
	if p.EmergencyRate != nil {
		v := *p.EmergencyRate
		f.EmergencyRate = &v
	}
	if len(p.Availability) > 0 {
		f.WorkingHours = make(map[string]string, len(p.Availability))
		for day, hours := range p.Availability {
			f.WorkingHours[day] = fmt.Sprint(hours)
		}
	}
	return f
}

// Request validates the form for role and builds the payload. Employee
// fixers have company-set rates, so rates are only sent for freelancers.
func (f ProviderProfileForm) Request(role domain.Role) (mkthttp.ProviderProfileRequest, error) {
	if !role.IsFixer() {
		return mkthttp.ProviderProfileRequest{}, fmt.Errorf("%w: role %s has no provider profile", domain.ErrValidation, role)
	}
	if len(f.Categories) == 0 {
		return mkthttp.ProviderProfileRequest{}, fmt.Errorf("%w: pick at least one service category", domain.ErrValidation)
	}
	for _, c := range f.Categories {
		if !c.Valid() {
			return mkthttp.ProviderProfileRequest{}, fmt.Errorf("%w: unknown service category %q", domain.ErrValidation, c)
		}
	}

	req := mkthttp.ProviderProfileRequest{
		ServiceCategories: f.Categories,
		Description:       strings.TrimSpace(f.Description),
	}
	for day, hours := range f.WorkingHours {
		day, hours = strings.TrimSpace(day), strings.TrimSpace(hours)
		if day == "" || hours == "" {
			return mkthttp.ProviderProfileRequest{}, fmt.Errorf("%w: working hours need a day and a time range", domain.ErrValidation)
		}
		if req.WorkingHours == nil {
			req.WorkingHours = make(map[string]string, len(f.WorkingHours))
		}
		req.WorkingHours[strings.ToLower(day)] = hours
	}
	if role == domain.RoleFreelanceFixer {
		for _, r := range []*float64{f.HourlyRate, f.EmergencyRate} {
			if r != nil && *r < 0 {
				return mkthttp.ProviderProfileRequest{}, fmt.Errorf("%w: rates cannot be negative", domain.ErrValidation)
			}
		}
		req.HourlyRate = f.HourlyRate
		req.EmergencyRate = f.EmergencyRate
	}
	return req, nil
}

// EmployeeForm adds an existing account to the caller's company.
type EmployeeForm struct {
	Email         string
	HourlyRate    float64
	EmergencyRate float64
	Categories    []domain.ServiceCategory
}

func (f EmployeeForm) Request() (mkthttp.AddEmployeeRequest, error) {
	email := strings.TrimSpace(f.Email)
	if email == "" || !strings.Contains(email, "@") {
		return mkthttp.AddEmployeeRequest{}, fmt.Errorf("%w: a valid employee email is required", domain.ErrValidation)
	}
	if f.HourlyRate < 0 || f.EmergencyRate < 0 {
		return mkthttp.AddEmployeeRequest{}, fmt.Errorf("%w: rates cannot be negative", domain.ErrValidation)
	}
	if len(f.Categories) == 0 {
		return mkthttp.AddEmployeeRequest{}, fmt.Errorf("%w: pick at least one service category", domain.ErrValidation)
	}
	for _, c := range f.Categories {
		if !c.Valid() {
			return mkthttp.AddEmployeeRequest{}, fmt.Errorf("%w: unknown service category %q", domain.ErrValidation, c)
		}
	}
	return mkthttp.AddEmployeeRequest{
		EmployeeEmail:     email,
		HourlyRate:        f.HourlyRate,
		EmergencyRate:     f.EmergencyRate,
		ServiceCategories: f.Categories,
	}, nil
}
