package dashboard

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/lebfix/lebfix-client/internal/booking"
	"github.com/lebfix/lebfix-client/internal/logging"
	"github.com/lebfix/lebfix-client/internal/marketplace/domain"
	mkthttp "github.com/lebfix/lebfix-client/internal/marketplace/http"
)

type CompanyAPI interface {
	BookingLister
	booking.StatusUpdater
	GetMyCompany(ctx context.Context, token string) (*domain.Company, error)
	AddEmployee(ctx context.Context, token string, req mkthttp.AddEmployeeRequest) error
}

// Company shows the company record with its employees and the company's
// bookings.
type Company struct {
	*base
	api CompanyAPI

	// guarded by base.mu
	company *domain.Company
}

func NewCompany(api CompanyAPI, session Session) *Company {
	return &Company{base: newBase("company_dashboard", session, api), api: api}
}

func (d *Company) Load(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return d.RefreshCompany(ctx) })
	g.Go(func() error { return d.RefreshBookings(ctx) })
	return g.Wait()
}

func (d *Company) RefreshCompany(ctx context.Context) error {
	token, err := d.token()
	if err != nil {
		return err
	}
	company, err := d.api.GetMyCompany(ctx, token)
	if err != nil {
		logging.NewLogger(ctx, d.name).LogError("get_company", err)
		return fmt.Errorf("get company: %w: %w", domain.ErrFetchFailed, err)
	}
	d.apply(func() { d.company = company })
	return nil
}

// Company returns a copy of the displayed company record, or nil.
func (d *Company) Company() *domain.Company {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.company == nil {
		return nil
	}
	c := *d.company
	c.Employees = append([]domain.User(nil), d.company.Employees...)
	return &c
}

func (d *Company) Transition(ctx context.Context, bookingID string, target domain.BookingStatus) error {
	return d.transition(ctx, d.api, bookingID, target)
}

// AddEmployee attaches an existing account and reloads the employee list.
func (d *Company) AddEmployee(ctx context.Context, f EmployeeForm) error {
	logger := logging.NewLogger(ctx, d.name)

	token, err := d.token()
	if err != nil {
		return err
	}
	req, err := f.Request()
	if err != nil {
		return err
	}
	if err := d.api.AddEmployee(ctx, token, req); err != nil {
		logger.LogError("add_employee", err)
		return fmt.Errorf("add employee: %w: %w", domain.ErrSubmissionFailed, err)
	}
	logger.LogInfof("add_employee", "added %s", req.EmployeeEmail)
	if err := d.RefreshCompany(ctx); err != nil {
		logger.LogWarnf("add_employee", "added but reload failed: %v", err)
	}
	return nil
}
