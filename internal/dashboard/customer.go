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

// ProviderSearcher sends GET /providers with the full filter set.
type ProviderSearcher interface {
	SearchProviders(ctx context.Context, token string, q mkthttp.ProviderQuery) ([]domain.Provider, error)
}

type CustomerAPI interface {
	ProviderSearcher
	BookingLister
	booking.Creator
}

// Customer lists providers, optionally filtered by category or emergency
// service, and the customer's own bookings.
type Customer struct {
	*base
	api CustomerAPI

	// guarded by base.mu
	providers []domain.Provider
	filter    mkthttp.ProviderQuery
}

func NewCustomer(api CustomerAPI, session Session) *Customer {
	return &Customer{base: newBase("customer_dashboard", session, api), api: api}
}

// Load fetches providers and bookings concurrently. A failed fetch leaves
// its list as it was; the first error is returned.
func (d *Customer) Load(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return d.RefreshProviders(ctx) })
	g.Go(func() error { return d.RefreshBookings(ctx) })
	return g.Wait()
}

// SetCategory changes the provider filter and re-fetches providers. An empty
// category clears the filter.
func (d *Customer) SetCategory(ctx context.Context, c domain.ServiceCategory) error {
	if c != "" && !c.Valid() {
		return fmt.Errorf("%w: unknown service category %q", domain.ErrValidation, c)
	}
	d.apply(func() { d.filter.Category = c })
	return d.RefreshProviders(ctx)
}

// SetEmergencyOnly asks the backend for emergency-capable providers only.
// Turning it off drops the parameter altogether.
func (d *Customer) SetEmergencyOnly(ctx context.Context, on bool) error {
	d.apply(func() {
		if on {
			d.filter.Emergency = &on
		} else {
			d.filter.Emergency = nil
		}
	})
	return d.RefreshProviders(ctx)
}

func (d *Customer) RefreshProviders(ctx context.Context) error {
	d.mu.RLock()
	filter := d.filter
	d.mu.RUnlock()

	providers, err := d.api.SearchProviders(ctx, d.session.Token(), filter)
	if err != nil {
		logging.NewLogger(ctx, d.name).LogError("list_providers", err)
		return fmt.Errorf("list providers: %w: %w", domain.ErrFetchFailed, err)
	}
	d.apply(func() {
		// a newer filter has been chosen since this request went out
		if !sameQuery(d.filter, filter) {
			return
		}
		d.providers = providers
	})
	return nil
}

func (d *Customer) Category() domain.ServiceCategory {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.filter.Category
}

func (d *Customer) EmergencyOnly() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.filter.Emergency != nil && *d.filter.Emergency
}

func sameQuery(a, b mkthttp.ProviderQuery) bool {
	if a.Category != b.Category {
		return false
	}
	if a.Emergency == nil || b.Emergency == nil {
		return a.Emergency == b.Emergency
	}
	return *a.Emergency == *b.Emergency
}

func (d *Customer) Providers() []domain.Provider {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domain.Provider, len(d.providers))
	copy(out, d.providers)
	return out
}

// OpenBooking starts a booking form for a displayed provider.
func (d *Customer) OpenBooking(providerID string) (*booking.Form, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, p := range d.providers {
		if p.ID == providerID {
			return booking.NewForm(p), nil
		}
	}
	return nil, fmt.Errorf("%w: provider %q is not listed", domain.ErrValidation, providerID)
}

// SubmitBooking sends f and refreshes the booking list on success.
func (d *Customer) SubmitBooking(ctx context.Context, f *booking.Form) (*domain.Booking, error) {
	return f.Submit(ctx, d.api, d.session.Token(), d.RefreshBookings)
}
