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

type FreelancerAPI interface {
	ProviderLister
	BookingLister
	booking.StatusUpdater
	UpdateProviderProfile(ctx context.Context, token string, req mkthttp.ProviderProfileRequest) error
}

// Freelancer serves both freelance and employee fixers: incoming bookings
// with lifecycle actions, plus the caller's own provider record.
type Freelancer struct {
	*base
	api FreelancerAPI

	// guarded by base.mu
	own *domain.Provider
}

func NewFreelancer(api FreelancerAPI, session Session) *Freelancer {
	return &Freelancer{base: newBase("freelancer_dashboard", session, api), api: api}
}

func (d *Freelancer) Load(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return d.RefreshBookings(ctx) })
	g.Go(func() error { return d.RefreshOwnProvider(ctx) })
	return g.Wait()
}

// RefreshOwnProvider lists providers and picks the one belonging to the
// signed-in user. The backend has no "my provider" endpoint.
func (d *Freelancer) RefreshOwnProvider(ctx context.Context) error {
	user := d.session.User()
	if user == nil {
		return domain.ErrNotLoggedIn
	}
	providers, err := d.api.ListProviders(ctx, d.session.Token(), "")
	if err != nil {
		logging.NewLogger(ctx, d.name).LogError("list_providers", err)
		return fmt.Errorf("list providers: %w: %w", domain.ErrFetchFailed, err)
	}

	var own *domain.Provider
	for i := range providers {
		if ownedBy(&providers[i], user.ID) {
			p := providers[i]
			own = &p
			break
		}
	}
	d.apply(func() { d.own = own })
	return nil
}

func ownedBy(p *domain.Provider, userID string) bool {
	if p.UserID != "" {
		return p.UserID == userID
	}
	return p.User != nil && p.User.ID == userID
}

// OwnProvider is the caller's provider record, or nil when none is listed.
func (d *Freelancer) OwnProvider() *domain.Provider {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.own == nil {
		return nil
	}
	p := *d.own
	return &p
}

// Transition applies a lifecycle action to a displayed booking.
func (d *Freelancer) Transition(ctx context.Context, bookingID string, target domain.BookingStatus) error {
	return d.transition(ctx, d.api, bookingID, target)
}

// ProfileForm is prefilled from the current provider record.
func (d *Freelancer) ProfileForm() ProviderProfileForm {
	return providerFormFrom(d.OwnProvider())
}

// SaveProfile submits the provider profile form and reloads the record.
func (d *Freelancer) SaveProfile(ctx context.Context, f ProviderProfileForm) error {
	logger := logging.NewLogger(ctx, d.name)

	user := d.session.User()
	token := d.session.Token()
	if user == nil || token == "" {
		return domain.ErrNotLoggedIn
	}
	req, err := f.Request(user.Role)
	if err != nil {
		return err
	}
	if err := d.api.UpdateProviderProfile(ctx, token, req); err != nil {
		logger.LogError("update_provider_profile", err)
		return fmt.Errorf("save provider profile: %w: %w", domain.ErrSubmissionFailed, err)
	}
	if err := d.RefreshOwnProvider(ctx); err != nil {
		logger.LogWarnf("update_provider_profile", "saved but reload failed: %v", err)
	}
	return nil
}
