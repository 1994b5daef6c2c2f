// Package dashboard implements the customer, freelancer and company
// dashboards. Each dashboard fetches its own data, keeps no shared cache and
// drops responses that arrive after it has been disposed.
package dashboard

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/lebfix/lebfix-client/internal/booking"
	"github.com/lebfix/lebfix-client/internal/logging"
	"github.com/lebfix/lebfix-client/internal/marketplace/domain"
)

// Session is what a dashboard needs from the session manager.
type Session interface {
	Token() string
	User() *domain.User
}

type BookingLister interface {
	ListBookings(ctx context.Context, token string) ([]domain.Booking, error)
}

type ProviderLister interface {
	ListProviders(ctx context.Context, token string, category domain.ServiceCategory) ([]domain.Provider, error)
}

// Lifecycle tracks whether the owning view is still shown. Requests are
// never cancelled; their results are simply not applied once disposed.
type Lifecycle struct {
	alive atomic.Bool
}

func newLifecycle() *Lifecycle {
	l := &Lifecycle{}
	l.alive.Store(true)
	return l
}

func (l *Lifecycle) Alive() bool {
	return l.alive.Load()
}

func (l *Lifecycle) Dispose() {
	l.alive.Store(false)
}

// base carries what every dashboard shares: the session, the lifecycle and
// the booking list.
type base struct {
	name    string
	session Session
	life    *Lifecycle
	lister  BookingLister

	mu       sync.RWMutex
	bookings []domain.Booking
}

func newBase(name string, session Session, lister BookingLister) *base {
	return &base{name: name, session: session, life: newLifecycle(), lister: lister}
}

// Dispose marks the dashboard as no longer shown.
func (b *base) Dispose() {
	b.life.Dispose()
}

func (b *base) Alive() bool {
	return b.life.Alive()
}

// apply runs fn under the write lock if the dashboard is still alive and
// reports whether it ran.
func (b *base) apply(fn func()) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.life.Alive() {
		return false
	}
	fn()
	return true
}

func (b *base) token() (string, error) {
	token := b.session.Token()
	if token == "" {
		return "", domain.ErrNotLoggedIn
	}
	return token, nil
}

// RefreshBookings re-fetches the booking list. On failure the previous list
// stays in place.
func (b *base) RefreshBookings(ctx context.Context) error {
	token, err := b.token()
	if err != nil {
		return err
	}
	bookings, err := b.lister.ListBookings(ctx, token)
	if err != nil {
		logging.NewLogger(ctx, b.name).LogError("list_bookings", err)
		return fmt.Errorf("list bookings: %w: %w", domain.ErrFetchFailed, err)
	}
	if !b.apply(func() { b.bookings = bookings }) {
		logging.NewLogger(ctx, b.name).LogDebugf("list_bookings", "dropped response for disposed dashboard")
	}
	return nil
}

// Bookings returns a copy of the displayed booking list.
func (b *base) Bookings() []domain.Booking {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.Booking, len(b.bookings))
	copy(out, b.bookings)
	return out
}

func (b *base) findBooking(id string) (domain.Booking, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, bk := range b.bookings {
		if bk.ID == id {
			return bk, true
		}
	}
	return domain.Booking{}, false
}

// transition applies a lifecycle action to a displayed booking.
func (b *base) transition(ctx context.Context, api booking.StatusUpdater, bookingID string, target domain.BookingStatus) error {
	bk, ok := b.findBooking(bookingID)
	if !ok {
		return fmt.Errorf("%w: booking %q is not on this dashboard", domain.ErrValidation, bookingID)
	}
	token, err := b.token()
	if err != nil {
		return err
	}
	return booking.NewTransitioner(api, b.RefreshBookings).Apply(ctx, token, bk, target)
}
