// Package booking holds the booking status machine and the create-booking form.
package booking

import (
	"context"
	"fmt"

	"github.com/lebfix/lebfix-client/internal/logging"
	"github.com/lebfix/lebfix-client/internal/marketplace/domain"
)

// Action is a provider-triggered status change offered next to a booking.
type Action struct {
	Label  string
	Target domain.BookingStatus
}

var (
	Accept       = Action{Label: "Accept", Target: domain.StatusConfirmed}
	Decline      = Action{Label: "Decline", Target: domain.StatusCancelled}
	MarkComplete = Action{Label: "Mark Complete", Target: domain.StatusCompleted}
)

// Actions lists what can be done to a booking in status s. Terminal and
// unrecognised statuses offer nothing.
func Actions(s domain.BookingStatus) []Action {
	switch s {
	case domain.StatusPending:
		return []Action{Accept, Decline}
	case domain.StatusConfirmed:
		return []Action{MarkComplete}
	default:
		return nil
	}
}

// CanTransition reports whether from -> to is in the lifecycle table.
func CanTransition(from, to domain.BookingStatus) bool {
	for _, a := range Actions(from) {
		if a.Target == to {
			return true
		}
	}
	return false
}

// ActionFor finds the action reaching target from status from.
func ActionFor(from, target domain.BookingStatus) (Action, bool) {
	for _, a := range Actions(from) {
		if a.Target == target {
			return a, true
		}
	}
	return Action{}, false
}

// StatusUpdater sends PUT /bookings/{id}/status.
type StatusUpdater interface {
	UpdateBookingStatus(ctx context.Context, token, bookingID string, status domain.BookingStatus) error
}

// RefreshFunc reloads a booking list from the server.
type RefreshFunc func(ctx context.Context) error

// Transitioner applies lifecycle actions. The booking shown to the user is
// never edited locally; success triggers refresh and failure leaves it as is.
type Transitioner struct {
	api     StatusUpdater
	refresh RefreshFunc
}

func NewTransitioner(api StatusUpdater, refresh RefreshFunc) *Transitioner {
	return &Transitioner{api: api, refresh: refresh}
}

// Apply moves b to target. Transitions outside the table are rejected
// before any request is made.
func (t *Transitioner) Apply(ctx context.Context, token string, b domain.Booking, target domain.BookingStatus) error {
	logger := logging.NewLogger(ctx, "booking")

	if !CanTransition(b.Status, target) {
		err := fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, b.Status, target)
		logger.LogError("update_status", err)
		return err
	}
	if token == "" {
		return domain.ErrNotLoggedIn
	}

	if err := t.api.UpdateBookingStatus(ctx, token, b.ID, target); err != nil {
		logger.LogError("update_status", err)
		return fmt.Errorf("update booking %s: %w: %w", b.ID, domain.ErrSubmissionFailed, err)
	}
	logger.LogInfof("update_status", "booking_id=%s %s -> %s", b.ID, b.Status, target)

	if t.refresh == nil {
		return nil
	}
	if err := t.refresh(ctx); err != nil {
		logger.LogWarnf("update_status", "status changed but refresh failed: %v", err)
	}
	return nil
}
