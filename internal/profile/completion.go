// Package profile implements the one-time profile completion form.
package profile

import (
	"context"
	"fmt"
	"sync"

	"github.com/lebfix/lebfix-client/internal/marketplace/domain"
	"github.com/lebfix/lebfix-client/internal/session/service"
)

// Submitter sends the completed profile; the session manager satisfies it.
type Submitter interface {
	CompleteProfile(ctx context.Context, data service.ProfileData) error
}

type Phase int

const (
	Unsubmitted Phase = iota
	Submitting
	Done
)

func (p Phase) String() string {
	switch p {
	case Unsubmitted:
		return "unsubmitted"
	case Submitting:
		return "submitting"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Form collects role and contact details. Phone and address are free text;
// completeness is judged by the view router, not here.
type Form struct {
	submitter Submitter

	mu      sync.Mutex
	role    domain.Role
	phone   string
	address string
	phase   Phase
	lastErr error
}

func NewForm(s Submitter) *Form {
	return &Form{submitter: s}
}

// SelectRole picks the account role. Only self-selectable roles are accepted.
func (f *Form) SelectRole(r domain.Role) error {
	if !r.SelfSelectable() {
		return fmt.Errorf("%w: role %q cannot be chosen here", domain.ErrValidation, r)
	}
	f.mu.Lock()
	f.role = r
	f.mu.Unlock()
	return nil
}

func (f *Form) SetContact(phone, address string) {
	f.mu.Lock()
	f.phone = phone
	f.address = address
	f.mu.Unlock()
}

// CanSubmit reports whether the submit action is enabled.
func (f *Form) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.canSubmitLocked()
}

func (f *Form) canSubmitLocked() bool {
	return f.role != domain.RoleUnset && f.phase == Unsubmitted
}

// Submit sends the form. On failure the form returns to Unsubmitted with the
// error kept for display, ready for another attempt.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if !f.canSubmitLocked() {
		phase := f.phase
		f.mu.Unlock()
		if phase != Unsubmitted {
			return fmt.Errorf("%w: form is %s", domain.ErrValidation, phase)
		}
		return fmt.Errorf("%w: select a role first", domain.ErrValidation)
	}
	f.phase = Submitting
	f.lastErr = nil
	data := service.ProfileData{Role: f.role, Phone: f.phone, Address: f.address}
	f.mu.Unlock()

	err := f.submitter.CompleteProfile(ctx, data)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.phase = Unsubmitted
		f.lastErr = err
		return err
	}
	f.phase = Done
	return nil
}

func (f *Form) Phase() Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase
}

// Err is the error from the last failed submit, if any.
func (f *Form) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}
