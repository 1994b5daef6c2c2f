package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lebfix/lebfix-client/internal/marketplace/domain"
	"github.com/lebfix/lebfix-client/internal/session/service"
)

type stubSubmitter struct {
	errs []error
	got  []service.ProfileData
	seen []Phase
	form *Form
}

func (s *stubSubmitter) CompleteProfile(_ context.Context, data service.ProfileData) error {
	s.got = append(s.got, data)
	if s.form != nil {
		s.seen = append(s.seen, s.form.Phase())
	}
	if len(s.errs) == 0 {
		return nil
	}
	err := s.errs[0]
	s.errs = s.errs[1:]
	return err
}

func TestForm_SubmitDisabledWithoutRole(t *testing.T) {
	sub := &stubSubmitter{}
	f := NewForm(sub)
	f.SetContact("03 111", "Achrafieh")

	assert.False(t, f.CanSubmit())
	err := f.Submit(context.Background())
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, sub.got)
}

func TestForm_RejectsEmployeeRole(t *testing.T) {
	f := NewForm(&stubSubmitter{})
	assert.ErrorIs(t, f.SelectRole(domain.RoleEmployeeFixer), domain.ErrValidation)
	assert.ErrorIs(t, f.SelectRole(domain.RoleUnset), domain.ErrValidation)
	assert.False(t, f.CanSubmit())
}

func TestForm_SuccessfulSubmit(t *testing.T) {
	sub := &stubSubmitter{}
	f := NewForm(sub)
	sub.form = f
	require.NoError(t, f.SelectRole(domain.RoleFreelanceFixer))

	require.NoError(t, f.Submit(context.Background()))
	assert.Equal(t, Done, f.Phase())
	assert.Equal(t, []Phase{Submitting}, sub.seen)
	require.Len(t, sub.got, 1)
	assert.Equal(t, domain.RoleFreelanceFixer, sub.got[0].Role)

	// terminal
	assert.False(t, f.CanSubmit())
	assert.ErrorIs(t, f.Submit(context.Background()), domain.ErrValidation)
}

func TestForm_FailureAllowsRetry(t *testing.T) {
	boom := errors.New("backend down")
	sub := &stubSubmitter{errs: []error{boom}}
	f := NewForm(sub)
	require.NoError(t, f.SelectRole(domain.RoleCustomer))
	f.SetContact("03 111", "Hamra")

	err := f.Submit(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, Unsubmitted, f.Phase())
	assert.ErrorIs(t, f.Err(), boom)
	assert.True(t, f.CanSubmit())

	require.NoError(t, f.Submit(context.Background()))
	assert.Equal(t, Done, f.Phase())
	assert.NoError(t, f.Err())
	assert.Len(t, sub.got, 2)
	assert.Equal(t, "Hamra", sub.got[1].Address)
}
