package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lebfix/lebfix-client/internal/marketplace/domain"
	mkthttp "github.com/lebfix/lebfix-client/internal/marketplace/http"
	"github.com/lebfix/lebfix-client/internal/view"
)

type fakeSession struct {
	token string
	user  *domain.User
}

func (s fakeSession) Token() string      { return s.token }
func (s fakeSession) User() *domain.User { return s.user }

type fakeAPI struct {
	mu sync.Mutex

	providers     []domain.Provider
	providersErr  error
	categories    []domain.ServiceCategory
	emergency     []*bool
	bookings      []domain.Booking
	bookingsErr   error
	bookingCalls  int
	company       *domain.Company
	statusUpdates []domain.BookingStatus
	statusErr     error
	profileReqs   []mkthttp.ProviderProfileRequest
	employeeReqs  []mkthttp.AddEmployeeRequest
	created       []mkthttp.CreateBookingRequest

	// when set, ListBookings blocks until released
	gate chan struct{}
}

func (f *fakeAPI) ListProviders(ctx context.Context, token string, category domain.ServiceCategory) ([]domain.Provider, error) {
	return f.SearchProviders(ctx, token, mkthttp.ProviderQuery{Category: category})
}

func (f *fakeAPI) SearchProviders(_ context.Context, _ string, q mkthttp.ProviderQuery) ([]domain.Provider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.categories = append(f.categories, q.Category)
	f.emergency = append(f.emergency, q.Emergency)
	if f.providersErr != nil {
		return nil, f.providersErr
	}
	return f.providers, nil
}

func (f *fakeAPI) ListBookings(_ context.Context, _ string) ([]domain.Booking, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookingCalls++
	if f.bookingsErr != nil {
		return nil, f.bookingsErr
	}
	return append([]domain.Booking(nil), f.bookings...), nil
}

func (f *fakeAPI) CreateBooking(_ context.Context, _ string, req mkthttp.CreateBookingRequest) (*domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, req)
	b := domain.Booking{ID: "new", ProviderID: req.ProviderID, Status: domain.StatusPending}
	f.bookings = append(f.bookings, b)
	return &b, nil
}

func (f *fakeAPI) UpdateBookingStatus(_ context.Context, _, id string, status domain.BookingStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusUpdates = append(f.statusUpdates, status)
	if f.statusErr != nil {
		return f.statusErr
	}
	for i := range f.bookings {
		if f.bookings[i].ID == id {
			f.bookings[i].Status = status
		}
	}
	return nil
}

func (f *fakeAPI) UpdateProviderProfile(_ context.Context, _ string, req mkthttp.ProviderProfileRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profileReqs = append(f.profileReqs, req)
	return nil
}

func (f *fakeAPI) GetMyCompany(_ context.Context, _ string) (*domain.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.company == nil {
		return nil, &mkthttp.StatusError{Method: "GET", Path: "/companies/my-company", Code: 404}
	}
	c := *f.company
	return &c, nil
}

func (f *fakeAPI) AddEmployee(_ context.Context, _ string, req mkthttp.AddEmployeeRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.employeeReqs = append(f.employeeReqs, req)
	f.company.Employees = append(f.company.Employees, domain.User{ID: "e2", Email: req.EmployeeEmail})
	return nil
}

func rate(v float64) *float64 { return &v }

func signedIn(role domain.Role) fakeSession {
	return fakeSession{token: "tok", user: &domain.User{ID: "u1", Role: role}}
}

func TestForView(t *testing.T) {
	api := &fakeAPI{}
	s := signedIn(domain.RoleCustomer)

	d, ok := ForView(view.CustomerDashboard, api, s)
	require.True(t, ok)
	assert.IsType(t, &Customer{}, d)

	d, ok = ForView(view.FreelancerDashboard, api, s)
	require.True(t, ok)
	assert.IsType(t, &Freelancer{}, d)

	d, ok = ForView(view.CompanyDashboard, api, s)
	require.True(t, ok)
	assert.IsType(t, &Company{}, d)

	_, ok = ForView(view.Landing, api, s)
	assert.False(t, ok)
}

func TestCustomer_LoadAndFilter(t *testing.T) {
	api := &fakeAPI{
		providers: []domain.Provider{{ID: "p1", ServiceCategories: []domain.ServiceCategory{domain.CategoryPlumbing}}},
		bookings:  []domain.Booking{{ID: "b1", Status: domain.StatusPending}},
	}
	d := NewCustomer(api, signedIn(domain.RoleCustomer))

	require.NoError(t, d.Load(context.Background()))
	assert.Len(t, d.Providers(), 1)
	assert.Len(t, d.Bookings(), 1)

	require.NoError(t, d.SetCategory(context.Background(), domain.CategoryPlumbing))
	assert.Equal(t, domain.CategoryPlumbing, d.Category())
	assert.Equal(t, []domain.ServiceCategory{"", domain.CategoryPlumbing}, api.categories)

	assert.ErrorIs(t, d.SetCategory(context.Background(), "gardening"), domain.ErrValidation)
}

func TestCustomer_EmergencyFilter(t *testing.T) {
	api := &fakeAPI{providers: []domain.Provider{{ID: "p1"}}}
	d := NewCustomer(api, signedIn(domain.RoleCustomer))

	require.NoError(t, d.SetEmergencyOnly(context.Background(), true))
	assert.True(t, d.EmergencyOnly())
	require.NoError(t, d.SetCategory(context.Background(), domain.CategoryElectrical))
	require.NoError(t, d.SetEmergencyOnly(context.Background(), false))
	assert.False(t, d.EmergencyOnly())

	require.Len(t, api.emergency, 3)
	require.NotNil(t, api.emergency[0])
	assert.True(t, *api.emergency[0])
	require.NotNil(t, api.emergency[1])
	assert.Equal(t, domain.CategoryElectrical, api.categories[1])
	assert.Nil(t, api.emergency[2])
	assert.Equal(t, domain.CategoryElectrical, api.categories[2])
	assert.Len(t, d.Providers(), 1)
}

func TestCustomer_FetchFailureKeepsPreviousList(t *testing.T) {
	api := &fakeAPI{providers: []domain.Provider{{ID: "p1"}}}
	d := NewCustomer(api, signedIn(domain.RoleCustomer))
	require.NoError(t, d.Load(context.Background()))

	api.providersErr = errors.New("503")
	err := d.RefreshProviders(context.Background())
	assert.ErrorIs(t, err, domain.ErrFetchFailed)
	assert.Len(t, d.Providers(), 1)
}

func TestCustomer_BookProvider(t *testing.T) {
	api := &fakeAPI{providers: []domain.Provider{{
		ID:                "p1",
		HourlyRate:        rate(20),
		EmergencyRate:     rate(35),
		ServiceCategories: []domain.ServiceCategory{domain.CategoryElectrical},
	}}}
	d := NewCustomer(api, signedIn(domain.RoleCustomer))
	require.NoError(t, d.Load(context.Background()))
	callsBefore := api.bookingCalls

	_, err := d.OpenBooking("missing")
	assert.ErrorIs(t, err, domain.ErrValidation)

	form, err := d.OpenBooking("p1")
	require.NoError(t, err)
	form.Description = "sparks"
	form.Address = "Verdun"
	form.ScheduledAt = "2025-06-01T09:00:00Z"
	form.Emergency = true

	cost, ok := form.EstimatedHourlyCost()
	require.True(t, ok)
	assert.Equal(t, 35.0, cost)

	created, err := d.SubmitBooking(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, "new", created.ID)
	assert.True(t, form.Closed())
	assert.Equal(t, callsBefore+1, api.bookingCalls)
	assert.Len(t, d.Bookings(), 1)
}

func TestDashboard_DisposedDropsLateResponse(t *testing.T) {
	api := &fakeAPI{
		bookings: []domain.Booking{{ID: "b1"}},
		gate:     make(chan struct{}),
	}
	d := NewCompany(api, signedIn(domain.RoleCompany))

	done := make(chan error, 1)
	go func() { done <- d.RefreshBookings(context.Background()) }()

	d.Dispose()
	close(api.gate)
	require.NoError(t, <-done)

	assert.False(t, d.Alive())
	assert.Empty(t, d.Bookings())
}

func TestDashboard_RequiresSession(t *testing.T) {
	d := NewCompany(&fakeAPI{}, fakeSession{})
	assert.ErrorIs(t, d.RefreshBookings(context.Background()), domain.ErrNotLoggedIn)
	assert.ErrorIs(t, d.RefreshCompany(context.Background()), domain.ErrNotLoggedIn)
}

func TestFreelancer_TransitionRefreshesFromServer(t *testing.T) {
	api := &fakeAPI{bookings: []domain.Booking{
		{ID: "b1", Status: domain.StatusPending},
		{ID: "b2", Status: domain.StatusCompleted},
	}}
	d := NewFreelancer(api, signedIn(domain.RoleFreelanceFixer))
	require.NoError(t, d.Load(context.Background()))

	require.NoError(t, d.Transition(context.Background(), "b1", domain.StatusConfirmed))
	assert.Equal(t, domain.StatusConfirmed, d.Bookings()[0].Status)

	err := d.Transition(context.Background(), "b2", domain.StatusPending)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	err = d.Transition(context.Background(), "nope", domain.StatusConfirmed)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, []domain.BookingStatus{domain.StatusConfirmed}, api.statusUpdates)
}

func TestFreelancer_FailedTransitionLeavesBooking(t *testing.T) {
	api := &fakeAPI{
		bookings:  []domain.Booking{{ID: "b1", Status: domain.StatusConfirmed}},
		statusErr: errors.New("500"),
	}
	d := NewFreelancer(api, signedIn(domain.RoleEmployeeFixer))
	require.NoError(t, d.Load(context.Background()))
	calls := api.bookingCalls

	err := d.Transition(context.Background(), "b1", domain.StatusCompleted)
	assert.ErrorIs(t, err, domain.ErrSubmissionFailed)
	assert.Equal(t, domain.StatusConfirmed, d.Bookings()[0].Status)
	assert.Equal(t, calls, api.bookingCalls)
}

func TestFreelancer_OwnProviderAndProfile(t *testing.T) {
	api := &fakeAPI{providers: []domain.Provider{
		{ID: "p0", UserID: "someone"},
		{ID: "p1", User: &domain.User{ID: "u1"}, HourlyRate: rate(20), ServiceCategories: []domain.ServiceCategory{domain.CategoryTechnical}},
	}}

	t.Run("freelancer sends rates", func(t *testing.T) {
		d := NewFreelancer(api, signedIn(domain.RoleFreelanceFixer))
		require.NoError(t, d.Load(context.Background()))
		require.NotNil(t, d.OwnProvider())
		assert.Equal(t, "p1", d.OwnProvider().ID)

		form := d.ProfileForm()
		assert.Equal(t, []domain.ServiceCategory{domain.CategoryTechnical}, form.Categories)
		form.EmergencyRate = rate(40)
		require.NoError(t, d.SaveProfile(context.Background(), form))

		req := api.profileReqs[len(api.profileReqs)-1]
		require.NotNil(t, req.HourlyRate)
		assert.Equal(t, 40.0, *req.EmergencyRate)
	})

	t.Run("employee rates are not sent", func(t *testing.T) {
		d := NewFreelancer(api, signedIn(domain.RoleEmployeeFixer))
		require.NoError(t, d.Load(context.Background()))
		require.NoError(t, d.SaveProfile(context.Background(), d.ProfileForm()))

		req := api.profileReqs[len(api.profileReqs)-1]
		assert.Nil(t, req.HourlyRate)
		assert.Nil(t, req.EmergencyRate)
	})

	t.Run("working hours are kept across saves", func(t *testing.T) {
		hoursAPI := &fakeAPI{providers: []domain.Provider{{
			ID:                "p1",
			UserID:            "u1",
			ServiceCategories: []domain.ServiceCategory{domain.CategoryMechanical},
			Availability:      map[string]any{"mon": "09:00-17:00"},
		}}}
		d := NewFreelancer(hoursAPI, signedIn(domain.RoleFreelanceFixer))
		require.NoError(t, d.Load(context.Background()))

		form := d.ProfileForm()
		assert.Equal(t, map[string]string{"mon": "09:00-17:00"}, form.WorkingHours)
		form.WorkingHours["Sat "] = "10:00-14:00"
		require.NoError(t, d.SaveProfile(context.Background(), form))

		req := hoursAPI.profileReqs[0]
		assert.Equal(t, map[string]string{"mon": "09:00-17:00", "sat": "10:00-14:00"}, req.WorkingHours)

		form.WorkingHours = map[string]string{"tue": " "}
		assert.ErrorIs(t, d.SaveProfile(context.Background(), form), domain.ErrValidation)
	})

	t.Run("categories required", func(t *testing.T) {
		d := NewFreelancer(api, signedIn(domain.RoleFreelanceFixer))
		err := d.SaveProfile(context.Background(), ProviderProfileForm{})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestCompany_LoadAndAddEmployee(t *testing.T) {
	api := &fakeAPI{
		company:  &domain.Company{ID: "c1", Name: "Acme", Employees: []domain.User{{ID: "e1"}}},
		bookings: []domain.Booking{{ID: "b1", Status: domain.StatusPending}},
	}
	d := NewCompany(api, signedIn(domain.RoleCompany))
	require.NoError(t, d.Load(context.Background()))
	assert.Equal(t, "Acme", d.Company().Name)

	err := d.AddEmployee(context.Background(), EmployeeForm{Email: "not-an-email", Categories: []domain.ServiceCategory{domain.CategoryPlumbing}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, d.AddEmployee(context.Background(), EmployeeForm{
		Email:         "sami@example.com",
		HourlyRate:    15,
		EmergencyRate: 25,
		Categories:    []domain.ServiceCategory{domain.CategoryPlumbing},
	}))
	require.Len(t, api.employeeReqs, 1)
	assert.Len(t, d.Company().Employees, 2)

	require.NoError(t, d.Transition(context.Background(), "b1", domain.StatusCancelled))
	assert.Equal(t, domain.StatusCancelled, d.Bookings()[0].Status)
}

func TestCompany_MissingCompanyIsFetchFailure(t *testing.T) {
	d := NewCompany(&fakeAPI{}, signedIn(domain.RoleCompany))
	err := d.Load(context.Background())
	assert.ErrorIs(t, err, domain.ErrFetchFailed)
	assert.Nil(t, d.Company())
}
