package booking

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/lebfix/lebfix-client/internal/logging"
	"github.com/lebfix/lebfix-client/internal/marketplace/domain"
	mkthttp "github.com/lebfix/lebfix-client/internal/marketplace/http"
)

// LocalLayout is the datetime-local input format, read in the user's zone.
const LocalLayout = "2006-01-02T15:04"

// ParseSchedule accepts RFC 3339 or LocalLayout interpreted in loc.
func ParseSchedule(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: scheduled date is required", domain.ErrValidation)
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(LocalLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: scheduled date %q is not a valid date and time", domain.ErrValidation, s)
	}
	return t, nil
}

// Creator sends POST /bookings.
type Creator interface {
	CreateBooking(ctx context.Context, token string, req mkthttp.CreateBookingRequest) (*domain.Booking, error)
}

// Form is the create-booking form for one provider. It stays open until a
// submit succeeds.
type Form struct {
	Provider    domain.Provider
	Category    domain.ServiceCategory
	Description string
	ScheduledAt string
	Address     string
	Emergency   bool

	// Zone used for LocalLayout input; nil means time.Local.
	Zone *time.Location

	mu     sync.Mutex
	closed bool
}

// NewForm opens a form with the category defaulted to the provider's first.
func NewForm(p domain.Provider) *Form {
	f := &Form{Provider: p}
	if len(p.ServiceCategories) > 0 {
		f.Category = p.ServiceCategories[0]
	}
	return f
}

// EstimatedHourlyCost is the display-only rate for the current emergency
// flag. ok is false when the provider has no such rate.
func (f *Form) EstimatedHourlyCost() (cost float64, ok bool) {
	rate := f.Provider.HourlyRate
	if f.Emergency {
		rate = f.Provider.EmergencyRate
	}
	if rate == nil {
		return 0, false
	}
	return *rate, true
}

func (f *Form) Validate() error {
	if !f.Category.Valid() {
		return fmt.Errorf("%w: unknown service category %q", domain.ErrValidation, f.Category)
	}
	if strings.TrimSpace(f.Description) == "" {
		return fmt.Errorf("%w: description is required", domain.ErrValidation)
	}
	if strings.TrimSpace(f.Address) == "" {
		return fmt.Errorf("%w: address is required", domain.ErrValidation)
	}
	if _, err := ParseSchedule(f.ScheduledAt, f.Zone); err != nil {
		return err
	}
	return nil
}

// Payload validates the form and builds the request body. The scheduled date
// is sent as RFC 3339 in UTC; coordinates are always zero.
func (f *Form) Payload() (mkthttp.CreateBookingRequest, error) {
	if err := f.Validate(); err != nil {
		return mkthttp.CreateBookingRequest{}, err
	}
	at, _ := ParseSchedule(f.ScheduledAt, f.Zone)
	return mkthttp.CreateBookingRequest{
		ProviderID:      f.Provider.ID,
		ServiceCategory: f.Category,
		Description:     strings.TrimSpace(f.Description),
		ScheduledDate:   at.UTC().Format(time.RFC3339),
		Location:        domain.Location{Address: strings.TrimSpace(f.Address)},
		Emergency:       f.Emergency,
	}, nil
}

// Submit creates the booking. On success the form closes and refresh runs;
// on failure the form stays open for another attempt.
func (f *Form) Submit(ctx context.Context, api Creator, token string, refresh RefreshFunc) (*domain.Booking, error) {
	logger := logging.NewLogger(ctx, "booking")

	if f.Closed() {
		return nil, fmt.Errorf("%w: form already submitted", domain.ErrValidation)
	}
	if token == "" {
		return nil, domain.ErrNotLoggedIn
	}
	req, err := f.Payload()
	if err != nil {
		return nil, err
	}

	created, err := api.CreateBooking(ctx, token, req)
	if err != nil {
		logger.LogError("create_booking", err)
		return nil, fmt.Errorf("create booking: %w: %w", domain.ErrSubmissionFailed, err)
	}

	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	logger.LogInfof("create_booking", "booking_id=%s provider_id=%s emergency=%t", created.ID, req.ProviderID, req.Emergency)

	if refresh != nil {
		if err := refresh(ctx); err != nil {
			logger.LogWarnf("create_booking", "booking created but refresh failed: %v", err)
		}
	}
	return created, nil
}

func (f *Form) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
