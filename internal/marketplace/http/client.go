package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/lebfix/lebfix-client/internal/logging"
	"github.com/lebfix/lebfix-client/internal/marketplace/domain"
)

const (
	apiPrefix       = "/api"
	requestIDHeader = "X-Request-Id"

	// DefaultTimeout is the per-request timeout when none is configured
	DefaultTimeout = 30 * time.Second
)

// StatusError is returned when the backend answers with a 4xx or 5xx.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: backend returned status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Unwrap maps auth failures onto domain.ErrUnauthorized.
func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden {
		return domain.ErrUnauthorized
	}
	return nil
}

// Options tune a Client. Zero values select defaults; a zero RateLimit
// disables client-side throttling.
type Options struct {
	Timeout    time.Duration
	RateLimit  rate.Limit
	Burst      int
	HTTPClient *http.Client
}

// Client talks to the marketplace REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client for the backend rooted at baseURL
func NewClient(baseURL string, opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(opts.RateLimit, burst)
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: hc,
		limiter:    limiter,
	}
}

// Login asks the backend for the external-auth URL that redirects back to hostURL.
func (c *Client) Login(ctx context.Context, hostURL string) (string, error) {
	var resp LoginResponse
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", "", nil, LoginRequest{HostURL: hostURL}, &resp); err != nil {
		return "", err
	}
	if resp.AuthURL == "" {
		return "", fmt.Errorf("login: backend returned empty auth_url")
	}
	return resp.AuthURL, nil
}

// ExchangeSession trades an external-auth session id for a user and token.
func (c *Client) ExchangeSession(ctx context.Context, sessionID string) (*SessionResponse, error) {
	var resp SessionResponse
	if err := c.do(ctx, "exchange_session", http.MethodPost, "/auth/session", "", nil, SessionRequest{SessionID: sessionID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetMe returns the user owning token.
func (c *Client) GetMe(ctx context.Context, token string) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, "get_me", http.MethodGet, "/users/me", token, nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CompleteProfile submits role and contact fields for the caller.
func (c *Client) CompleteProfile(ctx context.Context, token string, req CompleteProfileRequest) error {
	return c.do(ctx, "complete_profile", http.MethodPost, "/auth/complete-profile", token, nil, req, nil)
}

// ListProviders returns providers, optionally filtered by category.
func (c *Client) ListProviders(ctx context.Context, token string, category domain.ServiceCategory) ([]domain.Provider, error) {
	return c.SearchProviders(ctx, token, ProviderQuery{Category: category})
}

// SearchProviders returns providers matching q. Unset fields are not sent.
func (c *Client) SearchProviders(ctx context.Context, token string, q ProviderQuery) ([]domain.Provider, error) {
	query := url.Values{}
	if q.Category != "" {
		query.Set("category", string(q.Category))
	}
	if q.Emergency != nil {
		query.Set("emergency", strconv.FormatBool(*q.Emergency))
	}
	var providers []domain.Provider
	if err := c.do(ctx, "list_providers", http.MethodGet, "/providers", token, query, nil, &providers); err != nil {
		return nil, err
	}
	return providers, nil
}

// UpdateProviderProfile updates the caller's provider record.
func (c *Client) UpdateProviderProfile(ctx context.Context, token string, req ProviderProfileRequest) error {
	return c.do(ctx, "update_provider_profile", http.MethodPost, "/providers/profile", token, nil, req, nil)
}

// ListBookings returns bookings visible to the caller's role.
func (c *Client) ListBookings(ctx context.Context, token string) ([]domain.Booking, error) {
	var bookings []domain.Booking
	if err := c.do(ctx, "list_bookings", http.MethodGet, "/bookings", token, nil, nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// CreateBooking books a provider.
func (c *Client) CreateBooking(ctx context.Context, token string, req CreateBookingRequest) (*domain.Booking, error) {
	var booking domain.Booking
	if err := c.do(ctx, "create_booking", http.MethodPost, "/bookings", token, nil, req, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

// UpdateBookingStatus moves a booking to status.
func (c *Client) UpdateBookingStatus(ctx context.Context, token, bookingID string, status domain.BookingStatus) error {
	path := "/bookings/" + url.PathEscape(bookingID) + "/status"
	return c.do(ctx, "update_booking_status", http.MethodPut, path, token, nil, UpdateStatusRequest{Status: status}, nil)
}

// GetMyCompany returns the company owned by the caller.
func (c *Client) GetMyCompany(ctx context.Context, token string) (*domain.Company, error) {
	var company domain.Company
	if err := c.do(ctx, "get_my_company", http.MethodGet, "/companies/my-company", token, nil, nil, &company); err != nil {
		return nil, err
	}
	return &company, nil
}

// AddEmployee attaches an existing account to the caller's company.
func (c *Client) AddEmployee(ctx context.Context, token string, req AddEmployeeRequest) error {
	return c.do(ctx, "add_employee", http.MethodPost, "/companies/add-employee", token, nil, req, nil)
}

func (c *Client) do(ctx context.Context, operation, method, path, token string, query url.Values, body, out any) error {
	rid := logging.GetRequestID(ctx)
	if rid == "" {
		rid = uuid.NewString()
		ctx = logging.WithRequestID(ctx, rid)
	}
	logger := logging.NewLogger(ctx, "api")

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%s: rate limit: %w", operation, err)
		}
	}

	reqURL := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", operation, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, rid)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordCall(time.Since(start), err)
		logger.LogError(operation, err)
		return fmt.Errorf("%s: request failed: %w", operation, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	duration := time.Since(start)
	if err != nil {
		recordCall(duration, err)
		logger.LogError(operation, err)
		return fmt.Errorf("%s: read response: %w", operation, err)
	}

	if resp.StatusCode >= 400 {
		statusErr := &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(bytes.TrimSpace(data))}
		recordCall(duration, statusErr)
		logger.LogWarnf(operation, "backend returned status %d", resp.StatusCode)
		return statusErr
	}
	recordCall(duration, nil)
	logger.LogDebugf(operation, "%s %s -> %d in %s", method, path, resp.StatusCode, duration)

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", operation, err)
	}
	return nil
}

// IsUnauthorized reports whether err is a 401/403 from the backend.
func IsUnauthorized(err error) bool {
	return errors.Is(err, domain.ErrUnauthorized)
}
