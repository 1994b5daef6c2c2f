package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/lebfix/lebfix-client/config"
	"github.com/lebfix/lebfix-client/internal/dashboard"
	"github.com/lebfix/lebfix-client/internal/logging"
	"github.com/lebfix/lebfix-client/internal/marketplace/domain"
	mkthttp "github.com/lebfix/lebfix-client/internal/marketplace/http"
	sessionhttp "github.com/lebfix/lebfix-client/internal/session/http"
	"github.com/lebfix/lebfix-client/internal/session/service"
	"github.com/lebfix/lebfix-client/internal/view"
)

// ErrLoginTimeout is returned when no callback arrives in time.
var ErrLoginTimeout = errors.New("timed out waiting for sign-in")

// App holds the long-lived pieces of one client run.
type App struct {
	Config  *config.Config
	API     *mkthttp.Client
	Session *service.Manager
}

// New opens the token store and builds the API client and session manager.
// open may be nil when no browser should be launched.
func New(ctx context.Context, cfg *config.Config, open service.BrowserOpener) (*App, error) {
	SetGinMode(cfg.App.Environment)

	store, err := OpenTokenStore(ctx, StoreOptionsFrom(cfg.Store))
	if err != nil {
		return nil, err
	}

	client := mkthttp.NewClient(cfg.API.BaseURL, mkthttp.Options{
		Timeout:   cfg.API.RequestTimeout,
		RateLimit: rate.Limit(cfg.API.RateLimitRPS),
		Burst:     cfg.API.RateLimitBurst,
	})

	return &App{
		Config:  cfg,
		API:     client,
		Session: service.NewManager(client, store, open),
	}, nil
}

// SetupLogging configures the process logger from cfg: console output on a
// terminal, JSON otherwise.
func SetupLogging(cfg *config.Config) {
	logging.Setup(os.Stderr, cfg.App.LogLevel, logging.IsTerminal(os.Stderr))
}

// Close releases the token store and logs API call totals.
func (a *App) Close() error {
	m := mkthttp.GetMetrics()
	logging.For("app").Debug().
		Int64("api_calls", m.Calls()).
		Int64("api_errors", m.Errors()).
		Float64("api_error_rate", m.ErrorRate()).
		Float64("api_avg_latency_ms", m.AverageLatency()).
		Msg("shutting down")
	return a.Session.Close()
}

// Login runs the browser round trip: it starts the callback server, sends
// the browser to the auth URL (also passed to notify) and waits for the
// callback or the configured timeout.
func (a *App) Login(ctx context.Context, notify func(authURL string)) (*domain.User, error) {
	logger := logging.NewLogger(ctx, "app")

	srv := sessionhttp.NewServer(a.Config.Callback.Addr, a.Session)
	if err := srv.Listen(); err != nil {
		return nil, err
	}
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve() }()
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			logger.LogError("callback_shutdown", err)
		}
	}()

	authURL, err := a.Session.Login(ctx, srv.Origin())
	if authURL == "" {
		return nil, err
	}
	if err != nil {
		logger.LogWarnf("login", "%v", err)
	}
	if notify != nil {
		notify(authURL)
	}

	timeout := a.Config.Callback.LoginTimeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-srv.Results():
		return res.User, res.Err
	case err := <-serveErr:
		return nil, fmt.Errorf("callback server: %w", err)
	case <-timer.C:
		logger.LogErrorf("login", "no sign-in callback within %s", timeout)
		return nil, ErrLoginTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Route restores the session and returns the current view.
func (a *App) Route(ctx context.Context) view.State {
	a.Session.RestoreSession(ctx)
	state := a.Session.State()
	return view.Route(state.User, state.Loading)
}

// Dashboard routes and, for dashboard views, builds and loads the matching
// dashboard. A load error is returned alongside the dashboard, which still
// shows whatever did load.
func (a *App) Dashboard(ctx context.Context) (view.State, dashboard.Dashboard, error) {
	v := a.Route(ctx)
	d, ok := dashboard.ForView(v, a.API, a.Session)
	if !ok {
		return v, nil, nil
	}
	return v, d, d.Load(ctx)
}
