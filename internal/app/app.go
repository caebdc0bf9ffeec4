package app

import (
	"context"
	"crm-rep/internal/domain/session"
	"crm-rep/internal/infrastructure/restclient"
	"crm-rep/internal/pkg/apperrors"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	// Tokens with more than this left are not refreshed.
	refreshLeeway     = 5 * time.Minute
	refreshJobTimeout = 30 * time.Second
)

// App is the root of the client. It owns the session and hands it to every
// screen.
type App struct {
	Store       *session.Store
	Navigator   *Navigator
	Login       *LoginFlow
	Home        *HomeScreen
	Customers   *CustomersScreen
	AddCustomer *AddCustomerScreen

	api    API
	logger *slog.Logger
	now    func() time.Time

	cronMu sync.Mutex
	cron   *cron.Cron
}

func New(api API, logger *slog.Logger) *App {
	if api == nil {
		panic("api cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	store := session.NewStore()
	nav := NewNavigator(store, logger)
	return &App{
		Store:       store,
		Navigator:   nav,
		Login:       NewLoginFlow(api, store, nav, logger),
		Home:        NewHomeScreen(store, nav),
		Customers:   NewCustomersScreen(api, nav, logger),
		AddCustomer: NewAddCustomerScreen(api, store, nav, logger),
		api:         api,
		logger:      logger.With(slog.String("component", "app")),
		now:         time.Now,
	}
}

// Logout drops the session and returns to Login.
func (a *App) Logout() {
	a.Store.Clear()
	a.afterSignOut()
}

func (a *App) afterSignOut() {
	a.Customers.Unmount()
	a.AddCustomer.Reset()
	if err := a.Navigator.Reset(ScreenLogin); err != nil {
		a.logger.Error("Navigation reset after logout failed", slog.Any("error", err))
	}
	a.logger.Info("Representative signed out")
}

// RefreshToken renews the access token when it is close to expiry. A
// rejected refresh token ends the session.
func (a *App) RefreshToken(ctx context.Context) error {
	snap := a.Store.Snapshot()
	refresh := snap.RefreshToken
	if !snap.Authenticated() || refresh == "" {
		return nil
	}
	if exp, ok := restclient.TokenExpiry(snap.Token); ok && exp.Sub(a.now()) > refreshLeeway {
		a.logger.DebugContext(ctx, "Access token still fresh, skipping refresh", slog.Time("expiresAt", exp))
		return nil
	}

	access, err := a.api.RefreshAccessToken(ctx, refresh)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			if a.Store.ClearIf(refresh) {
				a.logger.WarnContext(ctx, "Refresh token rejected, signing out")
				a.afterSignOut()
			} else {
				a.logger.InfoContext(ctx, "Refresh token rejected after the session changed, keeping it")
			}
		}
		return fmt.Errorf("refresh access token: %w", err)
	}
	if !a.Store.UpdateAccessToken(refresh, access) {
		a.logger.InfoContext(ctx, "Session changed during refresh, dropping new token")
		return nil
	}
	a.logger.InfoContext(ctx, "Access token refreshed")
	return nil
}

// StartTokenRefresher runs RefreshToken on the given cron schedule until Stop.
func (a *App) StartTokenRefresher(schedule string) error {
	a.cronMu.Lock()
	defer a.cronMu.Unlock()
	if a.cron != nil {
		return errors.New("token refresher already running")
	}

	c := cron.New()
	jobID, err := c.AddJob(schedule, cron.FuncJob(func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshJobTimeout)
		defer cancel()
		if runErr := a.RefreshToken(ctx); runErr != nil {
			a.logger.Warn("Token refresh job finished with error", slog.Any("error", runErr))
		}
	}))
	if err != nil {
		return fmt.Errorf("schedule token refresh %q: %w", schedule, err)
	}
	a.logger.Info("Scheduled token refresh job", "schedule", schedule, "job_id", jobID)

	c.Start()
	a.cron = c
	return nil
}

// Stop halts the refresher and waits for a running job, bounded by ctx.
func (a *App) Stop(ctx context.Context) {
	a.cronMu.Lock()
	c := a.cron
	a.cron = nil
	a.cronMu.Unlock()
	if c == nil {
		return
	}

	select {
	case <-c.Stop().Done():
		a.logger.Info("Token refresher stopped")
	case <-ctx.Done():
		a.logger.Warn("Token refresher shutdown timed out")
	}
}
