package app

import (
	"context"
	"crm-rep/internal/domain/session"
	"crm-rep/internal/pkg/apperrors"
	"errors"
	"log/slog"
)

// LoginFlow signs a representative in. The session is written only after
// both the token exchange and the current-user fetch succeed.
type LoginFlow struct {
	api    API
	store  *session.Store
	nav    *Navigator
	logger *slog.Logger
}

func NewLoginFlow(api API, store *session.Store, nav *Navigator, logger *slog.Logger) *LoginFlow {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoginFlow{
		api:    api,
		store:  store,
		nav:    nav,
		logger: logger.With(slog.String("component", "loginFlow")),
	}
}

// Submit returns a zero Alert on success, after which the navigator shows
// Home.
func (f *LoginFlow) Submit(ctx context.Context, username, password string) Alert {
	logger := f.logger.With(slog.String("username", username))

	tokens, err := f.api.ExchangeCredentials(ctx, username, password)
	if err != nil {
		if apperrors.StatusCode(err) != 0 {
			logger.WarnContext(ctx, "Token exchange rejected", slog.Int("status", apperrors.StatusCode(err)))
			return Alert{Title: titleLoginError, Message: msgInvalidCredentials}
		}
		logger.ErrorContext(ctx, "Token exchange failed", slog.Any("error", err))
		return Alert{Title: titleError, Message: msgLoginFailed}
	}

	u, err := f.api.FetchCurrentUser(ctx, tokens.Access)
	if err != nil {
		if apperrors.StatusCode(err) != 0 || errors.Is(err, apperrors.ErrUnexpectedStatus) {
			logger.WarnContext(ctx, "Current user fetch rejected", slog.Int("status", apperrors.StatusCode(err)))
			return Alert{Title: titleError, Message: msgUserFetchFailed}
		}
		logger.ErrorContext(ctx, "Current user fetch failed", slog.Any("error", err))
		return Alert{Title: titleError, Message: msgLoginFailed}
	}
	if u == nil || u.ID <= 0 {
		logger.ErrorContext(ctx, "Current user endpoint returned no usable user")
		return Alert{Title: titleError, Message: msgUserFetchFailed}
	}

	f.store.Establish(u, tokens)
	if err := f.nav.Reset(ScreenHome); err != nil {
		logger.ErrorContext(ctx, "Navigation reset after login failed", slog.Any("error", err))
	}
	logger.InfoContext(ctx, "Representative signed in", slog.Int64("userID", u.ID))
	return Alert{}
}
