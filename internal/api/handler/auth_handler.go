package handler

import (
	"crm-rep/internal/api/handler/dto"
	"crm-rep/internal/api/middleware"
	"crm-rep/internal/domain/user"
	"crm-rep/internal/infrastructure/monitoring"
	"crm-rep/internal/pkg/apperrors"
	"errors"
	"log/slog"
	"net/http"
)

// AuthHandler serves token exchange, token refresh and the current user.
type AuthHandler struct {
	users  user.Service
	tokens *middleware.TokenIssuer
	logger *slog.Logger
}

func NewAuthHandler(users user.Service, tokens *middleware.TokenIssuer, l *slog.Logger) *AuthHandler {
	if users == nil {
		panic("user service cannot be nil")
	}
	if tokens == nil {
		panic("token issuer cannot be nil")
	}
	return &AuthHandler{
		users:  users,
		tokens: tokens,
		logger: l.With("component", "AuthHandler"),
	}
}

// ObtainToken handles POST /api/token/.
func (h *AuthHandler) ObtainToken(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode token request", slog.Any("error", err))
		respondError(w, badRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, err)
		return
	}

	u, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			monitoring.RecordLoginFailure()
		}
		respondError(w, err)
		return
	}

	access, refresh, err := h.tokens.IssuePair(u.ID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to issue token pair", slog.Any("error", err))
		respondError(w, err)
		return
	}
	monitoring.RecordTokenIssued(middleware.TokenTypeAccess)
	monitoring.RecordTokenIssued(middleware.TokenTypeRefresh)

	h.logger.InfoContext(r.Context(), "Issued token pair", slog.Int64("userID", u.ID))
	respondJSON(w, http.StatusOK, dto.TokenPairResponse{Access: access, Refresh: refresh})
}

// RefreshToken handles POST /api/token/refresh/.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, badRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, err)
		return
	}

	claims, err := h.tokens.Parse(req.Refresh, middleware.TokenTypeRefresh)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Rejected refresh token", slog.Any("error", err))
		respondError(w, err)
		return
	}
	if _, err := h.users.Get(r.Context(), claims.UserID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			err = apperrors.ErrUnauthorized
		}
		respondError(w, err)
		return
	}

	access, err := h.tokens.IssueAccess(claims.UserID)
	if err != nil {
		respondError(w, err)
		return
	}
	monitoring.RecordTokenIssued(middleware.TokenTypeAccess)
	respondJSON(w, http.StatusOK, dto.AccessResponse{Access: access})
}

// CurrentUser handles GET /api/users/me/; it must sit behind AuthMiddleware.
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, apperrors.ErrUnauthorized)
		return
	}

	u, err := h.users.Get(r.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			err = apperrors.ErrUnauthorized
		}
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, dto.NewUserResponse(u))
}
