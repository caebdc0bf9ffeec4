package user

import (
	"context"
	"crm-rep/internal/pkg/apperrors"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	Authenticate(ctx context.Context, username, password string) (*User, error)
	Get(ctx context.Context, userID int64) (*User, error)
	Register(ctx context.Context, u *User, password string) error
}

var _ Service = (*userService)(nil)

type userService struct {
	repo       Repository
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, bcryptCost int, logger *slog.Logger) Service {
	if repo == nil {
		panic("user repository cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewService, using default stderr handler")
	}
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &userService{
		repo:       repo,
		bcryptCost: bcryptCost,
		logger:     logger.With(slog.String("component", "userService")),
	}
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Login attempt for unknown user")
			return nil, ErrInvalidCredentials
		}
		s.logger.ErrorContext(ctx, "Repository error during authentication", slog.Any("error", err))
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.logger.WarnContext(ctx, "Password mismatch", slog.Int64("userID", u.ID))
		return nil, ErrInvalidCredentials
	}

	s.logger.InfoContext(ctx, "User authenticated", slog.Int64("userID", u.ID))
	return u, nil
}

func (s *userService) Get(ctx context.Context, userID int64) (*User, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, apperrors.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	return u, nil
}

func (s *userService) Register(ctx context.Context, u *User, password string) error {
	if u == nil || u.Username == "" {
		return apperrors.NewValidationError("username", "cannot be empty")
	}
	if password == "" {
		return apperrors.NewValidationError("password", "cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	u.PasswordHash = string(hash)

	if err := s.repo.Save(ctx, u); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("failed to save user %q: %w", u.Username, err)
	}
	s.logger.InfoContext(ctx, "User registered", slog.Int64("userID", u.ID))
	return nil
}
