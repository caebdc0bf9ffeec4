package customer

import (
	"context"
	"crm-rep/internal/event"
	"crm-rep/internal/pkg/apperrors"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// Service is the backend side of the customer endpoints.
type Service interface {
	Create(ctx context.Context, req *CreateRequest) (*Customer, error)
	Get(ctx context.Context, customerID int64) (*Customer, error)
	List(ctx context.Context) ([]*Customer, error)
	ListReference(ctx context.Context, kind ReferenceKind) ([]ReferenceItem, error)
}

var _ Service = (*customerService)(nil)

type customerService struct {
	repo   Repository
	refs   ReferenceRepository
	pub    event.EventPublisher
	logger *slog.Logger
}

func NewService(repo Repository, refs ReferenceRepository, pub event.EventPublisher, logger *slog.Logger) Service {
	if repo == nil {
		panic("customer repository cannot be nil")
	}
	if refs == nil {
		panic("reference repository cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewService, using default stderr handler")
	}
	if pub == nil {
		pub = event.NopPublisher{}
	}

	return &customerService{
		repo:   repo,
		refs:   refs,
		pub:    pub,
		logger: logger.With(slog.String("component", "customerService")),
	}
}

func NewCustomerEventPayload(c *Customer) event.CustomerEventPayload {
	if c == nil {
		return event.CustomerEventPayload{}
	}
	return event.CustomerEventPayload{
		CustomerID:      c.ID,
		RepID:           c.Rep,
		Username:        c.Username,
		FullName:        c.FullName(),
		AgreementStatus: string(c.AgreementStatus),
		Amount:          c.Amount.StringFixed(2),
		StartDate:       c.SubscriptionStartDate.String(),
		CreateDate:      c.CreatedAt,
	}
}

func (s *customerService) Create(ctx context.Context, req *CreateRequest) (*Customer, error) {
	if req == nil {
		return nil, apperrors.NewValidationError("", "request body is required")
	}
	logger := s.logger.With(slog.String("username", req.Username), slog.Int64("rep", req.Rep))
	logger.InfoContext(ctx, "Attempting to create new customer")

	if err := req.Validate(); err != nil {
		logger.WarnContext(ctx, "Validation failed", slog.Any("error", err))
		return nil, err
	}

	if err := s.checkReferences(ctx, req); err != nil {
		logger.WarnContext(ctx, "Reference check failed", slog.Any("error", err))
		return nil, err
	}
	logger.DebugContext(ctx, "Input validation passed")

	c := req.ToCustomer()
	if c.AgreementStatus == "" {
		c.AgreementStatus = AgreementPending
	}
	c.CreatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, c); err != nil {
		if errors.Is(err, ErrDuplicateUsername) || errors.Is(err, apperrors.ErrAlreadyExists) {
			logger.WarnContext(ctx, "Username already taken")
			return nil, apperrors.FieldErrors{{Field: "username", Message: ErrDuplicateUsername.Error()}}
		}
		logger.ErrorContext(ctx, "Repository failed to save new customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save new customer: %w", err)
	}
	logger = logger.With(slog.Int64("customerID", c.ID))

	created := event.CustomerCreatedEvent{
		Timestamp: time.Now(),
		Payload:   NewCustomerEventPayload(c),
	}
	if pubErr := s.pub.PublishCustomerCreated(ctx, created); pubErr != nil {
		logger.ErrorContext(ctx, "Customer created, but FAILED to publish creation event", slog.Any("error", pubErr))
	}

	logger.InfoContext(ctx, "Successfully created new customer")
	return c, nil
}

func (s *customerService) checkReferences(ctx context.Context, req *CreateRequest) error {
	var errs apperrors.FieldErrors
	for _, ref := range []struct {
		field string
		kind  ReferenceKind
		id    int64
	}{
		{"subscription_type", SubscriptionTypes, req.SubscriptionType},
		{"subscription_duration", SubscriptionDurations, req.SubscriptionDuration},
		{"payment_type", PaymentTypes, req.PaymentType},
	} {
		ok, err := s.refs.Exists(ctx, ref.kind, ref.id)
		if err != nil {
			return fmt.Errorf("failed to look up %s: %w", ref.kind, err)
		}
		if !ok {
			errs = append(errs, &apperrors.ValidationError{
				Field:   ref.field,
				Message: fmt.Sprintf("invalid pk %d", ref.id),
				Cause:   ErrUnknownReference,
			})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (s *customerService) Get(ctx context.Context, customerID int64) (*Customer, error) {
	c, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.WarnContext(ctx, "Customer not found by repository", slog.Int64("customerID", customerID))
			return nil, ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Repository error finding customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer %d: %w", customerID, err)
	}
	return c, nil
}

func (s *customerService) List(ctx context.Context) ([]*Customer, error) {
	customers, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing customers", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	s.logger.InfoContext(ctx, "Successfully retrieved customers", slog.Int("count", len(customers)))
	return customers, nil
}

func (s *customerService) ListReference(ctx context.Context, kind ReferenceKind) ([]ReferenceItem, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown reference kind %s", apperrors.ErrInvalidArgument, kind)
	}
	items, err := s.refs.List(ctx, kind)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error listing reference data", slog.String("kind", kind.String()), slog.Any("error", err))
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}
	return items, nil
}
