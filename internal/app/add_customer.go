package app

import (
	"context"
	"crm-rep/internal/domain/customer"
	"crm-rep/internal/domain/session"
	"crm-rep/internal/pkg/apperrors"
	"errors"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ReferenceData fills the pickers of the Add-Customer form. A list whose
// fetch failed stays empty and its error is kept in Errors.
type ReferenceData struct {
	SubscriptionTypes     []customer.ReferenceItem
	SubscriptionDurations []customer.ReferenceItem
	PaymentTypes          []customer.ReferenceItem
	AgreementStatuses     []customer.AgreementOption
	Errors                map[customer.ReferenceKind]error
}

func (r ReferenceData) Items(kind customer.ReferenceKind) []customer.ReferenceItem {
	switch kind {
	case customer.SubscriptionTypes:
		return r.SubscriptionTypes
	case customer.SubscriptionDurations:
		return r.SubscriptionDurations
	case customer.PaymentTypes:
		return r.PaymentTypes
	}
	return nil
}

type AddCustomerScreen struct {
	gateway customer.Gateway
	store   *session.Store
	nav     *Navigator
	logger  *slog.Logger

	mu           sync.Mutex
	draft        customer.Draft
	refs         ReferenceData
	fetched      bool
	fetchedToken string
	submitting   bool
}

func NewAddCustomerScreen(gateway customer.Gateway, store *session.Store, nav *Navigator, logger *slog.Logger) *AddCustomerScreen {
	if logger == nil {
		logger = slog.Default()
	}
	return &AddCustomerScreen{
		gateway: gateway,
		store:   store,
		nav:     nav,
		logger:  logger.With(slog.String("component", "addCustomerScreen")),
		draft:   customer.NewDraft(),
		refs:    ReferenceData{AgreementStatuses: customer.AgreementStatusOptions()},
	}
}

// Mount loads the picker options with the current token.
func (s *AddCustomerScreen) Mount(ctx context.Context) ReferenceData {
	return s.fetchReferences(ctx, s.store.Token())
}

// Sync refetches the picker options if the session token changed since the
// last fetch. It reports whether a fetch happened.
func (s *AddCustomerScreen) Sync(ctx context.Context) bool {
	token := s.store.Token()
	s.mu.Lock()
	stale := !s.fetched || s.fetchedToken != token
	s.mu.Unlock()
	if !stale {
		return false
	}
	s.fetchReferences(ctx, token)
	return true
}

func (s *AddCustomerScreen) References() ReferenceData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refs
}

func (s *AddCustomerScreen) fetchReferences(ctx context.Context, token string) ReferenceData {
	kinds := customer.ReferenceKinds()
	results := make([][]customer.ReferenceItem, len(kinds))
	errs := make([]error, len(kinds))

	var g errgroup.Group
	for i, kind := range kinds {
		i, kind := i, kind
		g.Go(func() error {
			items, err := s.gateway.ListReferenceData(ctx, kind, token)
			if err != nil {
				s.logger.WarnContext(ctx, "Reference data fetch failed", slog.String("kind", kind.String()), slog.Any("error", err))
				errs[i] = err
				return nil
			}
			results[i] = items
			return nil
		})
	}
	_ = g.Wait()

	refs := ReferenceData{
		SubscriptionTypes:     []customer.ReferenceItem{},
		SubscriptionDurations: []customer.ReferenceItem{},
		PaymentTypes:          []customer.ReferenceItem{},
		AgreementStatuses:     customer.AgreementStatusOptions(),
		Errors:                map[customer.ReferenceKind]error{},
	}
	for i, kind := range kinds {
		if errs[i] != nil {
			refs.Errors[kind] = errs[i]
			continue
		}
		if results[i] == nil {
			continue
		}
		switch kind {
		case customer.SubscriptionTypes:
			refs.SubscriptionTypes = results[i]
		case customer.SubscriptionDurations:
			refs.SubscriptionDurations = results[i]
		case customer.PaymentTypes:
			refs.PaymentTypes = results[i]
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.refs = refs
	s.fetched = true
	s.fetchedToken = token
	return refs
}

func (s *AddCustomerScreen) Draft() customer.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Edit applies fn to the form under the screen lock.
func (s *AddCustomerScreen) Edit(fn func(d *customer.Draft)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.draft)
}

// SelectReference sets a picker field from one of the loaded options.
func (s *AddCustomerScreen) SelectReference(kind customer.ReferenceKind, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := customer.FindReference(s.refs.Items(kind), id); !ok {
		return apperrors.NewValidationError(kind.String(), "not one of the loaded options")
	}
	value := strconv.FormatInt(id, 10)
	switch kind {
	case customer.SubscriptionTypes:
		s.draft.SubscriptionType = value
	case customer.SubscriptionDurations:
		s.draft.SubscriptionDuration = value
	case customer.PaymentTypes:
		s.draft.PaymentType = value
	}
	return nil
}

// Reset clears the form back to its defaults.
func (s *AddCustomerScreen) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = customer.NewDraft()
	s.refs = ReferenceData{AgreementStatuses: customer.AgreementStatusOptions()}
	s.fetched = false
	s.fetchedToken = ""
}

// Submit validates the form and creates the customer. ok is true only when
// the backend accepted it, in which case the navigator moves to the customer
// list. On failure the form is left as entered.
func (s *AddCustomerScreen) Submit(ctx context.Context) (alert Alert, ok bool) {
	draft := s.Draft()

	if err := draft.Validate(); err != nil {
		var fe apperrors.FieldErrors
		errors.As(err, &fe)
		s.logger.InfoContext(ctx, "Form rejected before submission", slog.Any("fields", fe.Fields()))
		return Alert{Title: titleError, Message: msgRequiredFields, Fields: fe.Fields()}, false
	}

	u := s.store.User()
	if u == nil {
		return Alert{Title: titleError, Message: msgLoginFirst}, false
	}
	req, err := draft.Payload(u.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotAuthenticated) {
			return Alert{Title: titleError, Message: msgLoginFirst}, false
		}
		return Alert{Title: titleError, Message: msgRequiredFields}, false
	}

	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return Alert{Title: titleError, Message: msgSubmitInProgress}, false
	}
	s.submitting = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.submitting = false
		s.mu.Unlock()
	}()

	created, err := s.gateway.CreateCustomer(ctx, req, s.store.Token())
	if err != nil {
		if code := apperrors.StatusCode(err); code != 0 {
			s.logger.WarnContext(ctx, "Backend rejected new customer", slog.Int("status", code))
			return Alert{Title: titleError, Message: msgCreateRejected + strconv.Itoa(code)}, false
		}
		s.logger.ErrorContext(ctx, "Creating customer failed", slog.Any("error", err))
		return Alert{Title: titleError, Message: msgCreateFailed}, false
	}

	var id int64
	if created != nil {
		id = created.ID
	}
	s.logger.InfoContext(ctx, "Customer created", slog.Int64("customerID", id), slog.String("username", req.Username))

	s.mu.Lock()
	s.draft = customer.NewDraft()
	s.mu.Unlock()

	if err := s.nav.Navigate(ScreenCustomers); err != nil {
		s.logger.ErrorContext(ctx, "Navigation to customer list failed", slog.Any("error", err))
	}
	return Alert{Title: titleSuccess, Message: msgCustomerCreated}, true
}
