package app

import (
	"context"
	"crm-rep/internal/domain/customer"
	"log/slog"
	"sync"
)

type ViewState int

const (
	StateLoading ViewState = iota
	StateError
	StateEmpty
	StatePopulated
)

func (s ViewState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	case StateEmpty:
		return "empty"
	case StatePopulated:
		return "populated"
	}
	return "unknown"
}

// CustomersView is what the customer list renders. State decides which of
// the other fields are meaningful.
type CustomersView struct {
	State     ViewState
	Customers []customer.Customer
	Message   string
	Action    string
}

// CustomersScreen loads and shows the customer list.
type CustomersScreen struct {
	gateway customer.Gateway
	nav     *Navigator
	logger  *slog.Logger

	mu         sync.Mutex
	mounted    bool
	generation uint64
	view       CustomersView
}

func NewCustomersScreen(gateway customer.Gateway, nav *Navigator, logger *slog.Logger) *CustomersScreen {
	if logger == nil {
		logger = slog.Default()
	}
	return &CustomersScreen{
		gateway: gateway,
		nav:     nav,
		logger:  logger.With(slog.String("component", "customersScreen")),
		view:    loadingView(),
	}
}

func loadingView() CustomersView {
	return CustomersView{State: StateLoading, Message: MsgCustomersLoading}
}

func (s *CustomersScreen) View() CustomersView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

func (s *CustomersScreen) Mount(ctx context.Context) CustomersView {
	s.mu.Lock()
	s.mounted = true
	s.mu.Unlock()
	return s.load(ctx)
}

// Refresh is pull-to-refresh.
func (s *CustomersScreen) Refresh(ctx context.Context) CustomersView {
	return s.load(ctx)
}

// Retry is the "Tekrar Dene" action of the error state.
func (s *CustomersScreen) Retry(ctx context.Context) CustomersView {
	return s.load(ctx)
}

// Unmount discards the result of any load still in flight.
func (s *CustomersScreen) Unmount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mounted = false
	s.generation++
	s.view = loadingView()
}

// AddNew is the call-to-action of the empty state.
func (s *CustomersScreen) AddNew() error {
	return s.nav.Navigate(ScreenAddCustomer)
}

func (s *CustomersScreen) load(ctx context.Context) CustomersView {
	s.mu.Lock()
	if !s.mounted {
		v := s.view
		s.mu.Unlock()
		return v
	}
	s.generation++
	gen := s.generation
	s.view = loadingView()
	s.mu.Unlock()

	customers, err := s.gateway.ListCustomers(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || !s.mounted {
		s.logger.DebugContext(ctx, "Discarding stale customer list result", slog.Uint64("generation", gen))
		return s.view
	}

	switch {
	case err != nil:
		s.logger.WarnContext(ctx, "Loading customers failed", slog.Any("error", err))
		s.view = CustomersView{State: StateError, Message: MsgCustomersFailed, Action: ActionRetry}
	case len(customers) == 0:
		s.view = CustomersView{State: StateEmpty, Message: MsgCustomersEmpty, Action: ActionAddNewCustomer}
	default:
		s.view = CustomersView{State: StatePopulated, Customers: customers}
	}
	return s.view
}
