package app

import (
	"crm-rep/internal/domain/session"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var ErrUnreachable = errors.New("screen is not reachable in the current session state")

// Navigator keeps the screen history. Which screens are reachable is never
// stored: it is derived from the session on every call.
type Navigator struct {
	store  *session.Store
	logger *slog.Logger

	mu      sync.Mutex
	history []Screen
}

func NewNavigator(store *session.Store, logger *slog.Logger) *Navigator {
	if store == nil {
		panic("session store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Navigator{
		store:  store,
		logger: logger.With(slog.String("component", "navigator")),
	}
}

func (n *Navigator) Reachable(s Screen) bool {
	return reachable(n.store.Authenticated(), s)
}

func reachable(authenticated bool, s Screen) bool {
	switch s {
	case ScreenLogin:
		return !authenticated
	case ScreenHome, ScreenCustomers, ScreenAddCustomer:
		return authenticated
	}
	return false
}

// Screens lists the reachable screens in menu order.
func (n *Navigator) Screens() []Screen {
	if !n.store.Authenticated() {
		return []Screen{ScreenLogin}
	}
	return []Screen{ScreenHome, ScreenCustomers, ScreenAddCustomer}
}

// Current returns the visible screen. If the session no longer permits the
// top of the history, the history collapses to the first reachable screen.
func (n *Navigator) Current() Screen {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.currentLocked()
}

func (n *Navigator) currentLocked() Screen {
	authed := n.store.Authenticated()
	if len(n.history) == 0 || !reachable(authed, n.history[len(n.history)-1]) {
		fallback := ScreenLogin
		if authed {
			fallback = ScreenHome
		}
		n.history = []Screen{fallback}
	}
	return n.history[len(n.history)-1]
}

func (n *Navigator) Navigate(to Screen) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.Reachable(to) {
		n.logger.Warn("Navigation refused", slog.String("to", to.String()))
		return fmt.Errorf("navigate to %s: %w", to, ErrUnreachable)
	}
	from := n.currentLocked()
	if from == to {
		return nil
	}
	n.history = append(n.history, to)
	n.logger.Debug("Navigated", slog.String("from", from.String()), slog.String("to", to.String()))
	return nil
}

// Reset replaces the whole history with a single screen.
func (n *Navigator) Reset(to Screen) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.Reachable(to) {
		return fmt.Errorf("reset to %s: %w", to, ErrUnreachable)
	}
	n.history = []Screen{to}
	n.logger.Debug("Navigation reset", slog.String("to", to.String()))
	return nil
}

// Back pops the current screen unless it is the only one.
func (n *Navigator) Back() Screen {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.currentLocked()
	if len(n.history) > 1 {
		n.history = n.history[:len(n.history)-1]
	}
	return n.currentLocked()
}

func (n *Navigator) History() []Screen {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.currentLocked()
	return append([]Screen(nil), n.history...)
}
