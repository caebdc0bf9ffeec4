package memory

import (
	"context"
	"crm-rep/internal/domain/customer"
	"crm-rep/internal/domain/user"
	"crm-rep/internal/pkg/apperrors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Store keeps users, customers and lookup rows in process memory. It backs
// the development server when no database URL is configured.
type Store struct {
	mu         sync.RWMutex
	users      map[int64]*user.User
	customers  map[int64]*customer.Customer
	references map[customer.ReferenceKind][]customer.ReferenceItem
	nextUser   int64
	nextCust   int64
}

func NewStore() *Store {
	return &Store{
		users:      make(map[int64]*user.User),
		customers:  make(map[int64]*customer.Customer),
		references: make(map[customer.ReferenceKind][]customer.ReferenceItem),
	}
}

func (s *Store) Users() user.Repository                   { return userRepository{s} }
func (s *Store) Customers() customer.Repository           { return customerRepository{s} }
func (s *Store) References() customer.ReferenceRepository { return referenceRepository{s} }

// SetReferences replaces the rows of one lookup kind.
func (s *Store) SetReferences(kind customer.ReferenceKind, items []customer.ReferenceItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.references[kind] = append([]customer.ReferenceItem(nil), items...)
}

type userRepository struct{ s *Store }

func (r userRepository) Save(_ context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.ID != u.ID && strings.EqualFold(existing.Username, u.Username) {
			return fmt.Errorf("%w: username %q", apperrors.ErrAlreadyExists, u.Username)
		}
	}
	if u.ID == 0 {
		r.s.nextUser++
		u.ID = r.s.nextUser
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	stored := *u
	r.s.users[u.ID] = &stored
	return nil
}

func (r userRepository) FindByID(_ context.Context, userID int64) (*user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[userID]
	if !ok {
		return nil, user.ErrNotFound
	}
	found := *u
	return &found, nil
}

func (r userRepository) FindByUsername(_ context.Context, username string) (*user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Username, username) {
			found := *u
			return &found, nil
		}
	}
	return nil, user.ErrNotFound
}

type customerRepository struct{ s *Store }

func (r customerRepository) Save(_ context.Context, c *customer.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.customers {
		if existing.ID != c.ID && existing.Username == c.Username {
			return customer.ErrDuplicateUsername
		}
	}
	if c.ID == 0 {
		r.s.nextCust++
		c.ID = r.s.nextCust
	}
	stored := *c
	r.s.customers[c.ID] = &stored
	return nil
}

func (r customerRepository) FindByID(_ context.Context, customerID int64) (*customer.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.customers[customerID]
	if !ok {
		return nil, customer.ErrNotFound
	}
	found := *c
	return &found, nil
}

// FindAll returns customers newest first, matching the list screen order.
func (r customerRepository) FindAll(_ context.Context) ([]*customer.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*customer.Customer, 0, len(r.s.customers))
	for _, c := range r.s.customers {
		found := *c
		out = append(out, &found)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

type referenceRepository struct{ s *Store }

func (r referenceRepository) List(_ context.Context, kind customer.ReferenceKind) ([]customer.ReferenceItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]customer.ReferenceItem{}, r.s.references[kind]...), nil
}

func (r referenceRepository) Exists(_ context.Context, kind customer.ReferenceKind, id int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := customer.FindReference(r.s.references[kind], id)
	return ok, nil
}
