package memory

import (
	"context"
	"crm-rep/internal/domain/customer"
	"crm-rep/internal/domain/user"
	"errors"
	"fmt"
)

// DemoUser is the representative seeded for local development.
type DemoUser struct {
	Username, Password, FirstName, LastName, Email string
}

func DefaultDemoUsers() []DemoUser {
	return []DemoUser{
		{Username: "demo", Password: "demo1234", FirstName: "Ayşe", LastName: "Yılmaz", Email: "ayse@example.com"},
	}
}

func DefaultReferences() map[customer.ReferenceKind][]customer.ReferenceItem {
	return map[customer.ReferenceKind][]customer.ReferenceItem{
		customer.SubscriptionTypes: {
			{ID: 1, Name: "Bireysel"},
			{ID: 2, Name: "Kurumsal"},
		},
		customer.SubscriptionDurations: {
			{ID: 1, Name: "1 Ay"},
			{ID: 2, Name: "6 Ay"},
			{ID: 3, Name: "12 Ay"},
		},
		customer.PaymentTypes: {
			{ID: 1, Name: "Nakit"},
			{ID: 2, Name: "Havale/EFT"},
			{ID: 3, Name: "Kredi Kartı"},
		},
	}
}

// Seed loads the lookup rows and registers demo users.
func (s *Store) Seed(ctx context.Context, users user.Service, demo []DemoUser) error {
	for kind, items := range DefaultReferences() {
		s.SetReferences(kind, items)
	}
	return SeedUsers(ctx, users, demo)
}

// SeedUsers registers demo users through users, so their passwords are hashed
// like any other account. Existing usernames are skipped.
func SeedUsers(ctx context.Context, users user.Service, demo []DemoUser) error {
	for _, d := range demo {
		u := user.NewUser(d.Username, d.FirstName, d.LastName, d.Email)
		if err := users.Register(ctx, u, d.Password); err != nil {
			if errors.Is(err, user.ErrUsernameTaken) {
				continue
			}
			return fmt.Errorf("failed to seed user %q: %w", d.Username, err)
		}
	}
	return nil
}
