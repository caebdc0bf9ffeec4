package customer

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("customer not found")

	ErrDuplicateUsername = errors.New("customer with this username already exists")

	ErrUnknownReference = errors.New("referenced lookup row does not exist")
)

type Repository interface {
	Save(ctx context.Context, customer *Customer) error

	FindByID(ctx context.Context, customerID int64) (*Customer, error)

	FindAll(ctx context.Context) ([]*Customer, error)
}

type ReferenceRepository interface {
	List(ctx context.Context, kind ReferenceKind) ([]ReferenceItem, error)

	Exists(ctx context.Context, kind ReferenceKind, id int64) (bool, error)
}

// Gateway is the client-side view of the backend's customer endpoints.
type Gateway interface {
	ListCustomers(ctx context.Context) ([]Customer, error)

	ListReferenceData(ctx context.Context, kind ReferenceKind, token string) ([]ReferenceItem, error)

	CreateCustomer(ctx context.Context, req *CreateRequest, token string) (*Customer, error)
}
