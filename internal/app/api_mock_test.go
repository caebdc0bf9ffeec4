package app

import (
	"context"
	"crm-rep/internal/domain/customer"
	"crm-rep/internal/domain/session"
	"crm-rep/internal/domain/user"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockAPI struct {
	mock.Mock
}

func (_m *MockAPI) ExchangeCredentials(ctx context.Context, username, password string) (session.Tokens, error) {
	ret := _m.Called(ctx, username, password)
	return ret.Get(0).(session.Tokens), ret.Error(1)
}

func (_m *MockAPI) FetchCurrentUser(ctx context.Context, token string) (*user.User, error) {
	ret := _m.Called(ctx, token)

	var r0 *user.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*user.User)
	}

	return r0, ret.Error(1)
}

func (_m *MockAPI) RefreshAccessToken(ctx context.Context, refresh string) (string, error) {
	ret := _m.Called(ctx, refresh)
	return ret.String(0), ret.Error(1)
}

func (_m *MockAPI) ListCustomers(ctx context.Context) ([]customer.Customer, error) {
	ret := _m.Called(ctx)

	var r0 []customer.Customer
	if rf, ok := ret.Get(0).(func(context.Context) []customer.Customer); ok {
		r0 = rf(ctx)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]customer.Customer)
	}

	return r0, ret.Error(1)
}

func (_m *MockAPI) ListReferenceData(ctx context.Context, kind customer.ReferenceKind, token string) ([]customer.ReferenceItem, error) {
	ret := _m.Called(ctx, kind, token)

	var r0 []customer.ReferenceItem
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]customer.ReferenceItem)
	}

	return r0, ret.Error(1)
}

func (_m *MockAPI) CreateCustomer(ctx context.Context, req *customer.CreateRequest, token string) (*customer.Customer, error) {
	ret := _m.Called(ctx, req, token)

	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}

	return r0, ret.Error(1)
}

var _ API = (*MockAPI)(nil)

// SetClock replaces the clock used for token expiry decisions.
func SetClock(a *App, now func() time.Time) {
	a.now = now
}
