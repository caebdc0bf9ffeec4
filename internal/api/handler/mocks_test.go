package handler_test

import (
	"context"
	"crm-rep/internal/domain/customer"
	"crm-rep/internal/domain/user"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"
)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

type MockUserService struct {
	mock.Mock
}

func (_m *MockUserService) Authenticate(ctx context.Context, username, password string) (*user.User, error) {
	ret := _m.Called(ctx, username, password)
	var r0 *user.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*user.User)
	}
	return r0, ret.Error(1)
}

func (_m *MockUserService) Get(ctx context.Context, userID int64) (*user.User, error) {
	ret := _m.Called(ctx, userID)
	var r0 *user.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*user.User)
	}
	return r0, ret.Error(1)
}

func (_m *MockUserService) Register(ctx context.Context, u *user.User, password string) error {
	return _m.Called(ctx, u, password).Error(0)
}

var _ user.Service = (*MockUserService)(nil)

type MockCustomerService struct {
	mock.Mock
}

func (_m *MockCustomerService) Create(ctx context.Context, req *customer.CreateRequest) (*customer.Customer, error) {
	ret := _m.Called(ctx, req)

	var r0 *customer.Customer
	if rf, ok := ret.Get(0).(func(context.Context, *customer.CreateRequest) *customer.Customer); ok {
		r0 = rf(ctx, req)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (_m *MockCustomerService) Get(ctx context.Context, customerID int64) (*customer.Customer, error) {
	ret := _m.Called(ctx, customerID)
	var r0 *customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (_m *MockCustomerService) List(ctx context.Context) ([]*customer.Customer, error) {
	ret := _m.Called(ctx)
	var r0 []*customer.Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*customer.Customer)
	}
	return r0, ret.Error(1)
}

func (_m *MockCustomerService) ListReference(ctx context.Context, kind customer.ReferenceKind) ([]customer.ReferenceItem, error) {
	ret := _m.Called(ctx, kind)
	var r0 []customer.ReferenceItem
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]customer.ReferenceItem)
	}
	return r0, ret.Error(1)
}

var _ customer.Service = (*MockCustomerService)(nil)
