package customer

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (_m *MockRepository) Save(ctx context.Context, customer *Customer) error {
	ret := _m.Called(ctx, customer)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *Customer) error); ok {
		r0 = rf(ctx, customer)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

func (_m *MockRepository) FindByID(ctx context.Context, customerID int64) (*Customer, error) {
	ret := _m.Called(ctx, customerID)

	var r0 *Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*Customer)
	}

	return r0, ret.Error(1)
}

func (_m *MockRepository) FindAll(ctx context.Context) ([]*Customer, error) {
	ret := _m.Called(ctx)

	var r0 []*Customer
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*Customer)
	}

	return r0, ret.Error(1)
}

var _ Repository = (*MockRepository)(nil)

type MockReferenceRepository struct {
	mock.Mock
}

func (_m *MockReferenceRepository) List(ctx context.Context, kind ReferenceKind) ([]ReferenceItem, error) {
	ret := _m.Called(ctx, kind)

	var r0 []ReferenceItem
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]ReferenceItem)
	}

	return r0, ret.Error(1)
}

func (_m *MockReferenceRepository) Exists(ctx context.Context, kind ReferenceKind, id int64) (bool, error) {
	ret := _m.Called(ctx, kind, id)
	return ret.Bool(0), ret.Error(1)
}

var _ ReferenceRepository = (*MockReferenceRepository)(nil)
