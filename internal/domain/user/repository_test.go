package user

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (_m *MockRepository) Save(ctx context.Context, user *User) error {
	ret := _m.Called(ctx, user)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *User) error); ok {
		r0 = rf(ctx, user)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

func (_m *MockRepository) FindByID(ctx context.Context, userID int64) (*User, error) {
	ret := _m.Called(ctx, userID)

	var r0 *User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*User)
	}

	return r0, ret.Error(1)
}

func (_m *MockRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	ret := _m.Called(ctx, username)

	var r0 *User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*User)
	}

	return r0, ret.Error(1)
}

var _ Repository = (*MockRepository)(nil)
