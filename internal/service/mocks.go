package service

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/yakoovad/groups-service/internal/repository"
)

type MockTransactor struct {
	mock.Mock
}

func (m *MockTransactor) WithinTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type MockGroupRepository struct {
	mock.Mock
}

func (m *MockGroupRepository) Create(ctx context.Context, group *repository.Group) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockGroupRepository) Get(ctx context.Context, groupID string) (*repository.Group, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Group), args.Error(1)
}

func (m *MockGroupRepository) ListByTeam(ctx context.Context, teamID string) ([]*repository.Group, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.Group), args.Error(1)
}

func (m *MockGroupRepository) UpdateName(ctx context.Context, groupID, name string) (*repository.Group, error) {
	args := m.Called(ctx, groupID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Group), args.Error(1)
}

func (m *MockGroupRepository) Delete(ctx context.Context, groupID string) error {
	args := m.Called(ctx, groupID)
	return args.Error(0)
}

type MockGroupUserRepository struct {
	mock.Mock
}

func (m *MockGroupUserRepository) Add(ctx context.Context, membership *repository.GroupUser) error {
	args := m.Called(ctx, membership)
	return args.Error(0)
}

func (m *MockGroupUserRepository) Remove(ctx context.Context, groupID, userID string) error {
	args := m.Called(ctx, groupID, userID)
	return args.Error(0)
}

func (m *MockGroupUserRepository) DeleteForGroup(ctx context.Context, groupID string) error {
	args := m.Called(ctx, groupID)
	return args.Error(0)
}

func (m *MockGroupUserRepository) ListMembers(ctx context.Context, groupID, teamID, nameQuery string) ([]*repository.Member, error) {
	args := m.Called(ctx, groupID, teamID, nameQuery)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.Member), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Get(ctx context.Context, userID string) (*repository.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.User), args.Error(1)
}
