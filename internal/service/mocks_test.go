package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"photovault/internal/model"
)

type mockFileStore struct {
	mock.Mock
}

func (m *mockFileStore) Insert(ctx context.Context, rec model.FileRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *mockFileStore) FindByID(ctx context.Context, id string) (model.FileRecord, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.FileRecord), args.Error(1)
}

func (m *mockFileStore) MarkTrashed(ctx context.Context, id string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *mockFileStore) ClearTrashed(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockFileStore) DeleteTrashed(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockFileStore) ListActive(ctx context.Context, ownerID string) ([]model.FileRecord, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FileRecord), args.Error(1)
}

func (m *mockFileStore) ListTrashed(ctx context.Context, ownerID string) ([]model.FileRecord, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FileRecord), args.Error(1)
}

func (m *mockFileStore) ListExpired(ctx context.Context, cutoff time.Time, limit int) ([]model.FileRecord, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FileRecord), args.Error(1)
}

type mockGrantStore struct {
	mock.Mock
}

func (m *mockGrantStore) Grant(ctx context.Context, fileID string, userID string) error {
	args := m.Called(ctx, fileID, userID)
	return args.Error(0)
}

func (m *mockGrantStore) Revoke(ctx context.Context, fileID string, userID string) error {
	args := m.Called(ctx, fileID, userID)
	return args.Error(0)
}

func (m *mockGrantStore) Exists(ctx context.Context, fileID string, userID string) (bool, error) {
	args := m.Called(ctx, fileID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockGrantStore) ListForFile(ctx context.Context, fileID string) ([]model.PermissionGrant, error) {
	args := m.Called(ctx, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PermissionGrant), args.Error(1)
}

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) FindByID(ctx context.Context, id string) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockUserStore) FindByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *mockUserStore) Create(ctx context.Context, u model.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

type mockTokenStore struct {
	mock.Mock
}

func (m *mockTokenStore) Store(ctx context.Context, token string, userID string, expiresAt time.Time) error {
	args := m.Called(ctx, token, userID, expiresAt)
	return args.Error(0)
}

func (m *mockTokenStore) Validate(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

func (m *mockTokenStore) Revoke(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}
