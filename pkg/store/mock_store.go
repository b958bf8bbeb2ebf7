package store

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of Store for testing.
// It uses testify/mock to allow flexible behavior configuration in tests.
type MockStore struct {
	mock.Mock
}

// Get mocks the Get method.
func (m *MockStore) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

// Set mocks the Set method.
func (m *MockStore) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

// Delete mocks the Delete method.
func (m *MockStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
