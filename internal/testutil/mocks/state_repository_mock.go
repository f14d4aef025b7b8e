package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/cheatcodes/internal/models"
)

// MockStateRepository is a mock implementation of repository.StateRepository
type MockStateRepository struct {
	mock.Mock
}

func (m *MockStateRepository) Load(ctx context.Context, profileID int64) (*models.UserState, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserState), args.Error(1)
}

func (m *MockStateRepository) Save(ctx context.Context, profileID int64, st models.UserState) error {
	args := m.Called(ctx, profileID, st)
	return args.Error(0)
}
