package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/cheatcodes/internal/models"
)

// MockTechniqueRepository is a mock implementation of repository.TechniqueRepository
type MockTechniqueRepository struct {
	mock.Mock
}

func (m *MockTechniqueRepository) List(ctx context.Context, filter models.TechniqueFilter) ([]models.ManagedTechnique, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ManagedTechnique), args.Error(1)
}

func (m *MockTechniqueRepository) Count(ctx context.Context, filter models.TechniqueFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockTechniqueRepository) UsageHistory(ctx context.Context, profileID int64, techniqueID string) ([]models.UsageEntry, error) {
	args := m.Called(ctx, profileID, techniqueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UsageEntry), args.Error(1)
}
