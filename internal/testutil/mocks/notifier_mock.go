package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/cheatcodes/internal/models"
)

// MockNotifier is a mock implementation of services.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, profileID int64, events []models.Event) error {
	args := m.Called(ctx, profileID, events)
	return args.Error(0)
}
