package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockSweepQueue is a mock implementation of jobs.SweepQueue
type MockSweepQueue struct {
	mock.Mock
}

func (m *MockSweepQueue) EnqueueSweep(profileID int64) error {
	args := m.Called(profileID)
	return args.Error(0)
}
