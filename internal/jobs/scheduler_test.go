package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/cheatcodes/internal/jobs"
	"github.com/vytor/cheatcodes/internal/models"
	"github.com/vytor/cheatcodes/internal/testutil/mocks"
)

func TestSweepAll_QueuesEveryProfile(t *testing.T) {
	profiles := new(mocks.MockProfileRepository)
	queue := new(mocks.MockSweepQueue)
	profiles.On("List", mock.Anything).Return([]models.Profile{{ID: 1}, {ID: 2}, {ID: 5}}, nil)
	queue.On("EnqueueSweep", mock.AnythingOfType("int64")).Return(nil)

	n, err := jobs.NewScheduler(profiles, queue, time.Hour).SweepAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	queue.AssertCalled(t, "EnqueueSweep", int64(5))
	queue.AssertNumberOfCalls(t, "EnqueueSweep", 3)
}

func TestSweepAll_StopsOnQueueError(t *testing.T) {
	profiles := new(mocks.MockProfileRepository)
	queue := new(mocks.MockSweepQueue)
	profiles.On("List", mock.Anything).Return([]models.Profile{{ID: 1}, {ID: 2}}, nil)
	queue.On("EnqueueSweep", int64(1)).Return(nil)
	queue.On("EnqueueSweep", int64(2)).Return(errors.New("stopped"))

	n, err := jobs.NewScheduler(profiles, queue, time.Hour).SweepAll(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, n)
}

func TestSweepAll_ListError(t *testing.T) {
	profiles := new(mocks.MockProfileRepository)
	queue := new(mocks.MockSweepQueue)
	profiles.On("List", mock.Anything).Return(nil, errors.New("db gone"))

	_, err := jobs.NewScheduler(profiles, queue, time.Hour).SweepAll(context.Background())
	assert.Error(t, err)
	queue.AssertNotCalled(t, "EnqueueSweep", mock.Anything)
}

func TestRun_SweepsImmediatelyAndStopsOnCancel(t *testing.T) {
	profiles := new(mocks.MockProfileRepository)
	queue := new(mocks.MockSweepQueue)
	ctx, cancel := context.WithCancel(context.Background())
	profiles.On("List", mock.Anything).Return([]models.Profile{{ID: 9}}, nil)
	queue.On("EnqueueSweep", int64(9)).Return(nil).Run(func(mock.Arguments) { cancel() })

	done := make(chan struct{})
	go func() {
		jobs.NewScheduler(profiles, queue, time.Hour).Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	queue.AssertNumberOfCalls(t, "EnqueueSweep", 1)
}
