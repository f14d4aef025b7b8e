package services_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/cheatcodes/internal/errors"
	"github.com/vytor/cheatcodes/internal/models"
	"github.com/vytor/cheatcodes/internal/services"
	"github.com/vytor/cheatcodes/internal/testutil/mocks"
)

func TestCreateProfile_SeedsStateOnce(t *testing.T) {
	ctx := context.Background()
	profiles := new(mocks.MockProfileRepository)
	states := new(mocks.MockStateRepository)
	created := time.Date(2025, time.May, 1, 12, 0, 0, 0, time.UTC)
	p := &models.Profile{ID: 3, Username: "jo", CreatedAt: created}

	profiles.On("Upsert", mock.Anything, "jo").Return(p, nil)
	states.On("Load", mock.Anything, int64(3)).Return(nil, nil).Once()
	states.On("Save", mock.Anything, int64(3), mock.MatchedBy(func(st models.UserState) bool {
		return st.Power.AccountCreatedAt.Equal(created) && len(st.Sections) == len(models.Sections)
	})).Return(nil).Once()

	svc := services.NewProfileService(profiles, states)
	got, err := svc.CreateProfile(ctx, "  jo ")
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.ID)

	// A second create finds the stored state and leaves it alone.
	existing := models.NewUserState(created)
	states.On("Load", mock.Anything, int64(3)).Return(&existing, nil).Once()
	_, err = svc.CreateProfile(ctx, "jo")
	require.NoError(t, err)

	states.AssertNumberOfCalls(t, "Save", 1)
	profiles.AssertExpectations(t)
}

func TestCreateProfile_EmptyUsername(t *testing.T) {
	svc := services.NewProfileService(new(mocks.MockProfileRepository), new(mocks.MockStateRepository))
	_, err := svc.CreateProfile(context.Background(), "   ")
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestGetProfile(t *testing.T) {
	ctx := context.Background()
	profiles := new(mocks.MockProfileRepository)
	profiles.On("Get", mock.Anything, int64(1)).Return(&models.Profile{ID: 1}, nil)
	profiles.On("Get", mock.Anything, int64(2)).Return(nil, nil)
	profiles.On("Get", mock.Anything, int64(3)).Return(nil, stderrors.New("locked"))
	svc := services.NewProfileService(profiles, new(mocks.MockStateRepository))

	p, err := svc.GetProfile(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)

	_, err = svc.GetProfile(ctx, 2)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNotFound))

	_, err = svc.GetProfile(ctx, 3)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInternal))
}
