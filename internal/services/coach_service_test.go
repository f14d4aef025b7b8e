package services_test

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vytor/cheatcodes/internal/clock"
	"github.com/vytor/cheatcodes/internal/engine"
	"github.com/vytor/cheatcodes/internal/errors"
	"github.com/vytor/cheatcodes/internal/models"
	"github.com/vytor/cheatcodes/internal/services"
	"github.com/vytor/cheatcodes/internal/slots"
	"github.com/vytor/cheatcodes/internal/testutil/mocks"
)

var loc = time.FixedZone("coach", 2*3600)

type zeroRand struct{}

func (zeroRand) Intn(int) int { return 0 }

type CoachServiceSuite struct {
	suite.Suite
	ctx        context.Context
	profiles   *mocks.MockProfileRepository
	states     *mocks.MockStateRepository
	techniques *mocks.MockTechniqueRepository
	notifier   *mocks.MockNotifier
	clock      *clock.Fixed
	svc        services.CoachService
	profile    *models.Profile
}

func (s *CoachServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.profiles = new(mocks.MockProfileRepository)
	s.states = new(mocks.MockStateRepository)
	s.techniques = new(mocks.MockTechniqueRepository)
	s.notifier = new(mocks.MockNotifier)
	s.clock = clock.NewFixed(time.Date(2025, time.May, 5, 9, 0, 0, 0, loc))
	s.profile = &models.Profile{ID: 1, Username: "alex", CreatedAt: time.Date(2025, time.May, 4, 8, 0, 0, 0, loc)}

	n := 0
	newID := func() string {
		n++
		return fmt.Sprintf("tech-%d", n)
	}
	s.svc = services.NewCoachService(s.profiles, s.states, s.techniques, s.notifier, s.clock, zeroRand{}, newID)
}

func (s *CoachServiceSuite) TearDownTest() {
	s.profiles.AssertExpectations(s.T())
	s.states.AssertExpectations(s.T())
	s.notifier.AssertExpectations(s.T())
}

func (s *CoachServiceSuite) expectProfile() {
	s.profiles.On("Get", mock.Anything, int64(1)).Return(s.profile, nil)
}

// stateWithUses returns a state where technique "a" was used n times today.
func (s *CoachServiceSuite) stateWithUses(n int) *models.UserState {
	st := models.NewUserState(s.profile.CreatedAt)
	now := s.clock.Now()
	for i := 0; i < n; i++ {
		var err error
		st, _, err = engine.ApplyUseAndRescore(st, engine.UseInput{TechniqueID: "a", Name: "Deep breath", Section: models.SectionPreGame}, now.Add(-time.Duration(n-i)*time.Minute), zeroRand{})
		s.Require().NoError(err)
	}
	return &st
}

func hasKind(kind models.EventKind) any {
	return mock.MatchedBy(func(events []models.Event) bool {
		for _, e := range events {
			if e.Kind == kind {
				return true
			}
		}
		return false
	})
}

func (s *CoachServiceSuite) TestUseTechnique_FirstUseSavesFreshState() {
	s.expectProfile()
	s.states.On("Load", mock.Anything, int64(1)).Return(nil, nil)
	s.states.On("Save", mock.Anything, int64(1), mock.MatchedBy(func(st models.UserState) bool {
		t, ok := st.Power.Techniques["a"]
		return ok && t.Power == 30 && st.Power.AccountCreatedAt.Equal(s.profile.CreatedAt)
	})).Return(nil)

	out, err := s.svc.UseTechnique(s.ctx, 1, engine.UseInput{TechniqueID: "a", Name: "Deep breath", Section: models.SectionPreGame})
	s.Require().NoError(err)
	s.Assert().Equal(engine.UseApplied, out.Status)
	s.Assert().True(out.Created)
	s.Assert().Equal(2, out.CapRemaining)
	s.notifier.AssertNotCalled(s.T(), "Notify", mock.Anything, mock.Anything, mock.Anything)
}

func (s *CoachServiceSuite) TestUseTechnique_CapReachedIsNotSaved() {
	s.expectProfile()
	s.states.On("Load", mock.Anything, int64(1)).Return(s.stateWithUses(3), nil)
	s.notifier.On("Notify", mock.Anything, int64(1), hasKind(models.EventDailyCapReached)).Return(nil)

	out, err := s.svc.UseTechnique(s.ctx, 1, engine.UseInput{TechniqueID: "a", Section: models.SectionPreGame})
	s.Require().NoError(err)
	s.Assert().Equal(engine.UseCapReached, out.Status)
	s.states.AssertNotCalled(s.T(), "Save", mock.Anything, mock.Anything, mock.Anything)
}

func (s *CoachServiceSuite) TestUseTechnique_NotifierFailureIsNotAnError() {
	s.expectProfile()
	s.states.On("Load", mock.Anything, int64(1)).Return(s.stateWithUses(3), nil)
	s.notifier.On("Notify", mock.Anything, int64(1), mock.Anything).Return(stderrors.New("push gateway down"))

	_, err := s.svc.UseTechnique(s.ctx, 1, engine.UseInput{TechniqueID: "a", Section: models.SectionPreGame})
	s.Assert().NoError(err)
}

func (s *CoachServiceSuite) TestUseTechnique_Errors() {
	s.Run("unknown profile", func() {
		s.profiles.On("Get", mock.Anything, int64(404)).Return(nil, nil).Once()
		_, err := s.svc.UseTechnique(s.ctx, 404, engine.UseInput{TechniqueID: "a", Section: models.SectionPreGame})
		s.Assert().True(errors.IsCode(err, errors.ErrCodeNotFound))
	})

	s.Run("invalid section", func() {
		s.profiles.On("Get", mock.Anything, int64(1)).Return(s.profile, nil).Once()
		s.states.On("Load", mock.Anything, int64(1)).Return(nil, nil).Once()
		_, err := s.svc.UseTechnique(s.ctx, 1, engine.UseInput{TechniqueID: "a", Section: "bench"})
		s.Assert().True(errors.IsCode(err, errors.ErrCodeInvalidInput))
	})

	s.Run("load failure", func() {
		s.profiles.On("Get", mock.Anything, int64(1)).Return(s.profile, nil).Once()
		s.states.On("Load", mock.Anything, int64(1)).Return(nil, stderrors.New("disk")).Once()
		_, err := s.svc.UseTechnique(s.ctx, 1, engine.UseInput{TechniqueID: "a", Section: models.SectionPreGame})
		s.Assert().True(errors.IsCode(err, errors.ErrCodeInternal))
	})

	s.Run("save failure", func() {
		s.profiles.On("Get", mock.Anything, int64(1)).Return(s.profile, nil).Once()
		s.states.On("Load", mock.Anything, int64(1)).Return(nil, nil).Once()
		s.states.On("Save", mock.Anything, int64(1), mock.Anything).Return(stderrors.New("disk")).Once()
		_, err := s.svc.UseTechnique(s.ctx, 1, engine.UseInput{TechniqueID: "a", Name: "Deep breath", Section: models.SectionPreGame})
		s.Assert().True(errors.IsCode(err, errors.ErrCodeInternal))
	})
}

func (s *CoachServiceSuite) TestCreateTechnique_MintsID() {
	s.expectProfile()
	s.states.On("Load", mock.Anything, int64(1)).Return(nil, nil)
	s.states.On("Save", mock.Anything, int64(1), mock.MatchedBy(func(st models.UserState) bool {
		_, ok := st.Power.Techniques["tech-1"]
		return ok
	})).Return(nil)

	res, err := s.svc.CreateTechnique(s.ctx, 1, models.SectionInGame, "Next play mindset", false)
	s.Require().NoError(err)
	s.Assert().True(res.Created)
	s.Assert().Equal("tech-1", res.TechniqueID)
	s.Assert().Equal(slots.CreateAllowed, res.Outcome.Kind)
}

func (s *CoachServiceSuite) TestCreateTechnique_MergeSuggestionIsNotSaved() {
	s.expectProfile()
	s.states.On("Load", mock.Anything, int64(1)).Return(s.stateWithUses(1), nil)

	res, err := s.svc.CreateTechnique(s.ctx, 1, models.SectionPreGame, "deep breath", false)
	s.Require().NoError(err)
	s.Assert().Equal(slots.CreateSuggestMerge, res.Outcome.Kind)
	s.Assert().False(res.Created)
	s.states.AssertNotCalled(s.T(), "Save", mock.Anything, mock.Anything, mock.Anything)
}

func (s *CoachServiceSuite) TestArchiveAndReactivate() {
	s.expectProfile()
	st := s.stateWithUses(1)
	s.states.On("Load", mock.Anything, int64(1)).Return(st, nil).Once()
	s.states.On("Save", mock.Anything, int64(1), mock.MatchedBy(func(st models.UserState) bool {
		return st.Sections[models.SectionPreGame].Inventory.IsArchived("a")
	})).Return(nil).Once()

	res, err := s.svc.ArchiveTechnique(s.ctx, 1, "a")
	s.Require().NoError(err)
	s.Assert().Equal(slots.ChangeApplied, res.Outcome.Kind)

	// Reactivating an active technique changes nothing.
	s.states.On("Load", mock.Anything, int64(1)).Return(st, nil).Once()
	res, err = s.svc.ReactivateTechnique(s.ctx, 1, "a")
	s.Require().NoError(err)
	s.Assert().Equal(slots.ChangeUnchanged, res.Outcome.Kind)

	s.states.On("Load", mock.Anything, int64(1)).Return(st, nil).Once()
	_, err = s.svc.ArchiveTechnique(s.ctx, 1, "missing")
	s.Assert().True(errors.IsCode(err, errors.ErrCodeNotFound))
}

func (s *CoachServiceSuite) TestSweep_SavesAndRecordsTime() {
	s.expectProfile()
	s.states.On("Load", mock.Anything, int64(1)).Return(s.stateWithUses(2), nil)
	s.states.On("Save", mock.Anything, int64(1), mock.Anything).Return(nil)
	s.profiles.On("UpdateSweep", mock.Anything, int64(1), s.clock.Now()).Return(nil)

	out, err := s.svc.Sweep(s.ctx, 1)
	s.Require().NoError(err)
	s.Assert().Empty(out.Demoted)
	s.Assert().Len(out.Radar.Sections, len(models.Sections))
}

func (s *CoachServiceSuite) TestRadarAndHolds() {
	s.expectProfile()
	s.states.On("Load", mock.Anything, int64(1)).Return(s.stateWithUses(3), nil)

	r, err := s.svc.Radar(s.ctx, 1)
	s.Require().NoError(err)
	pre := r.Section(models.SectionPreGame)
	s.Assert().Equal(80, pre.Score)
	s.Assert().Equal(models.ColorGreen, pre.ScoreColor)
	s.Assert().Equal(models.ColorOrange, pre.Color)

	holds, err := s.svc.Holds(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(holds, len(models.Sections))
	for _, h := range holds {
		s.Assert().False(h.Active)
		s.Assert().Zero(h.Current)
	}
}

func (s *CoachServiceSuite) TestListTechniques() {
	filter := models.TechniqueFilter{ProfileID: 1, State: models.SlotActive}
	s.techniques.On("List", mock.Anything, filter).Return([]models.ManagedTechnique{{TechniquePower: models.TechniquePower{ID: "a"}}}, nil)
	s.techniques.On("Count", mock.Anything, filter).Return(1, nil)

	list, total, err := s.svc.ListTechniques(s.ctx, filter)
	s.Require().NoError(err)
	s.Assert().Len(list, 1)
	s.Assert().Equal(1, total)

	_, _, err = s.svc.ListTechniques(s.ctx, models.TechniqueFilter{ProfileID: 1, State: "deleted"})
	s.Assert().True(errors.IsCode(err, errors.ErrCodeInvalidInput))
}

func (s *CoachServiceSuite) TestUsageHistory_UnknownTechnique() {
	s.techniques.On("UsageHistory", mock.Anything, int64(1), "nope").Return(nil, nil)
	s.techniques.On("Count", mock.Anything, models.TechniqueFilter{ProfileID: 1, TechniqueID: "nope"}).Return(0, nil)

	_, err := s.svc.UsageHistory(s.ctx, 1, "nope")
	s.Assert().True(errors.IsCode(err, errors.ErrCodeNotFound))
}

func TestCoachServiceSuite(t *testing.T) {
	suite.Run(t, new(CoachServiceSuite))
}
