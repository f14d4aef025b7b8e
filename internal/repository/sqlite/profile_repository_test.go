package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/cheatcodes/internal/models"
	"github.com/vytor/cheatcodes/internal/repository"
	"github.com/vytor/cheatcodes/internal/repository/sqlite"
	"github.com/vytor/cheatcodes/internal/testutil"
)

type ProfileRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.ProfileRepository
}

func (s *ProfileRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewProfileRepository(s.db)
}

func (s *ProfileRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *ProfileRepositorySuite) TestUpsert_IsIdempotent() {
	ctx := context.Background()

	first, err := s.repo.Upsert(ctx, "jordan")
	s.Require().NoError(err)
	s.Assert().Greater(first.ID, int64(0))
	s.Assert().Nil(first.LastSweepAt)

	second, err := s.repo.Upsert(ctx, "jordan")
	s.Require().NoError(err)
	s.Assert().Equal(first.ID, second.ID)

	profiles, err := s.repo.List(ctx)
	s.Require().NoError(err)
	s.Assert().Len(profiles, 1)
}

func (s *ProfileRepositorySuite) TestGet_NotFound() {
	p, err := s.repo.Get(context.Background(), 99999)
	s.Assert().NoError(err)
	s.Assert().Nil(p)
}

func (s *ProfileRepositorySuite) TestUpdateSweep() {
	ctx := context.Background()
	p, err := s.repo.Upsert(ctx, "sam")
	s.Require().NoError(err)

	sweptAt := time.Date(2025, time.March, 3, 4, 0, 0, 0, time.UTC)
	s.Require().NoError(s.repo.UpdateSweep(ctx, p.ID, sweptAt))

	got, err := s.repo.Get(ctx, p.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got.LastSweepAt)
	s.Assert().True(sweptAt.Equal(*got.LastSweepAt))
}

func (s *ProfileRepositorySuite) TestDelete_RemovesState() {
	ctx := context.Background()
	p, err := s.repo.Upsert(ctx, "riley")
	s.Require().NoError(err)

	states := sqlite.NewStateRepository(s.db)
	st := models.NewUserState(time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC))
	st.Power.Techniques["t1"] = models.TechniquePower{
		ID:        "t1",
		Name:      "Box breathing",
		Section:   models.SectionPreGame,
		CreatedAt: st.Power.AccountCreatedAt,
	}
	ss := st.Sections[models.SectionPreGame]
	ss.Inventory.Entries = []models.SlotEntry{{TechniqueID: "t1", State: models.Active()}}
	st.Sections[models.SectionPreGame] = ss
	s.Require().NoError(states.Save(ctx, p.ID, st))

	s.Require().NoError(s.repo.Delete(ctx, p.ID))

	got, err := s.repo.Get(ctx, p.ID)
	s.Require().NoError(err)
	s.Assert().Nil(got)

	loaded, err := states.Load(ctx, p.ID)
	s.Require().NoError(err)
	s.Assert().Nil(loaded)

	var n int
	s.Require().NoError(s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM techniques`).Scan(&n))
	s.Assert().Zero(n)
}

func TestProfileRepositorySuite(t *testing.T) {
	suite.Run(t, new(ProfileRepositorySuite))
}
