package repository

import (
	"context"
	"time"

	"github.com/vytor/cheatcodes/internal/models"
)

// ProfileRepository handles profile data access
type ProfileRepository interface {
	Get(ctx context.Context, id int64) (*models.Profile, error)
	List(ctx context.Context) ([]models.Profile, error)
	Upsert(ctx context.Context, username string) (*models.Profile, error)
	UpdateSweep(ctx context.Context, id int64, t time.Time) error
	Delete(ctx context.Context, id int64) error
}

// StateRepository loads and saves a profile's whole engine state. Load
// returns nil, nil when nothing has been saved yet.
type StateRepository interface {
	Load(ctx context.Context, profileID int64) (*models.UserState, error)
	Save(ctx context.Context, profileID int64, st models.UserState) error
}

// TechniqueRepository serves technique listings straight from storage.
type TechniqueRepository interface {
	List(ctx context.Context, filter models.TechniqueFilter) ([]models.ManagedTechnique, error)
	Count(ctx context.Context, filter models.TechniqueFilter) (int, error)
	UsageHistory(ctx context.Context, profileID int64, techniqueID string) ([]models.UsageEntry, error)
}
