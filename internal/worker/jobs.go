package worker

import (
	"context"
	"fmt"

	"github.com/vytor/cheatcodes/internal/engine"
	"github.com/vytor/cheatcodes/internal/logger"
)

// Sweeper runs the maintenance sweep of one profile.
type Sweeper interface {
	Sweep(ctx context.Context, profileID int64) (*engine.SweepOutcome, error)
}

// SweepJob runs the daily maintenance sweep for one profile.
type SweepJob struct {
	Sweeper   Sweeper
	ProfileID int64
}

func (j *SweepJob) Name() string { return fmt.Sprintf("sweep_profile_%d", j.ProfileID) }

func (j *SweepJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("profile_id", j.ProfileID)
	log.Debug("starting maintenance sweep")

	out, err := j.Sweeper.Sweep(ctx, j.ProfileID)
	if err != nil {
		return err
	}
	log.Debug("radar after sweep: score=%d, full_green=%t", out.Radar.RadarScore, out.Radar.IsFullRadarGreen)
	return nil
}
