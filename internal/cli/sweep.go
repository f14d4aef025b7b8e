package cli

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/vytor/cheatcodes/internal/clock"
	"github.com/vytor/cheatcodes/internal/config"
	"github.com/vytor/cheatcodes/internal/db"
	"github.com/vytor/cheatcodes/internal/engine"
	"github.com/vytor/cheatcodes/internal/logger"
	"github.com/vytor/cheatcodes/internal/models"
	"github.com/vytor/cheatcodes/internal/repository/sqlite"
	"github.com/vytor/cheatcodes/internal/services"
	"golang.org/x/sync/errgroup"
)

func newSweepCmd() *cobra.Command {
	var (
		profileID   int64
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run the maintenance sweep now",
		Long:  "Sweep settles decay, re-evaluates maintenance colors and runs the daily consistency check for one profile, or for every profile when --profile is omitted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if concurrency < 1 {
				return fmt.Errorf("--concurrency must be at least 1")
			}
			cfg := config.Load()
			if err := cfg.Validate(); err != nil {
				return err
			}
			loc, _ := cfg.Location()
			logger.SetDefault(logger.New(
				logger.WithOutput(cmd.ErrOrStderr()),
				logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
			))

			database, err := db.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer database.Close()

			profiles := sqlite.NewProfileRepository(database.DB)
			states := sqlite.NewStateRepository(database.DB)
			coach := services.NewCoachService(
				profiles,
				states,
				sqlite.NewTechniqueRepository(database.DB),
				services.NewLogNotifier(),
				clock.System{Location: loc},
				rand.New(rand.NewSource(cfg.Seed())),
				uuid.NewString,
			)

			ctx := cmd.Context()
			var targets []models.Profile
			if profileID != 0 {
				targets = []models.Profile{{ID: profileID}}
			} else if targets, err = profiles.List(ctx); err != nil {
				return err
			}

			results := make([]*engine.SweepOutcome, len(targets))
			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(concurrency)
			for i, p := range targets {
				i, p := i, p
				g.Go(func() error {
					res, err := coach.Sweep(gctx, p.ID)
					if err != nil {
						return fmt.Errorf("sweep profile %d: %w", p.ID, err)
					}
					results[i] = res
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, p := range targets {
				res := results[i]
				fmt.Fprintf(out, "profile %d: decayed=%d warned=%v demoted=%v radar=%d\n",
					p.ID, len(res.Decayed), res.Warned, res.Demoted, res.Radar.RadarScore)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&profileID, "profile", 0, "sweep only this profile id")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "profiles swept in parallel")
	return cmd
}
