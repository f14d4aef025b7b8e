package services

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/vytor/cheatcodes/internal/clock"
	"github.com/vytor/cheatcodes/internal/engine"
	"github.com/vytor/cheatcodes/internal/errors"
	"github.com/vytor/cheatcodes/internal/hold"
	"github.com/vytor/cheatcodes/internal/logger"
	"github.com/vytor/cheatcodes/internal/models"
	"github.com/vytor/cheatcodes/internal/power"
	"github.com/vytor/cheatcodes/internal/repository"
	"github.com/vytor/cheatcodes/internal/slots"
)

// CoachService runs engine operations against stored user state: load,
// apply, save, then notify.
type CoachService interface {
	UseTechnique(ctx context.Context, profileID int64, in engine.UseInput) (*engine.UseOutcome, error)
	CreateTechnique(ctx context.Context, profileID int64, section models.Section, name string, confirmMerge bool) (*engine.CreateResult, error)
	ArchiveTechnique(ctx context.Context, profileID int64, techniqueID string) (*engine.ChangeResult, error)
	ReactivateTechnique(ctx context.Context, profileID int64, techniqueID string) (*engine.ChangeResult, error)
	Radar(ctx context.Context, profileID int64) (*models.RadarState, error)
	Holds(ctx context.Context, profileID int64) ([]HoldSummary, error)
	ListTechniques(ctx context.Context, filter models.TechniqueFilter) ([]models.ManagedTechnique, int, error)
	UsageHistory(ctx context.Context, profileID int64, techniqueID string) ([]models.UsageEntry, error)
	Sweep(ctx context.Context, profileID int64) (*engine.SweepOutcome, error)
}

// HoldSummary is the green-hold view of one section.
type HoldSummary struct {
	Section   models.Section           `json:"section"`
	Active    bool                     `json:"active"`
	StartedAt *time.Time               `json:"started_at,omitempty"`
	Current   time.Duration            `json:"current"`
	Announced []string                 `json:"announced"`
	Longest   *models.GreenHoldRecord  `json:"longest,omitempty"`
	History   []models.GreenHoldRecord `json:"history"`
}

type coachService struct {
	profileRepo   repository.ProfileRepository
	stateRepo     repository.StateRepository
	techniqueRepo repository.TechniqueRepository
	notifier      Notifier
	clock         clock.Clock
	rng           power.RandSource
	newID         engine.IDFunc

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewCoachService creates a new CoachService. rng is shared by every
// profile and is guarded internally.
func NewCoachService(
	profileRepo repository.ProfileRepository,
	stateRepo repository.StateRepository,
	techniqueRepo repository.TechniqueRepository,
	notifier Notifier,
	clk clock.Clock,
	rng power.RandSource,
	newID engine.IDFunc,
) CoachService {
	if notifier == nil {
		notifier = NewLogNotifier()
	}
	return &coachService{
		profileRepo:   profileRepo,
		stateRepo:     stateRepo,
		techniqueRepo: techniqueRepo,
		notifier:      notifier,
		clock:         clk,
		rng:           &lockedRand{src: rng},
		newID:         newID,
		locks:         map[int64]*sync.Mutex{},
	}
}

type lockedRand struct {
	mu  sync.Mutex
	src power.RandSource
}

func (r *lockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.src.Intn(n)
}

// lock serializes read-modify-write cycles of one profile's state.
func (s *coachService) lock(profileID int64) func() {
	s.mu.Lock()
	l, ok := s.locks[profileID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[profileID] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

func (s *coachService) loadState(ctx context.Context, profileID int64) (models.UserState, error) {
	log := logger.FromContext(ctx)

	profile, err := s.profileRepo.Get(ctx, profileID)
	if err != nil {
		log.Error("failed to get profile %d: %v", profileID, err)
		return models.UserState{}, errors.NewInternalError(err)
	}
	if profile == nil {
		return models.UserState{}, errors.NewNotFoundError("profile", profileID)
	}

	st, err := s.stateRepo.Load(ctx, profileID)
	if err != nil {
		log.Error("failed to load state for profile %d: %v", profileID, err)
		return models.UserState{}, errors.NewInternalError(err)
	}
	if st == nil {
		log.Debug("no stored state for profile %d, starting fresh", profileID)
		return models.NewUserState(profile.CreatedAt), nil
	}
	return *st, nil
}

func (s *coachService) saveState(ctx context.Context, profileID int64, st models.UserState) error {
	if err := s.stateRepo.Save(ctx, profileID, st); err != nil {
		logger.FromContext(ctx).Error("failed to save state for profile %d: %v", profileID, err)
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *coachService) notify(ctx context.Context, profileID int64, events []models.Event) {
	if len(events) == 0 {
		return
	}
	if err := s.notifier.Notify(ctx, profileID, events); err != nil {
		logger.FromContext(ctx).Warn("failed to deliver %d events for profile %d: %v", len(events), profileID, err)
	}
}

// engineError passes AppErrors through and wraps anything else.
func engineError(err error) error {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return errors.NewInternalError(err)
}

func (s *coachService) UseTechnique(ctx context.Context, profileID int64, in engine.UseInput) (*engine.UseOutcome, error) {
	log := logger.FromContext(ctx).WithFields(map[string]any{"profile_id": profileID, "technique_id": in.TechniqueID})
	log.Debug("using technique in %s", in.Section)

	unlock := s.lock(profileID)
	defer unlock()

	st, err := s.loadState(ctx, profileID)
	if err != nil {
		return nil, err
	}
	next, res, err := engine.ApplyUseAndRescore(st, in, s.clock.Now(), s.rng)
	if err != nil {
		log.Debug("use rejected: %v", err)
		return nil, engineError(err)
	}
	if res.Status == engine.UseApplied {
		if err := s.saveState(ctx, profileID, next); err != nil {
			return nil, err
		}
		log.Info("use applied: +%d (%s), power=%d, color=%s", res.AmountGained, res.Kind, res.Power, res.After.Color)
	} else {
		log.Info("use not applied: %s", res.Status)
	}
	s.notify(ctx, profileID, res.Events)
	return &res, nil
}

func (s *coachService) CreateTechnique(ctx context.Context, profileID int64, section models.Section, name string, confirmMerge bool) (*engine.CreateResult, error) {
	log := logger.FromContext(ctx).WithField("profile_id", profileID)
	log.Debug("creating technique in %s: name=%q, confirm_merge=%t", section, name, confirmMerge)

	unlock := s.lock(profileID)
	defer unlock()

	st, err := s.loadState(ctx, profileID)
	if err != nil {
		return nil, err
	}
	next, res, err := engine.CreateOrMerge(st, section, name, confirmMerge, s.newID, s.clock.Now())
	if err != nil {
		return nil, engineError(err)
	}
	if res.Created || res.Merged {
		if err := s.saveState(ctx, profileID, next); err != nil {
			return nil, err
		}
	}
	log.Info("create outcome: %s (created=%t, merged=%t, technique_id=%s)", res.Outcome.Kind, res.Created, res.Merged, res.TechniqueID)
	s.notify(ctx, profileID, res.Events)
	return &res, nil
}

func (s *coachService) ArchiveTechnique(ctx context.Context, profileID int64, techniqueID string) (*engine.ChangeResult, error) {
	return s.changeSlot(ctx, profileID, techniqueID, "archive", engine.Archive)
}

func (s *coachService) ReactivateTechnique(ctx context.Context, profileID int64, techniqueID string) (*engine.ChangeResult, error) {
	return s.changeSlot(ctx, profileID, techniqueID, "reactivate", engine.Reactivate)
}

func (s *coachService) changeSlot(
	ctx context.Context,
	profileID int64,
	techniqueID string,
	action string,
	change func(models.UserState, string, time.Time) (models.UserState, engine.ChangeResult, error),
) (*engine.ChangeResult, error) {
	log := logger.FromContext(ctx).WithFields(map[string]any{"profile_id": profileID, "technique_id": techniqueID})
	log.Debug("%s technique", action)

	unlock := s.lock(profileID)
	defer unlock()

	st, err := s.loadState(ctx, profileID)
	if err != nil {
		return nil, err
	}
	next, res, err := change(st, techniqueID, s.clock.Now())
	if err != nil {
		return nil, engineError(err)
	}
	if res.Outcome.Kind == slots.ChangeApplied {
		if err := s.saveState(ctx, profileID, next); err != nil {
			return nil, err
		}
	}
	log.Info("%s outcome: %s", action, res.Outcome.Kind)
	s.notify(ctx, profileID, res.Events)
	return &res, nil
}

func (s *coachService) Radar(ctx context.Context, profileID int64) (*models.RadarState, error) {
	logger.FromContext(ctx).Debug("getting radar: profile_id=%d", profileID)

	st, err := s.loadState(ctx, profileID)
	if err != nil {
		return nil, err
	}
	r, err := engine.Radar(st)
	if err != nil {
		return nil, engineError(err)
	}
	return &r, nil
}

func (s *coachService) Holds(ctx context.Context, profileID int64) ([]HoldSummary, error) {
	logger.FromContext(ctx).Debug("getting holds: profile_id=%d", profileID)

	st, err := s.loadState(ctx, profileID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	out := make([]HoldSummary, 0, len(models.Sections))
	for _, section := range models.Sections {
		b := st.Sections[section].Hold
		out = append(out, HoldSummary{
			Section:   section,
			Active:    b.Timer.IsActive,
			StartedAt: b.Timer.StartedAt,
			Current:   hold.Duration(b, now),
			Announced: b.Announced,
			Longest:   b.Longest,
			History:   b.History,
		})
	}
	return out, nil
}

func (s *coachService) ListTechniques(ctx context.Context, filter models.TechniqueFilter) ([]models.ManagedTechnique, int, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing techniques: profile_id=%d, section=%s, state=%s", filter.ProfileID, filter.Section, filter.State)

	if filter.Section != "" && !filter.Section.IsValid() {
		return nil, 0, errors.NewInvalidInputError("section", string(filter.Section))
	}
	if filter.State != "" && !filter.State.IsValid() {
		return nil, 0, errors.NewInvalidInputError("state", string(filter.State))
	}

	techniques, err := s.techniqueRepo.List(ctx, filter)
	if err != nil {
		log.Error("failed to list techniques: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}
	total, err := s.techniqueRepo.Count(ctx, filter)
	if err != nil {
		log.Error("failed to count techniques: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}
	return techniques, total, nil
}

func (s *coachService) UsageHistory(ctx context.Context, profileID int64, techniqueID string) ([]models.UsageEntry, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting usage history: profile_id=%d, technique_id=%s", profileID, techniqueID)

	entries, err := s.techniqueRepo.UsageHistory(ctx, profileID, techniqueID)
	if err != nil {
		log.Error("failed to get usage history: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if len(entries) == 0 {
		n, err := s.techniqueRepo.Count(ctx, models.TechniqueFilter{ProfileID: profileID, TechniqueID: techniqueID})
		if err != nil {
			log.Error("failed to count techniques: %v", err)
			return nil, errors.NewInternalError(err)
		}
		if n == 0 {
			return nil, errors.NewNotFoundError("technique", techniqueID)
		}
	}
	return entries, nil
}

func (s *coachService) Sweep(ctx context.Context, profileID int64) (*engine.SweepOutcome, error) {
	log := logger.FromContext(ctx).WithField("profile_id", profileID)
	log.Debug("running maintenance sweep")

	unlock := s.lock(profileID)
	defer unlock()

	st, err := s.loadState(ctx, profileID)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	next, res, err := engine.Sweep(st, now)
	if err != nil {
		return nil, engineError(err)
	}
	if err := s.saveState(ctx, profileID, next); err != nil {
		return nil, err
	}
	if err := s.profileRepo.UpdateSweep(ctx, profileID, now); err != nil {
		log.Warn("failed to record sweep time: %v", err)
	}
	log.Info("sweep done: decayed=%d, warned=%d, demoted=%d", len(res.Decayed), len(res.Warned), len(res.Demoted))
	s.notify(ctx, profileID, res.Events)
	return &res, nil
}
