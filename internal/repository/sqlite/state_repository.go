package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/vytor/cheatcodes/internal/logger"
	"github.com/vytor/cheatcodes/internal/models"
	"github.com/vytor/cheatcodes/internal/repository"
	"github.com/vytor/cheatcodes/internal/slots"
)

type stateRepository struct {
	db *sql.DB
}

// NewStateRepository creates a new StateRepository implementation
func NewStateRepository(db *sql.DB) repository.StateRepository {
	return &stateRepository{db: db}
}

func (r *stateRepository) Load(ctx context.Context, profileID int64) (*models.UserState, error) {
	log := logger.FromContext(ctx).WithPrefix("state_repo")
	log.Debug("loading state: profile_id=%d", profileID)

	var (
		accountCreatedAt time.Time
		totalLogs        int
		honeymoonEnded   bool
		honeymoonEndedAt *time.Time
	)
	err := r.db.QueryRowContext(ctx, `
SELECT account_created_at, total_logs_all_sections, honeymoon_ended, honeymoon_ended_at
FROM power_profiles
WHERE profile_id = ?
`, profileID).Scan(&accountCreatedAt, &totalLogs, &honeymoonEnded, &honeymoonEndedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("no state stored for profile %d", profileID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to load power profile: %v", err)
		return nil, err
	}

	st := models.NewUserState(accountCreatedAt)
	st.Power.TotalLogsAllSections = totalLogs
	st.Power.HoneymoonEnded = honeymoonEnded
	st.Power.HoneymoonEndedAt = honeymoonEndedAt

	if err := r.loadTechniques(ctx, profileID, &st); err != nil {
		log.Error("failed to load techniques: %v", err)
		return nil, err
	}
	if err := r.loadUsage(ctx, profileID, &st); err != nil {
		log.Error("failed to load usage log: %v", err)
		return nil, err
	}
	if err := r.loadSections(ctx, profileID, &st); err != nil {
		log.Error("failed to load section states: %v", err)
		return nil, err
	}
	if err := r.loadDailyCap(ctx, profileID, &st); err != nil {
		log.Error("failed to load daily cap: %v", err)
		return nil, err
	}

	log.Debug("state loaded: profile_id=%d, techniques=%d", profileID, len(st.Power.Techniques))
	return &st, nil
}

func (r *stateRepository) loadTechniques(ctx context.Context, profileID int64, st *models.UserState) error {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, section, name, power, total_logs, created_at, last_used_at, last_decay_at, fresh_bonus_used,
       slot_state, slot_state_at, is_active, archived, archived_at, reactivated_at, duplicate_ids
FROM techniques
WHERE profile_id = ?
ORDER BY section, slot_position, created_at, id
`, profileID)
	if err != nil {
		return err
	}
	defer rows.Close()

	entries := map[models.Section][]models.SlotEntry{}
	for rows.Next() {
		var (
			t          models.TechniquePower
			lastUsedAt *time.Time
			slotState  sql.NullString
			isActive   sql.NullBool
			archived   sql.NullBool
			duplicates string
			legacy     slots.LegacySlot
		)
		if err := rows.Scan(&t.ID, &t.Section, &t.Name, &t.Power, &t.TotalLogs, &t.CreatedAt, &lastUsedAt, &t.LastDecayAt, &t.FreshBonusUsed,
			&slotState, &legacy.StateAt, &isActive, &archived, &legacy.ArchivedAt, &legacy.ReactivatedAt, &duplicates); err != nil {
			return err
		}
		t.LastUsedAt = derefTime(lastUsedAt)
		st.Power.Techniques[t.ID] = t

		legacy.TechniqueID = t.ID
		if slotState.Valid {
			kind := models.SlotStateKind(slotState.String)
			legacy.State = &kind
		}
		if isActive.Valid {
			legacy.IsActive = &isActive.Bool
		}
		if archived.Valid {
			legacy.Archived = &archived.Bool
		}
		if err := fromJSON(duplicates, &legacy.DuplicateIDs); err != nil {
			return err
		}
		entries[t.Section] = append(entries[t.Section], slots.MigrateEntry(legacy, t.CreatedAt))
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for section, list := range entries {
		sec, ok := st.Sections[section]
		if !ok {
			// Unknown sections are kept so validation reports them.
			sec = models.SectionState{Progress: models.NewSectionProgress(section), Inventory: models.NewSectionInventory(section)}
		}
		sec.Inventory.Entries = list
		st.Sections[section] = sec
	}
	return nil
}

func (r *stateRepository) loadUsage(ctx context.Context, profileID int64, st *models.UserState) error {
	rows, err := r.db.QueryContext(ctx, `
SELECT u.technique_id, u.used_at, u.amount_gained, u.kind
FROM usage_log u
JOIN techniques t ON t.id = u.technique_id
WHERE t.profile_id = ?
ORDER BY u.technique_id, u.seq
`, profileID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var e models.UsageEntry
		if err := rows.Scan(&id, &e.At, &e.AmountGained, &e.Kind); err != nil {
			return err
		}
		t := st.Power.Techniques[id]
		t.UsageLog = append(t.UsageLog, e)
		st.Power.Techniques[id] = t
	}
	return rows.Err()
}

func (r *stateRepository) loadSections(ctx context.Context, profileID int64, st *models.UserState) error {
	rows, err := r.db.QueryContext(ctx, `
SELECT section, progress, hold, consistency, created_count, archived_count, merged_count
FROM section_states
WHERE profile_id = ?
`, profileID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			section                     models.Section
			progress, hold, consistency string
			created, archived, merged   int
		)
		if err := rows.Scan(&section, &progress, &hold, &consistency, &created, &archived, &merged); err != nil {
			return err
		}
		sec, ok := st.Sections[section]
		if !ok {
			sec = models.SectionState{Progress: models.NewSectionProgress(section), Inventory: models.NewSectionInventory(section)}
		}
		if err := fromJSON(progress, &sec.Progress); err != nil {
			return err
		}
		if err := fromJSON(hold, &sec.Hold); err != nil {
			return err
		}
		if err := fromJSON(consistency, &sec.Consistency); err != nil {
			return err
		}
		if sec.Progress.UniqueTechniqueIDs == nil {
			sec.Progress.UniqueTechniqueIDs = map[string]bool{}
		}
		sec.Inventory.CreatedCount = created
		sec.Inventory.ArchivedCount = archived
		sec.Inventory.MergedCount = merged
		st.Sections[section] = sec
	}
	return rows.Err()
}

func (r *stateRepository) loadDailyCap(ctx context.Context, profileID int64, st *models.UserState) error {
	var day, counts string
	err := r.db.QueryRowContext(ctx, `SELECT day, counts FROM daily_caps WHERE profile_id = ?`, profileID).Scan(&day, &counts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	st.DailyCap.Date = day
	if err := fromJSON(counts, &st.DailyCap.Counts); err != nil {
		return err
	}
	if st.DailyCap.Counts == nil {
		st.DailyCap.Counts = map[models.Section]int{}
	}
	return nil
}

// Save writes the whole state in one transaction. Techniques are upserted
// and never deleted; usage entries are appended by position.
func (r *stateRepository) Save(ctx context.Context, profileID int64, st models.UserState) error {
	log := logger.FromContext(ctx).WithPrefix("state_repo")
	log.Debug("saving state: profile_id=%d, techniques=%d", profileID, len(st.Power.Techniques))

	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO power_profiles (profile_id, account_created_at, total_logs_all_sections, honeymoon_ended, honeymoon_ended_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(profile_id) DO UPDATE SET
    account_created_at = excluded.account_created_at,
    total_logs_all_sections = excluded.total_logs_all_sections,
    honeymoon_ended = excluded.honeymoon_ended,
    honeymoon_ended_at = excluded.honeymoon_ended_at
`, profileID, st.Power.AccountCreatedAt, st.Power.TotalLogsAllSections, st.Power.HoneymoonEnded, nullTimePtr(st.Power.HoneymoonEndedAt)); err != nil {
			log.Error("failed to save power profile: %v", err)
			return err
		}

		slotByID := map[string]models.SlotEntry{}
		position := map[string]int{}
		for _, sec := range st.Sections {
			for i, e := range sec.Inventory.Entries {
				slotByID[e.TechniqueID] = e
				position[e.TechniqueID] = i
			}
		}

		ids := make([]string, 0, len(st.Power.Techniques))
		for id := range st.Power.Techniques {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		techStmt, err := tx.PrepareContext(ctx, `
INSERT INTO techniques (id, profile_id, section, name, power, total_logs, created_at, last_used_at, last_decay_at, fresh_bonus_used,
                        slot_position, slot_state, slot_state_at, is_active, archived, archived_at, reactivated_at, duplicate_ids)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, NULL, NULL, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    section = excluded.section,
    name = excluded.name,
    power = excluded.power,
    total_logs = excluded.total_logs,
    last_used_at = excluded.last_used_at,
    last_decay_at = excluded.last_decay_at,
    fresh_bonus_used = excluded.fresh_bonus_used,
    slot_position = excluded.slot_position,
    slot_state = excluded.slot_state,
    slot_state_at = excluded.slot_state_at,
    is_active = NULL,
    archived = NULL,
    archived_at = NULL,
    reactivated_at = excluded.reactivated_at,
    duplicate_ids = excluded.duplicate_ids
`)
		if err != nil {
			log.Error("failed to prepare technique statement: %v", err)
			return err
		}
		defer techStmt.Close()

		usageStmt, err := tx.PrepareContext(ctx, `
INSERT OR IGNORE INTO usage_log (technique_id, seq, used_at, amount_gained, kind)
VALUES (?, ?, ?, ?, ?)
`)
		if err != nil {
			log.Error("failed to prepare usage statement: %v", err)
			return err
		}
		defer usageStmt.Close()

		for _, id := range ids {
			t := st.Power.Techniques[id]
			e, ok := slotByID[id]
			if !ok {
				e = models.SlotEntry{TechniqueID: id, State: models.Active()}
			}
			duplicates, err := toJSON(nonNil(e.DuplicateIDs))
			if err != nil {
				return err
			}
			if _, err := techStmt.ExecContext(ctx, t.ID, profileID, t.Section, t.Name, t.Power, t.TotalLogs, t.CreatedAt,
				nullTime(t.LastUsedAt), nullTimePtr(t.LastDecayAt), t.FreshBonusUsed,
				position[id], e.State.Kind, nullTime(e.State.At), nullTimePtr(e.ReactivatedAt), duplicates); err != nil {
				log.Error("failed to save technique %s: %v", id, err)
				return err
			}
			for seq, u := range t.UsageLog {
				if _, err := usageStmt.ExecContext(ctx, id, seq, u.At, u.AmountGained, u.Kind); err != nil {
					log.Error("failed to append usage for %s: %v", id, err)
					return err
				}
			}
		}

		for section, sec := range st.Sections {
			progress, err := toJSON(sec.Progress)
			if err != nil {
				return err
			}
			hold, err := toJSON(sec.Hold)
			if err != nil {
				return err
			}
			consistency, err := toJSON(sec.Consistency)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, `
INSERT INTO section_states (profile_id, section, progress, hold, consistency, created_count, archived_count, merged_count)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(profile_id, section) DO UPDATE SET
    progress = excluded.progress,
    hold = excluded.hold,
    consistency = excluded.consistency,
    created_count = excluded.created_count,
    archived_count = excluded.archived_count,
    merged_count = excluded.merged_count
`, profileID, section, progress, hold, consistency, sec.Inventory.CreatedCount, sec.Inventory.ArchivedCount, sec.Inventory.MergedCount); err != nil {
				log.Error("failed to save section %s: %v", section, err)
				return err
			}
		}

		counts, err := toJSON(st.DailyCap.Counts)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO daily_caps (profile_id, day, counts)
VALUES (?, ?, ?)
ON CONFLICT(profile_id) DO UPDATE SET day = excluded.day, counts = excluded.counts
`, profileID, st.DailyCap.Date, counts); err != nil {
			log.Error("failed to save daily cap: %v", err)
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Debug("state saved: profile_id=%d", profileID)
	return nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
