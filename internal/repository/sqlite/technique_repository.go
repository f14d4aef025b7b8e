package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/cheatcodes/internal/logger"
	"github.com/vytor/cheatcodes/internal/models"
	"github.com/vytor/cheatcodes/internal/repository"
	"github.com/vytor/cheatcodes/internal/slots"
)

type techniqueRepository struct {
	db *sql.DB
}

// NewTechniqueRepository creates a new TechniqueRepository implementation
func NewTechniqueRepository(db *sql.DB) repository.TechniqueRepository {
	return &techniqueRepository{db: db}
}

func applyTechniqueFilter(query squirrel.SelectBuilder, filter models.TechniqueFilter) squirrel.SelectBuilder {
	if filter.ProfileID != 0 {
		query = query.Where(squirrel.Eq{"profile_id": filter.ProfileID})
	}
	if filter.TechniqueID != "" {
		query = query.Where(squirrel.Eq{"id": filter.TechniqueID})
	}
	if filter.Section != "" {
		query = query.Where(squirrel.Eq{"section": filter.Section})
	}
	if filter.State != "" {
		query = query.Where(squirrel.Expr(slotStateExpr+" = ?", string(filter.State)))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		query = query.Where(squirrel.Like{"name": "%" + q + "%"})
	}
	return query
}

func (r *techniqueRepository) List(ctx context.Context, filter models.TechniqueFilter) ([]models.ManagedTechnique, error) {
	log := logger.FromContext(ctx).WithPrefix("technique_repo")
	log.Debug("listing techniques with filter: profile_id=%d, section=%s, state=%s, query=%s",
		filter.ProfileID, filter.Section, filter.State, filter.Query)

	query := applyTechniqueFilter(sqlBuilder.Select(
		"id", "section", "name", "power", "total_logs", "created_at", "last_used_at", "last_decay_at",
		"fresh_bonus_used", "slot_state", "slot_state_at", "is_active", "archived", "archived_at",
		"reactivated_at", "duplicate_ids",
	).From("techniques"), filter)

	// Safe ORDER BY with validation
	orderBy := "power"
	switch filter.OrderBy {
	case "power", "last_used_at", "name", "created_at":
		orderBy = filter.OrderBy
	}
	orderDir := "DESC"
	if filter.OrderDir == "ASC" {
		orderDir = "ASC"
	}
	query = query.OrderBy(orderBy+" "+orderDir, "id ASC")

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query = query.Limit(uint64(limit)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sql, args...)
	if err != nil {
		log.Error("failed to list techniques: %v", err)
		return nil, err
	}
	defer rows.Close()

	var techniques []models.ManagedTechnique
	for rows.Next() {
		m, err := scanManagedTechnique(rows)
		if err != nil {
			log.Error("failed to scan technique row: %v", err)
			return nil, err
		}
		techniques = append(techniques, m)
	}
	log.Debug("found %d techniques", len(techniques))
	return techniques, rows.Err()
}

func scanManagedTechnique(rows interface{ Scan(...any) error }) (models.ManagedTechnique, error) {
	var (
		t          models.TechniquePower
		lastUsedAt *time.Time
		slotState  *string
		isActive   *bool
		archived   *bool
		duplicates string
		legacy     slots.LegacySlot
	)
	if err := rows.Scan(&t.ID, &t.Section, &t.Name, &t.Power, &t.TotalLogs, &t.CreatedAt, &lastUsedAt, &t.LastDecayAt,
		&t.FreshBonusUsed, &slotState, &legacy.StateAt, &isActive, &archived, &legacy.ArchivedAt,
		&legacy.ReactivatedAt, &duplicates); err != nil {
		return models.ManagedTechnique{}, err
	}
	t.LastUsedAt = derefTime(lastUsedAt)

	legacy.TechniqueID = t.ID
	legacy.IsActive = isActive
	legacy.Archived = archived
	if slotState != nil {
		kind := models.SlotStateKind(*slotState)
		legacy.State = &kind
	}
	if err := fromJSON(duplicates, &legacy.DuplicateIDs); err != nil {
		return models.ManagedTechnique{}, err
	}
	return models.NewManagedTechnique(t, slots.MigrateEntry(legacy, t.CreatedAt)), nil
}

func (r *techniqueRepository) Count(ctx context.Context, filter models.TechniqueFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("technique_repo")
	log.Debug("counting techniques with filter: profile_id=%d, section=%s, state=%s",
		filter.ProfileID, filter.Section, filter.State)

	query := applyTechniqueFilter(sqlBuilder.Select("COUNT(*)").From("techniques"), filter)

	sql, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build count query: %v", err)
		return 0, err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, sql, args...).Scan(&count); err != nil {
		log.Error("failed to count techniques: %v", err)
		return 0, err
	}
	log.Debug("technique count: %d", count)
	return count, nil
}

func (r *techniqueRepository) UsageHistory(ctx context.Context, profileID int64, techniqueID string) ([]models.UsageEntry, error) {
	log := logger.FromContext(ctx).WithPrefix("technique_repo")
	log.Debug("getting usage history: profile_id=%d, technique_id=%s", profileID, techniqueID)

	query := sqlBuilder.Select("u.used_at", "u.amount_gained", "u.kind").
		From("usage_log u").
		Join("techniques t ON t.id = u.technique_id").
		Where(squirrel.Eq{"t.profile_id": profileID, "u.technique_id": techniqueID}).
		OrderBy("u.seq ASC")

	sql, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build usage query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sql, args...)
	if err != nil {
		log.Error("failed to get usage history: %v", err)
		return nil, err
	}
	defer rows.Close()

	var entries []models.UsageEntry
	for rows.Next() {
		var e models.UsageEntry
		if err := rows.Scan(&e.At, &e.AmountGained, &e.Kind); err != nil {
			log.Error("failed to scan usage row: %v", err)
			return nil, err
		}
		entries = append(entries, e)
	}
	log.Debug("found %d usage entries", len(entries))
	return entries, rows.Err()
}
