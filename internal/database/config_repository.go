package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/newsclip/newsclip/internal/domain"
)

// ErrConfigNotFound is returned when a source config does not exist.
var ErrConfigNotFound = errors.New("source config not found")

const sourceConfigColumns = `
	id, vehicle_id, name, url,
	section_rules, listing_link_rule, section_name_rule, date_rule,
	title_rule, subtitle_rule, author_rule, body_rule,
	interval_minutes, enabled, last_run_at, status,
	created_at, updated_at
`

// ConfigRepository handles database operations for source configs.
type ConfigRepository struct {
	db *sqlx.DB
}

// NewConfigRepository creates a new source config repository.
func NewConfigRepository(db *sqlx.DB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

// Create inserts a new source config.
func (r *ConfigRepository) Create(ctx context.Context, cfg *domain.SourceConfig) error {
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	if cfg.Status == "" {
		cfg.Status = domain.StatusIdle
	}
	if cfg.IntervalMinutes <= 0 {
		cfg.IntervalMinutes = domain.DefaultIntervalMinutes
	}

	query := `
		INSERT INTO source_configs (
			id, vehicle_id, name, url,
			section_rules, listing_link_rule, section_name_rule, date_rule,
			title_rule, subtitle_rule, author_rule, body_rule,
			interval_minutes, enabled, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		cfg.ID, cfg.VehicleID, cfg.Name, cfg.URL,
		cfg.SectionRules, cfg.ListingLinkRule, cfg.SectionNameRule, cfg.DateRule,
		cfg.TitleRule, cfg.SubtitleRule, cfg.AuthorRule, cfg.BodyRule,
		cfg.IntervalMinutes, cfg.Enabled, cfg.Status,
	).Scan(&cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create source config: %w", err)
	}

	return nil
}

// GetByID retrieves a source config by its ID.
func (r *ConfigRepository) GetByID(ctx context.Context, id string) (*domain.SourceConfig, error) {
	var cfg domain.SourceConfig
	query := `SELECT ` + sourceConfigColumns + ` FROM source_configs WHERE id = $1`

	err := r.db.GetContext(ctx, &cfg, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, id)
		}
		return nil, fmt.Errorf("failed to get source config: %w", err)
	}

	return &cfg, nil
}

// GetByVehicleAndName retrieves a config by its unique (vehicle, name) pair.
func (r *ConfigRepository) GetByVehicleAndName(ctx context.Context, vehicleID, name string) (*domain.SourceConfig, error) {
	var cfg domain.SourceConfig
	query := `SELECT ` + sourceConfigColumns + ` FROM source_configs WHERE vehicle_id = $1 AND name = $2`

	err := r.db.GetContext(ctx, &cfg, query, vehicleID, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s/%s", ErrConfigNotFound, vehicleID, name)
		}
		return nil, fmt.Errorf("failed to get source config: %w", err)
	}

	return &cfg, nil
}

// List retrieves source configs ordered by name.
func (r *ConfigRepository) List(ctx context.Context, limit, offset int) ([]*domain.SourceConfig, error) {
	var configs []*domain.SourceConfig
	query := `
		SELECT ` + sourceConfigColumns + `
		FROM source_configs
		ORDER BY name
		LIMIT $1 OFFSET $2
	`

	err := r.db.SelectContext(ctx, &configs, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list source configs: %w", err)
	}

	if configs == nil {
		configs = []*domain.SourceConfig{}
	}

	return configs, nil
}

// ListEnabled retrieves every enabled source config. The scheduler calls this
// on each tick to compute the due set.
func (r *ConfigRepository) ListEnabled(ctx context.Context) ([]*domain.SourceConfig, error) {
	var configs []*domain.SourceConfig
	query := `
		SELECT ` + sourceConfigColumns + `
		FROM source_configs
		WHERE enabled = TRUE
		ORDER BY name
	`

	err := r.db.SelectContext(ctx, &configs, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list enabled source configs: %w", err)
	}

	if configs == nil {
		configs = []*domain.SourceConfig{}
	}

	return configs, nil
}

// UpdateStatus sets the config status and, when lastRunAt is non-nil, stamps
// the last run time. The orchestrator is the only caller.
func (r *ConfigRepository) UpdateStatus(ctx context.Context, id string, status domain.Status, lastRunAt *time.Time) error {
	query := `
		UPDATE source_configs
		SET status = $1,
		    last_run_at = COALESCE($2, last_run_at),
		    updated_at = NOW()
		WHERE id = $3
	`

	result, err := r.db.ExecContext(ctx, query, status, lastRunAt, id)
	if err != nil {
		return fmt.Errorf("failed to update source config status: %w", err)
	}

	return requireAffected(result, nil, fmt.Errorf("%w: %s", ErrConfigNotFound, id))
}

// UpdateRules replaces the extraction rules of a config.
func (r *ConfigRepository) UpdateRules(ctx context.Context, cfg *domain.SourceConfig) error {
	query := `
		UPDATE source_configs
		SET url = $1, section_rules = $2, listing_link_rule = $3,
		    section_name_rule = $4, date_rule = $5, title_rule = $6,
		    subtitle_rule = $7, author_rule = $8, body_rule = $9,
		    interval_minutes = $10, enabled = $11, updated_at = NOW()
		WHERE id = $12
	`

	result, err := r.db.ExecContext(ctx, query,
		cfg.URL, cfg.SectionRules, cfg.ListingLinkRule,
		cfg.SectionNameRule, cfg.DateRule, cfg.TitleRule,
		cfg.SubtitleRule, cfg.AuthorRule, cfg.BodyRule,
		cfg.IntervalMinutes, cfg.Enabled, cfg.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update source config rules: %w", err)
	}

	return requireAffected(result, nil, fmt.Errorf("%w: %s", ErrConfigNotFound, cfg.ID))
}
