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

// ErrRunNotFound is returned when a run does not exist.
var ErrRunNotFound = errors.New("run not found")

// RunRepository handles database operations for ingestion runs.
type RunRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a new run repository.
func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new run in the running state.
func (r *RunRepository) Create(ctx context.Context, run *domain.Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Status == "" {
		run.Status = domain.StatusRunning
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	query := `
		INSERT INTO runs (id, config_id, started_at, status, found_count, new_count, log)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.ConfigID, run.StartedAt, run.Status,
		run.FoundCount, run.NewCount, run.Log,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	return nil
}

// Finish records the terminal state of a run together with its counters and
// serialized event log.
func (r *RunRepository) Finish(ctx context.Context, run *domain.Run) error {
	if run.FinishedAt == nil {
		now := time.Now()
		run.FinishedAt = &now
	}

	query := `
		UPDATE runs
		SET finished_at = $1, status = $2, found_count = $3, new_count = $4, log = $5
		WHERE id = $6
	`

	result, err := r.db.ExecContext(ctx, query,
		run.FinishedAt, run.Status, run.FoundCount, run.NewCount, run.Log, run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	return requireAffected(result, nil, fmt.Errorf("%w: %s", ErrRunNotFound, run.ID))
}

// GetByID retrieves a run by its ID.
func (r *RunRepository) GetByID(ctx context.Context, id string) (*domain.Run, error) {
	var run domain.Run
	query := `
		SELECT id, config_id, started_at, finished_at, status, found_count, new_count, log
		FROM runs
		WHERE id = $1
	`

	err := r.db.GetContext(ctx, &run, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return &run, nil
}

// ListByConfig retrieves runs for a config, most recent first.
func (r *RunRepository) ListByConfig(ctx context.Context, configID string, limit, offset int) ([]*domain.Run, error) {
	var runs []*domain.Run
	query := `
		SELECT id, config_id, started_at, finished_at, status, found_count, new_count, log
		FROM runs
		WHERE config_id = $1
		ORDER BY started_at DESC
		LIMIT $2 OFFSET $3
	`

	err := r.db.SelectContext(ctx, &runs, query, configID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	if runs == nil {
		runs = []*domain.Run{}
	}

	return runs, nil
}
