package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/newsclip/newsclip/internal/domain"
)

// ErrVehicleNotFound is returned when a vehicle does not exist.
var ErrVehicleNotFound = errors.New("vehicle not found")

// VehicleRepository handles database operations for media vehicles.
type VehicleRepository struct {
	db *sqlx.DB
}

// NewVehicleRepository creates a new vehicle repository.
func NewVehicleRepository(db *sqlx.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

// Upsert inserts a vehicle or updates an existing row keyed by name. Seeding
// from a sources file relies on this being idempotent.
func (r *VehicleRepository) Upsert(ctx context.Context, v *domain.Vehicle) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.Status == "" {
		v.Status = domain.VehicleActive
	}

	query := `
		INSERT INTO vehicles (id, name, media_type, status, country, state, city, url, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (name) DO UPDATE
		SET media_type = EXCLUDED.media_type,
		    status = EXCLUDED.status,
		    country = EXCLUDED.country,
		    state = EXCLUDED.state,
		    city = EXCLUDED.city,
		    url = EXCLUDED.url,
		    notes = EXCLUDED.notes,
		    updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		v.ID, v.Name, v.MediaType, v.Status,
		v.Country, v.State, v.City, v.URL, v.Notes,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert vehicle: %w", err)
	}

	return nil
}

// GetByID retrieves a vehicle by its ID.
func (r *VehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	var v domain.Vehicle
	query := `
		SELECT id, name, media_type, status, country, state, city, url, notes, created_at, updated_at
		FROM vehicles
		WHERE id = $1
	`

	err := r.db.GetContext(ctx, &v, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrVehicleNotFound, id)
		}
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}

	return &v, nil
}

// GetByName retrieves a vehicle by its unique name.
func (r *VehicleRepository) GetByName(ctx context.Context, name string) (*domain.Vehicle, error) {
	var v domain.Vehicle
	query := `
		SELECT id, name, media_type, status, country, state, city, url, notes, created_at, updated_at
		FROM vehicles
		WHERE name = $1
	`

	err := r.db.GetContext(ctx, &v, query, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrVehicleNotFound, name)
		}
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}

	return &v, nil
}

// List retrieves vehicles ordered by name.
func (r *VehicleRepository) List(ctx context.Context, limit, offset int) ([]*domain.Vehicle, error) {
	var vehicles []*domain.Vehicle
	query := `
		SELECT id, name, media_type, status, country, state, city, url, notes, created_at, updated_at
		FROM vehicles
		ORDER BY name
		LIMIT $1 OFFSET $2
	`

	err := r.db.SelectContext(ctx, &vehicles, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}

	if vehicles == nil {
		vehicles = []*domain.Vehicle{}
	}

	return vehicles, nil
}
