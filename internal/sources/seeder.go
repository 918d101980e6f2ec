package sources

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/newsclip/newsclip/internal/database"
	"github.com/newsclip/newsclip/internal/domain"
	"github.com/newsclip/newsclip/internal/logger"
)

// VehicleStore persists vehicles during seeding.
type VehicleStore interface {
	Upsert(ctx context.Context, v *domain.Vehicle) error
}

// ConfigStore persists source configs during seeding.
type ConfigStore interface {
	Create(ctx context.Context, cfg *domain.SourceConfig) error
	GetByVehicleAndName(ctx context.Context, vehicleID, name string) (*domain.SourceConfig, error)
	UpdateRules(ctx context.Context, cfg *domain.SourceConfig) error
}

// Seeder writes sources file contents into the database.
type Seeder struct {
	vehicles VehicleStore
	configs  ConfigStore
	logger   logger.Interface
}

// NewSeeder creates a seeder.
func NewSeeder(vehicles VehicleStore, configs ConfigStore, log logger.Interface) *Seeder {
	return &Seeder{vehicles: vehicles, configs: configs, logger: log}
}

// Seed upserts every source in the file. Existing vehicles are updated by
// name; existing configs have their rules replaced. Seeding the same file
// twice is a no-op apart from timestamps.
func (s *Seeder) Seed(ctx context.Context, file *File) error {
	for i := range file.Sources {
		src := &file.Sources[i]
		if err := s.seedSource(ctx, src); err != nil {
			return fmt.Errorf("failed to seed source %s: %w", src.Name, err)
		}
	}
	return nil
}

func (s *Seeder) seedSource(ctx context.Context, src *Source) error {
	vehicle := &domain.Vehicle{
		Name:      src.Name,
		MediaType: src.mediaType(),
		Status:    domain.VehicleActive,
		Country:   src.Country,
		State:     src.State,
		City:      src.City,
		URL:       src.URL,
		Notes:     src.Notes,
	}
	if err := s.vehicles.Upsert(ctx, vehicle); err != nil {
		return err
	}
	s.logger.Info("vehicle seeded", "vehicle_id", vehicle.ID, "name", vehicle.Name)

	for i := range src.Configs {
		if err := s.seedConfig(ctx, vehicle.ID, &src.Configs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedConfig(ctx context.Context, vehicleID string, cfg *Config) error {
	enabled := true
	if cfg.Enabled != nil {
		enabled = *cfg.Enabled
	}

	next := &domain.SourceConfig{
		VehicleID:       vehicleID,
		Name:            cfg.Name,
		URL:             cfg.URL,
		SectionRules:    strings.Join(cfg.SectionRules, "\n"),
		ListingLinkRule: cfg.ListingLinkRule,
		SectionNameRule: cfg.SectionNameRule,
		DateRule:        cfg.DateRule,
		TitleRule:       cfg.TitleRule,
		SubtitleRule:    cfg.SubtitleRule,
		AuthorRule:      cfg.AuthorRule,
		BodyRule:        cfg.BodyRule,
		IntervalMinutes: cfg.IntervalMinutes,
		Enabled:         enabled,
	}

	existing, err := s.configs.GetByVehicleAndName(ctx, vehicleID, cfg.Name)
	if err != nil {
		if !errors.Is(err, database.ErrConfigNotFound) {
			return err
		}
		if createErr := s.configs.Create(ctx, next); createErr != nil {
			return createErr
		}
		s.logger.Info("config created", "config_id", next.ID, "name", next.Name)
		return nil
	}

	next.ID = existing.ID
	if updateErr := s.configs.UpdateRules(ctx, next); updateErr != nil {
		return updateErr
	}
	s.logger.Info("config updated", "config_id", next.ID, "name", next.Name)
	return nil
}
