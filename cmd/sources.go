package cmd

import (
	"github.com/spf13/cobra"

	"github.com/newsclip/newsclip/internal/database"
	"github.com/newsclip/newsclip/internal/sources"
)

// sourcesCommand returns the sources command group.
func sourcesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Manage vehicle and source config definitions",
	}
	cmd.AddCommand(sourcesSeedCommand())
	return cmd
}

// sourcesSeedCommand seeds vehicles and configs from a YAML file.
func sourcesSeedCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed vehicles and source configs from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if file == "" {
				file = cfg.Ingest.SourcesFile
			}

			parsed, err := sources.Load(file)
			if err != nil {
				return err
			}

			db, err := database.Connect(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			seeder := sources.NewSeeder(
				database.NewVehicleRepository(db),
				database.NewConfigRepository(db),
				log.WithComponent("sources"),
			)
			if err := seeder.Seed(cmd.Context(), parsed); err != nil {
				return err
			}

			log.Info("sources seeded", "file", file, "count", len(parsed.Sources))
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "sources file (defaults to ingest.sources_file)")

	return cmd
}
