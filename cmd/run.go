package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newsclip/newsclip/internal/database"
	"github.com/newsclip/newsclip/internal/domain"
)

// runCommand returns the run command, which executes ingestion runs once and
// exits. Useful for cron-less setups and debugging configs.
func runCommand() *cobra.Command {
	var (
		configID string
		all      bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute ingestion runs once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configID == "" && !all {
				return errors.New("either --config-id or --all is required")
			}

			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := database.Connect(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			deps := buildDeps(cfg, log, db)
			ctx := cmd.Context()

			var configs []*domain.SourceConfig
			if all {
				configs, err = deps.configRepo.ListEnabled(ctx)
				if err != nil {
					return err
				}
			} else {
				one, getErr := deps.configRepo.GetByID(ctx, configID)
				if getErr != nil {
					return getErr
				}
				configs = []*domain.SourceConfig{one}
			}

			var failed int
			for _, sc := range configs {
				run, runErr := deps.orchestrator.Run(ctx, sc)
				if runErr != nil {
					failed++
					log.Error("run failed", "config_id", sc.ID, "error", runErr)
					continue
				}
				log.Info("run finished",
					"config_id", sc.ID,
					"run_id", run.ID,
					"found", run.FoundCount,
					"new", run.NewCount,
				)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d runs failed", failed, len(configs))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configID, "config-id", "", "run a single source config by ID")
	cmd.Flags().BoolVar(&all, "all", false, "run every enabled source config")

	return cmd
}
