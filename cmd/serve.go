package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/newsclip/newsclip/internal/api"
	"github.com/newsclip/newsclip/internal/config"
	"github.com/newsclip/newsclip/internal/database"
	"github.com/newsclip/newsclip/internal/fetch"
	"github.com/newsclip/newsclip/internal/ingest"
	"github.com/newsclip/newsclip/internal/logger"
	"github.com/newsclip/newsclip/internal/scheduler"
)

const shutdownTimeout = 15 * time.Second

// serveCommand returns the serve command, which runs the scheduler and the
// HTTP API until interrupted.
func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the ingestion scheduler and HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			sched := scheduler.New(log, deps.configRepo, deps.orchestrator,
				scheduler.WithTick(cfg.Scheduler.Tick))
			if cfg.Scheduler.Enabled {
				if err := sched.Start(); err != nil {
					return err
				}
			} else {
				log.Warn("scheduler disabled, runs start via API only")
			}

			router := api.SetupRouter(log,
				api.NewConfigsHandler(deps.configRepo, sched),
				api.NewRunsHandler(deps.runRepo),
				api.NewArticlesHandler(deps.contentRepo),
			)
			srv := api.NewHTTPServer(cfg.Server, router)

			errCh := make(chan error, 1)
			go func() {
				log.Info("HTTP server listening", "address", cfg.Server.Address)
				if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
					errCh <- serveErr
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			select {
			case sig := <-quit:
				log.Info("shutdown signal received", "signal", sig.String())
			case serveErr := <-errCh:
				log.Error("HTTP server failed", "error", serveErr)
				sched.Stop()
				return serveErr
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
				log.Error("HTTP server shutdown failed", "error", shutdownErr)
			}
			sched.Stop()

			log.Info("service stopped")
			return nil
		},
	}
}

// deps bundles the wired repositories and orchestrator.
type deps struct {
	vehicleRepo  *database.VehicleRepository
	configRepo   *database.ConfigRepository
	runRepo      *database.RunRepository
	contentRepo  *database.ContentRepository
	orchestrator *ingest.Orchestrator
}

// buildDeps wires repositories, fetcher and orchestrator from the config.
func buildDeps(cfg *config.Config, log logger.Interface, db *sqlx.DB) *deps {
	fetchOpts := []fetch.Option{fetch.WithTimeout(cfg.Ingest.FetchTimeout)}
	if cfg.Ingest.UserAgent != "" {
		fetchOpts = append(fetchOpts, fetch.WithUserAgent(cfg.Ingest.UserAgent))
	}
	fetcher := fetch.NewClient(fetchOpts...)

	d := &deps{
		vehicleRepo: database.NewVehicleRepository(db),
		configRepo:  database.NewConfigRepository(db),
		runRepo:     database.NewRunRepository(db),
		contentRepo: database.NewContentRepository(db),
	}
	d.orchestrator = ingest.New(d.configRepo, d.runRepo, d.contentRepo, fetcher,
		log.WithComponent("ingest"), ingest.WithWorkers(cfg.Ingest.Workers))
	return d
}
