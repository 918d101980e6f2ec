// Package scheduler ticks over the enabled source configs and kicks off
// ingestion runs for the ones that are due.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/newsclip/newsclip/internal/domain"
	"github.com/newsclip/newsclip/internal/logger"
)

// DefaultTick is the interval between due checks.
const DefaultTick = time.Minute

// ConfigLister yields the configs the scheduler considers on each tick.
type ConfigLister interface {
	ListEnabled(ctx context.Context) ([]*domain.SourceConfig, error)
	GetByID(ctx context.Context, id string) (*domain.SourceConfig, error)
}

// Runner executes one ingestion run.
type Runner interface {
	Run(ctx context.Context, cfg *domain.SourceConfig) (*domain.Run, error)
}

// ErrAlreadyRunning reports a trigger for a config with a run in flight.
var ErrAlreadyRunning = fmt.Errorf("config already has a run in flight")

// Scheduler drives periodic and on-demand ingestion runs. Overlap protection
// is in-process: a config with an active run is never started again, and a
// config marked running in the database is not due.
type Scheduler struct {
	logger  logger.Interface
	configs ConfigLister
	runner  Runner
	tick    time.Duration

	cron    *cron.Cron
	started atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	active   map[string]struct{}
	activeMu sync.Mutex
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithTick overrides the due-check interval.
func WithTick(tick time.Duration) Option {
	return func(s *Scheduler) { s.tick = tick }
}

// New creates a scheduler. Start must be called to begin ticking.
func New(log logger.Interface, configs ConfigLister, runner Runner, opts ...Option) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		logger:  log,
		configs: configs,
		runner:  runner,
		tick:    DefaultTick,
		ctx:     ctx,
		cancel:  cancel,
		active:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cron = cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger)))
	return s
}

// Start begins the periodic due check. Calling Start on a scheduler that is
// already started is a no-op.
func (s *Scheduler) Start() error {
	if !s.started.CompareAndSwap(false, true) {
		s.logger.Warn("scheduler already started")
		return nil
	}

	spec := fmt.Sprintf("@every %s", s.tick)
	if _, err := s.cron.AddFunc(spec, s.checkDue); err != nil {
		s.started.Store(false)
		return fmt.Errorf("failed to schedule due check: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "tick", s.tick.String())
	return nil
}

// Stop halts the ticker and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	if !s.started.Load() {
		return
	}

	s.logger.Info("stopping scheduler")
	cronCtx := s.cron.Stop()
	<-cronCtx.Done()

	s.cancel()
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

// checkDue runs one scheduling pass.
func (s *Scheduler) checkDue() {
	configs, err := s.configs.ListEnabled(s.ctx)
	if err != nil {
		s.logger.Error("failed to list enabled configs", "error", err)
		return
	}

	now := time.Now()
	for _, cfg := range configs {
		if !cfg.Due(now) {
			continue
		}
		if err := s.dispatch(cfg); err != nil {
			s.logger.Debug("config not dispatched", "config_id", cfg.ID, "error", err)
		}
	}
}

// TriggerOne starts a run for one config immediately, bypassing the interval
// check. It returns ErrAlreadyRunning when a run is in flight.
func (s *Scheduler) TriggerOne(ctx context.Context, configID string) error {
	cfg, err := s.configs.GetByID(ctx, configID)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	return s.dispatch(cfg)
}

// TriggerAll starts runs for every enabled config immediately. Configs with
// runs in flight are skipped. It returns the number of runs started.
func (s *Scheduler) TriggerAll(ctx context.Context) (int, error) {
	configs, err := s.configs.ListEnabled(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list enabled configs: %w", err)
	}

	started := 0
	for _, cfg := range configs {
		if err := s.dispatch(cfg); err == nil {
			started++
		}
	}
	return started, nil
}

// dispatch starts a run goroutine for cfg unless one is already active.
func (s *Scheduler) dispatch(cfg *domain.SourceConfig) error {
	s.activeMu.Lock()
	if _, busy := s.active[cfg.ID]; busy {
		s.activeMu.Unlock()
		return ErrAlreadyRunning
	}
	if cfg.Status == domain.StatusRunning {
		s.activeMu.Unlock()
		return ErrAlreadyRunning
	}
	s.active[cfg.ID] = struct{}{}
	s.activeMu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.activeMu.Lock()
			delete(s.active, cfg.ID)
			s.activeMu.Unlock()
		}()

		s.logger.Info("run starting", "config_id", cfg.ID, "config_name", cfg.Name)
		run, err := s.runner.Run(s.ctx, cfg)
		if err != nil {
			s.logger.Error("run failed", "config_id", cfg.ID, "error", err)
			return
		}
		s.logger.Info("run finished",
			"config_id", cfg.ID,
			"run_id", run.ID,
			"found", run.FoundCount,
			"new", run.NewCount,
		)
	}()

	return nil
}

// Active reports whether a run is currently in flight for the config.
func (s *Scheduler) Active(configID string) bool {
	s.activeMu.Lock()
	defer s.activeMu.Unlock()
	_, busy := s.active[configID]
	return busy
}
