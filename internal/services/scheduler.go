package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mailsig/sigsync/domain"
	syncUC "github.com/mailsig/sigsync/usecase/sync"
)

// ConnectionHealth abstracts the dependency monitor.
type ConnectionHealth interface {
	IsOnline() bool
}

// Runner abstracts the sync service for the scheduler.
type Runner interface {
	Execute(ctx context.Context, opts syncUC.RunOptions) (*domain.RunReport, error)
}

// SchedulerConfig controls how frequently synchronization runs are triggered.
type SchedulerConfig struct {
	Interval   time.Duration
	RunTimeout time.Duration
	DryRun     bool
	TemplateID string
}

// Scheduler triggers periodic synchronization runs in serve mode.
type Scheduler struct {
	runner  Runner
	monitor ConnectionHealth
	logger  *zap.Logger
	cron    *cron.Cron
	cfg     SchedulerConfig

	mu         sync.RWMutex
	lastReport *domain.RunReport
}

func NewScheduler(runner Runner, monitor ConnectionHealth, logger *zap.Logger, cfg SchedulerConfig) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 30 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Scheduler{
		runner:  runner,
		monitor: monitor,
		logger:  logger,
		cfg:     cfg,
		cron:    cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = s.cron.AddFunc(schedule, s.tick)

	return s
}

// Start launches the cron scheduler.
func (s *Scheduler) Start() {
	if s == nil || s.cron == nil {
		return
	}
	s.cron.Start()
	s.logger.Info("sync scheduler started", zap.Duration("interval", s.cfg.Interval))
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop(ctx context.Context) {
	if s == nil || s.cron == nil {
		return
	}
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	s.logger.Info("sync scheduler stopped")
}

// LastReport returns the report of the most recent scheduled run, if any.
func (s *Scheduler) LastReport() *domain.RunReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastReport
}

func (s *Scheduler) tick() {
	if s.monitor != nil && !s.monitor.IsOnline() {
		s.logger.Warn("skipping scheduled run (dependencies offline)")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RunTimeout)
	defer cancel()

	report, err := s.runner.Execute(ctx, syncUC.RunOptions{
		DryRun:     s.cfg.DryRun,
		TemplateID: s.cfg.TemplateID,
	})
	if err != nil {
		s.logger.Error("scheduled run failed", zap.Error(err))
	}
	if report != nil {
		s.mu.Lock()
		s.lastReport = report
		s.mu.Unlock()
	}
}
