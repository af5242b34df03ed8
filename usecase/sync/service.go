package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mailsig/sigsync/domain"
	"github.com/mailsig/sigsync/internal/config"
	"github.com/mailsig/sigsync/internal/filter"
	"github.com/mailsig/sigsync/internal/template"
	"github.com/mailsig/sigsync/pkg/logger"
	"github.com/mailsig/sigsync/repository"
)

// RunOptions carries per-invocation overrides on top of the configured defaults.
type RunOptions struct {
	DryRun        bool
	TemplateID    string
	IncludedUsers []string
}

// Service executes complete synchronization runs: fetch, filter, resolve,
// pipeline apply, and report persistence.
type Service struct {
	directory repository.DirectoryProvider
	templates repository.TemplateStore
	mailbox   repository.MailboxProvider
	creds     repository.CredentialProvider
	history   repository.RunHistoryRepository

	syncCfg   config.SyncConfig
	filterCfg config.FilterConfig
	branding  template.Branding

	logger *zap.Logger
}

// NewService wires a run service. history may be nil; report persistence is
// then skipped.
func NewService(
	directory repository.DirectoryProvider,
	templates repository.TemplateStore,
	mailbox repository.MailboxProvider,
	creds repository.CredentialProvider,
	history repository.RunHistoryRepository,
	syncCfg config.SyncConfig,
	filterCfg config.FilterConfig,
	branding template.Branding,
	zapLogger *zap.Logger,
) *Service {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	return &Service{
		directory: directory,
		templates: templates,
		mailbox:   mailbox,
		creds:     creds,
		history:   history,
		syncCfg:   syncCfg,
		filterCfg: filterCfg,
		branding:  branding,
		logger:    zapLogger,
	}
}

// Execute performs one full run. Run-level failures (configuration, directory,
// template resolution) abort before any identity is processed; per-identity
// failures land in the outcome's failed bucket instead.
func (s *Service) Execute(ctx context.Context, opts RunOptions) (*domain.RunReport, error) {
	if err := s.syncCfg.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	ctx = logger.ContextWithRunID(ctx, runID)
	log := logger.WithRunID(ctx, s.logger)

	dryRun := opts.DryRun || s.syncCfg.DryRun
	templateID := opts.TemplateID
	if templateID == "" {
		templateID = "default"
	}

	startedAt := time.Now()
	log.Info("synchronization run started",
		zap.String("domain", s.syncCfg.Domain),
		zap.String("template_id", templateID),
		zap.Bool("dry_run", dryRun))

	identities, err := s.directory.FetchUsers(ctx, s.syncCfg.Domain)
	if err != nil {
		return nil, err
	}

	filterCfg := s.filterCfg
	if len(opts.IncludedUsers) > 0 {
		filterCfg.IncludedUsers = opts.IncludedUsers
	}
	eligible, err := filter.Filter(identities, filterCfg.Rules(s.syncCfg.Domain))
	if err != nil {
		return nil, err
	}
	log.Info("identities filtered",
		zap.Int("fetched", len(identities)),
		zap.Int("eligible", len(eligible)))

	templateText, err := s.templates.Resolve(ctx, templateID)
	if err != nil {
		return nil, err
	}

	pipeline := NewPipeline(
		template.NewSignatureBuilder(templateText, s.branding, identities),
		s.mailbox,
		s.creds,
		PipelineConfig{
			BatchSize:     s.syncCfg.BatchSize,
			BatchDelay:    s.syncCfg.BatchDelay,
			RetryAttempts: s.syncCfg.RetryAttempts,
			RetryDelay:    s.syncCfg.RetryDelay,
			Concurrency:   s.syncCfg.Concurrency,
		},
		log,
	)

	outcome, runErr := pipeline.Run(ctx, eligible, dryRun)

	report := &domain.RunReport{
		ID:         runID,
		Domain:     s.syncCfg.Domain,
		TemplateID: templateID,
		DryRun:     dryRun,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		Outcome:    outcome,
	}

	if s.history != nil {
		if err := s.history.Save(ctx, report); err != nil {
			log.Warn("run report persistence failed", zap.Error(err))
		}
	}

	log.Info("synchronization run finished",
		zap.Int("processed", len(outcome.Processed)),
		zap.Int("skipped", len(outcome.Skipped)),
		zap.Int("failed", len(outcome.Failed)),
		zap.Duration("took", report.FinishedAt.Sub(startedAt)))

	// a cancelled run still reports the partial partition it reached
	return report, runErr
}

// Plan executes a forced dry run regardless of configuration.
func (s *Service) Plan(ctx context.Context, opts RunOptions) (*domain.RunReport, error) {
	opts.DryRun = true
	return s.Execute(ctx, opts)
}
