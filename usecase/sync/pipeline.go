// Package sync orchestrates signature synchronization: directory fetch,
// filtering, rendering, change detection and the batched, rate-limited apply
// with bounded retry and partial-failure accounting.
package sync

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mailsig/sigsync/domain"
	"github.com/mailsig/sigsync/internal/detect"
	"github.com/mailsig/sigsync/repository"
)

// SignatureRenderer produces the desired signature HTML for one identity.
type SignatureRenderer interface {
	Render(email string) (string, error)
}

// PipelineConfig controls batching, rate limiting and retry.
type PipelineConfig struct {
	BatchSize     int
	BatchDelay    time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	Concurrency   int
}

func (cfg PipelineConfig) withDefaults() PipelineConfig {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.RetryAttempts < 0 {
		cfg.RetryAttempts = 0
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return cfg
}

// Pipeline applies the desired signature state to a filtered identity list.
//
// Identities are processed in contiguous batches of at most BatchSize. A batch
// is a barrier: every identity in it reaches a terminal classification before
// the next batch starts, with BatchDelay observed between batches. A failure
// on one identity never aborts its batch or the run.
type Pipeline struct {
	renderer    SignatureRenderer
	mailbox     repository.MailboxProvider
	credentials repository.CredentialProvider
	cfg         PipelineConfig
	logger      *zap.Logger

	// sleep is swapped out by tests to observe delays without waiting.
	sleep func(ctx context.Context, d time.Duration)
}

// NewPipeline wires the pipeline's collaborators.
func NewPipeline(
	renderer SignatureRenderer,
	mailbox repository.MailboxProvider,
	credentials repository.CredentialProvider,
	cfg PipelineConfig,
	logger *zap.Logger,
) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		renderer:    renderer,
		mailbox:     mailbox,
		credentials: credentials,
		cfg:         cfg.withDefaults(),
		logger:      logger,
		sleep:       sleepCtx,
	}
}

// result is the per-identity slot, written exactly once by the goroutine that
// resolved the identity. resolved stays false for identities a cancelled run
// never reached; those are absent from the outcome.
type result struct {
	status   domain.SyncStatus
	reason   string
	resolved bool
}

// Run processes the already-filtered identity list and returns the outcome
// partition. When ctx is cancelled mid-run the partial outcome is returned
// together with the context error; unresolved identities are absent from it.
func (p *Pipeline) Run(ctx context.Context, identities []string, dryRun bool) (*domain.SyncOutcome, error) {
	results := make([]result, len(identities))
	batches := partition(identities, p.cfg.BatchSize)

	var runErr error
	offset := 0
	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		p.logger.Debug("batch started",
			zap.Int("batch", i+1),
			zap.Int("batches", len(batches)),
			zap.Int("size", len(batch)))

		var group errgroup.Group
		group.SetLimit(p.cfg.Concurrency)
		for j, email := range batch {
			email := email
			slot := &results[offset+j]
			group.Go(func() error {
				*slot = p.processIdentity(ctx, email, dryRun)
				return nil
			})
		}
		_ = group.Wait()
		offset += len(batch)

		if i < len(batches)-1 {
			p.sleep(ctx, p.cfg.BatchDelay)
		}
	}

	// cancellation during the last batch leaves slots unresolved without
	// another loop iteration to notice; the partial outcome must still be
	// reported together with the context error
	if runErr == nil {
		runErr = ctx.Err()
	}

	outcome := domain.NewSyncOutcome()
	for i, email := range identities {
		if !results[i].resolved {
			continue
		}
		outcome.Record(email, results[i].status, results[i].reason)
	}
	return outcome, runErr
}

// Plan is the dry-run alias: full computation and classification with the
// remote write suppressed.
func (p *Pipeline) Plan(ctx context.Context, identities []string) (*domain.SyncOutcome, error) {
	return p.Run(ctx, identities, true)
}

// processIdentity walks one identity through its state machine to a terminal
// classification. Credential acquisition is deferred until a write is known
// to be needed, so unchanged identities never touch the credential provider.
func (p *Pipeline) processIdentity(ctx context.Context, email string, dryRun bool) result {
	if ctx.Err() != nil {
		return result{}
	}

	desired, err := p.renderer.Render(email)
	if err != nil {
		return p.failed(email, "render failed", err)
	}

	current, err := p.mailbox.ReadSignature(ctx, email)
	if err != nil {
		return p.failed(email, "signature read failed", err)
	}

	if !detect.NeedsUpdate(current, desired) {
		p.logger.Debug("signature unchanged", zap.String("email", email))
		return result{status: domain.StatusSkipped, resolved: true}
	}

	if dryRun {
		p.logger.Info("signature update planned", zap.String("email", email))
		return result{status: domain.StatusProcessed, resolved: true}
	}

	credential, err := p.credentials.AcquireWriteCredential(ctx, email)
	if err != nil {
		return p.failed(email, "credential acquisition failed", err)
	}

	if err := p.writeWithRetry(ctx, email, desired, credential); err != nil {
		return p.failed(email, "signature write failed", err)
	}

	p.logger.Info("signature updated", zap.String("email", email))
	return result{status: domain.StatusProcessed, resolved: true}
}

// writeWithRetry performs the remote write with up to RetryAttempts extra
// attempts for transient failures, sleeping RetryDelay between attempts.
// Non-retryable errors fail immediately without consuming retry budget.
func (p *Pipeline) writeWithRetry(ctx context.Context, email, signature, credential string) error {
	var lastErr error
	for attempt := 0; attempt <= p.cfg.RetryAttempts; attempt++ {
		if attempt > 0 {
			p.sleep(ctx, p.cfg.RetryDelay)
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		lastErr = p.mailbox.WriteSignature(ctx, email, signature, credential)
		if lastErr == nil {
			return nil
		}
		if !domain.IsRetryable(lastErr) {
			return lastErr
		}

		p.logger.Warn("transient write failure",
			zap.String("email", email),
			zap.Int("attempt", attempt+1),
			zap.Error(lastErr))
	}
	return lastErr
}

func (p *Pipeline) failed(email, msg string, err error) result {
	p.logger.Warn(msg, zap.String("email", email), zap.Error(err))
	return result{status: domain.StatusFailed, reason: err.Error(), resolved: true}
}

// partition splits identities into ordered, contiguous batches of at most size.
func partition(identities []string, size int) [][]string {
	var batches [][]string
	for start := 0; start < len(identities); start += size {
		end := start + size
		if end > len(identities) {
			end = len(identities)
		}
		batches = append(batches, identities[start:end])
	}
	return batches
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
