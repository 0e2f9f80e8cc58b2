package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// RetentionConfig contains configuration for the retention pruner.
type RetentionConfig struct {
	// RetentionDays is the number of days to retain audit records.
	// 0 means keep records forever (no pruning).
	RetentionDays int

	// PruneSchedule is a cron expression for scheduling pruning.
	// Example: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string
}

// DefaultRetentionConfig returns the default retention configuration.
func DefaultRetentionConfig() *RetentionConfig {
	return &RetentionConfig{
		RetentionDays: 90,
		PruneSchedule: "0 3 * * *",
	}
}

// Pruner enforces the retention policy on audit records.
type Pruner struct {
	storage Storage
	config  *RetentionConfig
	logger  *slog.Logger

	cron    *cron.Cron
	mu      sync.Mutex
	running bool
}

// NewPruner creates a new retention pruner.
func NewPruner(storage Storage, config *RetentionConfig) *Pruner {
	if config == nil {
		config = DefaultRetentionConfig()
	}

	return &Pruner{
		storage: storage,
		config:  config,
		logger:  slog.Default().With("component", "audit.retention"),
		cron:    cron.New(),
	}
}

// Prune deletes audit records older than the retention period. Returns
// the number of records deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if p.config.RetentionDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().AddDate(0, 0, -p.config.RetentionDays)

	p.logger.Debug("pruning by age",
		"cutoff_time", cutoff,
		"retention_days", p.config.RetentionDays,
	)

	deleted, err := p.storage.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, &RetentionError{RetentionDays: p.config.RetentionDays, Cause: err}
	}

	if deleted > 0 {
		p.logger.Info("audit pruning completed",
			"deleted_count", deleted,
			"retention_days", p.config.RetentionDays,
		)
	}

	return deleted, nil
}

// Start begins scheduled pruning based on the cron expression. If
// PruneSchedule is empty, scheduling is skipped.
func (p *Pruner) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.config.PruneSchedule == "" {
		p.logger.Info("prune schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(p.config.PruneSchedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", p.config.PruneSchedule, err)
	}

	_, err := p.cron.AddFunc(p.config.PruneSchedule, func() {
		if _, err := p.Prune(ctx); err != nil {
			p.logger.Error("scheduled pruning failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	p.cron.Start()
	p.running = true

	p.logger.Info("retention scheduler started",
		"schedule", p.config.PruneSchedule,
		"retention_days", p.config.RetentionDays,
	)

	go func() {
		<-ctx.Done()
		p.Stop()
	}()

	return nil
}

// Stop stops the scheduler and waits for any running jobs to complete.
func (p *Pruner) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cron != nil && p.running {
		ctx := p.cron.Stop()
		<-ctx.Done()
		p.running = false
		p.logger.Info("retention scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (p *Pruner) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.running
}
