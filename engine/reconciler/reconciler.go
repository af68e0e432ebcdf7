package reconciler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"go.uber.org/atomic"

	"github.com/onflow/flow-attestation/model/attestation"
	"github.com/onflow/flow-attestation/module"
	"github.com/onflow/flow-attestation/module/component"
	"github.com/onflow/flow-attestation/module/irrecoverable"
	"github.com/onflow/flow-attestation/module/ratelimit"
)

// ApplyRepairer exposes the finalized tasks whose downstream apply failed.
type ApplyRepairer interface {
	Unapplied() ([]uint64, error)
	RetryApply(ctx context.Context, taskID uint64) error
}

// IssuanceRepairer exposes the authenticated items still waiting for an artifact.
type IssuanceRepairer interface {
	Unlinked() ([]uint64, error)
	RetryIssuance(ctx context.Context, itemID uint64) (*attestation.Item, error)
}

// CounterPruner removes rate limit counters of expired periods.
type CounterPruner interface {
	Prune(before uint64) (int, error)
}

// Reconciler is the housekeeping worker of the node. Every interval it
// re-applies finalized tasks whose apply failed, retries the issuance of
// authenticated items without artifact and prunes rate limit counters older
// than the retention window.
type Reconciler struct {
	component.Component
	cm *component.ComponentManager

	log      zerolog.Logger
	tasks    ApplyRepairer
	items    IssuanceRepairer
	counters CounterPruner
	periods  ratelimit.PeriodSource
	metrics  module.ReconcilerMetrics
	config   Config

	passes *atomic.Uint64
	// serializes passes triggered by the ticker and by RunOnce
	passLock sync.Mutex
}

// Result summarizes a single reconciliation pass.
type Result struct {
	Repaired int
	Failed   int
	Pruned   int
}

func New(
	log zerolog.Logger,
	tasks ApplyRepairer,
	items IssuanceRepairer,
	counters CounterPruner,
	periods ratelimit.PeriodSource,
	metrics module.ReconcilerMetrics,
	config Config,
) (*Reconciler, error) {
	err := config.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid reconciler config: %w", err)
	}

	r := &Reconciler{
		log:      log.With().Str("component", "reconciler").Logger(),
		tasks:    tasks,
		items:    items,
		counters: counters,
		periods:  periods,
		metrics:  metrics,
		config:   config,
		passes:   atomic.NewUint64(0),
	}
	r.cm = component.NewComponentManagerBuilder().
		AddWorker(r.loop).
		Build()
	r.Component = r.cm

	return r, nil
}

// Passes returns the number of completed reconciliation passes.
func (r *Reconciler) Passes() uint64 {
	return r.passes.Load()
}

func (r *Reconciler) loop(ctx irrecoverable.SignalerContext, ready component.ReadyFunc) {
	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	ready()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, err := r.RunOnce(ctx)
			if err != nil {
				ctx.Throw(err)
			}
		}
	}
}

// RunOnce performs a single reconciliation pass. Entities that still fail
// after all retries are counted in the result and picked up again by the next
// pass. An error is returned only if the pending work could not be listed.
func (r *Reconciler) RunOnce(ctx context.Context) (*Result, error) {
	r.passLock.Lock()
	defer r.passLock.Unlock()

	start := time.Now()
	result := &Result{}

	taskIDs, err := r.tasks.Unapplied()
	if err != nil {
		return nil, fmt.Errorf("could not list unapplied tasks: %w", err)
	}
	r.repair(ctx, result, "task_id", taskIDs, r.tasks.RetryApply)

	// applying tasks may have linked items, so list them afterwards
	itemIDs, err := r.items.Unlinked()
	if err != nil {
		return nil, fmt.Errorf("could not list unlinked items: %w", err)
	}
	r.repair(ctx, result, "item_id", itemIDs, func(ctx context.Context, itemID uint64) error {
		_, err := r.items.RetryIssuance(ctx, itemID)
		return err
	})

	current := r.periods.Current()
	if current > r.config.RetentionPeriods {
		pruned, err := r.counters.Prune(current - r.config.RetentionPeriods)
		if err != nil {
			return nil, fmt.Errorf("could not prune rate counters: %w", err)
		}
		result.Pruned = pruned
		if pruned > 0 {
			r.metrics.RateCountersPruned(pruned)
		}
	}

	duration := time.Since(start)
	r.metrics.ReconciliationCompleted(duration, result.Repaired, result.Failed)
	r.passes.Inc()

	if result.Repaired > 0 || result.Failed > 0 {
		r.log.Info().
			Int("repaired", result.Repaired).
			Int("failed", result.Failed).
			Int("pruned", result.Pruned).
			Dur("duration", duration).
			Msg("reconciliation pass completed")
	}

	return result, nil
}

// repair retries fn for every id on the worker pool and blocks until all
// attempts finished.
func (r *Reconciler) repair(ctx context.Context, result *Result, key string, ids []uint64, fn func(context.Context, uint64) error) {
	if len(ids) == 0 {
		return
	}

	repaired := atomic.NewInt32(0)
	failed := atomic.NewInt32(0)

	pool := workerpool.New(r.config.Workers)
	for _, id := range ids {
		id := id
		pool.Submit(func() {
			err := r.withRetry(ctx, func(ctx context.Context) error {
				return fn(ctx, id)
			})
			if err != nil {
				failed.Inc()
				r.log.Warn().Err(err).Uint64(key, id).Msg("reconciliation failed")
				return
			}
			repaired.Inc()
		})
	}
	pool.StopWait()

	result.Repaired += int(repaired.Load())
	result.Failed += int(failed.Load())
}

// withRetry runs fn with exponential backoff. Errors that indicate a
// sequencing bug or a conflicting state are not retried.
func (r *Reconciler) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff, err := retry.NewExponential(r.config.RetryBase)
	if err != nil {
		return fmt.Errorf("could not create backoff: %w", err)
	}
	backoff = retry.WithMaxRetries(r.config.RetryMax, backoff)

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if permanent(err) {
			return err
		}
		return retry.RetryableError(err)
	})
}

func permanent(err error) bool {
	return attestation.IsUnmappedTaskError(err) ||
		attestation.IsNotFoundError(err) ||
		attestation.IsInvalidStateError(err) ||
		irrecoverable.IsException(err)
}
