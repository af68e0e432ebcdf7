package ratelimit

import (
	"fmt"

	"github.com/dgraph-io/badger/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/onflow/flow-attestation/model/attestation"
	"github.com/onflow/flow-attestation/storage/badger/operation"
	"github.com/onflow/flow-attestation/storage/badger/transaction"
)

// pruneBatchSize bounds the number of counters removed per transaction.
const pruneBatchSize = 1000

// Limiter caps the number of tasks an actor may open per period. Counters
// live in the database, keyed by period and actor. Two transactions
// consuming from the same counter conflict and the loser is retried, so a
// counter never exceeds its maximum.
type Limiter struct {
	log zerolog.Logger
	db  *badger.DB
}

func NewLimiter(log zerolog.Logger, db *badger.DB) *Limiter {
	return &Limiter{
		log: log.With().Str("component", "rate_limiter").Logger(),
		db:  db,
	}
}

// TryConsume takes one slot of the actor's allowance for the period. It
// returns false, without changing the counter, if the actor already used
// maxPerPeriod slots. A maximum of zero denies every request.
// No errors are expected during normal operation.
func (l *Limiter) TryConsume(actor common.Address, period uint64, maxPerPeriod uint64) (bool, error) {
	var allowed bool
	err := operation.RetryOnConflictTx(l.db, transaction.Update, func(tx *transaction.Tx) error {
		var err error
		allowed, err = consume(tx.DBTxn, actor, period, maxPerPeriod)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("could not consume rate limit slot: %w", err)
	}
	return allowed, nil
}

// ConsumeTx returns an operation taking one slot of the actor's allowance
// within an enclosing transaction, so the slot is only used if the
// transaction commits. Expected errors:
//   - attestation.RateLimitedError if the allowance for the period is exhausted
func (l *Limiter) ConsumeTx(actor common.Address, period uint64, maxPerPeriod uint64) func(*transaction.Tx) error {
	return func(tx *transaction.Tx) error {
		allowed, err := consume(tx.DBTxn, actor, period, maxPerPeriod)
		if err != nil {
			return fmt.Errorf("could not consume rate limit slot: %w", err)
		}
		if !allowed {
			return attestation.RateLimitedError{Creator: actor, Period: period}
		}
		return nil
	}
}

// Count returns how many slots the actor used in the period.
func (l *Limiter) Count(actor common.Address, period uint64) (uint64, error) {
	var count uint64
	err := l.db.View(operation.RetrieveRateCounter(period, actor, &count))
	if err != nil {
		return 0, fmt.Errorf("could not retrieve rate counter: %w", err)
	}
	return count, nil
}

// Prune deletes all counters of periods strictly before the given period and
// returns how many were deleted.
func (l *Limiter) Prune(before uint64) (int, error) {
	total := 0
	for {
		var removed int
		err := operation.RetryOnConflictTx(l.db, transaction.Update,
			transaction.WithTx(operation.PruneRateCounters(before, pruneBatchSize, &removed)))
		if err != nil {
			return total, fmt.Errorf("could not prune rate counters: %w", err)
		}
		total += removed
		if removed < pruneBatchSize {
			break
		}
	}

	if total > 0 {
		l.log.Debug().
			Uint64("before_period", before).
			Int("removed", total).
			Msg("pruned expired rate counters")
	}
	return total, nil
}

func consume(tx *badger.Txn, actor common.Address, period uint64, maxPerPeriod uint64) (bool, error) {
	var count uint64
	err := operation.RetrieveRateCounter(period, actor, &count)(tx)
	if err != nil {
		return false, fmt.Errorf("could not retrieve rate counter: %w", err)
	}
	if count >= maxPerPeriod {
		return false, nil
	}
	err = operation.UpsertRateCounter(period, actor, count+1)(tx)
	if err != nil {
		return false, fmt.Errorf("could not update rate counter: %w", err)
	}
	return true, nil
}
