package operation

import (
	"fmt"

	"github.com/dgraph-io/badger/v2"
	"github.com/ethereum/go-ethereum/common"
)

// Rate counters are keyed by period first so that all counters of expired
// periods form a contiguous key range.

// RetrieveRateCounter retrieves how many tasks the actor opened in the period,
// zero if none.
func RetrieveRateCounter(period uint64, actor common.Address, count *uint64) func(*badger.Txn) error {
	return retrieveOrZero(makePrefix(codeRateCounter, period, actor.Bytes()), count)
}

// UpsertRateCounter writes the number of tasks the actor opened in the period.
func UpsertRateCounter(period uint64, actor common.Address, count uint64) func(*badger.Txn) error {
	return upsert(makePrefix(codeRateCounter, period, actor.Bytes()), count)
}

// PruneRateCounters removes at most limit counters of periods strictly before
// the given period and reports how many were removed. Callers repeat until
// fewer than limit counters were removed, which keeps each transaction small.
func PruneRateCounters(before uint64, limit int, removed *int) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		prefix := makePrefix(codeRateCounter)
		var keys [][]byte
		check := func(key []byte) bool {
			// key layout: code (1 byte) | period (8 bytes) | actor
			return len(key) >= 9 && decodeUint64(key[1:9]) < before
		}
		err := collectKeys(prefix, check, limit, &keys)(tx)
		if err != nil {
			return fmt.Errorf("could not collect expired rate counters: %w", err)
		}
		for _, key := range keys {
			err = remove(key)(tx)
			if err != nil {
				return fmt.Errorf("could not remove rate counter: %w", err)
			}
		}
		*removed = len(keys)
		return nil
	}
}
