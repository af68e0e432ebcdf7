package operation

import (
	"github.com/dgraph-io/badger/v2"

	"github.com/onflow/flow-attestation/storage/badger/transaction"
)

// RetryOnConflictTx runs the operation in a fresh transaction until it is
// not aborted by a write conflict. Badger detects a conflict whenever a
// concurrent transaction committed a write to a key this transaction read,
// which serializes all writers of the same task, item or counter while
// writers of different keys proceed without blocking each other.
func RetryOnConflictTx(db *badger.DB, action func(*badger.DB, func(*transaction.Tx) error) error, op func(*transaction.Tx) error) error {
	for {
		err := action(db, op)
		if transaction.IsConflict(err) {
			continue
		}
		return err
	}
}
