package transaction

import (
	"errors"

	dbbadger "github.com/dgraph-io/badger/v2"
)

// Tx wraps a badger transaction and collects callbacks that run only after
// the underlying transaction committed successfully.
//
// Do not instantiate Tx outside of this package. Instead, use Update(db, fn).
type Tx struct {
	DBTxn     *dbbadger.Txn
	callbacks []func()
}

// OnSucceed adds a callback to execute after the batch has been successfully flushed.
// Useful for implementing the cache where we will only cache after the batch has been
// successfully flushed. Callbacks run in the order they were added.
func (b *Tx) OnSucceed(callback func()) {
	b.callbacks = append(b.callbacks, callback)
}

// Update creates a badger transaction, passing it to a chain of functions.
// Only if transaction succeeds, we run `callbacks` that were appended during the
// transaction execution. The callbacks are useful update caches in order to reduce
// cache misses.
func Update(db *dbbadger.DB, f func(*Tx) error) error {
	dbTxn := db.NewTransaction(true)
	err := run(f, dbTxn)
	dbTxn.Discard()
	return err
}

func run(f func(*Tx) error, dbTxn *dbbadger.Txn) error {
	tx := &Tx{DBTxn: dbTxn}
	err := f(tx)
	if err != nil {
		return err
	}

	err = dbTxn.Commit()
	if err != nil {
		return err
	}

	for _, callback := range tx.callbacks {
		callback()
	}
	return nil
}

// WithTx is useful when transaction is used without adding callback.
func WithTx(f func(*dbbadger.Txn) error) func(*Tx) error {
	return func(tx *Tx) error {
		return f(tx.DBTxn)
	}
}

// IsConflict returns true if the transaction was aborted because a
// concurrent transaction committed a write to a key this transaction read.
func IsConflict(err error) bool {
	return errors.Is(err, dbbadger.ErrConflict)
}
