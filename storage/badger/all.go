package badger

import (
	"github.com/dgraph-io/badger/v2"

	"github.com/onflow/flow-attestation/module"
	"github.com/onflow/flow-attestation/storage"
)

func InitAll(metrics module.CacheMetrics, db *badger.DB) *storage.All {
	return &storage.All{
		Tasks:            NewTasks(metrics, db),
		Responses:        NewResponses(db),
		ConsensusRecords: NewConsensusRecords(db),
		Items:            NewItems(db),
	}
}
