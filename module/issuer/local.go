package issuer

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/onflow/flow-attestation/module"
	"github.com/onflow/flow-attestation/storage/badger/operation"
	"github.com/onflow/flow-attestation/storage/badger/transaction"
)

// LocalIssuer assigns sequential artifact ids from the node's own database.
// It serves standalone deployments without an external minting service.
type LocalIssuer struct {
	log zerolog.Logger
	db  *badger.DB
}

var _ module.ArtifactIssuer = (*LocalIssuer)(nil)

func NewLocalIssuer(log zerolog.Logger, db *badger.DB) *LocalIssuer {
	return &LocalIssuer{
		log: log.With().Str("component", "local_issuer").Logger(),
		db:  db,
	}
}

func (l *LocalIssuer) IssueArtifact(_ context.Context, owner common.Address, metadataRef string) (uint64, error) {
	var artifactID uint64
	err := operation.RetryOnConflictTx(l.db, transaction.Update, func(tx *transaction.Tx) error {
		var latest uint64
		err := operation.RetrieveLatestArtifactID(&latest)(tx.DBTxn)
		if err != nil {
			return fmt.Errorf("could not retrieve latest artifact id: %w", err)
		}
		artifactID = latest + 1
		return operation.UpdateLatestArtifactID(artifactID)(tx.DBTxn)
	})
	if err != nil {
		return 0, fmt.Errorf("could not issue artifact: %w", err)
	}

	l.log.Debug().
		Uint64("artifact_id", artifactID).
		Str("owner", owner.Hex()).
		Str("metadata_ref", metadataRef).
		Msg("artifact issued")

	return artifactID, nil
}
