package module

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// ArtifactIssuer is the external minting collaborator issuing the certificate
// artifact of an authenticated item. Issuance may fail; callers treat every
// error as recoverable and retry later.
type ArtifactIssuer interface {
	// IssueArtifact issues an artifact for the owner, referencing the item
	// metadata, and returns the non-zero artifact id.
	IssueArtifact(ctx context.Context, owner common.Address, metadataRef string) (uint64, error)
}
