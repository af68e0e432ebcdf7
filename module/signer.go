package module

import (
	"github.com/ethereum/go-ethereum/common"
)

// SignatureVerifier checks that a signature over a canonical message was
// produced by the claimed voter. Implementations are pure.
type SignatureVerifier interface {
	// Verify returns true only if the signature recovers to the claimed voter
	// for exactly the given message.
	Verify(message []byte, signature []byte, voter common.Address) bool
}

// Signer produces signatures a SignatureVerifier accepts.
type Signer interface {
	// Address is the identity signatures are attributed to.
	Address() common.Address
	// Sign signs the canonical message.
	Sign(message []byte) ([]byte, error)
}
