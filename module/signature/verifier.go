package signature

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/onflow/flow-attestation/module"
)

// Verifier checks recoverable secp256k1 signatures over canonical messages.
type Verifier struct{}

var _ module.SignatureVerifier = (*Verifier)(nil)

func NewVerifier() *Verifier {
	return &Verifier{}
}

// Verify returns true if the signature over the canonical message recovers
// to the voter. Messages of any other length are rejected, as are
// signatures with a malleable (high) S value or an unknown recovery id.
// Both the raw recovery id (0, 1) and the legacy offset form (27, 28) are
// accepted.
func (v *Verifier) Verify(message []byte, signature []byte, voter common.Address) bool {
	if len(message) != MessageLen || len(signature) != SignatureLen {
		return false
	}
	if voter == (common.Address{}) {
		return false
	}

	sig := make([]byte, SignatureLen)
	copy(sig, signature)
	if sig[64] >= 27 {
		sig[64] -= 27
	}

	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:64])
	if !crypto.ValidateSignatureValues(sig[64], r, s, true) {
		return false
	}

	pub, err := crypto.SigToPub(SigningDigest(message), sig)
	if err != nil {
		return false
	}
	return crypto.PubkeyToAddress(*pub) == voter
}
