package signature

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/onflow/flow-attestation/model/attestation"
	"github.com/onflow/flow-attestation/module"
)

// LocalSigner signs canonical messages with a local secp256k1 key. It emits
// the legacy recovery id form (27, 28) used by wallets.
type LocalSigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

var _ module.Signer = (*LocalSigner)(nil)

func NewLocalSigner(key *ecdsa.PrivateKey) *LocalSigner {
	return &LocalSigner{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}
}

// NewLocalSignerFromHex creates a signer from a hex encoded private key.
func NewLocalSignerFromHex(hexKey string) (*LocalSigner, error) {
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("could not decode private key: %w", err)
	}
	return NewLocalSigner(key), nil
}

func (s *LocalSigner) Address() common.Address {
	return s.address
}

func (s *LocalSigner) Sign(message []byte) ([]byte, error) {
	sig, err := crypto.Sign(SigningDigest(message), s.key)
	if err != nil {
		return nil, fmt.Errorf("could not sign message: %w", err)
	}
	sig[64] += 27
	return sig, nil
}

// SignTask signs the canonical message of the task.
func (s *LocalSigner) SignTask(task *attestation.Task) ([]byte, error) {
	return s.Sign(TaskMessage(task))
}
