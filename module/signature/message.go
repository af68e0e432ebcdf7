package signature

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/onflow/flow-attestation/model/attestation"
)

// The canonical message binds a response to the content of a task only. It
// is the ABI encoding of (bytes32 contentHash, bytes32 auxHash, uint8
// category), which deliberately leaves out the task id and creation period.
// Voters sign the EIP-191 personal message hash of keccak256(message), which
// is what common wallets produce for personal_sign over the 32 byte hash.

// MessageLen is the byte length of a canonical message: three ABI words.
const MessageLen = 3 * 32

// SignatureLen is the byte length of a recoverable secp256k1 signature [R || S || V].
const SignatureLen = crypto.SignatureLength

var messageArguments = abi.Arguments{
	{Name: "contentHash", Type: mustNewType("bytes32")},
	{Name: "auxHash", Type: mustNewType("bytes32")},
	{Name: "category", Type: mustNewType("uint8")},
}

// Message returns the canonical message for the given task content.
func Message(contentHash attestation.Digest, auxHash attestation.Digest, category uint8) []byte {
	encoded, err := messageArguments.Pack(
		[attestation.DigestLen]byte(contentHash),
		[attestation.DigestLen]byte(auxHash),
		category,
	)
	if err != nil {
		panic(fmt.Sprintf("could not encode canonical message: %v", err))
	}
	return encoded
}

// TaskMessage returns the canonical message voters sign for the task.
func TaskMessage(task *attestation.Task) []byte {
	return Message(task.ContentHash, task.AuxHash, task.Category)
}

// SigningDigest returns the digest that is actually signed for a message.
func SigningDigest(message []byte) []byte {
	return accounts.TextHash(crypto.Keccak256(message))
}

func mustNewType(name string) abi.Type {
	typ, err := abi.NewType(name, "", nil)
	if err != nil {
		panic(fmt.Sprintf("invalid abi type %s: %v", name, err))
	}
	return typ
}
