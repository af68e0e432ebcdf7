package attestation

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Task identifies the subject content that attestors vote on. A task is
// immutable once created and is only ever superseded by a newer task, never
// removed.
type Task struct {
	ID          uint64 `json:"id"`
	ContentHash Digest `json:"content_hash"`
	AuxHash     Digest `json:"aux_hash"`
	Category    uint8  `json:"category"`
	CreatedAt   uint64 `json:"created_at"` // period key at creation
}

var commitmentArguments = abi.Arguments{
	{Name: "id", Type: mustNewType("uint64")},
	{Name: "contentHash", Type: mustNewType("bytes32")},
	{Name: "auxHash", Type: mustNewType("bytes32")},
	{Name: "category", Type: mustNewType("uint8")},
	{Name: "createdAt", Type: mustNewType("uint64")},
}

// Commitment returns the digest binding every field of the task. It is
// keccak256 over the ABI encoding of (id, contentHash, auxHash, category,
// createdAt), so any change to any field yields a different commitment.
func (t *Task) Commitment() Digest {
	encoded, err := commitmentArguments.Pack(
		t.ID,
		[DigestLen]byte(t.ContentHash),
		[DigestLen]byte(t.AuxHash),
		t.Category,
		t.CreatedAt,
	)
	if err != nil {
		// all argument types are fixed, packing cannot fail for a well-formed task
		panic(fmt.Sprintf("could not encode task %d for commitment: %v", t.ID, err))
	}
	return Keccak256Digest(encoded)
}

func mustNewType(name string) abi.Type {
	typ, err := abi.NewType(name, "", nil)
	if err != nil {
		panic(fmt.Sprintf("invalid abi type %s: %v", name, err))
	}
	return typ
}
