package attestation

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Status is the authentication status of an item.
type Status uint8

const (
	StatusPending Status = iota
	StatusAuthenticated
	StatusRejected
)

var statusNames = [...]string{"pending", "authenticated", "rejected"}

func (s Status) String() string {
	if int(s) >= len(statusNames) {
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
	return statusNames[s]
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	if int(s) >= len(statusNames) {
		return nil, fmt.Errorf("invalid status %d", uint8(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(text []byte) error {
	for i, name := range statusNames {
		if name == string(text) {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("invalid status %q", text)
}

// Item is the subject entity whose authenticity is attested, e.g. a
// collectible record. Its status is driven solely by finalized consensus
// results of the task currently mapped to it.
type Item struct {
	ID          uint64         `json:"id"`
	Owner       common.Address `json:"owner"`
	ContentHash Digest         `json:"content_hash"`
	AuxHash     Digest         `json:"aux_hash"`
	Category    uint8          `json:"category"`
	MetadataRef string         `json:"metadata_ref"`
	Status      Status         `json:"status"`
	TaskID      uint64         `json:"task_id"`     // 0 until authentication was requested
	ArtifactID  uint64         `json:"artifact_id"` // 0 until the artifact was issued
}

// Linked returns true once the artifact for this item was issued and recorded.
func (i *Item) Linked() bool {
	return i.ArtifactID != 0
}
