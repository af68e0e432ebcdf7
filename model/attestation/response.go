package attestation

import (
	"github.com/ethereum/go-ethereum/common"
)

// MaxScore is the highest confidence score a voter may declare.
const MaxScore = 100

// Response is a single voter's signed attestation about a task. At most one
// response exists per (TaskID, Voter).
type Response struct {
	TaskID    uint64         `json:"task_id"`
	Voter     common.Address `json:"voter"`
	Signature []byte         `json:"signature"`
	Outcome   bool           `json:"outcome"`
	Score     uint8          `json:"score"`
}
