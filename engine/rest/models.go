package rest

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/onflow/flow-attestation/model/attestation"
)

type CreateTaskRequest struct {
	ContentHash attestation.Digest `json:"content_hash" validate:"required"`
	AuxHash     attestation.Digest `json:"aux_hash" validate:"required"`
	Category    uint8              `json:"category"`
	Creator     common.Address     `json:"creator" validate:"required"`
}

// SubmitResponseRequest carries a vote together with the task payload the
// voter signed. The payload is checked against the stored commitment.
type SubmitResponseRequest struct {
	Task      attestation.Task `json:"task"`
	Signature hexutil.Bytes    `json:"signature" validate:"required"`
	Outcome   bool             `json:"outcome"`
	Score     uint8            `json:"score"`
	Voter     common.Address   `json:"voter" validate:"required"`
}

type ManualOverrideRequest struct {
	Outcome bool           `json:"outcome"`
	Admin   common.Address `json:"admin" validate:"required"`
}

type RegisterItemRequest struct {
	Owner       common.Address     `json:"owner" validate:"required"`
	ContentHash attestation.Digest `json:"content_hash" validate:"required"`
	AuxHash     attestation.Digest `json:"aux_hash" validate:"required"`
	Category    uint8              `json:"category"`
	MetadataRef string             `json:"metadata_ref" validate:"required,max=512"`
}

type RequestAuthenticationRequest struct {
	Requester common.Address `json:"requester" validate:"required"`
}

type AuthenticationRequested struct {
	ItemID uint64 `json:"item_id"`
	TaskID uint64 `json:"task_id"`
}

// VoteResult is returned for an accepted vote. ApplyError is set if the vote
// finalized the task but the downstream transition failed and is pending a
// retry.
type VoteResult struct {
	Status     *attestation.ConsensusStatus `json:"status"`
	ApplyError string                       `json:"apply_error,omitempty"`
}

// ModelError is the body of every error response.
type ModelError struct {
	Code      int32  `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}
