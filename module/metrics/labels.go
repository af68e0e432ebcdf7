package metrics

const (
	LabelResource = "resource"
	LabelOutcome  = "outcome"
	LabelReason   = "reason"
	LabelStatus   = "status"
	LabelCategory = "category"
	LabelSource   = "source"
)

const (
	ResourceUndefined = "undefined"
	ResourceTask      = "task"
	ResourceCommit    = "task_commitment"
)

// Reasons for refusing a response.
const (
	ReasonNotAuthorized          = "not_authorized"
	ReasonTaskMismatch           = "task_mismatch"
	ReasonInsufficientConfidence = "insufficient_confidence"
	ReasonInvalidInput           = "invalid_input"
	ReasonDuplicateVote          = "duplicate_vote"
	ReasonInvalidSignature       = "invalid_signature"
)

const (
	namespaceAttestation = "attestation"
	namespaceStorage     = "storage"
)

const (
	subsystemRegistry   = "registry"
	subsystemConsensus  = "consensus"
	subsystemLifecycle  = "lifecycle"
	subsystemReconciler = "reconciler"
	subsystemCache      = "cache"
)
