package attestation

// ConsensusRecord is the vote tally of a single task. It is created lazily on
// the first accepted vote. Finalized transitions from false to true exactly
// once, after which the tally and FinalOutcome are frozen.
type ConsensusRecord struct {
	TaskID        uint64
	Finalized     bool
	PositiveVotes uint32
	NegativeVotes uint32
	FinalOutcome  bool // only meaningful if Finalized
	Overridden    bool // finalized by an admin instead of by quorum
	Applied       bool // downstream lifecycle transition succeeded
}

// TotalVotes returns the number of accepted votes counted in the tally.
func (r *ConsensusRecord) TotalVotes() uint32 {
	return r.PositiveVotes + r.NegativeVotes
}

// Count adds one vote to the tally. It must not be called on a finalized record.
func (r *ConsensusRecord) Count(outcome bool) {
	if outcome {
		r.PositiveVotes++
		return
	}
	r.NegativeVotes++
}

// Majority is the outcome of a strict majority over the current tally. A tie
// is not a positive outcome.
func (r *ConsensusRecord) Majority() bool {
	return r.PositiveVotes > r.NegativeVotes
}

// Status returns the read-only view of the record.
func (r *ConsensusRecord) Status() *ConsensusStatus {
	return &ConsensusStatus{
		TaskID:        r.TaskID,
		Finalized:     r.Finalized,
		PositiveVotes: r.PositiveVotes,
		NegativeVotes: r.NegativeVotes,
		FinalOutcome:  r.FinalOutcome,
	}
}

// ConsensusStatus is what collaborators see of a task's consensus.
type ConsensusStatus struct {
	TaskID        uint64 `json:"task_id"`
	Finalized     bool   `json:"finalized"`
	PositiveVotes uint32 `json:"positive_votes"`
	NegativeVotes uint32 `json:"negative_votes"`
	FinalOutcome  bool   `json:"final_outcome"`
}
