package storage

// All includes all the storage modules
type All struct {
	Tasks            Tasks
	Responses        Responses
	ConsensusRecords ConsensusRecords
	Items            Items
}
