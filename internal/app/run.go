package app

// runState tracks a CLI invocation that may mutate the store. Runs start
// in memory with an empty ID; only store-mutating commands persist them,
// at which point the service assigns the ID and start time.
type runState struct {
	ID         string
	Operation  string
	Parameters string
	Status     string // "success" or "error"
}

// newRunState creates a new in-memory run.
func newRunState(operation, parameters string) *runState {
	return &runState{
		Operation:  operation,
		Parameters: parameters,
		Status:     "success",
	}
}

// Persisted returns true if this run has been saved to the store.
func (r *runState) Persisted() bool {
	return r.ID != ""
}
