package entities

// SubmoduleState is the lifecycle position of a dependency working copy.
type SubmoduleState int

const (
	StateUnregistered SubmoduleState = iota
	StateRegistered
	StateSynced
	StateFetched
	StateCheckedOut
	StateRecursed
)

func (s SubmoduleState) String() string {
	switch s {
	case StateUnregistered:
		return "unregistered"
	case StateRegistered:
		return "registered"
	case StateSynced:
		return "synced"
	case StateFetched:
		return "fetched"
	case StateCheckedOut:
		return "checked out"
	case StateRecursed:
		return "recursed"
	default:
		return "unknown"
	}
}

// Submodule tracks one dependency through the lifecycle manager.
type Submodule struct {
	Record           DependencyRecord
	State            SubmoduleState
	ResolvedRevision string       // Exact revision recorded after checkout
	Children         []*Submodule // Sub-dependencies initialized inside this working copy
}

// NewSubmodule wraps a record in its initial lifecycle state.
func NewSubmodule(record DependencyRecord) *Submodule {
	return &Submodule{Record: record, State: StateUnregistered}
}

// Advance moves the submodule to the given state.
func (s *Submodule) Advance(state SubmoduleState) {
	if state > s.State {
		s.State = state
	}
}

// PendingOperation is an interrupted VCS operation that blocks a clean reset.
type PendingOperation string

const (
	OperationMerge  PendingOperation = "merge"
	OperationRebase PendingOperation = "rebase"
	OperationApply  PendingOperation = "am"
)

// PendingOperations describes the in-progress markers found in a git dir.
type PendingOperations struct {
	MergeHead   bool // MERGE_HEAD present
	RebaseMerge bool // rebase-merge directory present
	RebaseApply bool // rebase-apply directory present (patch-apply session)
}

// ResetMode selects the kind of reset performed on a working copy.
type ResetMode string

const (
	ResetHard  ResetMode = "hard"
	ResetMixed ResetMode = "mixed"
)
