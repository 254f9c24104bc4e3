package login

// State is the phase a login module instance is in
type State int

const (
	StateInit State = iota
	StateAttempting
	StateSucceeded
	StateFailed
	StateCommitted
	StateAbortedAfterSuccess
	StateAborted
	StateLoggedOut
)

var stateNames = map[State]string{
	StateInit:                "INIT",
	StateAttempting:          "ATTEMPTING",
	StateSucceeded:           "SUCCEEDED",
	StateFailed:              "FAILED",
	StateCommitted:           "COMMITTED",
	StateAbortedAfterSuccess: "ABORTED_AFTER_SUCCESS",
	StateAborted:             "ABORTED",
	StateLoggedOut:           "LOGGED_OUT",
}

// transitions lists the legal successors of every state
var transitions = map[State][]State{
	StateInit:                {StateAttempting, StateAborted, StateLoggedOut},
	StateAttempting:          {StateSucceeded, StateFailed},
	StateSucceeded:           {StateCommitted, StateAbortedAfterSuccess, StateLoggedOut},
	StateFailed:              {StateAborted, StateLoggedOut},
	StateCommitted:           {StateCommitted, StateLoggedOut},
	StateAbortedAfterSuccess: {StateLoggedOut},
	StateAborted:             {StateLoggedOut},
	StateLoggedOut:           {StateLoggedOut},
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// Terminal reports whether no further phase is expected, logout aside
func (s State) Terminal() bool {
	switch s {
	case StateCommitted, StateAborted, StateAbortedAfterSuccess, StateLoggedOut:
		return true
	default:
		return false
	}
}

// CanTransition reports whether from -> to is legal
func CanTransition(from State, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
