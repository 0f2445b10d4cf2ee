// Package repair drives the check → diagnose → patch cycle: run the external
// checker, pick one actionable diagnostic, neutralize its line, repeat until
// nothing actionable remains or the iteration cap is hit.
package repair

// State is the controller's position in the cycle.
type State uint8

const (
	StateIdle State = iota
	StateChecking
	StateDiagnosing
	StatePatching
	// StateDone means no actionable diagnostic remains.
	StateDone
	// StateAborted means the iteration cap was hit (or progress stalled) with
	// actionable diagnostics remaining; applied patches need manual review.
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateChecking:
		return "checking"
	case StateDiagnosing:
		return "diagnosing"
	case StatePatching:
		return "patching"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	}
	return "unknown"
}

// Event is one progress notification for an optional UI sink.
type Event struct {
	Iteration int
	State     State
	Note      string
}
