// SPDX-License-Identifier: EPL-2.0

package algorithm

// State is the lifecycle position of a Handle.
type State uint8

const (
	// Unbound is the zero State. Handles returned by a Registry are never
	// Unbound.
	Unbound State = iota
	// Configured means a configuration was just bound, by Create or
	// Configure. A configured handle accepts Compute right away.
	Configured
	// Ready means streaming state was cleared by Reset.
	Ready
	// Computed means at least one Compute succeeded since the last
	// Configure or Reset.
	Computed
	// Disposed is terminal.
	Disposed
)

var stateNames = [...]string{
	Unbound:    "unbound",
	Configured: "configured",
	Ready:      "ready",
	Computed:   "computed",
	Disposed:   "disposed",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// validTransitions lists the states each state may move to. Configured
// passes through Ready implicitly, so it accepts the same moves.
var validTransitions = map[State][]State{
	Unbound:    {Configured},
	Configured: {Configured, Ready, Computed, Disposed},
	Ready:      {Configured, Ready, Computed, Disposed},
	Computed:   {Configured, Ready, Computed, Disposed},
	Disposed:   {},
}

func canTransition(from, to State) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}
