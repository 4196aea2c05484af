package checkout

type State string

const (
	StateEditing         State = "EDITING"
	StateSubmitting      State = "SUBMITTING"
	StateAwaitingPayment State = "AWAITING_PAYMENT"
	StateVerifying       State = "VERIFYING"
	StateCompleted       State = "COMPLETED"
	StateCancelled       State = "CANCELLED"
)

var transitions = map[State][]State{
	StateEditing:         {StateSubmitting},
	StateSubmitting:      {StateAwaitingPayment, StateEditing},
	StateAwaitingPayment: {StateVerifying, StateCancelled},
	StateVerifying:       {StateCompleted, StateEditing},
	StateCancelled:       {StateEditing},
}

func (s State) IsTerminal() bool {
	return s == StateCompleted
}

// String representation (for logging)
func (s State) String() string {
	return string(s)
}

func CanTransitionTo(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
