package domain

type CheckoutState string

const (
	CheckoutStateEditing    CheckoutState = "EDITING"
	CheckoutStateSubmitting CheckoutState = "SUBMITTING"
	CheckoutStateCompleted  CheckoutState = "COMPLETED"
)

var checkoutTransitions = map[CheckoutState][]CheckoutState{
	CheckoutStateEditing:    {CheckoutStateSubmitting},
	CheckoutStateSubmitting: {CheckoutStateCompleted, CheckoutStateEditing},
	CheckoutStateCompleted:  {CheckoutStateSubmitting, CheckoutStateEditing},
}

func CanTransitionTo(from, to CheckoutState) bool {
	for _, s := range checkoutTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (s CheckoutState) IsBusy() bool {
	return s == CheckoutStateSubmitting
}

// String representation (for logging)
func (s CheckoutState) String() string {
	return string(s)
}
