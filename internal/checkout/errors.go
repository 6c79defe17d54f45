package checkout

import (
	"errors"
	"sort"
	"strings"

	"github.com/fjod/go_cellar/internal/domain"
)

var (
	// ErrSubmissionInProgress rejects a submit or draft edit while an order is being placed.
	ErrSubmissionInProgress = errors.New("order submission already in progress")
	// ErrEmptyCart rejects a submit with nothing to order.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrPaymentDeclined is returned by a processor that refused payment.
	ErrPaymentDeclined = errors.New("payment declined")
	// ErrInventoryConflict is returned by a processor that could not reserve the bottles.
	ErrInventoryConflict = errors.New("inventory conflict")
	// ErrProcessingTimeout means processing did not finish within the processing timeout.
	ErrProcessingTimeout = errors.New("order processing timed out")
	// ErrProcessorUnavailable means the circuit breaker is refusing new orders.
	ErrProcessorUnavailable = errors.New("order processing unavailable")
)

// ValidationError carries every invalid field of a rejected submission.
type ValidationError struct {
	Fields domain.FieldErrors
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return "invalid checkout form: " + strings.Join(names, ", ")
}

// First is the field the user should be brought to.
func (e *ValidationError) First() domain.Field {
	f, _ := e.Fields.First()
	return f
}
